package proxmox

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Casey2134/pulse/internal/config"
	"github.com/Casey2134/pulse/internal/domain"
)

const (
	connectTimeout = 5 * time.Second
	requestTimeout = 10 * time.Second

	// Upper bound on concurrent per-host guest listings. Homelab
	// clusters are small; this mostly guards against a flapping DNS
	// entry stalling many dials at once.
	maxHostFetches = 4
)

// Client implements domain.Provider against the Proxmox VE REST API.
//
// Certificate validation is disabled by policy: the target audience runs
// self-signed certs. Auth is a static API token attached per request.
type Client struct {
	name       string
	baseURL    string
	authHeader string
	http       *http.Client
	logger     *slog.Logger
}

var _ domain.Provider = (*Client)(nil)

// New builds a Client from one proxmox config entry.
func New(cfg config.ProxmoxConfig, logger *slog.Logger) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
	}

	return &Client{
		name:       cfg.Name,
		baseURL:    cfg.Host,
		authHeader: fmt.Sprintf("PVEAPIToken=%s=%s", cfg.TokenID, cfg.TokenSecret),
		http: &http.Client{
			Transport: transport,
			Timeout:   requestTimeout,
		},
		logger: logger,
	}
}

func (c *Client) Name() string { return c.name }

// --- Wire types ---
//
// Every payload arrives in a {"data": ...} envelope. Numeric fields are
// optional on the wire and decode to 0 when absent.

type nodeList struct {
	Data []nodeEntry `json:"data"`
}

type nodeEntry struct {
	Node   string `json:"node"`
	Status string `json:"status"`
}

type nodeStatusEnvelope struct {
	Data nodeStatusDetail `json:"data"`
}

type nodeStatusDetail struct {
	CPU    float64 `json:"cpu"` // fraction of one core-second, 0..n
	Memory struct {
		Used  uint64 `json:"used"`
		Total uint64 `json:"total"`
	} `json:"memory"`
	Uptime uint64 `json:"uptime"`
}

type guestList struct {
	Data []guestEntry `json:"data"`
}

type guestEntry struct {
	VMID   uint32  `json:"vmid"`
	Name   string  `json:"name"`
	Status string  `json:"status"`
	CPU    float64 `json:"cpu"`
	Mem    uint64  `json:"mem"`
	MaxMem uint64  `json:"maxmem"`
	Uptime uint64  `json:"uptime"`
}

// getJSON issues an authenticated GET and decodes the response body.
func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &domain.ProviderError{Provider: c.name, Kind: domain.ErrTransport, Op: op, Err: err}
	}
	req.Header.Set("Authorization", c.authHeader)

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.ProviderError{Provider: c.name, Kind: domain.ErrTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.ProviderError{
			Provider: c.name,
			Kind:     domain.ErrTransport,
			Op:       op,
			Err:      fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.ProviderError{Provider: c.name, Kind: domain.ErrDecode, Op: op, Err: err}
	}
	return nil
}

// FetchNodes lists cluster nodes and enriches each online node with its
// status detail. A status-detail failure degrades that node to zero
// metrics rather than failing the fetch.
func (c *Client) FetchNodes(ctx context.Context) ([]domain.Node, error) {
	var list nodeList
	if err := c.getJSON(ctx, "fetch nodes", "/api2/json/nodes", &list); err != nil {
		return nil, err
	}

	nodes := make([]domain.Node, 0, len(list.Data))
	for _, n := range list.Data {
		var detail nodeStatusDetail
		if n.Status == "online" {
			detail = c.fetchNodeStatus(ctx, n.Node)
		}

		nodes = append(nodes, domain.Node{
			Name:        n.Node,
			Status:      domain.NodeStatusFrom(n.Status),
			CPUUsage:    detail.CPU * 100,
			MemoryUsed:  detail.Memory.Used,
			MemoryTotal: detail.Memory.Total,
			Uptime:      detail.Uptime,
		})
	}
	return nodes, nil
}

func (c *Client) fetchNodeStatus(ctx context.Context, node string) nodeStatusDetail {
	var env nodeStatusEnvelope
	path := fmt.Sprintf("/api2/json/nodes/%s/status", node)
	if err := c.getJSON(ctx, "fetch node status", path, &env); err != nil {
		c.logger.Warn("node status fetch failed", "provider", c.name, "node", node, "error", err)
		return nodeStatusDetail{}
	}
	return env.Data
}

// FetchWorkloads lists cluster nodes, then gathers the qemu and lxc
// guests of every online node. The host listing is fatal for the fetch;
// per-host guest listings are not — a bad host contributes nothing and
// the rest of the cluster still reports. Partial results beat total
// failure here.
func (c *Client) FetchWorkloads(ctx context.Context) ([]domain.Workload, error) {
	var list nodeList
	if err := c.getJSON(ctx, "fetch workloads", "/api2/json/nodes", &list); err != nil {
		return nil, err
	}

	var online []string
	for _, n := range list.Data {
		if n.Status == "online" {
			online = append(online, n.Node)
		}
	}

	// One result slot per host keeps aggregation order-independent.
	perHost := make([][]domain.Workload, len(online))
	var g errgroup.Group
	g.SetLimit(maxHostFetches)

	for i, node := range online {
		g.Go(func() error {
			perHost[i] = append(c.fetchGuests(ctx, node, "qemu", domain.KindVM),
				c.fetchGuests(ctx, node, "lxc", domain.KindLXC)...)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; failures are swallowed per host

	var workloads []domain.Workload
	for _, ws := range perHost {
		workloads = append(workloads, ws...)
	}
	return workloads, nil
}

func (c *Client) fetchGuests(ctx context.Context, node, endpoint string, kind domain.WorkloadKind) []domain.Workload {
	var list guestList
	path := fmt.Sprintf("/api2/json/nodes/%s/%s", node, endpoint)
	if err := c.getJSON(ctx, "fetch guests", path, &list); err != nil {
		c.logger.Warn("guest fetch failed", "provider", c.name, "node", node, "endpoint", endpoint, "error", err)
		return nil
	}

	workloads := make([]domain.Workload, 0, len(list.Data))
	for _, g := range list.Data {
		name := g.Name
		if name == "" {
			if kind == domain.KindLXC {
				name = fmt.Sprintf("CT %d", g.VMID)
			} else {
				name = fmt.Sprintf("VM %d", g.VMID)
			}
		}

		workloads = append(workloads, domain.Workload{
			ID:         g.VMID,
			Name:       name,
			Node:       node,
			Kind:       kind,
			Status:     domain.WorkloadStatusFrom(g.Status),
			CPUUsage:   g.CPU * 100,
			MemoryUsed: g.Mem,
			MemoryMax:  g.MaxMem,
			Uptime:     g.Uptime,
		})
	}
	return workloads
}
