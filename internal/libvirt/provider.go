package libvirt

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"context"

	golibvirt "github.com/digitalocean/go-libvirt"
	"github.com/digitalocean/go-libvirt/socket/dialers"

	"github.com/Casey2134/pulse/internal/config"
	"github.com/Casey2134/pulse/internal/domain"
)

const (
	defaultPort    = "16509"
	connectTimeout = 5 * time.Second
)

type cpuSample struct {
	value uint64
	total uint64
	at    time.Time
}

// Provider implements domain.Provider against a single libvirt host
// reachable over the remote RPC transport. The host itself is the one
// Node; its domains are the workloads.
//
// CPU utilization is derived from counter deltas between polls, so the
// first refresh after startup reports 0 for this backend.
type Provider struct {
	name   string
	addr   string
	port   string
	logger *slog.Logger

	mu       sync.Mutex
	hostPrev cpuSample
	domPrev  map[string]cpuSample
	cores    float64
}

var _ domain.Provider = (*Provider)(nil)

// New builds a Provider from one libvirt config entry. Only remote
// tcp URIs (qemu+tcp://host:port/system) are supported.
func New(cfg config.LibvirtConfig, logger *slog.Logger) (*Provider, error) {
	u, err := url.Parse(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("parse libvirt uri %q: %w", cfg.URI, err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("libvirt uri %q has no host", cfg.URI)
	}

	port := u.Port()
	if port == "" {
		port = defaultPort
	}

	name := cfg.Name
	if name == "" {
		name = u.Hostname()
	}

	return &Provider{
		name:    name,
		addr:    u.Hostname(),
		port:    port,
		logger:  logger,
		domPrev: map[string]cpuSample{},
		cores:   1,
	}, nil
}

func (p *Provider) Name() string { return p.name }

// dial opens a fresh RPC connection; callers must Disconnect it.
func (p *Provider) dial() (*golibvirt.Libvirt, error) {
	d := dialers.NewRemote(p.addr,
		dialers.UsePort(p.port),
		dialers.WithRemoteTimeout(connectTimeout),
	)
	client := golibvirt.NewWithDialer(d)
	if err := client.Connect(); err != nil {
		return nil, err
	}
	return client, nil
}

func (p *Provider) transportErr(op string, err error) error {
	return &domain.ProviderError{Provider: p.name, Kind: domain.ErrTransport, Op: op, Err: err}
}

// FetchNodes reports the libvirt host as a single Node. An unreachable
// host is a transport error, not an offline Node: libvirt has no
// out-of-band view of its own availability.
func (p *Provider) FetchNodes(ctx context.Context) ([]domain.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, p.transportErr("fetch nodes", err)
	}

	client, err := p.dial()
	if err != nil {
		return nil, p.transportErr("fetch nodes", err)
	}
	defer client.Disconnect()

	hostname, err := client.ConnectGetHostname()
	if err != nil || hostname == "" {
		hostname = p.name
	}

	_, memoryKiB, cpus, _, _, _, _, _, err := client.NodeGetInfo()
	if err != nil {
		return nil, p.transportErr("fetch nodes", fmt.Errorf("NodeGetInfo: %w", err))
	}
	p.mu.Lock()
	p.cores = float64(cpus)
	p.mu.Unlock()

	memUsed, memTotal := p.memoryStats(client)
	if memTotal == 0 {
		memTotal = memoryKiB * 1024
	}

	return []domain.Node{{
		Name:        hostname,
		Status:      domain.NodeOnline,
		CPUUsage:    p.hostCPU(client),
		MemoryUsed:  memUsed,
		MemoryTotal: memTotal,
		Uptime:      0, // libvirt exposes no host uptime
	}}, nil
}

func (p *Provider) memoryStats(client *golibvirt.Libvirt) (used, total uint64) {
	stats, _, err := client.NodeGetMemoryStats(0, -1, 0)
	if err != nil || len(stats) == 0 {
		if err != nil {
			p.logger.Warn("node memory stats unavailable", "provider", p.name, "error", err)
		}
		return 0, 0
	}

	vals := map[string]uint64{}
	for _, st := range stats {
		vals[strings.ToLower(st.Field)] = st.Value
	}
	total = vals["total"] * 1024
	free := vals["free"] * 1024
	buffers := vals["buffers"] * 1024
	cached := vals["cached"] * 1024
	if total == 0 {
		return 0, 0
	}
	used = total
	if free+buffers+cached <= total {
		used = total - free - buffers - cached
	}
	return used, total
}

// hostCPU derives host utilization from kernel CPU counter deltas.
func (p *Provider) hostCPU(client *golibvirt.Libvirt) float64 {
	stats, _, err := client.NodeGetCPUStats(-1, 0, 0)
	if err != nil || len(stats) == 0 {
		if err != nil {
			p.logger.Warn("node cpu stats unavailable", "provider", p.name, "error", err)
		}
		return 0
	}

	var total, idle, iowait uint64
	for _, st := range stats {
		total += st.Value
		switch strings.ToLower(st.Field) {
		case "idle":
			idle = st.Value
		case "iowait":
			iowait = st.Value
		}
	}
	used := total - idle - iowait

	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.hostPrev
	p.hostPrev = cpuSample{value: used, total: total, at: time.Now()}
	if prev.at.IsZero() || total <= prev.total {
		return 0
	}
	totalDelta := total - prev.total
	usedDelta := used - prev.value
	if totalDelta == 0 || usedDelta > totalDelta {
		return 0
	}
	return float64(usedDelta) / float64(totalDelta) * 100
}

// FetchWorkloads lists every defined domain on the host.
func (p *Provider) FetchWorkloads(ctx context.Context) ([]domain.Workload, error) {
	if err := ctx.Err(); err != nil {
		return nil, p.transportErr("fetch workloads", err)
	}

	client, err := p.dial()
	if err != nil {
		return nil, p.transportErr("fetch workloads", err)
	}
	defer client.Disconnect()

	hostname, err := client.ConnectGetHostname()
	if err != nil || hostname == "" {
		hostname = p.name
	}

	doms, _, err := client.ConnectListAllDomains(1, 0)
	if err != nil {
		return nil, p.transportErr("fetch workloads", fmt.Errorf("ConnectListAllDomains: %w", err))
	}

	now := time.Now()
	workloads := make([]domain.Workload, 0, len(doms))
	for _, dom := range doms {
		state, maxMemKiB, memKiB, _, cpuTime, err := client.DomainGetInfo(dom)
		if err != nil {
			p.logger.Warn("domain info fetch failed", "provider", p.name, "domain", dom.Name, "error", err)
			continue
		}

		var id uint32
		if dom.ID > 0 {
			id = uint32(dom.ID)
		}

		workloads = append(workloads, domain.Workload{
			ID:         id,
			Name:       dom.Name,
			Node:       hostname,
			Kind:       domain.KindVM,
			Status:     domain.WorkloadStatusFrom(domainStateString(state)),
			CPUUsage:   p.domainCPU(dom.Name, cpuTime, now),
			MemoryUsed: memKiB * 1024,
			MemoryMax:  maxMemKiB * 1024,
			Uptime:     0, // not exposed per domain
		})
	}
	return workloads, nil
}

// domainCPU converts a domain's cumulative cpu-time counter into a
// utilization percentage across the host's cores.
func (p *Provider) domainCPU(name string, cpuTimeNs uint64, at time.Time) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev, ok := p.domPrev[name]
	p.domPrev[name] = cpuSample{value: cpuTimeNs, at: at}
	if !ok || cpuTimeNs <= prev.value {
		return 0
	}
	dt := at.Sub(prev.at).Seconds()
	if dt <= 0 {
		return 0
	}

	cores := p.cores
	if cores <= 0 {
		cores = 1
	}
	cpuSeconds := float64(cpuTimeNs-prev.value) / float64(time.Second)
	usage := (cpuSeconds / dt) * (100 / cores)
	if usage < 0 {
		return 0
	}
	return usage
}

// domainStateString maps libvirt numeric domain states onto the backend
// status vocabulary; only "running" normalizes to a positive status.
func domainStateString(v uint8) string {
	switch v {
	case 1:
		return "running"
	case 2:
		return "blocked"
	case 3:
		return "paused"
	case 4:
		return "shutdown"
	case 5:
		return "shutoff"
	case 6:
		return "crashed"
	case 7:
		return "pmsuspended"
	default:
		return "unknown"
	}
}
