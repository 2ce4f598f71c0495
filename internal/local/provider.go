package local

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/Casey2134/pulse/internal/config"
	"github.com/Casey2134/pulse/internal/domain"
)

// Provider reports the machine running the dashboard as a single,
// always-online Node. It contributes no workloads; an empty result with
// no error is a legitimately empty backend, not a failure.
type Provider struct {
	name string
}

var _ domain.Provider = (*Provider)(nil)

func New(cfg config.LocalConfig) *Provider {
	name := cfg.Name
	if name == "" {
		name = "local"
	}
	return &Provider{name: name}
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) FetchNodes(ctx context.Context) ([]domain.Node, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, &domain.ProviderError{Provider: p.name, Kind: domain.ErrTransport, Op: "fetch nodes", Err: err}
	}

	name := info.Hostname
	if name == "" {
		name = p.name
	}

	// Interval 0 measures since the previous call; the first refresh
	// reports 0 for this backend.
	var cpuPct float64
	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		cpuPct = percents[0]
	}

	var memUsed, memTotal uint64
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		memUsed = vm.Used
		memTotal = vm.Total
	}

	return []domain.Node{{
		Name:        name,
		Status:      domain.NodeOnline,
		CPUUsage:    cpuPct,
		MemoryUsed:  memUsed,
		MemoryTotal: memTotal,
		Uptime:      info.Uptime,
	}}, nil
}

func (p *Provider) FetchWorkloads(ctx context.Context) ([]domain.Workload, error) {
	return nil, nil
}
