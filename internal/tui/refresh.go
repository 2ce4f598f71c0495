package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Casey2134/pulse/internal/domain"
)

// --- Messages ---

type tickMsg time.Time

// refreshMsg carries the aggregated result of one polling pass.
type refreshMsg struct {
	nodes     []domain.Node
	workloads []domain.Workload
	errs      []error
}

func scheduleTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func refreshCmd(providers []domain.Provider) tea.Cmd {
	return func() tea.Msg {
		return collect(context.Background(), providers)
	}
}

// collect polls every provider in order, one entity kind at a time,
// accumulating whatever succeeds. A failed fetch contributes its error
// and nothing else; the pass always visits every provider.
func collect(ctx context.Context, providers []domain.Provider) refreshMsg {
	var msg refreshMsg
	for _, p := range providers {
		nodes, err := p.FetchNodes(ctx)
		if err != nil {
			msg.errs = append(msg.errs, err)
		} else {
			msg.nodes = append(msg.nodes, nodes...)
		}

		workloads, err := p.FetchWorkloads(ctx)
		if err != nil {
			msg.errs = append(msg.errs, err)
		} else {
			msg.workloads = append(msg.workloads, workloads...)
		}
	}
	return msg
}

// applyRefresh merges a polling result into the model.
//
// Stale retention: an empty collection is only trusted when the pass had
// no errors. "Nothing there" and "everything failed" both arrive as an
// empty slice; the error list tells them apart. Nodes and workloads are
// judged independently, so a dead workload endpoint cannot blank the
// node panel.
func (m *Model) applyRefresh(msg refreshMsg) {
	hadError := len(msg.errs) > 0

	if len(msg.nodes) > 0 || !hadError {
		m.nodes = msg.nodes
	}
	if len(msg.workloads) > 0 || !hadError {
		m.workloads = msg.workloads
	}

	if hadError {
		// Last error wins the status bar; the full list goes to the log.
		m.errMsg = msg.errs[len(msg.errs)-1].Error()
		for _, err := range msg.errs {
			m.logger.Warn("refresh error", "error", err)
		}
	} else {
		m.errMsg = ""
	}

	m.lastRefresh = time.Now()
	m.applySort()
	m.clampSelection()
}
