package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Casey2134/pulse/internal/domain"
)

func testModel(providers ...domain.Provider) Model {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewModel(providers, time.Second, logger)
}

func TestCollect_AggregatesAcrossProviders(t *testing.T) {
	p1 := &domain.MockProvider{
		NameVal:   "a",
		Nodes:     []domain.Node{{Name: "n1"}},
		Workloads: []domain.Workload{{Name: "w1"}},
	}
	p2 := &domain.MockProvider{
		NameVal:   "b",
		Nodes:     []domain.Node{{Name: "n2"}},
		Workloads: []domain.Workload{{Name: "w2"}},
	}

	msg := collect(context.Background(), []domain.Provider{p1, p2})
	if len(msg.nodes) != 2 || len(msg.workloads) != 2 {
		t.Errorf("got %d nodes, %d workloads, want 2 and 2", len(msg.nodes), len(msg.workloads))
	}
	if len(msg.errs) != 0 {
		t.Errorf("errs = %v, want none", msg.errs)
	}
}

func TestCollect_ContinuesPastFailedProvider(t *testing.T) {
	bad := &domain.MockProvider{
		NameVal:      "bad",
		NodesErr:     errors.New("nodes down"),
		WorkloadsErr: errors.New("workloads down"),
	}
	good := &domain.MockProvider{
		NameVal: "good",
		Nodes:   []domain.Node{{Name: "n1"}},
	}

	msg := collect(context.Background(), []domain.Provider{bad, good})
	if len(msg.nodes) != 1 {
		t.Errorf("good provider's nodes lost: %+v", msg.nodes)
	}
	if len(msg.errs) != 2 {
		t.Errorf("len(errs) = %d, want 2", len(msg.errs))
	}
	if good.FetchNodesCalls != 1 || good.FetchWorkloadsCalls != 1 {
		t.Error("failure of one provider must not skip the next")
	}
}

func TestApplyRefresh_Retention(t *testing.T) {
	tests := []struct {
		name          string
		msg           refreshMsg
		wantNodes     int
		wantWorkloads int
	}{
		{
			name:          "clean result replaces everything",
			msg:           refreshMsg{nodes: []domain.Node{{Name: "new"}}},
			wantNodes:     1,
			wantWorkloads: 0,
		},
		{
			name:          "empty result without errors is trusted",
			msg:           refreshMsg{},
			wantNodes:     0,
			wantWorkloads: 0,
		},
		{
			name:          "empty result with errors keeps stale data",
			msg:           refreshMsg{errs: []error{errors.New("down")}},
			wantNodes:     2,
			wantWorkloads: 1,
		},
		{
			name: "kinds retained independently",
			msg: refreshMsg{
				nodes: []domain.Node{{Name: "new"}},
				errs:  []error{errors.New("workloads down")},
			},
			wantNodes:     1,
			wantWorkloads: 1, // stale workloads survive the node replacement
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel()
			m.nodes = []domain.Node{{Name: "old1"}, {Name: "old2"}}
			m.workloads = []domain.Workload{{Name: "old"}}

			m.applyRefresh(tt.msg)

			if len(m.nodes) != tt.wantNodes {
				t.Errorf("len(nodes) = %d, want %d", len(m.nodes), tt.wantNodes)
			}
			if len(m.workloads) != tt.wantWorkloads {
				t.Errorf("len(workloads) = %d, want %d", len(m.workloads), tt.wantWorkloads)
			}
		})
	}
}

func TestApplyRefresh_LastErrorWins(t *testing.T) {
	m := testModel()
	m.applyRefresh(refreshMsg{errs: []error{
		errors.New("first"),
		errors.New("second"),
	}})
	if m.errMsg != "second" {
		t.Errorf("errMsg = %q, want last error", m.errMsg)
	}

	m.applyRefresh(refreshMsg{nodes: []domain.Node{{Name: "n"}}})
	if m.errMsg != "" {
		t.Errorf("clean refresh must clear errMsg, got %q", m.errMsg)
	}
}

func TestApplyRefresh_StampsEvenOnFailure(t *testing.T) {
	m := testModel()
	if got := m.timeSinceRefresh(); got != "never" {
		t.Errorf("before first refresh = %q, want never", got)
	}

	m.applyRefresh(refreshMsg{errs: []error{errors.New("down")}})
	if m.lastRefresh.IsZero() {
		t.Error("failed refresh must still stamp lastRefresh")
	}
	if got := m.timeSinceRefresh(); got != "0s ago" {
		t.Errorf("timeSinceRefresh = %q", got)
	}
}

func TestApplyRefresh_ClampsSelection(t *testing.T) {
	m := testModel()
	m.nodes = []domain.Node{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	m.nodeIndex = 2

	m.applyRefresh(refreshMsg{nodes: []domain.Node{{Name: "only"}}})
	if m.nodeIndex != 0 {
		t.Errorf("nodeIndex = %d, want clamped to 0", m.nodeIndex)
	}
}

func TestApplyRefresh_SortsNewData(t *testing.T) {
	m := testModel()
	m.sortField = SortName
	m.applyRefresh(refreshMsg{nodes: []domain.Node{{Name: "zeta"}, {Name: "alpha"}}})
	if m.nodes[0].Name != "alpha" {
		t.Errorf("refresh result not sorted: %+v", m.nodes)
	}
}
