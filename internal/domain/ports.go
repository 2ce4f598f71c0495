package domain

import "context"

// Provider is a backend adapter normalizing a virtualization host's API
// into Nodes and Workloads. Each fetch is independently fallible: a node
// fetch failure must not prevent a workload fetch attempt, and vice versa.
// The TUI depends on this interface, not on concrete implementations.
type Provider interface {
	// Name identifies the backend for error attribution.
	Name() string
	FetchNodes(ctx context.Context) ([]Node, error)
	FetchWorkloads(ctx context.Context) ([]Workload, error)
}
