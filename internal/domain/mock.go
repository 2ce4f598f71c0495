package domain

import "context"

// MockProvider implements Provider for testing.
type MockProvider struct {
	NameVal   string
	Nodes     []Node
	Workloads []Workload

	// Error injection
	NodesErr     error
	WorkloadsErr error

	// Call tracking
	FetchNodesCalls     int
	FetchWorkloadsCalls int
}

// Compile-time check.
var _ Provider = (*MockProvider)(nil)

func (m *MockProvider) Name() string { return m.NameVal }

func (m *MockProvider) FetchNodes(_ context.Context) ([]Node, error) {
	m.FetchNodesCalls++
	if m.NodesErr != nil {
		return nil, m.NodesErr
	}
	return m.Nodes, nil
}

func (m *MockProvider) FetchWorkloads(_ context.Context) ([]Workload, error) {
	m.FetchWorkloadsCalls++
	if m.WorkloadsErr != nil {
		return nil, m.WorkloadsErr
	}
	return m.Workloads, nil
}
