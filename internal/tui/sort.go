package tui

import (
	"sort"
	"strings"

	"github.com/Casey2134/pulse/internal/domain"
)

// SortField identifies the column both panels sort on. One field applies
// to nodes and workloads at the same time.
type SortField int

const (
	SortName SortField = iota
	SortStatus
	SortCPU
	SortMemory
)

// Next returns the following field in the fixed cycle
// Name → Status → CPU → Memory → Name.
func (f SortField) Next() SortField {
	switch f {
	case SortName:
		return SortStatus
	case SortStatus:
		return SortCPU
	case SortCPU:
		return SortMemory
	default:
		return SortName
	}
}

// Label returns a display label for the field.
func (f SortField) Label() string {
	switch f {
	case SortName:
		return "Name"
	case SortStatus:
		return "Status"
	case SortCPU:
		return "CPU"
	case SortMemory:
		return "Memory"
	default:
		return ""
	}
}

// SortIndicator renders the field label with its direction arrow.
func SortIndicator(field SortField, ascending bool) string {
	if ascending {
		return field.Label() + " ▲"
	}
	return field.Label() + " ▼"
}

// SortNodes stable-sorts nodes in place. Descending order swaps the
// comparator operands instead of negating the result, so ties keep
// their relative order in both directions and toggling twice restores
// the original arrangement.
func SortNodes(nodes []domain.Node, field SortField, ascending bool) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if !ascending {
			a, b = b, a
		}
		switch field {
		case SortStatus:
			// Online first when ascending.
			return a.Status == domain.NodeOnline && b.Status != domain.NodeOnline
		case SortCPU:
			return a.CPUUsage < b.CPUUsage
		case SortMemory:
			return a.MemoryPercent() < b.MemoryPercent()
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	})
}

// SortWorkloads stable-sorts workloads in place, mirroring SortNodes.
func SortWorkloads(workloads []domain.Workload, field SortField, ascending bool) {
	sort.SliceStable(workloads, func(i, j int) bool {
		a, b := workloads[i], workloads[j]
		if !ascending {
			a, b = b, a
		}
		switch field {
		case SortStatus:
			return a.Status == domain.WorkloadRunning && b.Status != domain.WorkloadRunning
		case SortCPU:
			return a.CPUUsage < b.CPUUsage
		case SortMemory:
			return a.MemoryPercent() < b.MemoryPercent()
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	})
}
