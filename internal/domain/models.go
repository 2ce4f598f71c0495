package domain

import "fmt"

// NodeStatus is the normalized availability of a host.
type NodeStatus int

const (
	NodeOffline NodeStatus = iota
	NodeOnline
)

func (s NodeStatus) String() string {
	if s == NodeOnline {
		return "Online"
	}
	return "Offline"
}

// NodeStatusFrom maps backend status vocabulary onto NodeStatus.
// Only the exact string "online" is positive; everything else is Offline.
func NodeStatusFrom(s string) NodeStatus {
	if s == "online" {
		return NodeOnline
	}
	return NodeOffline
}

// WorkloadStatus is the normalized run state of a VM or container.
type WorkloadStatus int

const (
	WorkloadStopped WorkloadStatus = iota
	WorkloadRunning
)

func (s WorkloadStatus) String() string {
	if s == WorkloadRunning {
		return "Running"
	}
	return "Stopped"
}

// WorkloadStatusFrom maps backend status vocabulary onto WorkloadStatus.
// Only the exact string "running" is positive; everything else is Stopped.
func WorkloadStatusFrom(s string) WorkloadStatus {
	if s == "running" {
		return WorkloadRunning
	}
	return WorkloadStopped
}

// WorkloadKind distinguishes full VMs from lightweight containers.
type WorkloadKind int

const (
	KindVM WorkloadKind = iota
	KindLXC
)

// Label returns the short display label for the kind.
func (k WorkloadKind) Label() string {
	if k == KindLXC {
		return "LXC"
	}
	return "VM"
}

// Node is a normalized physical or virtual host.
// Values are immutable once constructed; a refresh builds new collections.
type Node struct {
	Name        string
	Status      NodeStatus
	CPUUsage    float64 // percent; may exceed 100 under oversubscription
	MemoryUsed  uint64  // bytes
	MemoryTotal uint64  // bytes
	Uptime      uint64  // seconds, 0 = unknown/offline
}

// MemoryPercent returns used/total*100, or 0 when total is 0.
func (n Node) MemoryPercent() float64 {
	if n.MemoryTotal == 0 {
		return 0
	}
	return float64(n.MemoryUsed) / float64(n.MemoryTotal) * 100
}

// Workload is a normalized VM or container running on a Node.
// The Node field is a name reference; it need not resolve to a fetched Node.
type Workload struct {
	ID         uint32 // backend-assigned, not unique across providers
	Name       string
	Node       string
	Kind       WorkloadKind
	Status     WorkloadStatus
	CPUUsage   float64
	MemoryUsed uint64
	MemoryMax  uint64
	Uptime     uint64
}

// MemoryPercent returns used/max*100, or 0 when max is 0.
func (w Workload) MemoryPercent() float64 {
	if w.MemoryMax == 0 {
		return 0
	}
	return float64(w.MemoryUsed) / float64(w.MemoryMax) * 100
}

// FormatUptime renders seconds as the largest units:
// "-" for 0, then "59m", "23h 59m", "2d 5h 30m".
func FormatUptime(seconds uint64) string {
	if seconds == 0 {
		return "-"
	}

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// FormatBytes renders a byte count with binary (1024-based) units.
// GB and TB keep one decimal; KB and MB round to integers.
func FormatBytes(bytes uint64) string {
	const (
		kb = uint64(1024)
		mb = kb * 1024
		gb = mb * 1024
		tb = gb * 1024
	)

	switch {
	case bytes >= tb:
		return fmt.Sprintf("%.1f TB", float64(bytes)/float64(tb))
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.0f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.0f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
