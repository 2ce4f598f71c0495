package domain

import "testing"

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		seconds uint64
		want    string
	}{
		{0, "-"},
		{59, "0m"},
		{60, "1m"},
		{300, "5m"},
		{3540, "59m"},
		{3600, "1h 0m"},
		{3660, "1h 1m"},
		{86399, "23h 59m"},
		{86400, "1d 0h 0m"},
		{90000, "1d 1h 0m"},
		{192600, "2d 5h 30m"},
	}
	for _, tt := range tests {
		if got := FormatUptime(tt.seconds); got != tt.want {
			t.Errorf("FormatUptime(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1 KB"},
		{2048, "2 KB"},
		{1048575, "1024 KB"},
		{1048576, "1 MB"},
		{536870912, "512 MB"},
		{1073741824, "1.0 GB"},
		{8589934592, "8.0 GB"},
		{1099511627776, "1.0 TB"},
		{2199023255552, "2.0 TB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.bytes); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestNodeMemoryPercent(t *testing.T) {
	n := Node{MemoryUsed: 512, MemoryTotal: 1024}
	if got := n.MemoryPercent(); got != 50.0 {
		t.Errorf("MemoryPercent() = %v, want 50.0", got)
	}
}

func TestNodeMemoryPercent_ZeroTotal(t *testing.T) {
	n := Node{MemoryUsed: 512, MemoryTotal: 0}
	if got := n.MemoryPercent(); got != 0.0 {
		t.Errorf("MemoryPercent() = %v, want 0.0", got)
	}
}

func TestWorkloadMemoryPercent(t *testing.T) {
	w := Workload{MemoryUsed: 256, MemoryMax: 1024}
	if got := w.MemoryPercent(); got != 25.0 {
		t.Errorf("MemoryPercent() = %v, want 25.0", got)
	}
}

func TestWorkloadMemoryPercent_ZeroMax(t *testing.T) {
	w := Workload{MemoryUsed: 256, MemoryMax: 0}
	if got := w.MemoryPercent(); got != 0.0 {
		t.Errorf("MemoryPercent() = %v, want 0.0", got)
	}
}

func TestStatusMapping(t *testing.T) {
	if NodeStatusFrom("online") != NodeOnline {
		t.Error(`"online" should map to NodeOnline`)
	}
	for _, s := range []string{"offline", "unknown", "ONLINE", ""} {
		if NodeStatusFrom(s) != NodeOffline {
			t.Errorf("NodeStatusFrom(%q) should be NodeOffline", s)
		}
	}

	if WorkloadStatusFrom("running") != WorkloadRunning {
		t.Error(`"running" should map to WorkloadRunning`)
	}
	for _, s := range []string{"stopped", "paused", "Running", ""} {
		if WorkloadStatusFrom(s) != WorkloadStopped {
			t.Errorf("WorkloadStatusFrom(%q) should be WorkloadStopped", s)
		}
	}
}

func TestWorkloadKindLabel(t *testing.T) {
	if KindVM.Label() != "VM" {
		t.Errorf("KindVM label = %q", KindVM.Label())
	}
	if KindLXC.Label() != "LXC" {
		t.Errorf("KindLXC label = %q", KindLXC.Label())
	}
}
