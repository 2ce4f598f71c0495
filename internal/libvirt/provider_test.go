package libvirt

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Casey2134/pulse/internal/config"
	"github.com/Casey2134/pulse/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_ParsesURI(t *testing.T) {
	p, err := New(config.LibvirtConfig{Name: "kvm1", URI: "qemu+tcp://10.0.0.5:16510/system"}, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.addr != "10.0.0.5" || p.port != "16510" {
		t.Errorf("addr:port = %s:%s", p.addr, p.port)
	}
	if p.Name() != "kvm1" {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestNew_DefaultsPortAndName(t *testing.T) {
	p, err := New(config.LibvirtConfig{URI: "qemu+tcp://kvmhost/system"}, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.port != defaultPort {
		t.Errorf("port = %q, want %q", p.port, defaultPort)
	}
	if p.Name() != "kvmhost" {
		t.Errorf("Name() = %q, want host fallback", p.Name())
	}
}

func TestNew_RejectsHostlessURI(t *testing.T) {
	if _, err := New(config.LibvirtConfig{URI: "qemu:///system"}, testLogger()); err == nil {
		t.Error("uri without host should be rejected")
	}
}

func TestDomainStateString(t *testing.T) {
	if domainStateString(1) != "running" {
		t.Errorf("state 1 = %q", domainStateString(1))
	}
	// Everything that is not running must normalize to Stopped.
	for state := uint8(0); state < 10; state++ {
		if state == 1 {
			continue
		}
		if got := domain.WorkloadStatusFrom(domainStateString(state)); got != domain.WorkloadStopped {
			t.Errorf("state %d normalized to %v, want Stopped", state, got)
		}
	}
}

func TestDomainCPU_FirstSampleIsZero(t *testing.T) {
	p, _ := New(config.LibvirtConfig{URI: "qemu+tcp://h/system"}, testLogger())
	now := time.Now()

	if got := p.domainCPU("vm1", 1_000_000_000, now); got != 0 {
		t.Errorf("first sample = %v, want 0", got)
	}

	// 500ms of cpu time over 1s on one core = 50%.
	got := p.domainCPU("vm1", 1_500_000_000, now.Add(time.Second))
	if got < 49.9 || got > 50.1 {
		t.Errorf("second sample = %v, want ~50", got)
	}
}

func TestDomainCPU_CounterResetYieldsZero(t *testing.T) {
	p, _ := New(config.LibvirtConfig{URI: "qemu+tcp://h/system"}, testLogger())
	now := time.Now()
	p.domainCPU("vm1", 5_000_000_000, now)
	if got := p.domainCPU("vm1", 1_000_000_000, now.Add(time.Second)); got != 0 {
		t.Errorf("after counter reset = %v, want 0", got)
	}
}
