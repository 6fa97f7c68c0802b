package resourcegate

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func monitorWithMeminfo(t *testing.T, availableKB int64, limitMB int) *MemoryMonitor {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meminfo")
	content := fmt.Sprintf("MemTotal:       16000000 kB\nMemFree:         1000000 kB\nMemAvailable:    %d kB\n", availableKB)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write meminfo: %v", err)
	}
	m := NewMemoryMonitor(limitMB)
	m.meminfoPath = path
	return m
}

func TestMemoryMonitorReadsAvailable(t *testing.T) {
	m := monitorWithMeminfo(t, 4096*1024, 2048)
	available, ok := m.AvailableMB()
	if !ok {
		t.Fatal("expected a reading")
	}
	if available != 4096 {
		t.Errorf("available = %d MB, want 4096", available)
	}
	if m.UnderPressure() {
		t.Error("4096 MB available should not be under a 2048 MB budget")
	}
}

func TestMemoryMonitorClampsBatchUnderPressure(t *testing.T) {
	m := monitorWithMeminfo(t, 512*1024, 2048)
	if !m.UnderPressure() {
		t.Fatal("512 MB available should be under a 2048 MB budget")
	}
	if got := m.ClampBatchSize(32); got != 16 {
		t.Errorf("ClampBatchSize(32) = %d, want 16", got)
	}
	if got := m.ClampBatchSize(6); got != 4 {
		t.Errorf("ClampBatchSize(6) = %d, want 4", got)
	}
	if got := m.ClampBatchSize(2); got != 2 {
		t.Errorf("ClampBatchSize(2) = %d, want 2 (never above requested)", got)
	}
}

func TestMemoryMonitorDegradesWithoutMeminfo(t *testing.T) {
	m := NewMemoryMonitor(2048)
	m.meminfoPath = filepath.Join(t.TempDir(), "missing")
	if _, ok := m.AvailableMB(); ok {
		t.Error("expected no reading without meminfo")
	}
	if m.UnderPressure() {
		t.Error("missing meminfo must never report pressure")
	}
	if got := m.ClampBatchSize(32); got != 32 {
		t.Errorf("ClampBatchSize(32) = %d, want unchanged", got)
	}
}
