package resourcegate

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// MemoryMonitor probes system memory availability before memory-hungry work
// (embedding batches). It reads /proc/meminfo where present and degrades to
// a no-op elsewhere: memory pressure produces warnings and smaller batches,
// never failures.
type MemoryMonitor struct {
	LimitMB int

	// meminfoPath is overridable for tests.
	meminfoPath string
}

// NewMemoryMonitor builds a monitor with the configured embedding memory
// budget in MB. A zero or negative limit disables pressure checks.
func NewMemoryMonitor(limitMB int) *MemoryMonitor {
	return &MemoryMonitor{LimitMB: limitMB, meminfoPath: "/proc/meminfo"}
}

// AvailableMB reports the system's available memory in MB. ok is false on
// platforms without /proc/meminfo, in which case callers should assume
// memory is plentiful.
func (m *MemoryMonitor) AvailableMB() (int, bool) {
	if m == nil {
		return 0, false
	}
	file, err := os.Open(m.meminfoPath)
	if err != nil {
		return 0, false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemAvailable:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, false
		}
		kb, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return 0, false
		}
		return int(kb / 1024), true
	}
	return 0, false
}

// UnderPressure reports whether available memory has dropped below the
// configured embedding budget.
func (m *MemoryMonitor) UnderPressure() bool {
	if m == nil || m.LimitMB <= 0 {
		return false
	}
	available, ok := m.AvailableMB()
	if !ok {
		return false
	}
	return available < m.LimitMB
}

// ClampBatchSize halves the requested embedding batch size under memory
// pressure, bottoming out at 4. The model itself stays resident; only batch
// granularity shrinks.
func (m *MemoryMonitor) ClampBatchSize(requested int) int {
	if requested < 1 {
		requested = 1
	}
	if !m.UnderPressure() {
		return requested
	}
	clamped := requested / 2
	if clamped < 4 {
		clamped = 4
	}
	if clamped > requested {
		clamped = requested
	}
	return clamped
}
