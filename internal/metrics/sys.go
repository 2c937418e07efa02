package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// SysHealth represents real-time system metrics.
type SysHealth struct {
	AllocMB    uint64
	SysMB      uint64
	NumGC      uint32
	Goroutines int
	// DataBytes is the size of the database file plus its WAL and journal.
	DataBytes int64
}

// GetSysHealth collects real-time health data. dbPath is the SQLite database
// file; sidecar files next to it are counted too.
func GetSysHealth(dbPath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SysHealth{
		AllocMB:    m.Alloc / 1024 / 1024,
		SysMB:      m.Sys / 1024 / 1024,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
		DataBytes:  databaseSize(dbPath),
	}
}

// String renders the snapshot for chat and CLI output.
func (h SysHealth) String() string {
	return fmt.Sprintf("Memory: %d MB allocated, %d MB from OS\nGC runs: %d\nGoroutines: %d\nDatabase: %s",
		h.AllocMB, h.SysMB, h.NumGC, h.Goroutines, HumanBytes(h.DataBytes))
}

func databaseSize(dbPath string) int64 {
	if dbPath == "" {
		return 0
	}
	matches, _ := filepath.Glob(dbPath + "*")
	var size int64
	for _, p := range matches {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			size += info.Size()
		}
	}
	return size
}

// HumanBytes formats a byte count with a binary unit suffix.
func HumanBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
