package system

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// FindLatest ищет в dir самый свежий файл, для которого match возвращает true.
func FindLatest(dir string, match func(name string) bool) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !match(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено подходящих файлов", dir)
	}

	return latestFile, nil
}

type MemoryStats struct {
	ProcessRSS  uint64  // байты
	SystemTotal uint64  // байты
	SystemUsed  float64 // проценты
}

func (m MemoryStats) String() string {
	return fmt.Sprintf("RSS %.1f MB | System %.1f GB (%.0f%% used)",
		float64(m.ProcessRSS)/(1<<20), float64(m.SystemTotal)/(1<<30), m.SystemUsed)
}

// ReadMemoryStats собирает память процесса и системы через gopsutil.
func ReadMemoryStats() (MemoryStats, error) {
	var stats MemoryStats

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return stats, fmt.Errorf("процесс %d: %w", os.Getpid(), err)
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return stats, fmt.Errorf("память процесса: %w", err)
	}
	stats.ProcessRSS = info.RSS

	vm, err := mem.VirtualMemory()
	if err != nil {
		return stats, fmt.Errorf("память системы: %w", err)
	}
	stats.SystemTotal = vm.Total
	stats.SystemUsed = vm.UsedPercent

	return stats, nil
}
