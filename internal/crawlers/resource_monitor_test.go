package crawlers

import (
	"errors"
	"testing"
)

func newTestMonitor(available uint64, memErr error, cpuUsage float64, numCPU int) *ResourceMonitor {
	rm := NewResourceMonitor(ResourceMonitorConfig{
		SafetyReserveMemory: 1 << 30,
		CPULoadThreshold:    80,
		MaxTabsLimit:        16,
		TabMemoryUsage:      100 << 20,
	})
	rm.availableMemory = func() (uint64, error) { return available, memErr }
	rm.cpuPercent = func() (float64, error) { return cpuUsage, nil }
	rm.numCPU = numCPU
	return rm
}

func TestCalculateMaxTabs(t *testing.T) {
	tests := []struct {
		name      string
		available uint64
		memErr    error
		cpuUsage  float64
		numCPU    int
		want      int
	}{
		{"内存充足-受上限约束", 64 << 30, nil, 10, 32, 16},
		{"内存充足-受CPU约束", 64 << 30, nil, 10, 4, 8},
		{"内存有限", (1 << 30) + 500<<20, nil, 10, 32, 5},
		{"内存不足-至少1个", 512 << 20, nil, 10, 32, 1},
		{"CPU高负载-减半", 64 << 30, nil, 95, 32, 8},
		{"获取内存失败-使用上限", 0, errors.New("boom"), 10, 32, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm := newTestMonitor(tt.available, tt.memErr, tt.cpuUsage, tt.numCPU)
			if got := rm.CalculateMaxTabs(); got != tt.want {
				t.Errorf("CalculateMaxTabs() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewResourceMonitor_Defaults(t *testing.T) {
	rm := NewResourceMonitor(ResourceMonitorConfig{})
	if rm.config.MaxTabsLimit != 16 || rm.config.TabMemoryUsage != 100<<20 {
		t.Errorf("未应用默认值: %+v", rm.config)
	}
}
