package crawlers

import (
	"runtime"
	"time"

	"github.com/RecoveryAshes/RosenkaFetch/internal/utils"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceMonitorConfig 资源监控器配置
type ResourceMonitorConfig struct {
	SafetyReserveMemory int64 // 安全保留内存(字节)
	CPULoadThreshold    int   // CPU负载阈值(%), 超过时上限减半
	MaxTabsLimit        int   // 绝对最大标签页数
	TabMemoryUsage      int64 // 单个标签页平均内存消耗(字节)
}

// DefaultResourceMonitorConfig 默认配置
func DefaultResourceMonitorConfig() ResourceMonitorConfig {
	return ResourceMonitorConfig{
		SafetyReserveMemory: 1 << 30,   // 1GB
		CPULoadThreshold:    80,        // 80%
		MaxTabsLimit:        16,        // 16个标签页
		TabMemoryUsage:      100 << 20, // 100MB per tab
	}
}

// ResourceMonitor 根据系统可用内存与CPU负载计算下载阶段的标签页上限
type ResourceMonitor struct {
	config ResourceMonitorConfig

	availableMemory func() (uint64, error)
	cpuPercent      func() (float64, error)
	numCPU          int
}

// NewResourceMonitor 创建资源监控器
func NewResourceMonitor(config ResourceMonitorConfig) *ResourceMonitor {
	defaults := DefaultResourceMonitorConfig()
	if config.TabMemoryUsage <= 0 {
		config.TabMemoryUsage = defaults.TabMemoryUsage
	}
	if config.MaxTabsLimit <= 0 {
		config.MaxTabsLimit = defaults.MaxTabsLimit
	}

	return &ResourceMonitor{
		config: config,
		availableMemory: func() (uint64, error) {
			vm, err := mem.VirtualMemory()
			if err != nil {
				return 0, err
			}
			return vm.Available, nil
		},
		cpuPercent: func() (float64, error) {
			p, err := cpu.Percent(100*time.Millisecond, false)
			if err != nil || len(p) == 0 {
				return 0, err
			}
			return p[0], nil
		},
		numCPU: runtime.NumCPU(),
	}
}

// CalculateMaxTabs 计算标签页上限, 结果至少为1
func (rm *ResourceMonitor) CalculateMaxTabs() int {
	byMemory := rm.config.MaxTabsLimit
	available, err := rm.availableMemory()
	if err != nil {
		utils.Warnf("获取系统内存失败, 使用上限 %d: %v", rm.config.MaxTabsLimit, err)
	} else {
		surplus := int64(available) - rm.config.SafetyReserveMemory
		byMemory = int(surplus / rm.config.TabMemoryUsage)
	}

	result := byMemory
	if rm.numCPU > 0 && rm.numCPU*2 < result {
		result = rm.numCPU * 2
	}
	if rm.config.MaxTabsLimit < result {
		result = rm.config.MaxTabsLimit
	}

	if rm.config.CPULoadThreshold > 0 {
		if usage, err := rm.cpuPercent(); err == nil && usage > float64(rm.config.CPULoadThreshold) {
			utils.Debugf("CPU负载 %.1f%% 超过阈值, 标签页上限减半", usage)
			result /= 2
		}
	}

	if result < 1 {
		result = 1
	}
	utils.Debugf("自适应标签页上限: %d (可用内存 %.2f GB)", result, float64(available)/(1<<30))
	return result
}
