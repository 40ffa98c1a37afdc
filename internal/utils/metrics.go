package utils

import (
	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "rosenka"

// Metrics 单次运行的指标, 运行结束后以textfile格式导出
// (供 node_exporter textfile collector 采集)
// 所有方法在接收者为nil时为空操作
type Metrics struct {
	registry *prometheus.Registry

	stageResolutions *prometheus.CounterVec
	downloads        *prometheus.CounterVec
	downloadBytes    prometheus.Counter
	runDuration      prometheus.Gauge
	lastRunSuccess   prometheus.Gauge
	lastRunTimestamp prometheus.Gauge
}

// NewMetrics 创建并注册指标
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stageResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stage_resolutions_total",
			Help:      "Address resolution attempts per navigation stage.",
		}, []string{"stage", "result"}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "downloads_total",
			Help:      "PDF downloads by result.",
		}, []string{"result"}),
		downloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "download_bytes_total",
			Help:      "Bytes written to disk by downloads.",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the last run.",
		}),
		lastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_success",
			Help:      "1 if the last run downloaded every file, 0 otherwise.",
		}),
		lastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}

	m.registry.MustRegister(
		m.stageResolutions,
		m.downloads,
		m.downloadBytes,
		m.runDuration,
		m.lastRunSuccess,
		m.lastRunTimestamp,
	)
	return m
}

// ObserveStage 记录一次阶段解析结果
func (m *Metrics) ObserveStage(stage models.Stage, err error) {
	if m == nil {
		return
	}
	result := "matched"
	if err != nil {
		result = "failed"
	}
	m.stageResolutions.WithLabelValues(string(stage), result).Inc()
}

// ObserveDownload 记录一次下载结果
func (m *Metrics) ObserveDownload(res models.DownloadResult) {
	if m == nil {
		return
	}
	if res.Succeeded() {
		m.downloads.WithLabelValues("success").Inc()
	} else {
		m.downloads.WithLabelValues("failure").Inc()
	}
	m.downloadBytes.Add(float64(res.Size))
}

// ObserveRun 记录整次运行的结果
func (m *Metrics) ObserveRun(report *models.RunReport) {
	if m == nil || report == nil {
		return
	}
	m.runDuration.Set(report.Duration)
	if report.Status == models.RunStatusCompleted {
		m.lastRunSuccess.Set(1)
	} else {
		m.lastRunSuccess.Set(0)
	}
	m.lastRunTimestamp.Set(float64(report.EndTime.Unix()))
}

// WriteToFile 以Prometheus文本格式写入文件, path为空时不写
func (m *Metrics) WriteToFile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return err
	}
	Debugf("指标已写入: %s", path)
	return nil
}
