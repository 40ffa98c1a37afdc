package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RunStatus 一次检索的结果状态
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"   // 执行中
	RunStatusCompleted RunStatus = "completed" // 全部下载成功
	RunStatusPartial   RunStatus = "partial"   // 部分下载失败
	RunStatusFailed    RunStatus = "failed"    // 导航或解析失败
)

// DownloadResult 单个PDF的下载结果
type DownloadResult struct {
	Label      string    `json:"label"`                 // 链接文字(即文件名)
	PageURL    string    `json:"page_url"`              // 查看器页面地址
	SourceURL  string    `json:"source_url,omitempty"`  // PDF实际地址
	FilePath   string    `json:"file_path,omitempty"`   // 本地文件路径
	Size       int64     `json:"size"`                  // 写入字节数
	StatusCode int       `json:"status_code,omitempty"` // HTTP状态码
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// Succeeded 是否下载成功
func (r DownloadResult) Succeeded() bool {
	return r.Error == ""
}

// RunReport 一次检索的完整记录
type RunReport struct {
	ID             string    `json:"id"`
	Input          string    `json:"input"`
	RemainingInput string    `json:"remaining_input"`
	Stage          Stage     `json:"stage"` // 到达的最后状态
	Status         RunStatus `json:"status"`

	Prefecture *Link     `json:"prefecture,omitempty"`
	Category   *Link     `json:"category,omitempty"`
	City       *Link     `json:"city,omitempty"`
	Place      *PlaceRow `json:"place,omitempty"`

	OutputDir string           `json:"output_dir,omitempty"` // 本次检索实际写入的目录
	Downloads []DownloadResult `json:"downloads"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // 秒

	ErrorMessage string `json:"error_message,omitempty"`
}

// NewRunReport 创建新的检索记录
func NewRunReport(input string) *RunReport {
	return &RunReport{
		ID:             uuid.NewString(),
		Input:          input,
		RemainingInput: input,
		Stage:          StageStart,
		Status:         RunStatusRunning,
		Downloads:      make([]DownloadResult, 0),
		StartTime:      time.Now(),
	}
}

// Finish 记录结束时间并根据结果设置状态
func (r *RunReport) Finish(err error) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime).Seconds()

	switch {
	case err != nil && r.Stage != StagePlaceSelected:
		r.Status = RunStatusFailed
	case err != nil || r.FailedCount() > 0:
		r.Status = RunStatusPartial
	default:
		r.Status = RunStatusCompleted
	}
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// SucceededCount 成功下载数
func (r *RunReport) SucceededCount() int {
	n := 0
	for _, d := range r.Downloads {
		if d.Succeeded() {
			n++
		}
	}
	return n
}

// FailedCount 失败下载数
func (r *RunReport) FailedCount() int {
	return len(r.Downloads) - r.SucceededCount()
}

// TotalSize 写入磁盘的总字节数
func (r *RunReport) TotalSize() int64 {
	var total int64
	for _, d := range r.Downloads {
		total += d.Size
	}
	return total
}

// ToJSON 序列化为JSON
func (r *RunReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *RunReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
