package models

import (
	"errors"
	"fmt"
)

// 哨兵错误, 用于 errors.Is 判断错误类别
var (
	ErrExtraction = errors.New("页面结构不符合预期")
	ErrNoMatch    = errors.New("没有匹配的候选项")
	ErrDownload   = errors.New("下载失败")

	errEmptyValue = errors.New("值不能为空")
)

// ExtractionError 已加载页面中找不到预期的DOM结构(锚点/表格/查看器元素)
type ExtractionError struct {
	URL    string // 页面地址
	Target string // 期望的结构, 如 "a", "table.tbl_list", "#pdfload"
	Reason string
}

// Error 实现error接口
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("提取失败 [%s] %s: %s", e.URL, e.Target, e.Reason)
}

// Is 支持 errors.Is(err, ErrExtraction)
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

// NoMatchError 没有候选项的label是剩余输入的前缀(分类阶段为完全一致)
type NoMatchError struct {
	Stage      Stage  // 失败时所处的状态
	Input      string // 当时的剩余输入
	Candidates int    // 候选项数量
}

// Error 实现error接口
func (e *NoMatchError) Error() string {
	return fmt.Sprintf("阶段 %s 无匹配项: 输入=%q, 候选数=%d", e.Stage, e.Input, e.Candidates)
}

// Is 支持 errors.Is(err, ErrNoMatch)
func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoMatch
}

// DownloadError 下载过程中的网络层错误
// 默认不包含HTTP错误状态码(非2xx响应体照常写入磁盘)
type DownloadError struct {
	URL        string
	StatusCode int // 仅在启用状态码校验时设置
	Cause      error
}

// Error 实现error接口
func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("下载失败 [%s]: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("下载失败 [%s]: %v", e.URL, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *DownloadError) Unwrap() error {
	return e.Cause
}

// Is 支持 errors.Is(err, ErrDownload)
func (e *DownloadError) Is(target error) bool {
	return target == ErrDownload
}

// ValidationError 头部验证错误
type ValidationError struct {
	// Field 出错的字段 ("name" 或 "value")
	Field string

	// HeaderName 头部名称
	HeaderName string

	// Reason 错误原因
	Reason string

	// Suggestion 修复建议 (可选)
	Suggestion string
}

// Error 实现error接口
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("头部验证失败 [%s]: %s", e.HeaderName, e.Reason)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (建议: %s)", e.Suggestion)
	}
	return msg
}

// ConfigError 配置错误
type ConfigError struct {
	// FilePath 配置文件路径或配置键
	FilePath string

	// Cause 底层错误
	Cause error
}

// Error 实现error接口
func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置错误 [%s]: %v", e.FilePath, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
