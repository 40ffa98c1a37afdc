package models

import (
	"fmt"
	"net/url"
	"strings"
)

// 路线价网站固定参数
const (
	// DefaultTopURL 国税厅路线价图顶页
	DefaultTopURL = "https://www.rosenka.nta.go.jp/"

	// DefaultCategoryLabel 都道府县页面中"路线价图"分类链接的文字(完全一致匹配)
	DefaultCategoryLabel = "路線価図"

	// DefaultTableClass 地名一览表格的class
	DefaultTableClass = "tbl_list"

	// DefaultViewerID PDF查看器元素的id, 其src属性即PDF地址
	DefaultViewerID = "pdfload"

	// DefaultInput 未指定输入时使用的地址
	DefaultInput = "東京都千代田区千代田１−１"
)

// Link 页面上的一个锚点 (文字, 绝对URL)
// Text保留原始文字(可能带前后空白), 不做任何规范化
type Link struct {
	Text string `json:"text"`
	Link string `json:"link"`
}

// PlaceRow 地名一览表中的一行
// Text取自该行最后一个th, Links为每个td中的第一个锚点(按单元格顺序)
type PlaceRow struct {
	Text  string `json:"text"`
	Links []Link `json:"links"`
}

// ResolutionState 在各解析阶段之间传递的状态值
// 每个阶段返回新的值, 不修改旧值
type ResolutionState struct {
	RemainingInput string `json:"remaining_input"`
}

// NewResolutionState 以完整输入创建初始状态
func NewResolutionState(input string) ResolutionState {
	return ResolutionState{RemainingInput: input}
}

// Strip 移除剩余输入中所有出现的label(全局替换, 不仅是前缀)
func (s ResolutionState) Strip(label string) ResolutionState {
	if label == "" {
		return s
	}
	return ResolutionState{RemainingInput: strings.ReplaceAll(s.RemainingInput, label, "")}
}

// Stage 导航状态机的状态
type Stage string

const (
	StageStart              Stage = "start"
	StagePrefectureSelected Stage = "prefecture_selected"
	StageCategorySelected   Stage = "category_selected"
	StageCitySelected       Stage = "city_selected"
	StagePlaceSelected      Stage = "place_selected"
)

// SiteConfig 目标站点的结构标识
type SiteConfig struct {
	TopURL        string `mapstructure:"top_url" json:"top_url"`
	CategoryLabel string `mapstructure:"category_label" json:"category_label"`
	TableClass    string `mapstructure:"table_class" json:"table_class"`
	ViewerID      string `mapstructure:"viewer_id" json:"viewer_id"`
}

// DefaultSiteConfig 返回国税厅站点的默认结构标识
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		TopURL:        DefaultTopURL,
		CategoryLabel: DefaultCategoryLabel,
		TableClass:    DefaultTableClass,
		ViewerID:      DefaultViewerID,
	}
}

// Validate 验证站点配置
// table_class 按单个class匹配, viewer_id 按元素id匹配, 都不能含空白
func (s SiteConfig) Validate() error {
	top, err := url.Parse(s.TopURL)
	if err != nil {
		return &ConfigError{FilePath: "site.top_url", Cause: err}
	}
	if top.Scheme != "http" && top.Scheme != "https" {
		return &ConfigError{FilePath: "site.top_url", Cause: fmt.Errorf("必须是HTTP或HTTPS地址: %s", s.TopURL)}
	}
	if top.Host == "" {
		return &ConfigError{FilePath: "site.top_url", Cause: fmt.Errorf("缺少主机名: %s", s.TopURL)}
	}

	if s.CategoryLabel == "" {
		return &ConfigError{FilePath: "site.category_label", Cause: errEmptyValue}
	}
	if err := validateToken(s.TableClass); err != nil {
		return &ConfigError{FilePath: "site.table_class", Cause: err}
	}
	if err := validateToken(strings.TrimPrefix(s.ViewerID, "#")); err != nil {
		return &ConfigError{FilePath: "site.viewer_id", Cause: err}
	}
	if strings.HasPrefix(s.ViewerID, "#") {
		return &ConfigError{FilePath: "site.viewer_id", Cause: fmt.Errorf("填写id本身, 不带'#': %s", strings.TrimPrefix(s.ViewerID, "#"))}
	}
	return nil
}

func validateToken(v string) error {
	if v == "" {
		return errEmptyValue
	}
	if strings.ContainsAny(v, " \t\r\n") {
		return fmt.Errorf("不能包含空白: %q", v)
	}
	return nil
}
