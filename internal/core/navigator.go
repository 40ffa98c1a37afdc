package core

import (
	"context"
	"fmt"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"github.com/RecoveryAshes/RosenkaFetch/internal/utils"
)

// Navigator 驱动单个标签页依次经过 都道府县 → 路線価図 → 市区町村 → 地名 四个阶段
// 任一阶段失败即终止, 不重试不回退
type Navigator struct {
	site    models.SiteConfig
	metrics *utils.Metrics
}

// NewNavigator 创建导航器, metrics可以为nil
func NewNavigator(site models.SiteConfig, metrics *utils.Metrics) *Navigator {
	return &Navigator{site: site, metrics: metrics}
}

// Navigate 从顶页开始解析input, 返回选中的地名行与最终状态
// report不为nil时记录每个阶段的选择
func (n *Navigator) Navigate(ctx context.Context, browser models.Browser, input string, report *models.RunReport) (models.PlaceRow, models.ResolutionState, error) {
	state := models.NewResolutionState(input)
	if report == nil {
		report = models.NewRunReport(input)
	}

	utils.Infof("打开顶页: %s", n.site.TopURL)
	tab, err := browser.Open(ctx, n.site.TopURL)
	if err != nil {
		return models.PlaceRow{}, state, fmt.Errorf("打开顶页失败: %w", err)
	}
	defer tab.Close()

	// Start → PrefectureSelected
	prefecture, state, err := n.selectByPrefix(ctx, tab, state, models.StageStart, models.StagePrefectureSelected)
	if err != nil {
		return models.PlaceRow{}, state, err
	}
	utils.Infof("选择都道府县: %s", prefecture.Text)
	n.advance(report, models.StagePrefectureSelected, state)
	report.Prefecture = &prefecture
	if err := n.follow(ctx, tab, prefecture); err != nil {
		return models.PlaceRow{}, state, err
	}

	// PrefectureSelected → CategorySelected, 剩余输入不变
	category, err := n.selectCategory(ctx, tab, state)
	if err != nil {
		return models.PlaceRow{}, state, err
	}
	utils.Infof("选择分类: %s", category.Text)
	n.advance(report, models.StageCategorySelected, state)
	report.Category = &category
	if err := n.follow(ctx, tab, category); err != nil {
		return models.PlaceRow{}, state, err
	}

	// CategorySelected → CitySelected
	city, state, err := n.selectByPrefix(ctx, tab, state, models.StageCategorySelected, models.StageCitySelected)
	if err != nil {
		return models.PlaceRow{}, state, err
	}
	utils.Infof("选择市区町村: %s", city.Text)
	n.advance(report, models.StageCitySelected, state)
	report.City = &city
	if err := n.follow(ctx, tab, city); err != nil {
		return models.PlaceRow{}, state, err
	}

	// CitySelected → PlaceSelected
	rows, err := tab.PlaceRows(ctx)
	if err != nil {
		return models.PlaceRow{}, state, err
	}
	place, state, err := ResolvePlace(state, rows, models.StageCitySelected)
	n.metrics.ObserveStage(models.StagePlaceSelected, err)
	if err != nil {
		return models.PlaceRow{}, state, err
	}
	utils.Infof("选择地名: %s (%d个路線価図)", place.Text, len(place.Links))
	n.advance(report, models.StagePlaceSelected, state)
	report.Place = &place

	return place, state, nil
}

// selectByPrefix 读取当前页锚点并做前缀解析, from为当前状态, to为成功后的状态
func (n *Navigator) selectByPrefix(ctx context.Context, tab models.Tab, state models.ResolutionState, from, to models.Stage) (models.Link, models.ResolutionState, error) {
	links, err := tab.Links(ctx)
	if err != nil {
		return models.Link{}, state, err
	}
	link, next, err := ResolveLink(state, links, from)
	n.metrics.ObserveStage(to, err)
	return link, next, err
}

// selectCategory 选择文字与分类名完全一致的锚点
func (n *Navigator) selectCategory(ctx context.Context, tab models.Tab, state models.ResolutionState) (models.Link, error) {
	links, err := tab.Links(ctx)
	if err != nil {
		return models.Link{}, err
	}
	link, err := SelectExact(state, links, n.site.CategoryLabel, models.StagePrefectureSelected)
	n.metrics.ObserveStage(models.StageCategorySelected, err)
	return link, err
}

func (n *Navigator) follow(ctx context.Context, tab models.Tab, link models.Link) error {
	utils.Infof("进入: %s", link.Link)
	if err := tab.Navigate(ctx, link.Link); err != nil {
		return fmt.Errorf("进入 %s 失败: %w", link.Text, err)
	}
	return nil
}

func (n *Navigator) advance(report *models.RunReport, stage models.Stage, state models.ResolutionState) {
	report.Stage = stage
	report.RemainingInput = state.RemainingInput
	utils.Debugf("状态: %s, 剩余输入: %q", stage, state.RemainingInput)
}
