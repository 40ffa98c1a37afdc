package core

import (
	"strings"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
)

// resolvePrefix 返回第一个label非空且为剩余输入前缀的候选项
// 匹配区分大小写与全角半角, 不做任何规范化; 命中后从剩余输入中移除该label的所有出现
func resolvePrefix[T any](state models.ResolutionState, candidates []T, label func(T) string, stage models.Stage) (T, models.ResolutionState, error) {
	for _, c := range candidates {
		text := label(c)
		if text != "" && strings.HasPrefix(state.RemainingInput, text) {
			return c, state.Strip(text), nil
		}
	}

	var zero T
	return zero, state, &models.NoMatchError{
		Stage:      stage,
		Input:      state.RemainingInput,
		Candidates: len(candidates),
	}
}

// ResolveLink 在锚点中做前缀解析(都道府县, 市区町村)
func ResolveLink(state models.ResolutionState, links []models.Link, stage models.Stage) (models.Link, models.ResolutionState, error) {
	return resolvePrefix(state, links, func(l models.Link) string { return l.Text }, stage)
}

// ResolvePlace 在地名一览中做前缀解析
func ResolvePlace(state models.ResolutionState, rows []models.PlaceRow, stage models.Stage) (models.PlaceRow, models.ResolutionState, error) {
	return resolvePrefix(state, rows, func(r models.PlaceRow) string { return r.Text }, stage)
}

// SelectExact 返回第一个文字与label完全一致的锚点, 不改变剩余输入
func SelectExact(state models.ResolutionState, links []models.Link, label string, stage models.Stage) (models.Link, error) {
	for _, l := range links {
		if l.Text == label {
			return l, nil
		}
	}
	return models.Link{}, &models.NoMatchError{
		Stage:      stage,
		Input:      state.RemainingInput,
		Candidates: len(links),
	}
}
