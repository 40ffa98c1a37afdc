package core

import (
	"errors"
	"testing"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
)

func makeLinks(texts ...string) []models.Link {
	result := make([]models.Link, 0, len(texts))
	for _, text := range texts {
		result = append(result, models.Link{Text: text, Link: "https://example.com/" + text})
	}
	return result
}

func TestResolveLink(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		candidates    []models.Link
		wantText      string
		wantRemaining string
		wantErr       bool
	}{
		{"第一个匹配项胜出", "東京都千代田区", makeLinks("東京", "東京都"), "東京", "都千代田区", false},
		{"跳过非前缀", "東京都千代田区", makeLinks("大阪府", "東京都"), "東京都", "千代田区", false},
		{"全局移除", "千代田区千代田１−１", makeLinks("千代田"), "千代田", "区１−１", false},
		{"空label不匹配", "東京都", makeLinks("", "東京都"), "東京都", "", false},
		{"匹配区分全角半角", "東京都1-1", makeLinks("東京都１"), "", "", true},
		{"带空白的label不匹配", "東京都", makeLinks(" 東京都"), "", "", true},
		{"没有候选项", "東京都", nil, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := models.NewResolutionState(tt.input)
			got, next, err := ResolveLink(state, tt.candidates, models.StageStart)

			if tt.wantErr {
				var noMatch *models.NoMatchError
				if !errors.As(err, &noMatch) {
					t.Fatalf("期望NoMatchError, 得到 %v", err)
				}
				if noMatch.Input != tt.input || noMatch.Stage != models.StageStart {
					t.Errorf("NoMatchError = %+v", noMatch)
				}
				if next != state {
					t.Error("失败时不应改变状态")
				}
				return
			}

			if err != nil {
				t.Fatalf("ResolveLink() error = %v", err)
			}
			if got.Text != tt.wantText {
				t.Errorf("选中 %q, want %q", got.Text, tt.wantText)
			}
			if next.RemainingInput != tt.wantRemaining {
				t.Errorf("剩余输入 %q, want %q", next.RemainingInput, tt.wantRemaining)
			}
			if state.RemainingInput != tt.input {
				t.Error("原状态不应被修改")
			}
		})
	}
}

func TestResolvePlace(t *testing.T) {
	rows := []models.PlaceRow{
		{Text: "丸の内", Links: makeLinks("3")},
		{Text: "千代田", Links: makeLinks("1", "2")},
	}

	got, next, err := ResolvePlace(models.NewResolutionState("千代田１−１"), rows, models.StageCitySelected)
	if err != nil {
		t.Fatalf("ResolvePlace() error = %v", err)
	}
	if got.Text != "千代田" || len(got.Links) != 2 {
		t.Errorf("选中 %+v", got)
	}
	if next.RemainingInput != "１−１" {
		t.Errorf("剩余输入 %q, want １−１", next.RemainingInput)
	}

	if _, _, err := ResolvePlace(models.NewResolutionState("有楽町"), rows, models.StageCitySelected); !errors.Is(err, models.ErrNoMatch) {
		t.Errorf("期望ErrNoMatch, 得到 %v", err)
	}
}

func TestSelectExact(t *testing.T) {
	state := models.NewResolutionState("千代田区")
	candidates := makeLinks("路線価図等", "評価倍率表", "路線価図")

	got, err := SelectExact(state, candidates, models.DefaultCategoryLabel, models.StagePrefectureSelected)
	if err != nil {
		t.Fatalf("SelectExact() error = %v", err)
	}
	if got.Text != "路線価図" {
		t.Errorf("选中 %q, want 完全一致的 路線価図", got.Text)
	}

	_, err = SelectExact(state, makeLinks("路線価図 "), models.DefaultCategoryLabel, models.StagePrefectureSelected)
	var noMatch *models.NoMatchError
	if !errors.As(err, &noMatch) || noMatch.Stage != models.StagePrefectureSelected {
		t.Errorf("期望NoMatchError(prefecture_selected), 得到 %v", err)
	}
}
