package core

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/RecoveryAshes/RosenkaFetch/internal/testsite"
)

func TestBatchFinder(t *testing.T) {
	inputs := []string{"沖縄県那覇市", "東京都千代田区千代田１−１"}

	tests := []struct {
		name          string
		continueOnErr bool
		wantResults   int
		wantSuccess   int
		wantFiles     int
	}{
		{"遇错停止", false, 1, 0, 0},
		{"遇错继续", true, 2, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := testsite.New(t)
			finder, _ := newStaticFinder(t, site)

			summary := NewBatchFinder(finder, 0, tt.continueOnErr).FindBatch(context.Background(), inputs)
			if len(summary.Results) != tt.wantResults {
				t.Errorf("处理了 %d 个地址, want %d", len(summary.Results), tt.wantResults)
			}
			if summary.SuccessCount != tt.wantSuccess {
				t.Errorf("成功 %d, want %d", summary.SuccessCount, tt.wantSuccess)
			}
			if summary.TotalFiles != tt.wantFiles {
				t.Errorf("文件数 %d, want %d", summary.TotalFiles, tt.wantFiles)
			}
			if summary.TotalInputs != len(inputs) {
				t.Errorf("TotalInputs = %d", summary.TotalInputs)
			}
		})
	}
}

func TestBatchFinder_Canceled(t *testing.T) {
	site := testsite.New(t)
	finder, _ := newStaticFinder(t, site)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := NewBatchFinder(finder, 0, true).FindBatch(ctx, []string{"東京都", "大阪府"})
	if len(summary.Results) != 0 {
		t.Errorf("取消后不应处理地址, 处理了 %d 个", len(summary.Results))
	}
	if len(site.Hits()) != 0 {
		t.Error("取消后不应访问站点")
	}
}

func TestBatchFinder_SameLabelNotOverwritten(t *testing.T) {
	site := testsite.New(t)
	finder, dir := newStaticFinder(t, site)

	// 千代田与銀座都有图号"1"
	inputs := []string{"東京都千代田区千代田１−１", "東京都中央区銀座１"}
	summary := NewBatchFinder(finder, 0, false).FindBatch(context.Background(), inputs)
	if summary.SuccessCount != 2 || summary.TotalFiles != 3 {
		t.Fatalf("成功 %d, 文件数 %d, want 2, 3", summary.SuccessCount, summary.TotalFiles)
	}

	want := []string{"1", "ginza-1"}
	for i, result := range summary.Results {
		report := result.Report
		wantDir := filepath.Join(dir, "output", report.ID)
		if report.OutputDir != wantDir {
			t.Errorf("%s: OutputDir = %s, want %s", result.Input, report.OutputDir, wantDir)
		}

		path := filepath.Join(wantDir, "1.pdf")
		if report.Downloads[0].FilePath != path {
			t.Errorf("%s: FilePath = %s, want %s", result.Input, report.Downloads[0].FilePath, path)
		}
		if got := readFile(t, path); got != string(testsite.PDFs[want[i]]) {
			t.Errorf("%s: 1.pdf 内容 %q, want %q", result.Input, got, testsite.PDFs[want[i]])
		}
	}
}
