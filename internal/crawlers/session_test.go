package crawlers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
)

type countingTab struct {
	models.Tab
	mu     *sync.Mutex
	closes *int
}

func (t *countingTab) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	*t.closes++
	return nil
}

type countingBrowser struct {
	mu        sync.Mutex
	tabCloses int
	closes    int
	openErr   error
	closeErr  error
}

func (b *countingBrowser) Open(ctx context.Context, url string) (models.Tab, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	return &countingTab{mu: &b.mu, closes: &b.tabCloses}, nil
}

func (b *countingBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closes++
	return b.closeErr
}

func TestSession_CloseOnce(t *testing.T) {
	inner := &countingBrowser{}
	s := NewSession(inner)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Close()
		}()
	}
	wg.Wait()

	if inner.closes != 1 {
		t.Errorf("浏览器关闭了 %d 次, want 1", inner.closes)
	}
	if _, err := s.Open(context.Background(), "https://example.com/"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("关闭后Open应返回ErrSessionClosed, 得到 %v", err)
	}
}

func TestSession_ClosesLeftoverTabs(t *testing.T) {
	inner := &countingBrowser{}
	s := NewSession(inner)
	ctx := context.Background()

	first, err := s.Open(ctx, "https://example.com/1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Open(ctx, "https://example.com/2"); err != nil {
		t.Fatal(err)
	}

	// 重复关闭只生效一次
	_ = first.Close()
	_ = first.Close()
	if s.OpenTabs() != 1 {
		t.Errorf("OpenTabs() = %d, want 1", s.OpenTabs())
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if inner.tabCloses != 2 {
		t.Errorf("标签页关闭了 %d 次, want 2", inner.tabCloses)
	}
	if s.OpenTabs() != 0 {
		t.Errorf("关闭后 OpenTabs() = %d, want 0", s.OpenTabs())
	}
}

func TestSession_CloseError(t *testing.T) {
	boom := errors.New("boom")
	s := NewSession(&countingBrowser{closeErr: boom})

	if err := s.Close(); !errors.Is(err, boom) {
		t.Errorf("Close() = %v, 应包含底层错误", err)
	}
	if err := s.Close(); !errors.Is(err, boom) {
		t.Errorf("再次Close() 应返回同一错误, 得到 %v", err)
	}
}

func TestSession_OpenError(t *testing.T) {
	boom := errors.New("boom")
	s := NewSession(&countingBrowser{openErr: boom})
	if _, err := s.Open(context.Background(), "https://example.com/"); !errors.Is(err, boom) {
		t.Errorf("Open() = %v, want %v", err, boom)
	}
	if s.OpenTabs() != 0 {
		t.Error("打开失败时不应记录标签页")
	}
}
