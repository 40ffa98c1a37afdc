package crawlers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"github.com/RecoveryAshes/RosenkaFetch/internal/utils"
)

// ErrSessionClosed 会话关闭后再打开标签页
var ErrSessionClosed = errors.New("浏览器会话已关闭")

// Session 包装任意驱动, 跟踪打开的标签页
// Close 只执行一次: 先关闭残留标签页, 再关闭浏览器
type Session struct {
	browser models.Browser

	mu     sync.Mutex
	tabs   map[*sessionTab]struct{}
	closed bool

	closeOnce sync.Once
	closeErr  error
}

// NewSession 创建会话
func NewSession(browser models.Browser) *Session {
	return &Session{
		browser: browser,
		tabs:    make(map[*sessionTab]struct{}),
	}
}

// Open 实现 models.Browser
func (s *Session) Open(ctx context.Context, url string) (models.Tab, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	s.mu.Unlock()

	tab, err := s.browser.Open(ctx, url)
	if err != nil {
		return nil, err
	}

	st := &sessionTab{Tab: tab, session: s}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		_ = tab.Close()
		return nil, ErrSessionClosed
	}
	s.tabs[st] = struct{}{}
	return st, nil
}

// OpenTabs 当前未关闭的标签页数量
func (s *Session) OpenTabs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tabs)
}

// Close 实现 models.Browser
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		tabs := make([]*sessionTab, 0, len(s.tabs))
		for t := range s.tabs {
			tabs = append(tabs, t)
		}
		s.tabs = map[*sessionTab]struct{}{}
		s.mu.Unlock()

		var errs []error
		for _, t := range tabs {
			if err := t.Tab.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if len(tabs) > 0 {
			utils.Debugf("关闭残留标签页: %d", len(tabs))
		}

		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("关闭浏览器失败: %w", err))
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

func (s *Session) release(t *sessionTab) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tabs[t]; !ok {
		return false
	}
	delete(s.tabs, t)
	return true
}

type sessionTab struct {
	models.Tab
	session *Session
}

// Close 重复关闭或会话已关闭时不做任何事
func (t *sessionTab) Close() error {
	if !t.session.release(t) {
		return nil
	}
	return t.Tab.Close()
}
