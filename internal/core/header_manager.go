package core

import (
	"net/http"
	"sync"

	"github.com/RecoveryAshes/RosenkaFetch/internal/config"
	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"github.com/RecoveryAshes/RosenkaFetch/internal/utils"
)

const (
	// DefaultUserAgent 默认User-Agent
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
)

// HeaderManager 合并并校验下载与静态抓取使用的HTTP头部
// 实现 models.HeaderProvider
type HeaderManager struct {
	defaults http.Header
	config   http.Header
	cli      http.Header

	validator *utils.HeaderValidator
	redactor  *utils.HeaderRedactor
	loader    *config.HeaderConfigLoader

	// 下载阶段各goroutine并发调用GetHeaders, 配置文件只加载一次
	loadOnce sync.Once
	loadErr  error
}

// NewHeaderManager 创建头部管理器
//   - configFile: headers.yaml 路径, 为空时使用默认路径
//   - cliHeaders: 命令行 -H 传入的 "Name: Value" 列表
func NewHeaderManager(configFile string, cliHeaders []string) (*HeaderManager, error) {
	cli, err := models.CliHeaders(cliHeaders).Parse()
	if err != nil {
		return nil, err
	}

	return &HeaderManager{
		defaults:  defaultHeaders(),
		config:    make(http.Header),
		cli:       cli,
		validator: utils.NewHeaderValidator(),
		redactor:  utils.NewHeaderRedactor(),
		loader:    config.NewHeaderConfigLoader(configFile),
	}, nil
}

func defaultHeaders() http.Header {
	return http.Header{
		"User-Agent":      {DefaultUserAgent},
		"Accept":          {"*/*"},
		"Accept-Language": {"ja,en;q=0.8"},
		"Accept-Encoding": {"gzip, deflate, br"},
	}
}

// LoadConfig 加载 headers.yaml, 只加载一次, 之后返回第一次的结果
func (hm *HeaderManager) LoadConfig() error {
	hm.loadOnce.Do(func() {
		hm.loadErr = hm.loadConfig()
	})
	return hm.loadErr
}

func (hm *HeaderManager) loadConfig() error {
	cfg, err := hm.loader.LoadConfig()
	if err != nil {
		utils.Errorf("加载HTTP头部配置失败: %v", err)
		return err
	}

	loaded := make(http.Header, len(cfg.Headers))
	for name, value := range cfg.Headers {
		loaded.Set(name, value)
	}
	hm.config = loaded

	if len(loaded) > 0 {
		utils.Debugf("已加载%d个HTTP头部配置: %s", len(loaded), hm.redactor.RedactToString(loaded))
	}
	return nil
}

// Validate 依次校验默认、配置文件、命令行头部
func (hm *HeaderManager) Validate() error {
	sources := []struct {
		name    string
		headers http.Header
	}{
		{"默认", hm.defaults},
		{"配置文件", hm.config},
		{"命令行", hm.cli},
	}

	for _, src := range sources {
		if err := hm.validator.Validate(src.headers); err != nil {
			utils.Errorf("%s头部验证失败: %v", src.name, err)
			return err
		}
	}
	return nil
}

// GetMergedHeaders 按优先级合并 (default < config < cli)
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	result := make(http.Header)
	for _, layer := range []http.Header{hm.defaults, hm.config, hm.cli} {
		for name, values := range layer {
			result[name] = values
		}
	}
	return result
}

// GetSafeHeaders 脱敏后的合并头部, 用于日志
func (hm *HeaderManager) GetSafeHeaders() map[string]string {
	return hm.redactor.Redact(hm.GetMergedHeaders())
}

// GetHeaders 实现 models.HeaderProvider
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	if err := hm.LoadConfig(); err != nil {
		return nil, err
	}
	if err := hm.Validate(); err != nil {
		return nil, err
	}
	return hm.GetMergedHeaders(), nil
}
