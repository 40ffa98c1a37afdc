package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"github.com/RecoveryAshes/RosenkaFetch/internal/utils"
	"github.com/spf13/viper"
)

const (
	// DefaultHeadersFile 默认头部配置文件路径
	DefaultHeadersFile = "configs/headers.yaml"

	// MaxConfigFileSize 配置文件最大大小 (1MB)
	MaxConfigFileSize = 1 << 20
)

//go:embed headers_template.yaml
var headersTemplate string

// HeadersTemplate 返回内置的头部配置模板
func HeadersTemplate() string {
	return headersTemplate
}

// HeaderConfigLoader 加载 headers.yaml
type HeaderConfigLoader struct {
	path string
}

// NewHeaderConfigLoader 创建加载器, path为空时使用 DefaultHeadersFile
func NewHeaderConfigLoader(path string) *HeaderConfigLoader {
	if path == "" {
		path = DefaultHeadersFile
	}
	return &HeaderConfigLoader{path: path}
}

// Path 配置文件路径
func (l *HeaderConfigLoader) Path() string {
	return l.path
}

// EnsureConfigExists 文件不存在时写入模板
func (l *HeaderConfigLoader) EnsureConfigExists() error {
	_, err := os.Stat(l.path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("无法读取配置文件信息 [%s]: %w", l.path, err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("无法创建配置目录 [%s]: %w", dir, err)
	}
	if err := os.WriteFile(l.path, []byte(headersTemplate), 0644); err != nil {
		return fmt.Errorf("无法生成配置文件 [%s]: %w", l.path, err)
	}

	utils.Infof("已生成头部配置模板: %s", l.path)
	return nil
}

func (l *HeaderConfigLoader) checkSize() error {
	info, err := os.Stat(l.path)
	if err != nil {
		return fmt.Errorf("无法读取配置文件信息 [%s]: %w", l.path, err)
	}
	if info.Size() > MaxConfigFileSize {
		return &models.ConfigError{
			FilePath: l.path,
			Cause:    fmt.Errorf("配置文件过大: %d 字节 (最大 %d 字节)", info.Size(), MaxConfigFileSize),
		}
	}
	return nil
}

// LoadConfig 读取并解析头部配置
// 文件不存在时先生成模板; 文件被其他进程锁定时返回空配置
func (l *HeaderConfigLoader) LoadConfig() (*models.HeaderConfig, error) {
	if err := l.EnsureConfigExists(); err != nil {
		return nil, err
	}
	if err := l.checkSize(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(l.path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
			utils.Warnf("配置文件被锁定 [%s], 使用默认头部", l.path)
			return &models.HeaderConfig{Headers: map[string]string{}}, nil
		}
		return nil, &models.ConfigError{FilePath: l.path, Cause: err}
	}

	var cfg models.HeaderConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &models.ConfigError{
			FilePath: l.path,
			Cause:    fmt.Errorf("配置绑定失败: %w", err),
		}
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}

	return &cfg, nil
}
