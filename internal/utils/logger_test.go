package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestLogConfig(t *testing.T, level string) LogConfig {
	t.Helper()
	return LogConfig{
		Level:      level,
		LogDir:     t.TempDir(),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   false,
		NoColor:    true,
	}
}

func TestInitLogger(t *testing.T) {
	config := newTestLogConfig(t, "debug")

	if err := InitLogger(config); err != nil {
		t.Fatalf("初始化日志器失败: %v", err)
	}

	Info("测试信息日志")
	Warn("测试警告日志")
	Debug("测试调试日志")

	mainLogPath := filepath.Join(config.LogDir, mainLogName)
	if _, err := os.Stat(mainLogPath); os.IsNotExist(err) {
		t.Errorf("主日志文件未创建: %s", mainLogPath)
	}
}

func TestLogLevels(t *testing.T) {
	config := newTestLogConfig(t, "info")

	if err := InitLogger(config); err != nil {
		t.Fatalf("初始化日志器失败: %v", err)
	}

	Infof("格式化信息日志: %s", "東京都")
	Debugf("格式化调试日志: %v", "不应该出现")

	content, err := os.ReadFile(filepath.Join(config.LogDir, mainLogName))
	if err != nil {
		t.Fatalf("读取日志文件失败: %v", err)
	}

	if !strings.Contains(string(content), "東京都") {
		t.Error("日志文件应包含info级别的日志")
	}
	if strings.Contains(string(content), "不应该出现") {
		t.Error("info级别下不应写入debug日志")
	}
}

func TestErrorLogOnlyContainsErrors(t *testing.T) {
	config := newTestLogConfig(t, "debug")

	if err := InitLogger(config); err != nil {
		t.Fatalf("初始化日志器失败: %v", err)
	}

	Info("普通信息")
	Errorf("下载失败: %s", "1.pdf")

	content, err := os.ReadFile(filepath.Join(config.LogDir, errorLogName))
	if err != nil {
		t.Fatalf("读取错误日志文件失败: %v", err)
	}

	if strings.Contains(string(content), "普通信息") {
		t.Error("错误日志不应包含info级别日志")
	}
	if !strings.Contains(string(content), "1.pdf") {
		t.Error("错误日志应包含error级别日志")
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	config := newTestLogConfig(t, "verbose")

	if err := InitLogger(config); err != nil {
		t.Fatalf("初始化日志器失败: %v", err)
	}

	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("无效级别应回退为info, 得到 %s", zerolog.GlobalLevel())
	}
}

func TestDefaultLogConfig(t *testing.T) {
	config := DefaultLogConfig()

	if config.Level != "info" {
		t.Errorf("默认日志级别错误: 期望 'info', 得到 '%s'", config.Level)
	}
	if config.LogDir != "logs" {
		t.Errorf("默认日志目录错误: 期望 'logs', 得到 '%s'", config.LogDir)
	}
	if config.MaxSize != 10 || config.MaxBackups != 3 || config.MaxAge != 28 {
		t.Errorf("默认轮转参数错误: %+v", config)
	}
	if !config.Compress {
		t.Error("默认应该启用压缩")
	}
}
