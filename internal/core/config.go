package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"github.com/RecoveryAshes/RosenkaFetch/internal/utils"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix 除 INPUT/DEBUG 外的环境变量前缀, 如 ROSENKA_BROWSER_DRIVER
const EnvPrefix = "ROSENKA"

// Config 应用程序配置
type Config struct {
	Input    string            `mapstructure:"input"`
	Debug    bool              `mapstructure:"debug"`
	Site     models.SiteConfig `mapstructure:"site"`
	Browser  BrowserConfig     `mapstructure:"browser"`
	Fanout   FanoutConfig      `mapstructure:"fanout"`
	Download DownloadConfig    `mapstructure:"download"`
	Output   OutputConfig      `mapstructure:"output"`
	Logging  LoggingConfig     `mapstructure:"logging"`
}

// BrowserConfig 浏览器配置
type BrowserConfig struct {
	Driver       string `mapstructure:"driver"`
	SlowMotionMs int    `mapstructure:"slow_motion_ms"`
	Bin          string `mapstructure:"bin"`
}

// FanoutConfig 最终下载阶段的并发配置
type FanoutConfig struct {
	MaxTabs  int  `mapstructure:"max_tabs"`
	Adaptive bool `mapstructure:"adaptive"`
}

// DownloadConfig 下载配置
type DownloadConfig struct {
	Timeout            int  `mapstructure:"timeout"`
	FailOnHTTPStatus   bool `mapstructure:"fail_on_http_status"`
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	BaseDir     string `mapstructure:"base_dir"`
	ReportDir   string `mapstructure:"report_dir"`
	MetricsFile string `mapstructure:"metrics_file"`
	HeadersFile string `mapstructure:"headers_file"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// LoadConfig 加载配置文件
// configPath为空时在 ./configs, . , ~/.rosenka 中查找 config.yaml, 找不到则使用默认值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".rosenka"))
		}
	}

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("input", models.DefaultInput)
	v.SetDefault("debug", false)

	site := models.DefaultSiteConfig()
	v.SetDefault("site.top_url", site.TopURL)
	v.SetDefault("site.category_label", site.CategoryLabel)
	v.SetDefault("site.table_class", site.TableClass)
	v.SetDefault("site.viewer_id", site.ViewerID)

	v.SetDefault("browser.driver", models.DriverRod)
	v.SetDefault("browser.slow_motion_ms", 250)
	v.SetDefault("browser.bin", "")

	v.SetDefault("fanout.max_tabs", 0)
	v.SetDefault("fanout.adaptive", false)

	v.SetDefault("download.timeout", 0)
	v.SetDefault("download.fail_on_http_status", false)
	v.SetDefault("download.insecure_skip_verify", false)

	v.SetDefault("output.base_dir", "output")
	v.SetDefault("output.report_dir", "reports")
	v.SetDefault("output.metrics_file", "")
	v.SetDefault("output.headers_file", "configs/headers.yaml")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)
}

// bindEnv 绑定环境变量
// INPUT 与 DEBUG 不带前缀; DEBUG 只有值为 "true" 时开启调试
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("input", "INPUT")
	if os.Getenv("DEBUG") == "true" {
		v.Set("debug", true)
	}
}

// Overrides 命令行参数, 零值表示未指定
type Overrides struct {
	Input       string
	Debug       bool
	Driver      string
	OutputDir   string
	MaxTabs     int
	Adaptive    bool
	LogLevel    string
	MetricsFile string
}

// MergeCLIFlags 命令行参数优先于配置文件与环境变量
func (c *Config) MergeCLIFlags(o Overrides) {
	if o.Input != "" {
		c.Input = o.Input
	}
	if o.Debug {
		c.Debug = true
	}
	if o.Driver != "" {
		c.Browser.Driver = o.Driver
	}
	if o.OutputDir != "" {
		c.Output.BaseDir = o.OutputDir
	}
	if o.MaxTabs > 0 {
		c.Fanout.MaxTabs = o.MaxTabs
	}
	if o.Adaptive {
		c.Fanout.Adaptive = true
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.MetricsFile != "" {
		c.Output.MetricsFile = o.MetricsFile
	}
}

// FetchConfig 从配置中提取检索参数
func (c *Config) FetchConfig() models.FetchConfig {
	return models.FetchConfig{
		Debug:              c.Debug,
		Driver:             c.Browser.Driver,
		SlowMotion:         c.Browser.SlowMotionMs,
		BrowserBin:         c.Browser.Bin,
		MaxTabs:            c.Fanout.MaxTabs,
		Adaptive:           c.Fanout.Adaptive,
		DownloadTimeout:    c.Download.Timeout,
		FailOnHTTPStatus:   c.Download.FailOnHTTPStatus,
		InsecureSkipVerify: c.Download.InsecureSkipVerify,
		OutputDir:          c.Output.BaseDir,
		ReportDir:          c.Output.ReportDir,
	}
}

// LogConfig 从配置中提取日志参数
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
	}
}

// Validate 验证全部配置
func (c *Config) Validate() error {
	if c.Input == "" {
		return &models.ConfigError{FilePath: "input", Cause: fmt.Errorf("地址不能为空")}
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	fetch := c.FetchConfig()
	if err := fetch.Validate(); err != nil {
		return &models.ConfigError{FilePath: "fetch", Cause: err}
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return &models.ConfigError{FilePath: "logging.level", Cause: err}
	}
	return nil
}
