package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nerdneilsfield/go-translatex/internal/format"
	"github.com/nerdneilsfield/go-translatex/pkg/providers"
)

// ConfigName 配置文件名（不含扩展名）
const ConfigName = ".translatex"

// EnvPrefix 环境变量前缀，如 TRANSLATEX_TARGET_LANG
const EnvPrefix = "TRANSLATEX"

// ServiceConfig 单个翻译服务的配置
type ServiceConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

// Config 保存 translatex 的所有配置
type Config struct {
	SourceLang     string                   `mapstructure:"source_lang"`
	TargetLang     string                   `mapstructure:"target_lang"`
	Service        string                   `mapstructure:"service"`
	MarkerFormat   string                   `mapstructure:"marker_format"`
	TokenFormat    string                   `mapstructure:"token_format"`
	TokenSublimit  int                      `mapstructure:"token_sublimit"`
	Concurrency    int                      `mapstructure:"concurrency"`     // 并行翻译请求数
	RequestTimeout int                      `mapstructure:"request_timeout"` // 请求超时时间（秒）
	MaxRetries     int                      `mapstructure:"max_retries"`
	ProxyURL       string                   `mapstructure:"proxy_url"`
	Debug          bool                     `mapstructure:"debug"`
	Dictionary     string                   `mapstructure:"dictionary"` // 词典服务的 TOML 文件
	Encoding       string                   `mapstructure:"encoding"`   // 输入输出文件的字符集
	CacheDir       string                   `mapstructure:"cache_dir"`  // 译文缓存目录，为空时不缓存
	Services       map[string]ServiceConfig `mapstructure:"services"`
}

// NewDefaultConfig 创建一个新的默认配置
func NewDefaultConfig() *Config {
	return &Config{
		SourceLang:     "fr",
		TargetLang:     "en",
		Service:        "google",
		MarkerFormat:   format.DefaultMarker,
		TokenFormat:    format.DefaultToken,
		TokenSublimit:  16,
		Concurrency:    1,
		RequestTimeout: 30,
		MaxRetries:     3,
		Encoding:       "utf-8",
		Services:       make(map[string]ServiceConfig),
	}
}

func setDefaults(v *viper.Viper) {
	d := NewDefaultConfig()
	v.SetDefault("source_lang", d.SourceLang)
	v.SetDefault("target_lang", d.TargetLang)
	v.SetDefault("service", d.Service)
	v.SetDefault("marker_format", d.MarkerFormat)
	v.SetDefault("token_format", d.TokenFormat)
	v.SetDefault("token_sublimit", d.TokenSublimit)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("proxy_url", d.ProxyURL)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("dictionary", d.Dictionary)
	v.SetDefault("encoding", d.Encoding)
	v.SetDefault("cache_dir", d.CacheDir)
}

// LoadConfig 从文件加载配置。configPath 为空时在家目录和当前目录查找
// .translatex.yaml，找不到则使用默认值。环境变量优先于文件。
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 如果找不到配置文件，则使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := NewDefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Services == nil {
		cfg.Services = make(map[string]ServiceConfig)
	}
	return cfg, nil
}

// SaveConfig 将配置保存到文件，configPath 为空时写入家目录
func SaveConfig(cfg *Config, configPath string) error {
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(home, ConfigName+".yaml")
	}

	v := viper.New()
	v.Set("source_lang", cfg.SourceLang)
	v.Set("target_lang", cfg.TargetLang)
	v.Set("service", cfg.Service)
	v.Set("marker_format", cfg.MarkerFormat)
	v.Set("token_format", cfg.TokenFormat)
	v.Set("token_sublimit", cfg.TokenSublimit)
	v.Set("concurrency", cfg.Concurrency)
	v.Set("request_timeout", cfg.RequestTimeout)
	v.Set("max_retries", cfg.MaxRetries)
	v.Set("proxy_url", cfg.ProxyURL)
	v.Set("debug", cfg.Debug)
	v.Set("dictionary", cfg.Dictionary)
	v.Set("encoding", cfg.Encoding)
	v.Set("cache_dir", cfg.CacheDir)

	services := make(map[string]any, len(cfg.Services))
	for name, s := range cfg.Services {
		services[name] = map[string]any{
			"api_key":  s.APIKey,
			"endpoint": s.Endpoint,
			"model":    s.Model,
		}
	}
	v.Set("services", services)

	// 创建父目录（如果不存在）
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}
	return v.WriteConfigAs(configPath)
}

// Validate 检查模板、语言与数值设置
func (c *Config) Validate() error {
	if err := format.Check(c.MarkerFormat, format.MarkerPlaceholders); err != nil {
		return err
	}
	if err := format.Check(c.TokenFormat, format.TokenPlaceholders); err != nil {
		return err
	}
	for _, lang := range []string{c.SourceLang, c.TargetLang} {
		if _, err := providers.NormalizeLanguage(lang); err != nil {
			return err
		}
	}
	if c.TokenSublimit < 1 {
		return fmt.Errorf("token_sublimit must be positive, got %d", c.TokenSublimit)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	return nil
}

// CacheScope 返回服务的缓存范围，同一服务的不同模型或端点互不共享译文
func (c *Config) CacheScope(name string) string {
	s := c.Services[name]
	return strings.Join([]string{name, s.Model, s.Endpoint}, "|")
}

// ServiceConfig 组合公共设置与服务自己的配置节
func (c *Config) ServiceConfig(name string) providers.BaseConfig {
	base := providers.DefaultConfig()
	if c.RequestTimeout > 0 {
		base.Timeout = time.Duration(c.RequestTimeout) * time.Second
	}
	base.MaxRetries = c.MaxRetries
	base.ProxyURL = c.ProxyURL
	base.Dictionary = c.Dictionary

	if s, ok := c.Services[name]; ok {
		base.APIKey = s.APIKey
		base.APIEndpoint = s.Endpoint
		base.Model = s.Model
	}
	return base
}
