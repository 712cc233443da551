// Package providers defines the translation services the pipeline can
// send text to, and the helpers they share.
package providers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// Service 翻译服务接口
type Service interface {
	// Name 服务在注册表中的名称
	Name() string

	// Description 一行说明
	Description() string

	// CharLimit 单次请求的最大字符数，0 表示不限
	CharLimit() int

	// Translate 翻译一段文本
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// BaseConfig 服务的公共配置
type BaseConfig struct {
	// API配置
	APIKey      string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	APIEndpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	Model       string `mapstructure:"model" yaml:"model,omitempty"`

	// 超时和重试
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`

	// 代理设置，支持 http(s):// 与 socks5://
	ProxyURL string `mapstructure:"proxy_url" yaml:"proxy_url,omitempty"`

	// 自定义头部
	Headers map[string]string `mapstructure:"headers" yaml:"headers,omitempty"`

	// Dictionary 词典服务使用的 TOML 文件
	Dictionary string `mapstructure:"dictionary" yaml:"dictionary,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() BaseConfig {
	return BaseConfig{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Second,
		Headers:    make(map[string]string),
	}
}

// StatusError 服务返回了非 2xx 状态
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.StatusCode, body)
}

// IsRetryable 判断错误是否可重试
func (e *StatusError) IsRetryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// Credential 返回配置中的 API 密钥，未配置时读取环境变量 envVar
func Credential(cfg BaseConfig, service, envVar string) (string, error) {
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", translation.MissingCredential(service, envVar)
}
