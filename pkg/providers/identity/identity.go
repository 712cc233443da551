// Package identity is the service that does not translate. It backs dry
// runs and lets the rest of the pipeline be checked without a network.
package identity

import (
	"context"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/pkg/providers"
)

// Name 注册名称
const Name = "identity"

// Provider 直接返回原文
type Provider struct{}

var _ providers.Service = Provider{}

// New 创建提供商，不需要任何配置
func New(providers.BaseConfig, *zap.Logger) (Provider, error) {
	return Provider{}, nil
}

func (Provider) Name() string { return Name }

func (Provider) Description() string { return "Do not translate, return the text unchanged" }

func (Provider) CharLimit() int { return 0 }

// Translate 返回原文
func (Provider) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}
