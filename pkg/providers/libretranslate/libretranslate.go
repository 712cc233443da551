// Package libretranslate translates through a LibreTranslate server.
package libretranslate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/pkg/providers"
)

const (
	// Name 注册名称
	Name = "libretranslate"

	defaultEndpoint = "https://libretranslate.com"
)

// Provider LibreTranslate提供商
type Provider struct {
	endpoint string
	apiKey   string
	client   *providers.Client
	logger   *zap.Logger
}

var _ providers.Service = (*Provider)(nil)

// New 创建提供商。公共实例需要密钥，自建实例通常不需要。
func New(cfg providers.BaseConfig, log *zap.Logger) (*Provider, error) {
	client, err := providers.NewClient(Name, cfg, log)
	if err != nil {
		return nil, err
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   cfg.APIKey,
		client:   client,
		logger:   log.Named(Name),
	}, nil
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Description() string { return "LibreTranslate server, " + p.endpoint }

func (p *Provider) CharLimit() int { return 2000 }

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, text, source, target string) (string, error) {
	req := TranslateRequest{
		Q:      text,
		Source: providers.BaseLanguage(source),
		Target: providers.BaseLanguage(target),
		Format: "text",
		APIKey: p.apiKey,
	}

	var resp TranslateResponse
	if err := p.client.PostJSON(ctx, p.endpoint+"/translate", nil, req, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%s: %s", Name, resp.Error)
	}
	if resp.DetectedLanguage != nil {
		p.logger.Debug("source language detected",
			zap.String("language", resp.DetectedLanguage.Language),
			zap.Float64("confidence", resp.DetectedLanguage.Confidence))
	}
	return resp.TranslatedText, nil
}

// TranslateRequest 翻译请求
type TranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	TranslatedText   string `json:"translatedText"`
	DetectedLanguage *struct {
		Confidence float64 `json:"confidence"`
		Language   string  `json:"language"`
	} `json:"detectedLanguage,omitempty"`
	Error string `json:"error,omitempty"`
}
