// Package deeplx translates through a self hosted DeepLX server.
package deeplx

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/pkg/providers"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/deepl"
)

const (
	// Name 注册名称
	Name = "deeplx"

	defaultEndpoint = "http://localhost:1188/translate"
)

// Provider DeepLX提供商
type Provider struct {
	endpoint string
	token    string
	client   *providers.Client
	logger   *zap.Logger
}

var _ providers.Service = (*Provider)(nil)

// New 创建新的DeepLX提供商，访问令牌可选
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
	return &Provider{endpoint: endpoint, token: cfg.APIKey, client: client, logger: log.Named(Name)}, nil
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Description() string { return "DeepLX server, " + p.endpoint }

func (p *Provider) CharLimit() int { return 5000 }

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, text, source, target string) (string, error) {
	req := TranslateRequest{
		Text:       text,
		SourceLang: deepl.SourceCode(source),
		TargetLang: deepl.TargetCode(target),
	}
	header := http.Header{}
	if p.token != "" {
		header.Set("Authorization", "Bearer "+p.token)
	}

	var resp TranslateResponse
	if err := p.client.PostJSON(ctx, p.endpoint, header, req, &resp); err != nil {
		return "", err
	}
	if resp.Code != 0 && resp.Code != http.StatusOK {
		return "", fmt.Errorf("%s: error %d: %s", Name, resp.Code, resp.Message)
	}
	p.logger.Debug("translated", zap.String("source", resp.SourceLang))
	return resp.Data, nil
}

// TranslateRequest 翻译请求
type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	Code       int    `json:"code"`
	Message    string `json:"message,omitempty"`
	Data       string `json:"data"`
	SourceLang string `json:"source_lang,omitempty"`
}
