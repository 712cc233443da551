// Package google translates through the Google Cloud Translation v2 API.
package google

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/pkg/providers"
)

const (
	// Name 注册名称
	Name = "google"
	// EnvVar 保存 API 密钥的环境变量
	EnvVar = "GOOGLE_API_KEY"

	defaultEndpoint = "https://translation.googleapis.com/language/translate/v2"
)

// Provider Google Translate提供商
type Provider struct {
	endpoint string
	apiKey   string
	client   *providers.Client
	logger   *zap.Logger
}

var _ providers.Service = (*Provider)(nil)

// New 创建新的Google Translate提供商，缺少密钥时返回 ErrMissingCredential
func New(cfg providers.BaseConfig, log *zap.Logger) (*Provider, error) {
	key, err := providers.Credential(cfg, Name, EnvVar)
	if err != nil {
		return nil, err
	}
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
	return &Provider{endpoint: endpoint, apiKey: key, client: client, logger: log.Named(Name)}, nil
}

// Name 获取提供商名称
func (p *Provider) Name() string { return Name }

// Description 服务说明
func (p *Provider) Description() string {
	return "Google Cloud Translation v2, needs " + EnvVar
}

// CharLimit Google Translate v2 API限制
func (p *Provider) CharLimit() int { return 5000 }

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, text, source, target string) (string, error) {
	params := url.Values{}
	params.Set("q", text)
	params.Set("source", providers.BaseLanguage(source))
	params.Set("target", target)
	params.Set("format", "text")

	header := http.Header{}
	header.Set("X-goog-api-key", p.apiKey)

	var resp TranslateResponse
	if err := p.client.PostForm(ctx, p.endpoint, header, params, &resp); err != nil {
		return "", err
	}
	if len(resp.Data.Translations) == 0 {
		return "", fmt.Errorf("%s: no translation returned", Name)
	}
	tr := resp.Data.Translations[0]
	if tr.DetectedSourceLanguage != "" {
		p.logger.Debug("source language detected", zap.String("language", tr.DetectedSourceLanguage))
	}
	return tr.TranslatedText, nil
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText         string `json:"translatedText"`
			DetectedSourceLanguage string `json:"detectedSourceLanguage,omitempty"`
		} `json:"translations"`
	} `json:"data"`
}
