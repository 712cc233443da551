// Package irma translates through the M2M100 service of the IRMA
// (University of Strasbourg). It is only reachable from the Unistra
// network.
package irma

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/pkg/providers"
)

const (
	// Name 注册名称
	Name = "irma"

	defaultEndpoint = "https://dlmds.math.unistra.fr/translation"
)

// Provider IRMA提供商
type Provider struct {
	endpoint string
	client   *providers.Client
}

var _ providers.Service = (*Provider)(nil)

// New 创建提供商
func New(cfg providers.BaseConfig, log *zap.Logger) (*Provider, error) {
	client, err := providers.NewClient(Name, cfg, log)
	if err != nil {
		return nil, err
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Provider{endpoint: endpoint, client: client}, nil
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Description() string {
	return "IRMA M2M100 (Unistra network only), no key needed"
}

func (p *Provider) CharLimit() int { return 1000 }

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, text, source, target string) (string, error) {
	req := request{
		Text:       text,
		SourceLang: providers.BaseLanguage(source),
		TargetLang: providers.BaseLanguage(target),
	}
	var resp Response
	if err := p.client.PostJSON(ctx, p.endpoint, nil, req, &resp); err != nil {
		return "", err
	}
	return resp.First(Name)
}

type request struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// Response M2M100 服务的响应，TextSynth 使用相同格式
type Response struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// First 返回第一条译文
func (r Response) First(service string) (string, error) {
	if len(r.Translations) == 0 {
		return "", fmt.Errorf("%s: no translation returned", service)
	}
	return r.Translations[0].Text, nil
}
