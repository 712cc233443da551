// Package textsynth translates through the TextSynth M2M100 engine.
package textsynth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/pkg/providers"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/irma"
)

const (
	// Name 注册名称
	Name = "textsynth"
	// EnvVar 保存 API 密钥的环境变量
	EnvVar = "TEXTSYNTH_API_KEY"

	defaultEndpoint = "https://api.textsynth.com/v1/engines/m2m100_1_2B/translate"
)

// Provider TextSynth提供商
type Provider struct {
	endpoint string
	apiKey   string
	client   *providers.Client
}

var _ providers.Service = (*Provider)(nil)

// New 创建提供商，缺少密钥时返回 ErrMissingCredential
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
	return &Provider{endpoint: endpoint, apiKey: key, client: client}, nil
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Description() string {
	return "TextSynth M2M100 1.2B, needs " + EnvVar
}

func (p *Provider) CharLimit() int { return 1000 }

// Translate 执行翻译，请求体中的文本是数组
func (p *Provider) Translate(ctx context.Context, text, source, target string) (string, error) {
	req := request{
		Text:       []string{text},
		SourceLang: providers.BaseLanguage(source),
		TargetLang: providers.BaseLanguage(target),
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+p.apiKey)

	var resp irma.Response
	if err := p.client.PostJSON(ctx, p.endpoint, header, req, &resp); err != nil {
		return "", err
	}
	return resp.First(Name)
}

type request struct {
	Text       []string `json:"text"`
	SourceLang string   `json:"source_lang"`
	TargetLang string   `json:"target_lang"`
}
