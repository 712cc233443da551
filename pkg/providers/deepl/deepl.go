// Package deepl translates through the DeepL v2 API.
package deepl

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/pkg/providers"
)

const (
	// Name 注册名称
	Name = "deepl"
	// EnvVar 保存 API 密钥的环境变量
	EnvVar = "DEEPL_API_KEY"

	proEndpoint  = "https://api.deepl.com/v2"
	freeEndpoint = "https://api-free.deepl.com/v2"
)

// Provider DeepL提供商
type Provider struct {
	endpoint string
	apiKey   string
	client   *providers.Client
	logger   *zap.Logger
}

var _ providers.Service = (*Provider)(nil)

// New 创建新的DeepL提供商。以 ":fx" 结尾的密钥使用免费API。
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
		endpoint = proEndpoint
		if strings.HasSuffix(key, ":fx") {
			endpoint = freeEndpoint
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   key,
		client:   client,
		logger:   log.Named(Name),
	}, nil
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Description() string { return "DeepL API, needs " + EnvVar }

func (p *Provider) CharLimit() int { return 5000 }

// Translate 执行翻译。LaTeX 换行与空白需要原样保留。
func (p *Provider) Translate(ctx context.Context, text, source, target string) (string, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("source_lang", SourceCode(source))
	params.Set("target_lang", TargetCode(target))
	params.Set("preserve_formatting", "1")
	params.Set("split_sentences", "nonewlines")

	header := http.Header{}
	header.Set("Authorization", "DeepL-Auth-Key "+p.apiKey)

	var resp TranslateResponse
	if err := p.client.PostForm(ctx, p.endpoint+"/translate", header, params, &resp); err != nil {
		return "", err
	}
	if len(resp.Translations) == 0 {
		return "", fmt.Errorf("%s: no translation returned", Name)
	}
	p.logger.Debug("translated",
		zap.String("detected", resp.Translations[0].DetectedSourceLanguage))
	return resp.Translations[0].Text, nil
}

// SourceCode 源语言只用主语言代码，大写
func SourceCode(lang string) string {
	return strings.ToUpper(providers.BaseLanguage(lang))
}

// TargetCode 英语和葡萄牙语的目标语言需要指定变体
func TargetCode(lang string) string {
	base := providers.BaseLanguage(lang)
	switch base {
	case "en", "pt":
		return strings.ToUpper(providers.RegionalLanguage(lang))
	}
	return strings.ToUpper(base)
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}
