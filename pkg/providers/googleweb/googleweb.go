// Package googleweb translates through the public Google Translate mobile
// page, without an API key. The page is scraped, which is against Google's
// terms of service; prefer the google service when a key is available.
package googleweb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/pkg/providers"
)

const (
	// Name 注册名称
	Name = "google-web"

	defaultEndpoint = "https://translate.google.com/m"
	userAgent       = "Mozilla/5.0 (Linux; Android 10) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Mobile Safari/537.36"
)

// Provider 无密钥的 Google 翻译
type Provider struct {
	endpoint string
	client   *providers.Client
	logger   *zap.Logger
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
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{endpoint: endpoint, client: client, logger: log.Named(Name)}, nil
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Description() string {
	return "Google Translate web page, no key needed (unofficial)"
}

// CharLimit 文本放在查询串中，保持 URL 足够短
func (p *Provider) CharLimit() int { return 1800 }

// Translate 请求翻译页面并读取结果容器
func (p *Provider) Translate(ctx context.Context, text, source, target string) (string, error) {
	q := url.Values{}
	q.Set("sl", providers.BaseLanguage(source))
	q.Set("tl", target)
	q.Set("hl", target)
	q.Set("q", text)

	header := http.Header{}
	header.Set("User-Agent", userAgent)

	body, err := p.client.Get(ctx, p.endpoint+"?"+q.Encode(), header)
	if err != nil {
		return "", err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("%s: failed to parse page: %w", Name, err)
	}
	result := doc.Find("div.result-container").First()
	if result.Length() == 0 {
		return "", fmt.Errorf("%s: no result in page", Name)
	}
	out := result.Text()
	p.logger.Debug("page translated", zap.Int("chars", len(out)))
	return keepEdges(text, strings.TrimSpace(out)), nil
}

// keepEdges restores the leading and trailing whitespace of src, which
// the page drops.
func keepEdges(src, out string) string {
	lead := src[:len(src)-len(strings.TrimLeft(src, " \t\r\n"))]
	trail := src[len(strings.TrimRight(src, " \t\r\n")):]
	return lead + out + trail
}
