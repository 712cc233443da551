// Package ollama translates with a local Ollama server, or any other
// server exposing the OpenAI compatible chat API.
package ollama

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/pkg/providers"
)

const (
	// Name 注册名称
	Name = "ollama"

	defaultEndpoint = "http://localhost:11434/v1"
	// DefaultModel 默认模型
	DefaultModel = "llama3.1"
)

// Provider Ollama提供商
type Provider struct {
	model  string
	client *openai.Client
	logger *zap.Logger
}

var _ providers.Service = (*Provider)(nil)

// New 创建提供商。Ollama 不校验密钥，其他兼容服务可在配置中给出。
func New(cfg providers.BaseConfig, log *zap.Logger) (*Provider, error) {
	hc, err := providers.NewHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	key := cfg.APIKey
	if key == "" {
		key = "ollama"
	}
	c := openai.DefaultConfig(key)
	c.BaseURL = defaultEndpoint
	if cfg.APIEndpoint != "" {
		c.BaseURL = cfg.APIEndpoint
	}
	c.HTTPClient = hc

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		model:  model,
		client: openai.NewClientWithConfig(c),
		logger: log.Named(Name),
	}, nil
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Description() string {
	return fmt.Sprintf("Ollama or OpenAI compatible server, model %s", p.model)
}

// CharLimit 取决于模型的上下文长度
func (p *Provider) CharLimit() int { return 3000 }

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, text, source, target string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: providers.SystemPrompt(source, target)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.2,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s: chat completion failed: %w", Name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices returned", Name)
	}

	p.logger.Debug("completion done",
		zap.String("model", resp.Model),
		zap.Int("tokens_in", resp.Usage.PromptTokens),
		zap.Int("tokens_out", resp.Usage.CompletionTokens))
	return providers.CleanCompletion(resp.Choices[0].Message.Content), nil
}
