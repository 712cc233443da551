// Package openai translates with OpenAI chat models through the official
// SDK.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/pkg/providers"
)

const (
	// Name 注册名称
	Name = "openai"
	// EnvVar 保存 API 密钥的环境变量
	EnvVar = "OPENAI_API_KEY"

	// DefaultModel 默认模型
	DefaultModel = "gpt-4o-mini"
)

// getModel 根据字符串获取模型常量
func getModel(model string) openai.ChatModel {
	switch model {
	case "":
		return openai.ChatModel(DefaultModel)
	case "gpt-4o":
		return openai.ChatModelGPT4o
	case "gpt-4o-mini":
		return openai.ChatModelGPT4oMini
	case "gpt-4-turbo":
		return openai.ChatModelGPT4Turbo
	default:
		// 对于新模型或自定义模型，使用字符串
		return openai.ChatModel(model)
	}
}

// Provider OpenAI提供商（使用官方SDK）
type Provider struct {
	model  openai.ChatModel
	client openai.Client
	logger *zap.Logger
}

var _ providers.Service = (*Provider)(nil)

// New 创建新的OpenAI提供商，缺少密钥时返回 ErrMissingCredential
func New(cfg providers.BaseConfig, log *zap.Logger) (*Provider, error) {
	key, err := providers.Credential(cfg, Name, EnvVar)
	if err != nil {
		return nil, err
	}
	hc, err := providers.NewHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.APIEndpoint != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(cfg.APIEndpoint, "/")+"/"))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		model:  getModel(cfg.Model),
		client: openai.NewClient(opts...),
		logger: log.Named(Name),
	}, nil
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Description() string {
	return fmt.Sprintf("OpenAI chat model %s, needs %s", p.model, EnvVar)
}

// CharLimit 取决于模型，保守取值
func (p *Provider) CharLimit() int { return 4000 }

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, text, source, target string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(providers.SystemPrompt(source, target)),
			openai.UserMessage(text),
		},
		Model:       p.model,
		Temperature: openai.Float(0.2),
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%s: chat completion failed: %w", Name, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices returned", Name)
	}

	p.logger.Debug("completion done",
		zap.String("model", completion.Model),
		zap.Int64("tokens_in", completion.Usage.PromptTokens),
		zap.Int64("tokens_out", completion.Usage.CompletionTokens),
		zap.String("finish_reason", string(completion.Choices[0].FinishReason)))
	return providers.CleanCompletion(completion.Choices[0].Message.Content), nil
}
