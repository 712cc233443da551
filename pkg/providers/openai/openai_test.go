package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-translatex/pkg/providers"
	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

const completion = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{
    "index": 0,
    "message": {"role": "assistant", "content": "<think>ok</think>Bonjour [0-1]"},
    "finish_reason": "stop"
  }],
  "usage": {"prompt_tokens": 10, "completion_tokens": 4, "total_tokens": 14}
}`

// 缺少密钥时构造失败
func TestNewWithoutKey(t *testing.T) {
	t.Setenv(EnvVar, "")
	_, err := New(providers.DefaultConfig(), nil)
	assert.True(t, errors.Is(err, translation.ErrMissingCredential))
}

// 测试模型名称映射
func TestGetModel(t *testing.T) {
	assert.Equal(t, DefaultModel, string(getModel("")))
	assert.Equal(t, "my-model", string(getModel("my-model")))
}

// 测试请求内容与推理标记清理
func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Contains(t, body.Messages[0].Content, "English to French")
		assert.Equal(t, "Hello [0-1]", body.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion))
	}))
	defer srv.Close()

	cfg := providers.DefaultConfig()
	cfg.APIKey = "secret"
	cfg.APIEndpoint = srv.URL
	cfg.MaxRetries = 0
	p, err := New(cfg, nil)
	require.NoError(t, err)

	out, err := p.Translate(context.Background(), "Hello [0-1]", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour [0-1]", out)
}
