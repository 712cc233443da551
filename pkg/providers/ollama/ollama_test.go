package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-translatex/pkg/providers"
)

// 测试默认配置
func TestNew(t *testing.T) {
	p, err := New(providers.DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, p.model)
	assert.Contains(t, p.Description(), DefaultModel)
}

// 测试兼容接口的请求与响应
func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "qwen2.5", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "Guten Tag", body.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","model":"qwen2.5",` +
			`"choices":[{"index":0,"message":{"role":"assistant","content":"Good day"},"finish_reason":"stop"}],` +
			`"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}`))
	}))
	defer srv.Close()

	cfg := providers.DefaultConfig()
	cfg.APIEndpoint = srv.URL + "/v1"
	cfg.Model = "qwen2.5"
	p, err := New(cfg, nil)
	require.NoError(t, err)

	out, err := p.Translate(context.Background(), "Guten Tag", "de", "en")
	require.NoError(t, err)
	assert.Equal(t, "Good day", out)
}
