package libretranslate

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

// 测试请求格式与响应解析
func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate", r.URL.Path)
		var req TranslateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Hola", req.Q)
		assert.Equal(t, "es", req.Source)
		assert.Equal(t, "en", req.Target)
		assert.Equal(t, "text", req.Format)
		assert.Equal(t, "k", req.APIKey)
		_, _ = w.Write([]byte(`{"translatedText":"Hello","detectedLanguage":{"confidence":90,"language":"es"}}`))
	}))
	defer srv.Close()

	cfg := providers.DefaultConfig()
	cfg.APIEndpoint = srv.URL
	cfg.APIKey = "k"
	p, err := New(cfg, nil)
	require.NoError(t, err)

	out, err := p.Translate(context.Background(), "Hola", "es-MX", "en")
	require.NoError(t, err)
	assert.Equal(t, "Hello", out)
}

// 服务返回的错误信息
func TestTranslateError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unsupported language"}`))
	}))
	defer srv.Close()

	cfg := providers.DefaultConfig()
	cfg.APIEndpoint = srv.URL
	p, err := New(cfg, nil)
	require.NoError(t, err)

	_, err = p.Translate(context.Background(), "Hola", "es", "xx")
	var se *providers.StatusError
	assert.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "unsupported language")
}
