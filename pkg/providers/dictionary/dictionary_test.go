package dictionary

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-translatex/internal/config"
	"github.com/nerdneilsfield/go-translatex/pkg/providers"
	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// 测试短语替换
func TestTranslate(t *testing.T) {
	d := config.NewDictionary("en", "fr", map[string]string{
		"Hello World": "Bonjour le monde",
		"Hello":       "Salut",
		"World":       "Monde",
	})
	p := FromDictionary(d, nil)
	ctx := context.Background()

	tests := []struct {
		in, want string
	}{
		{"Hello World", "Bonjour le monde"},
		{"[0-1]\nHello World\n[0-2]", "[0-1]\nBonjour le monde\n[0-2]"},
		{"Hello there, World", "Salut there, Monde"},
		{"Nothing to see", "Nothing to see"},
	}
	for _, tt := range tests {
		out, err := p.Translate(ctx, tt.in, "en", "fr")
		require.NoError(t, err)
		assert.Equal(t, tt.want, out)
	}
}

// 测试从文件加载
func TestNew(t *testing.T) {
	_, err := New(providers.DefaultConfig(), nil)
	assert.True(t, errors.Is(err, translation.ErrUnavailableService))

	path := filepath.Join(t.TempDir(), "dict.toml")
	require.NoError(t, config.NewDictionary("en", "fr", map[string]string{"Hello World": "Bonjour le monde"}).Save(path))

	cfg := providers.DefaultConfig()
	cfg.Dictionary = path
	p, err := New(cfg, nil)
	require.NoError(t, err)

	out, err := p.Translate(context.Background(), "Hello World", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour le monde", out)
	assert.Equal(t, 0, p.CharLimit())
}
