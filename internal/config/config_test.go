package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// 测试默认配置
func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, "fr", cfg.SourceLang)
	assert.Equal(t, "en", cfg.TargetLang)
	assert.Equal(t, "google", cfg.Service)
	assert.Equal(t, "//{}//", cfg.MarkerFormat)
	assert.Equal(t, "[{}-{}]", cfg.TokenFormat)
	assert.Equal(t, 16, cfg.TokenSublimit)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.NoError(t, cfg.Validate())
}

// 测试从文件和环境变量加载
func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `source_lang: en
target_lang: de
service: deepl
concurrency: 4
services:
  deepl:
    api_key: file-key
    endpoint: https://example.test/v2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("TRANSLATEX_TARGET_LANG", "it")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.SourceLang)
	assert.Equal(t, "it", cfg.TargetLang)
	assert.Equal(t, "deepl", cfg.Service)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 16, cfg.TokenSublimit)

	base := cfg.ServiceConfig("deepl")
	assert.Equal(t, "file-key", base.APIKey)
	assert.Equal(t, "https://example.test/v2", base.APIEndpoint)
	assert.Equal(t, 30*time.Second, base.Timeout)

	assert.Empty(t, cfg.ServiceConfig("google").APIKey)
}

// 文件不存在时报错
func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// 保存后可以重新加载
func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := NewDefaultConfig()
	cfg.Service = "ollama"
	cfg.Services["ollama"] = ServiceConfig{Endpoint: "http://gpu:11434/v1", Model: "qwen2.5"}
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", loaded.Service)
	assert.Equal(t, "qwen2.5", loaded.ServiceConfig("ollama").Model)
}

// 测试配置校验
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Marker Format", func(c *Config) { c.MarkerFormat = "a{}b{}c" }},
		{"Token Format", func(c *Config) { c.TokenFormat = "noplaceholder" }},
		{"Language", func(c *Config) { c.TargetLang = "not a language" }},
		{"Sublimit", func(c *Config) { c.TokenSublimit = 0 }},
		{"Concurrency", func(c *Config) { c.Concurrency = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := NewDefaultConfig()
	cfg.TokenFormat = "x"
	assert.True(t, errors.Is(cfg.Validate(), translation.ErrInvalidFormatTemplate))
}

// 测试词典文件
func TestDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.toml")
	d := NewDictionary("en", "fr", map[string]string{"Hello World": "Bonjour le monde"})
	require.NoError(t, d.Save(path))

	loaded, err := LoadDictionary(path)
	require.NoError(t, err)
	assert.Equal(t, d, loaded)
	assert.True(t, loaded.Covers("en", "fr"))
	assert.False(t, loaded.Covers("en", "de"))
	assert.True(t, NewDictionary("", "", nil).Covers("en", "de"))

	empty := filepath.Join(t.TempDir(), "empty.toml")
	require.NoError(t, os.WriteFile(empty, []byte("source_lang = \"en\"\n"), 0o644))
	_, err = LoadDictionary(empty)
	assert.Error(t, err)

	_, err = LoadDictionary(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
