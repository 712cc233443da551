package factory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-translatex/pkg/providers"
	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// 所有内置服务都已注册
func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.ElementsMatch(t, []string{
		"deepl", "deeplx", "dictionary", "google", "google-web", "identity",
		"irma", "libretranslate", "ollama", "openai", "textsynth",
	}, r.Names())

	e, err := r.Get(DefaultService)
	require.NoError(t, err)
	assert.True(t, e.NeedsKey())
}

// 需要密钥的服务在缺少密钥时构造失败
func TestBuildMissingCredential(t *testing.T) {
	r := NewRegistry()
	for _, e := range r.Entries() {
		if !e.NeedsKey() {
			continue
		}
		t.Run(e.Name, func(t *testing.T) {
			t.Setenv(e.EnvVar, "")
			_, err := r.Build(e.Name, providers.DefaultConfig(), nil)
			assert.True(t, errors.Is(err, translation.ErrMissingCredential))
		})
	}
}

// 不需要密钥的服务可以直接构造
func TestBuildIdentity(t *testing.T) {
	svc, err := NewRegistry().Build("identity", providers.DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, "identity", svc.Name())
}
