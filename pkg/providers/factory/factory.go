// Package factory holds the static list of translation services.
package factory

import (
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/pkg/providers"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/deepl"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/deeplx"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/dictionary"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/google"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/googleweb"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/identity"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/irma"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/libretranslate"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/ollama"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/openai"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/textsynth"
)

// DefaultService 未指定服务时使用
const DefaultService = google.Name

// adapt turns a typed constructor into a providers.Constructor.
func adapt[S providers.Service](fn func(providers.BaseConfig, *zap.Logger) (S, error)) providers.Constructor {
	return func(cfg providers.BaseConfig, log *zap.Logger) (providers.Service, error) {
		svc, err := fn(cfg, log)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
}

// Entries 返回所有内置服务
func Entries() []providers.Entry {
	return []providers.Entry{
		{Name: google.Name, Description: "Google Cloud Translation v2", EnvVar: google.EnvVar, New: adapt(google.New)},
		{Name: googleweb.Name, Description: "Google Translate web page, no key (unofficial)", New: adapt(googleweb.New)},
		{Name: deepl.Name, Description: "DeepL API", EnvVar: deepl.EnvVar, New: adapt(deepl.New)},
		{Name: deeplx.Name, Description: "Self hosted DeepLX server", New: adapt(deeplx.New)},
		{Name: libretranslate.Name, Description: "LibreTranslate server", New: adapt(libretranslate.New)},
		{Name: irma.Name, Description: "IRMA M2M100, Unistra network only", New: adapt(irma.New)},
		{Name: textsynth.Name, Description: "TextSynth M2M100", EnvVar: textsynth.EnvVar, New: adapt(textsynth.New)},
		{Name: openai.Name, Description: "OpenAI chat models", EnvVar: openai.EnvVar, New: adapt(openai.New)},
		{Name: ollama.Name, Description: "Ollama or OpenAI compatible server", New: adapt(ollama.New)},
		{Name: dictionary.Name, Description: "Fixed phrase pairs from a TOML file", New: adapt(dictionary.New)},
		{Name: identity.Name, Description: "Do not translate", New: adapt(identity.New)},
	}
}

// NewRegistry 创建包含所有内置服务的注册表
func NewRegistry() *providers.Registry {
	return providers.NewRegistry(Entries()...)
}
