// Package dictionary translates with fixed phrase pairs read from a TOML
// file. It needs no network and makes runs reproducible.
package dictionary

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/internal/config"
	"github.com/nerdneilsfield/go-translatex/pkg/providers"
	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// Name 注册名称
const Name = "dictionary"

// Provider 词典提供商
type Provider struct {
	dict     *config.Dictionary
	replacer *strings.Replacer
	logger   *zap.Logger
}

var _ providers.Service = (*Provider)(nil)

// New 读取 cfg.Dictionary 指定的词典
func New(cfg providers.BaseConfig, log *zap.Logger) (*Provider, error) {
	if cfg.Dictionary == "" {
		return nil, translation.Unavailable(Name, errors.New("no dictionary file configured"))
	}
	d, err := config.LoadDictionary(cfg.Dictionary)
	if err != nil {
		return nil, translation.Unavailable(Name, err)
	}
	return FromDictionary(d, log), nil
}

// FromDictionary 使用内存中的词典
func FromDictionary(d *config.Dictionary, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}

	// 长短语优先，避免被其中的短语截断
	phrases := make([]string, 0, len(d.Translations))
	for src := range d.Translations {
		if src != "" {
			phrases = append(phrases, src)
		}
	}
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})
	pairs := make([]string, 0, 2*len(phrases))
	for _, src := range phrases {
		pairs = append(pairs, src, d.Translations[src])
	}

	return &Provider{dict: d, replacer: strings.NewReplacer(pairs...), logger: log.Named(Name)}
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Description() string { return "Fixed phrase pairs from a TOML file, offline" }

func (p *Provider) CharLimit() int { return 0 }

// Translate 替换文本中出现的每个词典短语
func (p *Provider) Translate(_ context.Context, text, source, target string) (string, error) {
	if !p.dict.Covers(providers.BaseLanguage(source), providers.BaseLanguage(target)) {
		p.logger.Warn("dictionary language pair differs from the requested one",
			zap.String("dictionary", p.dict.SourceLang+"->"+p.dict.TargetLang),
			zap.String("requested", source+"->"+target))
	}
	if v, ok := p.dict.Translations[text]; ok {
		return v, nil
	}
	return p.replacer.Replace(text), nil
}
