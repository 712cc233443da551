package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nerdneilsfield/go-translatex/internal/chunker"
	"github.com/nerdneilsfield/go-translatex/internal/format"
	"github.com/nerdneilsfield/go-translatex/internal/logger"
	"github.com/nerdneilsfield/go-translatex/internal/slot"
	"github.com/nerdneilsfield/go-translatex/internal/tokenizer"
	"github.com/nerdneilsfield/go-translatex/pkg/providers"
	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// ProgressFunc 每翻译完一个分块调用一次
type ProgressFunc func(done, total int)

// Translator 翻译阶段：将已分词字符串分块发送给翻译服务
type Translator struct {
	base  string
	state slot.Slot

	tokenFormat string
	tokenRe     *regexp.Regexp

	service        providers.Service
	source, target string
	concurrency    int
	chunkSize      int
	progress       ProgressFunc

	chunks   int
	failures int
	logger   *zap.Logger
}

// NewTranslator 创建翻译阶段
func NewTranslator(tokenized, tokenFormat string, svc providers.Service, log *zap.Logger) (*Translator, error) {
	if err := format.Check(tokenFormat, format.TokenPlaceholders); err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, translation.Unavailable("", fmt.Errorf("no translation service"))
	}
	t := &Translator{
		tokenFormat: tokenFormat,
		tokenRe:     format.Compile(tokenFormat),
		service:     svc,
		source:      "fr",
		target:      "en",
		concurrency: 1,
		logger:      logger.OrNop(log).Named("translator"),
	}
	t.SetBase(tokenized)
	return t, nil
}

// FromTokenizer 以分词器的输出创建翻译阶段
func FromTokenizer(tk *tokenizer.Tokenizer, svc providers.Service, log *zap.Logger) (*Translator, error) {
	return NewTranslator(tk.Tokenized(), tk.Format(), svc, log)
}

// Base 返回原始字符串
func (t *Translator) Base() string { return t.base }

// SetBase 替换原始字符串并重置所有状态
func (t *Translator) SetBase(s string) {
	t.base = s
	t.SetTokenized(s)
}

// Tokenized 返回待翻译字符串
func (t *Translator) Tokenized() string { return t.state.Input() }

// SetTokenized 设置待翻译字符串，清除译文
func (t *Translator) SetTokenized(s string) {
	t.state = slot.In(s)
	t.chunks, t.failures = 0, 0
}

// Translated 返回译文
func (t *Translator) Translated() string { return t.state.Output() }

// SetTranslated 设置译文，清除待翻译字符串
func (t *Translator) SetTranslated(s string) { t.state = slot.Out(s) }

// Service 返回翻译服务
func (t *Translator) Service() providers.Service { return t.service }

// SetLanguages 设置源语言与目标语言
func (t *Translator) SetLanguages(source, target string) error {
	src, err := providers.NormalizeLanguage(source)
	if err != nil {
		return translation.InvalidArguments(translation.StageTranslator, err.Error())
	}
	dst, err := providers.NormalizeLanguage(target)
	if err != nil {
		return translation.InvalidArguments(translation.StageTranslator, err.Error())
	}
	t.source, t.target = src, dst
	return nil
}

// Languages 返回源语言与目标语言
func (t *Translator) Languages() (string, string) { return t.source, t.target }

// SetConcurrency 设置并行请求数
func (t *Translator) SetConcurrency(n int) error {
	if n < 1 {
		return translation.InvalidArguments(translation.StageTranslator,
			fmt.Sprintf("concurrency must be positive, got %d", n))
	}
	t.concurrency = n
	return nil
}

// SetChunkSize 覆盖服务的字符限制，0 表示使用服务的限制
func (t *Translator) SetChunkSize(n int) { t.chunkSize = n }

// SetProgress 设置进度回调
func (t *Translator) SetProgress(fn ProgressFunc) { t.progress = fn }

// Chunks 返回上次翻译的分块数
func (t *Translator) Chunks() int { return t.chunks }

// Failures 返回上次翻译中失败并保留原文的分块数
func (t *Translator) Failures() int { return t.failures }

// Translate 翻译已分词字符串。第一个 token 之前的内容原样保留；没有 token
// 时翻译整个字符串。失败的分块保留原文并记录日志，上下文取消则中止。
func (t *Translator) Translate(ctx context.Context) error {
	src := t.Tokenized()
	if src == "" {
		return translation.EmptyInput(translation.StageTranslator, "tokenized string")
	}

	header, body := "", src
	if loc := t.tokenRe.FindStringIndex(src); loc != nil {
		header, body = src[:loc[0]], src[loc[0]:]
	} else {
		t.logger.Warn("no token found, translating the whole string")
	}

	limit := t.chunkSize
	if limit <= 0 {
		limit = t.service.CharLimit()
	}
	chunks := chunker.Split(body, limit)
	results := make([]string, len(chunks))

	var (
		mu       sync.Mutex
		done     int
		failures int
	)
	report := func(failed bool) {
		mu.Lock()
		defer mu.Unlock()
		done++
		if failed {
			failures++
		}
		if t.progress != nil {
			t.progress(done, len(chunks))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)
	for i, chunk := range chunks {
		if !t.translatable(chunk) {
			results[i] = chunk
			report(false)
			continue
		}
		g.Go(func() error {
			out, err := t.service.Translate(gctx, chunk, t.source, t.target)
			if err != nil {
				if translation.IsCanceled(err) || gctx.Err() != nil {
					return err
				}
				t.logger.Error("chunk left untranslated",
					zap.Int("chunk", i),
					zap.String("service", t.service.Name()),
					zap.Error(translation.ServiceCall(t.service.Name(), err)))
				results[i] = chunk
				report(true)
				return nil
			}
			results[i] = out
			report(false)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return translation.WrapError(err, translation.ErrCodeService, translation.StageTranslator, "translation aborted")
	}

	t.chunks, t.failures = len(chunks), failures
	t.logger.Info("translation done",
		zap.String("service", t.service.Name()),
		zap.Int("chunks", len(chunks)),
		zap.Int("failed", failures))

	t.state = slot.Out(header + strings.Join(results, ""))
	return nil
}

// translatable reports whether s holds text once its tokens are removed.
func (t *Translator) translatable(s string) bool {
	rest := t.tokenRe.ReplaceAllString(s, "")
	return strings.IndexFunc(rest, unicode.IsLetter) >= 0
}
