// Package pipeline chains the stages of a translation run. The forward pass
// goes preprocessor, marker, tokenizer, translator; the backward pass
// undoes each stage in reverse order.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/nerdneilsfield/go-translatex/internal/format"
	"github.com/nerdneilsfield/go-translatex/internal/logger"
	"github.com/nerdneilsfield/go-translatex/internal/marker"
	"github.com/nerdneilsfield/go-translatex/internal/preprocessor"
	"github.com/nerdneilsfield/go-translatex/internal/tokenizer"
	"github.com/nerdneilsfield/go-translatex/pkg/providers"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/cache"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/identity"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/stats"
	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// Stage 流水线阶段，按前向顺序排列
type Stage int

const (
	// StageFull 执行所有阶段
	StageFull Stage = iota
	StagePreprocessor
	StageMarker
	StageTokenizer
	StageTranslator
)

var stageNames = map[Stage]string{
	StageFull:         "full",
	StagePreprocessor: "preprocessor",
	StageMarker:       "marker",
	StageTokenizer:    "tokenizer",
	StageTranslator:   "translator",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// ParseStage 解析阶段名称，空字符串表示完整流程
func ParseStage(name string) (Stage, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return StageFull, nil
	}
	for s, n := range stageNames {
		if n == name {
			return s, nil
		}
	}
	return StageFull, translation.InvalidArguments("",
		fmt.Sprintf("unknown stage %q, want one of preprocessor, marker, tokenizer, translator", name))
}

// MarshalYAML 以名称写入清单
func (s Stage) MarshalYAML() (interface{}, error) { return s.String(), nil }

// Options 一次运行的参数
type Options struct {
	Source string
	Target string

	// Service 为 nil 或 DryRun 为真时不翻译
	Service providers.Service
	DryRun  bool

	MarkerFormat  string
	TokenFormat   string
	TokenSublimit int
	Concurrency   int
	ChunkSize     int

	// StopAt 在该阶段结束前向处理后停止，输出该阶段的中间形式；
	// StageFull 执行前向与回退的完整流程
	StopAt Stage

	// NoSubstitution 保留手动替换块的原文
	NoSubstitution bool

	Stats *stats.Manager

	// Cache 不为 nil 时复用之前运行的译文，CacheScope 区分模型或端点
	Cache      *cache.Store
	CacheScope string

	Progress ProgressFunc
	Logger   *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Source == "" {
		o.Source = "fr"
	}
	if o.Target == "" {
		o.Target = "en"
	}
	if o.MarkerFormat == "" {
		o.MarkerFormat = format.DefaultMarker
	}
	if o.TokenFormat == "" {
		o.TokenFormat = format.DefaultToken
	}
	if o.TokenSublimit == 0 {
		o.TokenSublimit = tokenizer.DefaultSublimit
	}
	if o.Concurrency == 0 {
		o.Concurrency = 1
	}
	if o.DryRun || o.Service == nil {
		o.Service = identity.Provider{}
	}
	return o
}

// Result 一次运行的结果与中间产物
type Result struct {
	RunID    string        `yaml:"run_id"`
	Service  string        `yaml:"service"`
	Source   string        `yaml:"source"`
	Target   string        `yaml:"target"`
	StopAt   Stage         `yaml:"stop_at"`
	DryRun   bool          `yaml:"dry_run"`
	Started  time.Time     `yaml:"started"`
	Duration time.Duration `yaml:"duration"`

	Blocks   int `yaml:"blocks"`
	Markers  int `yaml:"markers"`
	Tokens   int `yaml:"tokens"`
	Chunks   int `yaml:"chunks"`
	Failures int `yaml:"failed_chunks"`

	CacheHits int64 `yaml:"cache_hits,omitempty"`

	Input        string `yaml:"-"`
	Preprocessed string `yaml:"-"`
	Marked       string `yaml:"-"`
	Tokenized    string `yaml:"-"`
	Translated   string `yaml:"-"`
	Detokenized  string `yaml:"-"`
	Unmarked     string `yaml:"-"`
	Output       string `yaml:"-"`

	PreprocessorStore string `yaml:"-"`
	MarkerStore       string `yaml:"-"`
	TokenizerStore    string `yaml:"-"`

	Stats []stats.ServiceStats `yaml:"stats,omitempty"`
}

// Artifact 一个中间产物，Suffix 附加在输出文件的基名之后
type Artifact struct {
	Suffix  string
	Content string
}

// Artifacts 返回已生成的中间产物，按流程顺序排列
func (r *Result) Artifacts() []Artifact {
	all := []Artifact{
		{"preprocessed.tex", r.Preprocessed},
		{"preprocessor.store", r.PreprocessorStore},
		{"marked.tex", r.Marked},
		{"marker.store", r.MarkerStore},
		{"tokenized.tex", r.Tokenized},
		{"tokenizer.store", r.TokenizerStore},
		{"translated.tex", r.Translated},
		{"detokenized.tex", r.Detokenized},
		{"unmarked.tex", r.Unmarked},
	}
	out := all[:0]
	for _, a := range all {
		if a.Content != "" {
			out = append(out, a)
		}
	}
	return out
}

// Manifest 以 YAML 序列化运行摘要
func (r *Result) Manifest() ([]byte, error) {
	return yaml.Marshal(r)
}

// Run 对 input 执行流水线。空输入、无效的格式模板或参数以及上下文取消
// 会返回错误；单个分块的翻译失败只记录日志。
func Run(ctx context.Context, input string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	res := &Result{
		RunID:   uuid.NewString(),
		Service: opts.Service.Name(),
		Source:  opts.Source,
		Target:  opts.Target,
		StopAt:  opts.StopAt,
		DryRun:  opts.DryRun,
		Started: time.Now(),
		Input:   input,
	}
	log := logger.OrNop(opts.Logger).With(zap.String("run_id", res.RunID))
	log.Info("run started",
		zap.String("service", res.Service),
		zap.String("source", opts.Source),
		zap.String("target", opts.Target),
		zap.Stringer("stop_at", opts.StopAt))

	pre := preprocessor.New(input, log)
	if err := pre.Process(); err != nil {
		return nil, err
	}
	res.Preprocessed = pre.Processed()
	res.PreprocessorStore = pre.DumpStore()
	res.Blocks = pre.Count()
	if opts.StopAt == StagePreprocessor {
		return res.finish(res.Preprocessed, opts, log), nil
	}

	mk := marker.FromPreprocessor(pre, log)
	if err := mk.SetFormat(opts.MarkerFormat); err != nil {
		return nil, err
	}
	if err := mk.Mark(); err != nil {
		return nil, err
	}
	res.Marked = mk.Marked()
	res.MarkerStore = mk.DumpStore()
	res.Markers = mk.Count()
	if opts.StopAt == StageMarker {
		return res.finish(res.Marked, opts, log), nil
	}

	tk, err := tokenize(mk, opts, res, log)
	if err != nil {
		return nil, err
	}
	if opts.StopAt == StageTokenizer {
		return res.finish(res.Tokenized, opts, log), nil
	}

	tr, err := translate(ctx, tk, opts, res, log)
	if err != nil {
		return nil, err
	}
	if opts.StopAt == StageTranslator {
		return res.finish(res.Translated, opts, log), nil
	}

	// 回退：反分词、还原标记、重建替换块
	tk.UpdateFromTranslator(tr)
	if err := tk.Detokenize(); err != nil {
		return nil, err
	}
	res.Detokenized = tk.Marked()

	mk.UpdateFromTokenizer(tk)
	if err := mk.Unmark(); err != nil {
		return nil, err
	}
	res.Unmarked = mk.Unmarked()

	pre.UpdateFromMarker(mk)
	if err := pre.Rebuild(!opts.NoSubstitution); err != nil {
		return nil, err
	}
	return res.finish(pre.Unprocessed(), opts, log), nil
}

// finish records the output and the run totals.
func (r *Result) finish(output string, opts Options, log *zap.Logger) *Result {
	r.Output = output
	r.Duration = time.Since(r.Started)
	if opts.Stats != nil {
		r.Stats = opts.Stats.All()
	}
	if opts.Cache != nil {
		r.CacheHits, _ = opts.Cache.Stats()
	}

	log.Info("run finished",
		zap.Stringer("stop_at", r.StopAt),
		zap.Duration("duration", r.Duration),
		zap.Int("markers", r.Markers),
		zap.Int("tokens", r.Tokens),
		zap.Int("failed_chunks", r.Failures))
	return r
}

func tokenize(mk *marker.Marker, opts Options, res *Result, log *zap.Logger) (*tokenizer.Tokenizer, error) {
	tk, err := tokenizer.FromMarker(mk, log)
	if err != nil {
		return nil, err
	}
	if err := tk.SetFormat(opts.TokenFormat); err != nil {
		return nil, err
	}
	if err := tk.SetSublimit(opts.TokenSublimit); err != nil {
		return nil, err
	}
	if err := tk.Tokenize(); err != nil {
		return nil, err
	}
	res.Tokenized = tk.Tokenized()
	res.TokenizerStore = tk.DumpStore()
	res.Tokens = tk.TotalTokenCount()
	return tk, nil
}

// translate sends the tokenized string through the service, wrapped in
// the stats and cache middlewares when they are configured.
func translate(ctx context.Context, tk *tokenizer.Tokenizer, opts Options, res *Result, log *zap.Logger) (*Translator, error) {
	svc := opts.Service
	if opts.Stats != nil {
		svc = stats.Wrap(svc, opts.Stats, format.Compile(tk.Format()), log)
	}
	if opts.Cache != nil && !opts.DryRun {
		svc = cache.Wrap(svc, opts.Cache, opts.CacheScope, log)
	}
	tr, err := FromTokenizer(tk, svc, log)
	if err != nil {
		return nil, err
	}
	if err := tr.SetLanguages(opts.Source, opts.Target); err != nil {
		return nil, err
	}
	if err := tr.SetConcurrency(opts.Concurrency); err != nil {
		return nil, err
	}
	tr.SetChunkSize(opts.ChunkSize)
	tr.SetProgress(opts.Progress)
	if err := tr.Translate(ctx); err != nil {
		return nil, err
	}
	res.Translated = tr.Translated()
	res.Chunks, res.Failures = tr.Chunks(), tr.Failures()
	return tr, nil
}
