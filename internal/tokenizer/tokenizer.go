// Package tokenizer replaces what the marker left of the LaTeX syntax with
// short positional tokens, and puts it back after translation.
//
// The input is a marked string. A series of passes, from the most to the
// least specific construct, swaps comments, removed commands, math
// delimiters, marked commands and environments, markers and control
// symbols for tokens such as "[0-3]". Commands keep their last brace
// group in the text so its content gets translated; on the way back that
// group is spliced into the stored command.
package tokenizer

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/internal/format"
	"github.com/nerdneilsfield/go-translatex/internal/logger"
	"github.com/nerdneilsfield/go-translatex/internal/marker"
	"github.com/nerdneilsfield/go-translatex/internal/slot"
	"github.com/nerdneilsfield/go-translatex/internal/store"
	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// DefaultSublimit is the default upper bound of the minor token number.
const DefaultSublimit = 16

// maxExpandDepth bounds the expansion of tokens found inside stored
// values.
const maxExpandDepth = 8

// Tokenizer 分词阶段的状态：基础字符串与已标记/已分词两种形式之一
type Tokenizer struct {
	base  string
	state slot.Slot

	markerFormat string
	tokenFormat  string
	markerRe     *regexp.Regexp
	tokenRe      *regexp.Regexp

	sublimit     int
	major, minor int
	// taken holds token-shaped text found in the marked input, such as a
	// citation range "[1-3]". Those keys are never allocated.
	taken map[string]bool

	store  *store.Store[string]
	splice map[string]bool
	logger *zap.Logger
}

// New 创建分词器，marked 为已标记字符串，markerFormat 为其标记模板
func New(marked, markerFormat string, log *zap.Logger) (*Tokenizer, error) {
	if err := format.Check(markerFormat, format.MarkerPlaceholders); err != nil {
		return nil, err
	}
	t := &Tokenizer{
		markerFormat: markerFormat,
		markerRe:     format.Compile(markerFormat),
		tokenFormat:  format.DefaultToken,
		tokenRe:      format.Compile(format.DefaultToken),
		sublimit:     DefaultSublimit,
		store:        store.New[string](),
		splice:       make(map[string]bool),
		logger:       logger.OrNop(log).Named("tokenizer"),
	}
	t.SetBase(marked)
	return t, nil
}

// FromMarker 以标记器的输出创建分词器
func FromMarker(m *marker.Marker, log *zap.Logger) (*Tokenizer, error) {
	return New(m.Marked(), m.Format(), log)
}

// UpdateFromTranslator 接收翻译后的已分词字符串
func (t *Tokenizer) UpdateFromTranslator(src interface{ Translated() string }) {
	t.SetTokenized(src.Translated())
}

// Base 返回原始字符串
func (t *Tokenizer) Base() string { return t.base }

// SetBase 替换原始字符串并重置所有状态
func (t *Tokenizer) SetBase(s string) {
	t.base = s
	t.SetMarked(s)
}

// Marked 返回已标记字符串，已分词状态下为空
func (t *Tokenizer) Marked() string { return t.state.Input() }

// SetMarked 设置已标记字符串，清除已分词字符串、计数器和存储
func (t *Tokenizer) SetMarked(s string) {
	t.state = slot.In(s)
	t.major, t.minor = 0, 0
	t.taken = nil
	t.store.Reset()
	t.splice = make(map[string]bool)
}

// Tokenized 返回已分词字符串，已标记状态下为空
func (t *Tokenizer) Tokenized() string { return t.state.Output() }

// SetTokenized 设置已分词字符串，清除已标记字符串
func (t *Tokenizer) SetTokenized(s string) {
	t.state = slot.Out(s)
}

// MarkerFormat 返回标记模板
func (t *Tokenizer) MarkerFormat() string { return t.markerFormat }

// Format 返回分词模板
func (t *Tokenizer) Format() string { return t.tokenFormat }

// SetFormat 设置分词模板，模板必须恰好包含两个 "{}"
func (t *Tokenizer) SetFormat(template string) error {
	if err := format.Check(template, format.TokenPlaceholders); err != nil {
		return err
	}
	t.tokenFormat = template
	t.tokenRe = format.Compile(template)
	return nil
}

// Sublimit 返回次编号上限
func (t *Tokenizer) Sublimit() int { return t.sublimit }

// SetSublimit 设置次编号上限
func (t *Tokenizer) SetSublimit(n int) error {
	if n < 1 {
		return translation.InvalidArguments(translation.StageTokenizer,
			fmt.Sprintf("token sublimit must be positive, got %d", n))
	}
	t.sublimit = n
	return nil
}

// TotalTokenCount 返回已分配的分词数量，包括因与输入文本重复而跳过的编号
func (t *Tokenizer) TotalTokenCount() int {
	return t.major*t.sublimit + t.minor
}

// Store 返回分词存储
func (t *Tokenizer) Store() *store.Store[string] { return t.store }

// IsSplice 报告 token 的存储值是否为带有内容占位的命令模板
func (t *Tokenizer) IsSplice(token string) bool { return t.splice[token] }

// DumpStore 以 "(key, value)" 行的形式输出存储
func (t *Tokenizer) DumpStore() string { return t.store.Dump() }

func (t *Tokenizer) nextToken() string {
	for {
		if t.minor >= t.sublimit {
			t.minor = 0
			t.major++
		} else {
			t.minor++
		}
		tok := format.Encode(t.tokenFormat, t.major, t.minor)
		if !t.taken[tok] {
			return tok
		}
	}
}

// put allocates a token for value and records it.
func (t *Tokenizer) put(value string, splice bool) string {
	tok := t.nextToken()
	t.store.Put(tok, value)
	if splice {
		t.splice[tok] = true
	}
	return tok
}

// Tokenize 对已标记字符串分词。第一个含标记的行之前的内容原样保留。
func (t *Tokenizer) Tokenize() error {
	src := t.Marked()
	if src == "" {
		return translation.EmptyInput(translation.StageTokenizer, "marked string")
	}

	for _, tok := range t.tokenRe.FindAllString(src, -1) {
		if t.taken == nil {
			t.taken = make(map[string]bool)
		}
		t.taken[tok] = true
	}

	loc := t.markerRe.FindStringIndex(src)
	if loc == nil {
		t.logger.Warn("no marker found, nothing to tokenize")
		t.state = slot.Out(src)
		return nil
	}
	split := strings.LastIndexByte(src[:loc[0]], '\n') + 1
	header, body := src[:split], src[split:]

	for _, p := range passes {
		before := t.TotalTokenCount()
		body = p.run(t, body)
		t.logger.Debug("pass done",
			zap.String("pass", p.name),
			zap.Int("tokens", t.TotalTokenCount()-before))
	}

	t.state = slot.Out(header + body)
	return nil
}

// Detokenize 用存储重建已标记字符串。丢失的 token 只记录日志。
func (t *Tokenizer) Detokenize() error {
	src := t.Tokenized()
	if src == "" {
		return translation.EmptyInput(translation.StageTokenizer, "tokenized string")
	}

	t.reportMissing(src)
	out := t.spliceGroups(src)
	out = t.expand(out, 0)

	t.state = slot.In(out)
	return nil
}

// reportMissing logs every stored token that appears neither in s nor in
// another stored value.
func (t *Tokenizer) reportMissing(s string) {
	seen := make(map[string]bool)
	for _, tok := range t.tokenRe.FindAllString(s, -1) {
		seen[tok] = true
	}
	for _, e := range t.store.Entries() {
		for _, tok := range t.tokenRe.FindAllString(e.Value, -1) {
			seen[tok] = true
		}
	}
	for _, e := range t.store.Entries() {
		if !seen[e.Key] {
			logger.MissingPlaceholder(t.logger, translation.StageTokenizer, e.Key)
		}
	}
}

// spliceGroups puts each command template back around the brace group
// that follows its token, until no such pair is left.
func (t *Tokenizer) spliceGroups(s string) string {
	for {
		done := true
		for _, loc := range t.tokenRe.FindAllStringIndex(s, -1) {
			tok := s[loc[0]:loc[1]]
			if !t.splice[tok] {
				continue
			}
			end := groupEnd(s, loc[1])
			if end < 0 || s[loc[1]] != '{' {
				continue
			}
			tpl, _ := t.store.Get(tok)
			k := strings.LastIndex(tpl, Sentinel)
			s = s[:loc[0]] + tpl[:k] + s[loc[1]:end] + tpl[k+len(Sentinel):] + s[end:]
			done = false
			break
		}
		if done {
			return s
		}
	}
}

// expand replaces every known token by its value. Templates whose group
// went missing lose their sentinel.
func (t *Tokenizer) expand(s string, depth int) string {
	return t.tokenRe.ReplaceAllStringFunc(s, func(tok string) string {
		v, ok := t.store.Get(tok)
		if !ok {
			return tok
		}
		if t.splice[tok] {
			if k := strings.LastIndex(v, Sentinel); k >= 0 {
				t.logger.Warn("command lost its argument group",
					zap.String("token", tok))
				v = v[:k] + v[k+len(Sentinel):]
			}
		}
		if depth < maxExpandDepth {
			v = t.expand(v, depth+1)
		}
		return v
	})
}
