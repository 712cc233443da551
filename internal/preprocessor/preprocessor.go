// Package preprocessor handles manual replacement blocks written in the
// LaTeX source:
//
//	%@{ optional note
//	\textbf{Welcome to France!}
//	%@-------------------------
//	% \textit{Bienvenue en France !}
//	%@} optional note
//
// Process swaps every block for an indicator comment so the rest of the
// pipeline never sees it. Rebuild puts either the replacement half or the
// untouched block back.
package preprocessor

import (
	"strings"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/internal/format"
	"github.com/nerdneilsfield/go-translatex/internal/logger"
	"github.com/nerdneilsfield/go-translatex/internal/slot"
	"github.com/nerdneilsfield/go-translatex/internal/store"
	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

const (
	BlockBegin     = "%@{"
	BlockSeparator = "%@--"
	BlockEnd       = "%@}"
	// Stamp annotates the place of a substitution in the rebuilt source.
	Stamp = "%@=Manual intervention by TransLaTeX"
)

var (
	// blockPattern matches one block, lazily, up to the end of its last line.
	blockPattern = regexp2.MustCompile(
		`(?<!\\)`+regexp2.Escape(BlockBegin)+`[\s\S]*?`+regexp2.Escape(BlockSeparator)+
			`[\s\S]*?`+regexp2.Escape(BlockEnd)+`.*`, regexp2.None)

	// replacementPattern captures the lines between the separator line and
	// the end line.
	replacementPattern = regexp2.MustCompile(
		regexp2.Escape(BlockSeparator)+`.*\n([\s\S]*?)\n[ \t]*`+regexp2.Escape(BlockEnd), regexp2.None)
)

// Preprocessor 预处理阶段的状态
type Preprocessor struct {
	base   string
	state  slot.Slot
	format string
	count  int
	store  *store.Store[int]
	logger *zap.Logger
}

// New 创建预处理器
func New(latex string, log *zap.Logger) *Preprocessor {
	p := &Preprocessor{
		format: format.DefaultIndicator,
		store:  store.New[int](),
		logger: logger.OrNop(log).Named("preprocessor"),
	}
	p.SetBase(latex)
	return p
}

// UpdateFromMarker 接收标记器还原后的字符串
func (p *Preprocessor) UpdateFromMarker(src interface{ Unmarked() string }) {
	p.SetProcessed(src.Unmarked())
}

// Base 返回原始字符串
func (p *Preprocessor) Base() string { return p.base }

// SetBase 替换原始字符串并重置所有状态
func (p *Preprocessor) SetBase(s string) {
	p.base = s
	p.SetUnprocessed(s)
}

// Unprocessed 返回未处理字符串
func (p *Preprocessor) Unprocessed() string { return p.state.Input() }

// SetUnprocessed 设置未处理字符串，清除已处理字符串、计数器和存储
func (p *Preprocessor) SetUnprocessed(s string) {
	p.state = slot.In(s)
	p.count = 0
	p.store.Reset()
}

// Processed 返回已处理字符串
func (p *Preprocessor) Processed() string { return p.state.Output() }

// SetProcessed 设置已处理字符串，清除未处理字符串
func (p *Preprocessor) SetProcessed(s string) {
	p.state = slot.Out(s)
}

// Format 返回指示符模板
func (p *Preprocessor) Format() string { return p.format }

// SetFormat 设置指示符模板，模板必须恰好包含一个 "{}"
func (p *Preprocessor) SetFormat(template string) error {
	if err := format.Check(template, format.MarkerPlaceholders); err != nil {
		return err
	}
	p.format = template
	return nil
}

// Count 返回替换块数量
func (p *Preprocessor) Count() int { return p.count }

// Store 返回指示符存储
func (p *Preprocessor) Store() *store.Store[int] { return p.store }

// DumpStore 以 "(key, value)" 行的形式输出存储
func (p *Preprocessor) DumpStore() string { return p.store.Dump() }

// Process 将每个手动替换块换成指示符
func (p *Preprocessor) Process() error {
	src := p.Unprocessed()
	if src == "" {
		return translation.EmptyInput(translation.StagePreprocessor, "unprocessed string")
	}

	runes := []rune(src)
	var b strings.Builder
	last := 0
	m, err := blockPattern.FindRunesMatch(runes)
	for m != nil && err == nil {
		p.count++
		p.store.Put(p.count, m.String())
		b.WriteString(string(runes[last:m.Index]))
		b.WriteString(format.Encode(p.format, p.count))
		last = m.Index + m.Length
		m, err = blockPattern.FindNextMatch(m)
	}
	if err != nil {
		return translation.WrapError(err, translation.ErrCodeUnknown, translation.StagePreprocessor, "scan replacement blocks")
	}
	b.WriteString(string(runes[last:]))

	if p.count > 0 {
		p.logger.Debug("replacement blocks found", zap.Int("blocks", p.count))
	}
	p.SetProcessed(b.String())
	return nil
}

// Rebuild 将指示符换回替换块。substitute 为 true 时放回替换内容，
// 否则放回原始块。
func (p *Preprocessor) Rebuild(substitute bool) error {
	out := p.Processed()
	if out == "" {
		return translation.EmptyInput(translation.StagePreprocessor, "processed string")
	}

	out, seen := format.Substitute(p.format, out, func(n int) (string, bool) {
		block, ok := p.store.Get(n)
		if !ok || !substitute {
			return block, ok
		}
		return Stamp + "\n" + replacement(block), true
	})

	for _, e := range p.store.Entries() {
		if !seen[e.Key] {
			logger.MissingPlaceholder(p.logger, translation.StagePreprocessor, format.Encode(p.format, e.Key))
		}
	}

	p.state = slot.In(out)
	return nil
}

// replacement extracts the second half of a block, without the comment
// characters and spaces that start its lines. Indentation is kept.
func replacement(block string) string {
	m, err := replacementPattern.FindStringMatch(block)
	if err != nil || m == nil {
		return ""
	}
	lines := strings.Split(m.GroupByNumber(1).String(), "\n")
	for i, line := range lines {
		body := strings.TrimLeft(line, " \t")
		indent := line[:len(line)-len(body)]
		lines[i] = indent + strings.TrimLeft(body, "% \t")
	}
	return strings.Join(lines, "\n")
}
