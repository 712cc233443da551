// Package marker replaces the structure of a LaTeX document with numbered
// markers and puts it back.
//
// Marking walks the syntax tree of the document body. Command and
// environment names, math regions and code environments are swapped for
// markers such as "//3//", and the replaced text is kept in an ordered
// store. Unmarking replays the store over the (translated) marked string.
package marker

import (
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/internal/format"
	"github.com/nerdneilsfield/go-translatex/internal/latex"
	"github.com/nerdneilsfield/go-translatex/internal/logger"
	"github.com/nerdneilsfield/go-translatex/internal/slot"
	"github.com/nerdneilsfield/go-translatex/internal/store"
	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// Marker 标记阶段的状态：基础字符串与未标记/已标记两种形式之一
type Marker struct {
	base   string
	state  slot.Slot
	format string
	count  int
	// taken holds the numbers of marker-shaped text already in the input.
	taken  map[int]bool
	store  *store.Store[int]
	parser *latex.Parser
	logger *zap.Logger
}

// New 创建标记器，base 同时作为待标记字符串
func New(base string, log *zap.Logger) *Marker {
	m := &Marker{
		format: format.DefaultMarker,
		store:  store.New[int](),
		parser: latex.NewParser(latex.DefaultVerbatimEnvs, latex.DefaultRawArgCommands),
		logger: logger.OrNop(log).Named("marker"),
	}
	m.SetBase(base)
	return m
}

// FromPreprocessor 以预处理结果创建标记器
func FromPreprocessor(src interface{ Processed() string }, log *zap.Logger) *Marker {
	return New(src.Processed(), log)
}

// UpdateFromTokenizer 接收反分词后的已标记字符串
func (m *Marker) UpdateFromTokenizer(src interface{ Marked() string }) {
	m.SetMarked(src.Marked())
}

// Base 返回原始字符串
func (m *Marker) Base() string { return m.base }

// SetBase 替换原始字符串并重置所有状态
func (m *Marker) SetBase(s string) {
	m.base = s
	m.SetUnmarked(s)
}

// Unmarked 返回未标记字符串，已标记状态下为空
func (m *Marker) Unmarked() string { return m.state.Input() }

// SetUnmarked 设置未标记字符串，清除已标记字符串、计数器和存储
func (m *Marker) SetUnmarked(s string) {
	m.state = slot.In(s)
	m.count = 0
	m.taken = nil
	m.store.Reset()
}

// Marked 返回已标记字符串，未标记状态下为空
func (m *Marker) Marked() string { return m.state.Output() }

// SetMarked 设置已标记字符串，清除未标记字符串
func (m *Marker) SetMarked(s string) {
	m.state = slot.Out(s)
}

// Format 返回标记模板
func (m *Marker) Format() string { return m.format }

// SetFormat 设置标记模板，模板必须恰好包含一个 "{}"
func (m *Marker) SetFormat(template string) error {
	if err := format.Check(template, format.MarkerPlaceholders); err != nil {
		return err
	}
	m.format = template
	return nil
}

// Count 返回最后分配的标记编号
func (m *Marker) Count() int { return m.count }

// Store 返回标记存储
func (m *Marker) Store() *store.Store[int] { return m.store }

// DumpStore 以 "(key, value)" 行的形式输出存储
func (m *Marker) DumpStore() string { return m.store.Dump() }

// Mark 标记未标记字符串。存在 document 环境时只处理该环境，
// 否则处理整个文档。
func (m *Marker) Mark() error {
	src := m.Unmarked()
	if src == "" {
		return translation.EmptyInput(translation.StageMarker, "unmarked string")
	}

	m.taken = format.Taken(m.format, src)
	if len(m.taken) > 0 {
		m.logger.Debug("input already holds marker-shaped text", zap.Int("count", len(m.taken)))
	}

	root, err := m.parser.Parse(src)
	if err != nil {
		return err
	}

	start := root.Find("document")
	if start == nil {
		m.logger.Debug("no document environment, marking the whole input")
		start = root
	}
	if err := m.traverse(start); err != nil {
		return err
	}

	m.SetMarked(root.String())
	m.logger.Debug("marking done", zap.Int("markers", m.count))
	return nil
}

// Unmark 用存储重建未标记字符串。丢失的标记只记录日志，不中断处理；
// 存储保持不变。
func (m *Marker) Unmark() error {
	src := m.Marked()
	if src == "" {
		return translation.EmptyInput(translation.StageMarker, "marked string")
	}

	out, seen := format.Substitute(m.format, src, m.store.Get)

	for _, e := range m.store.Entries() {
		if !seen[e.Key] {
			logger.MissingPlaceholder(m.logger, translation.StageMarker, format.Encode(m.format, e.Key))
		}
	}

	m.state = slot.In(out)
	return nil
}

// next allocates a marker. Numbers that already appear in the input as
// literal text are skipped so Unmark leaves that text alone.
func (m *Marker) next() (int, string) {
	m.count++
	for m.taken[m.count] {
		m.count++
	}
	return m.count, format.Encode(m.format, m.count)
}
