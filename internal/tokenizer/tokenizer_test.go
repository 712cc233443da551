package tokenizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nerdneilsfield/go-translatex/internal/format"
	"github.com/nerdneilsfield/go-translatex/internal/marker"
	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

func newTokenizer(t *testing.T, marked string) *Tokenizer {
	t.Helper()
	tok, err := New(marked, format.DefaultMarker, nil)
	require.NoError(t, err)
	return tok
}

func tokenize(t *testing.T, marked string) *Tokenizer {
	t.Helper()
	tok := newTokenizer(t, marked)
	require.NoError(t, tok.Tokenize())
	return tok
}

// 测试状态转换与参数校验
func TestTokenizerState(t *testing.T) {
	tok := newTokenizer(t, "\\//1//{x}")
	assert.Equal(t, "\\//1//{x}", tok.Base())
	assert.Equal(t, "\\//1//{x}", tok.Marked())

	require.NoError(t, tok.Tokenize())
	assert.Empty(t, tok.Marked())
	assert.NotEmpty(t, tok.Tokenized())
	assert.Equal(t, 1, tok.TotalTokenCount())

	tok.SetTokenized("spam")
	assert.Equal(t, "spam", tok.Tokenized())
	assert.Empty(t, tok.Marked())
	assert.Equal(t, 1, tok.Store().Len())

	tok.SetMarked("eggs")
	assert.Empty(t, tok.Tokenized())
	assert.Zero(t, tok.Store().Len())
	assert.Zero(t, tok.TotalTokenCount())

	tok.SetBase("ham")
	assert.Equal(t, "ham", tok.Marked())

	_, err := New("x", "noplaceholder", nil)
	assert.True(t, errors.Is(err, translation.ErrInvalidFormatTemplate))
}

// 测试分词模板校验
func TestTokenizerSetFormat(t *testing.T) {
	tok := newTokenizer(t, "//1//")
	for _, bad := range []string{"noplaceholder", "{}spam[]", "[]{eggs"} {
		err := tok.SetFormat(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, translation.ErrInvalidFormatTemplate))
	}
	assert.Equal(t, format.DefaultToken, tok.Format())

	require.NoError(t, tok.SetFormat("a{}b{}c"))
	require.NoError(t, tok.Tokenize())
	assert.Equal(t, "a0b1c", tok.Tokenized())

	err := tok.SetSublimit(0)
	assert.True(t, errors.Is(err, translation.ErrInvalidArguments))
}

// 测试次编号回绕
func TestNextToken(t *testing.T) {
	tok := newTokenizer(t, "x")
	require.NoError(t, tok.SetSublimit(2))

	var got []string
	for i := 0; i < 4; i++ {
		got = append(got, tok.nextToken())
	}
	assert.Equal(t, []string{"[0-1]", "[0-2]", "[1-0]", "[1-1]"}, got)
	assert.Equal(t, 3, tok.TotalTokenCount())
}

// 测试各个分词步骤
func TestTokenize(t *testing.T) {
	tests := []struct {
		name   string
		marked string
		want   string
		store  map[string]string
	}{
		{
			name:   "Named Environment",
			marked: "\\begin{//1//}\nHello World\n\\end{//1//}\n",
			want:   "[0-1]\nHello World\n[0-2]\n",
			store:  map[string]string{"[0-1]": "\\begin{//1//}", "[0-2]": "\\end{//1//}"},
		},
		{
			name:   "Marked Command Keeps Last Group",
			marked: "\\//1//{Hello World}",
			want:   "[0-1]{Hello World}",
			store:  map[string]string{"[0-1]": "\\//1//%%"},
		},
		{
			name:   "Command With Several Groups",
			marked: "\\//1//[opt]{a}{Caption}",
			want:   "[0-1]{Caption}",
			store:  map[string]string{"[0-1]": "\\//1//[opt]{a}%%"},
		},
		{
			name:   "Command Without Groups",
			marked: "A \\//1// B",
			want:   "A [0-1] B",
			store:  map[string]string{"[0-1]": "\\//1//"},
		},
		{
			name:   "Nested Commands",
			marked: "\\//2//{Hello \\//1//{World}}",
			want:   "[0-1]{Hello [0-2]{World}}",
		},
		{
			name:   "Math With Text",
			marked: "\\[//1//\\//3//{foo bar baz}//2//\\]",
			want:   "[0-1][0-3]{foo bar baz}[0-2]",
			store: map[string]string{
				"[0-1]": "\\[//1//",
				"[0-2]": "//2//\\]",
				"[0-3]": "\\//3//%%",
			},
		},
		{
			name:   "Unnamed Math",
			marked: "Let $//1//$ be $$//2//$$ and \\(//3//\\).",
			want:   "Let [0-1] be [0-2] and [0-3].",
			store:  map[string]string{"[0-1]": "$//1//$", "[0-2]": "$$//2//$$", "[0-3]": "\\(//3//\\)"},
		},
		{
			name:   "Escaped Dollar",
			marked: "Cost \\$5 and $//1//$",
			want:   "Cost [0-2]5 and [0-1]",
			store:  map[string]string{"[0-1]": "$//1//$", "[0-2]": "\\$"},
		},
		{
			name:   "Comments And Escapes",
			marked: "\\begin{//1//}\nText % comment\n50\\% more\n\\end{//1//}",
			want:   "[0-2]\nText [0-1]\n50[0-4] more\n[0-3]",
			store:  map[string]string{"[0-1]": "% comment", "[0-4]": "\\%"},
		},
		{
			name:   "Removed Commands",
			marked: "\\//1//{See \\cite{a}[p. 3] and \\ref{b}.}",
			want:   "[0-3]{See [0-1] and [0-2].}",
			store:  map[string]string{"[0-1]": "\\cite{a}[p. 3]", "[0-2]": "\\ref{b}"},
		},
		{
			name:   "Special Commands",
			marked: "\\begin{//2//}\n\\item One\n\\item Two \\verb+a{b+\n\\end{//2//}",
			want:   "[0-4]\n[0-2] One\n[0-3] Two [0-1]\n[0-5]",
			store:  map[string]string{"[0-1]": "\\verb+a{b+"},
		},
		{
			name:   "Code Environment Is One Token",
			marked: "\\begin{//2//}[language=Python]//1//\\end{//2//}\n",
			want:   "[0-1]\n",
			store:  map[string]string{"[0-1]": "\\begin{//2//}[language=Python]//1//\\end{//2//}"},
		},
		{
			name:   "Markers Before End",
			marked: "\\begin{//3//}\nText //1// //2//\n\\end{//3//}",
			want:   "[0-1]\nText [0-2]",
			store:  map[string]string{"[0-2]": "//1// //2//\n\\end{//3//}"},
		},
		{
			name:   "Header Is Kept",
			marked: "\\documentclass{article}\n% preamble\n\\begin{//1//}\nHi\n\\end{//1//}",
			want:   "\\documentclass{article}\n% preamble\n[0-1]\nHi\n[0-2]",
		},
		{
			name:   "Percent In Raw Text",
			marked: "//1// \\verb|x%y| and \\url{http://a.b/c%20d} cost 100\\%",
			want:   "[0-3] [0-1] and [0-2] cost 100[0-4]",
			store: map[string]string{
				"[0-1]": "\\verb|x%y|",
				"[0-2]": "\\url{http://a.b/c%20d}",
				"[0-4]": "\\%",
			},
		},
		{
			name:   "Item Label",
			marked: "\\begin{//1//}\n\\item[a)] First\n\\end{//1//}",
			want:   "[0-2]\n[0-1] First\n[0-3]",
			store:  map[string]string{"[0-1]": "\\item[a)]"},
		},
		{
			name:   "Options After Kept Group",
			marked: "\\//1//{x}[a][b] end",
			want:   "[0-1]{x}[0-2] end",
			store:  map[string]string{"[0-1]": "\\//1//%%", "[0-2]": "[a][b]"},
		},
		{
			name:   "Line Break With Spacing",
			marked: "//1//Line\\\\[2pt]\nNext\\\\*",
			want:   "[0-1]Line[0-2]\nNext[0-3]",
			store:  map[string]string{"[0-2]": "\\\\[2pt]", "[0-3]": "\\\\*"},
		},
		{
			name:   "Token Shaped Text Is Not Reused",
			marked: "//1// See [0-1] and \\//2//{x}",
			want:   "[0-3] See [0-1] and [0-2]{x}",
			store:  map[string]string{"[0-2]": "\\//2//%%", "[0-3]": "//1//"},
		},
		{
			name:   "Spacers",
			marked: "//1//a\\,b\\;c\\\\d",
			want:   "[0-1]a[0-2]b[0-3]c[0-4]d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := tokenize(t, tt.marked)
			assert.Equal(t, tt.want, tok.Tokenized())
			for k, v := range tt.store {
				got, ok := tok.Store().Get(k)
				if assert.True(t, ok, k) {
					assert.Equal(t, v, got, k)
				}
			}
		})
	}
}

// 分词再反分词必须得到原文
func TestTokenizeRoundTrip(t *testing.T) {
	inputs := []string{
		"\\begin{//1//}\nHello World\n\\end{//1//}\n",
		"\\//2//{Hello \\//1//{World}} and \\cite{x}",
		"\\[//1//\\//3//{foo bar baz}//2//\\]",
		"Head\n\\begin{//4//}\n% note\n\\item $//1//$ costs \\$3\\\\\n\\//3//[x]{y}{z} \\verb|v|\n\\end{//4//}\n",
		"//1// \\draw (0,0) -- (1,1); $$//2//$$",
		"//1// ref [0-1] and [1-3], \\//2//{x}[0-2]",
		"//1// \\verb*|a%b| \\url{x%y} % tail \\verb|c|",
		"\\begin{//1//}\n\\item[(a)] A\\\\[1ex]\n\\//2//{t}[o]{u}[p]\n\\end{//1//}",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			tok := tokenize(t, in)
			tok.SetTokenized(tok.Tokenized())
			require.NoError(t, tok.Detokenize())
			assert.Equal(t, in, tok.Marked())
		})
	}
}

// 从标记器串联：标记、分词、反分词、还原
func TestTokenizeMarkerOutput(t *testing.T) {
	src := "\\documentclass{article}\n\\begin{document}\n\\section{Intro}\n" +
		"Some \\textbf{bold} text with $x^2$ and \\[\\alpha\\text{for all}\\beta\\]\n" +
		"\\begin{itemize}\n\\item First \\label{l}\n\\end{itemize}\n% end\n\\end{document}\n"

	m := marker.New(src, nil)
	require.NoError(t, m.Mark())

	tok, err := FromMarker(m, nil)
	require.NoError(t, err)
	require.NoError(t, tok.Tokenize())
	assert.Contains(t, tok.Tokenized(), "{Intro}")
	assert.Contains(t, tok.Tokenized(), "{bold}")
	assert.Contains(t, tok.Tokenized(), "{for all}")
	assert.NotContains(t, tok.Tokenized(), "//")

	tok.SetTokenized(tok.Tokenized())
	require.NoError(t, tok.Detokenize())
	m.UpdateFromTokenizer(tok)
	require.NoError(t, m.Unmark())
	assert.Equal(t, src, m.Unmarked())
}

// 翻译后的分组被放回命令
func TestDetokenizeTranslatedGroup(t *testing.T) {
	tok := tokenize(t, "\\//1//{Hello World}")
	tok.SetTokenized("[0-1]{Bonjour le monde}")
	require.NoError(t, tok.Detokenize())
	assert.Equal(t, "\\//1//{Bonjour le monde}", tok.Marked())
}

// 丢失的 token 与分组只记录日志
func TestDetokenizeDiagnostics(t *testing.T) {
	t.Run("Clean Round Trip Logs Nothing", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		tok, err := New("\\begin{//1//}\nx\n\\end{//1//}", format.DefaultMarker, zap.New(core))
		require.NoError(t, err)
		require.NoError(t, tok.Tokenize())
		tok.SetTokenized(tok.Tokenized())
		require.NoError(t, tok.Detokenize())
		assert.Zero(t, logs.Len())
	})

	t.Run("Missing Tokens", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		tok, err := New("\\begin{//1//}\nx\n\\end{//1//}", format.DefaultMarker, zap.New(core))
		require.NoError(t, err)
		require.NoError(t, tok.Tokenize())
		tok.SetTokenized("foo")
		require.NoError(t, tok.Detokenize())
		assert.Equal(t, "foo", tok.Marked())

		errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
		require.Len(t, errs, 2)
		assert.Equal(t, translation.StageTokenizer, errs[0].ContextMap()["stage"])
		assert.Equal(t, "[0-1]", errs[0].ContextMap()["placeholder"])
	})

	t.Run("Lost Group", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		tok, err := New("\\//1//{Hello}", format.DefaultMarker, zap.New(core))
		require.NoError(t, err)
		require.NoError(t, tok.Tokenize())
		tok.SetTokenized("[0-1] Bonjour")
		require.NoError(t, tok.Detokenize())
		assert.Equal(t, "\\//1// Bonjour", tok.Marked())
		assert.Equal(t, 1, logs.FilterMessage("command lost its argument group").Len())
	})
}

// 测试空输入与无标记输入
func TestTokenizerEdgeCases(t *testing.T) {
	tok := newTokenizer(t, "")
	assert.True(t, errors.Is(tok.Tokenize(), translation.ErrEmptyInput))
	assert.True(t, errors.Is(tok.Detokenize(), translation.ErrEmptyInput))

	tok = tokenize(t, "Hello World\\,")
	assert.Equal(t, "Hello World\\,", tok.Tokenized())
	assert.Zero(t, tok.TotalTokenCount())
}

// 输入中已有的 token 形文本不会被分配
func TestTokenizeSkipsLiteralTokens(t *testing.T) {
	tok := tokenize(t, "//1// [0-1] [0-3]")
	assert.Equal(t, "[0-2] [0-1] [0-3]", tok.Tokenized())
	_, ok := tok.Store().Get("[0-1]")
	assert.False(t, ok)

	assert.Equal(t, "[0-4]", tok.nextToken())

	tok.SetTokenized("[0-2] [0-1] [0-3]")
	require.NoError(t, tok.Detokenize())
	assert.Equal(t, "//1// [0-1] [0-3]", tok.Marked())
}

// 相同输入产生相同数量的 token
func TestTokenCountDeterministic(t *testing.T) {
	in := "\\begin{//4//}\n\\item $//1//$ \\//3//{y} % c\n\\end{//4//}\n"
	first := tokenize(t, in)
	second := tokenize(t, in)
	assert.Equal(t, first.TotalTokenCount(), second.TotalTokenCount())
	assert.Equal(t, first.Tokenized(), second.Tokenized())
	assert.Equal(t, first.DumpStore(), second.DumpStore())
}
