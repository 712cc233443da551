package latex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// 解析后再输出必须与输入完全一致
func TestParseRoundTrip(t *testing.T) {
	inputs := map[string]string{
		"plain":      "Hello World\n",
		"document":   "\\documentclass{article}\n\\begin{document}\nHello World\n\\end{document}\n",
		"command":    "\\section[short]{Hello \\textbf{World}}",
		"math":       "Inline $a+b$ and $$x^2$$ and \\(y\\) and \\[z\\]",
		"comment":    "text % a comment\nmore 50\\% text",
		"verb":       "Use \\verb|a{b| and \\verb*+c%d+ here.",
		"url":        "See \\url{http://x.org/a%20b#c}.",
		"verbatim":   "\\begin{verbatim}\n\\begin{nope} {\n\\end{verbatim}",
		"lstlisting": "\\begin{lstlisting}[language=Python]\nprint('{')\n\\end{lstlisting}\n",
		"escapes":    "A\\,B\\;C\\\\[2pt] D \\$ \\{x\\} caf\\'e \\é",
		"brackets":   "\\item[a [nested] b] text ] stray",
		"unclosed":   "\\foo[not closed {x}",
		"groups":     "{\\bf bold} {{nested}}",
		"tikz":       "\\begin{tikzpicture}\\draw (0,0) -- (1,1);\\end{tikzpicture}",
		"star":       "\\section*{Intro}\\begin{equation*}a\\end{equation*}",
	}
	for name, src := range inputs {
		t.Run(name, func(t *testing.T) {
			root, err := Parse(src)
			require.NoError(t, err)
			assert.Equal(t, src, root.String())
		})
	}
}

// 结构检查：命令、环境与数学区域
func TestParseStructure(t *testing.T) {
	t.Run("Document Environment", func(t *testing.T) {
		root, err := Parse("\\begin{document}\n\\section{Title}\nText\n\\end{document}")
		require.NoError(t, err)

		doc := root.Find("document")
		require.NotNil(t, doc)
		assert.Equal(t, KindEnv, doc.Kind)

		children := doc.Children()
		require.Len(t, children, 1)
		assert.Equal(t, KindCommand, children[0].Kind)
		assert.Equal(t, "section", children[0].Name)
		require.Len(t, children[0].Args, 1)
		assert.Equal(t, "{Title}", children[0].Args[0].String())
	})

	t.Run("Math Names", func(t *testing.T) {
		root, err := Parse("$a$ $$b$$ \\(c\\) \\[d\\]")
		require.NoError(t, err)

		var names []string
		for _, c := range root.Children() {
			assert.Equal(t, KindMath, c.Kind)
			names = append(names, c.Name)
		}
		assert.Equal(t, []string{"$", "$$", "math", "displaymath"}, names)
	})

	t.Run("Text Command Inside Math", func(t *testing.T) {
		root, err := Parse("\\[\\Lambda\\text{foo bar baz}\\alpha\\]")
		require.NoError(t, err)

		math := root.Children()[0]
		require.Len(t, math.Contents, 3)
		assert.Equal(t, "text", math.Contents[1].Name)
		assert.Len(t, math.Descendants(), 3)
	})

	t.Run("Verb Argument Is Raw", func(t *testing.T) {
		root, err := Parse("\\verb|{x|")
		require.NoError(t, err)

		verb := root.Contents[0]
		assert.Equal(t, "verb", verb.Name)
		require.Len(t, verb.Args, 1)
		assert.Equal(t, "|", verb.Args[0].Open)
		assert.Equal(t, "{x", ContentString(verb.Args[0].Contents))
		assert.Empty(t, verb.Children())
	})

	t.Run("Optional Argument", func(t *testing.T) {
		root, err := Parse("\\begin{lstlisting}[language=Python]\ncode\n\\end{lstlisting}")
		require.NoError(t, err)

		env := root.Contents[0]
		require.Len(t, env.Args, 1)
		assert.True(t, env.Args[0].IsOptional())
		assert.Equal(t, "\ncode\n", ContentString(env.Contents))
	})

	t.Run("Comment Excludes Newline", func(t *testing.T) {
		root, err := Parse("% note\nx")
		require.NoError(t, err)

		require.Len(t, root.Contents, 2)
		assert.Equal(t, KindComment, root.Contents[0].Kind)
		assert.Equal(t, "% note", root.Contents[0].Text)
		assert.Equal(t, "\nx", root.Contents[1].Text)
	})

	t.Run("Renamed Nodes Print New Names", func(t *testing.T) {
		root, err := Parse("\\begin{center}\\textbf{x}\\end{center}")
		require.NoError(t, err)

		env := root.Contents[0]
		env.Name = "//2//"
		env.Contents[0].Name = "//1//"
		assert.Equal(t, "\\begin{//2//}\\//1//{x}\\end{//2//}", root.String())
	})
}

// 不平衡的输入返回解析错误
func TestParseErrors(t *testing.T) {
	inputs := []string{
		"}",
		"{open",
		"$never closed",
		"\\begin{a}x\\end{b}",
		"\\end{document}",
		"\\begin{verbatim} no end",
		"\\verb|unterminated",
		"\\]",
	}
	for _, src := range inputs {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, translation.ErrParse))
		})
	}
}
