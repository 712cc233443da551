package tokenizer

import (
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/internal/latex"
)

// Sentinel marks the place of the kept brace group in a stored command
// template.
const Sentinel = "%%"

// commentPattern matches a "%" that is not escaped, up to the end of the
// line. An even run of backslashes before it is part of the match.
var commentPattern = regexp2.MustCompile(`(?<!\\)(?:\\\\)*%.*$`, regexp2.Multiline)

// pass is one tokenization step over the body.
type pass struct {
	name string
	run  func(t *Tokenizer, s string) string
}

// rawArgCommands take their first brace group verbatim, "%" included.
var rawArgCommands = latex.DefaultRawArgCommands

// passes go from the most specific construct to the least specific one.
// Raw text goes first so a "%" inside it does not open a comment.
var passes = []pass{
	{name: "raw", run: matcherPass(matchRaw)},
	{name: "comments", run: (*Tokenizer).tokenizeComments},
	{name: "removed-commands", run: matcherPass(matchRemovedCommand)},
	{name: "special-commands", run: matcherPass(matchSpecialCommand)},
	{name: "math", run: func(t *Tokenizer, s string) string { return t.run(s, mathMatcher()) }},
	{name: "marked-commands", run: matcherPass(matchMarkedCommand)},
	{name: "trailing-options", run: (*Tokenizer).tokenizeTrailingOptions},
	{name: "marked-envs", run: matcherPass(matchMarkedEnv)},
	{name: "markers", run: matcherPass(matchMarker)},
	{name: "escapes", run: matcherPass(matchEscape)},
}

func matcherPass(fn matcher) func(t *Tokenizer, s string) string {
	return func(t *Tokenizer, s string) string {
		return t.run(s, fn)
	}
}

// tokenizeComments works on runes because regexp2 reports rune offsets.
func (t *Tokenizer) tokenizeComments(s string) string {
	runes := []rune(s)
	var b strings.Builder
	last := 0
	m, err := commentPattern.FindRunesMatch(runes)
	for m != nil && err == nil {
		b.WriteString(string(runes[last:m.Index]))
		b.WriteString(t.put(m.String(), false))
		last = m.Index + m.Length
		m, err = commentPattern.FindNextMatch(m)
	}
	if err != nil {
		t.logger.Warn("comment scan stopped", zap.Error(err))
	}
	b.WriteString(string(runes[last:]))
	return b.String()
}

// matchRemovedCommand takes a removed command together with every
// argument group directly after it.
func matchRemovedCommand(c *cursor, i int) (match, bool) {
	name, end := commandAt(c.s, i)
	if !latex.RemovedCommands.Has(name) {
		return match{}, false
	}
	if gs := c.groups(end); len(gs) > 0 {
		end = gs[len(gs)-1].end
	}
	return match{start: i, end: end}, true
}

// matchRaw takes \verb with its delimited body and the raw argument
// commands with their first brace group.
func matchRaw(c *cursor, i int) (match, bool) {
	name, end := commandAt(c.s, i)
	switch {
	case name == "verb":
		j := end
		if j < len(c.s) && c.s[j] == '*' {
			j++
		}
		if j >= len(c.s) {
			return match{start: i, end: end}, true
		}
		d, size := utf8.DecodeRuneInString(c.s[j:])
		body := j + size
		k := strings.IndexRune(c.s[body:], d)
		if k < 0 {
			return match{start: i, end: end}, true
		}
		return match{start: i, end: body + k + size}, true

	case isRawArgCommand(name):
		k := skipSpace(c.s, end)
		if k < len(c.s) && c.s[k] == '{' {
			if e := rawGroupEnd(c.s, k); e > 0 {
				end = e
			}
		}
		return match{start: i, end: end}, true
	}
	return match{}, false
}

func isRawArgCommand(name string) bool {
	for _, n := range rawArgCommands {
		if n == name {
			return true
		}
	}
	return false
}

// rawGroupEnd returns the index after the brace group opened at s[i],
// counting braces only. Backslashes are literal in a raw argument.
func rawGroupEnd(s string, i int) int {
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j + 1
			}
		case '\n':
			if j+1 < len(s) && s[j+1] == '\n' {
				return -1
			}
		}
	}
	return -1
}

// matchSpecialCommand handles \item with its optional label and the tikz
// path commands.
func matchSpecialCommand(c *cursor, i int) (match, bool) {
	name, end := commandAt(c.s, i)
	switch {
	case name == "item":
		return match{start: i, end: c.optionalGroup(end)}, true

	case latex.TikzCommands.Has(name):
		k := strings.IndexByte(c.s[end:], ';')
		if k < 0 {
			return match{start: i, end: end}, true
		}
		return match{start: i, end: end + k + 1}, true
	}
	return match{}, false
}

// optionalGroup returns the index after the bracket group at i, or i when
// there is none.
func (c *cursor) optionalGroup(i int) int {
	if i >= len(c.s) || c.s[i] != '[' {
		return i
	}
	if _, tok := c.tokens[i]; tok {
		return i
	}
	if end := groupEnd(c.s, i); end > 0 {
		return end
	}
	return i
}

// mathMatcher tokenizes math delimiters together with the markers next
// to them. An opener takes the markers after it, and the closer when
// nothing else is left; a closer takes the markers before it. Dollar
// signs alternate between opening and closing.
func mathMatcher() matcher {
	var inDollar, inDisplay bool
	return func(c *cursor, i int) (match, bool) {
		s := c.s
		switch {
		case hasAt(s, i, `\[`):
			m, _ := c.mathOpen(i, 2, `\]`)
			return m, true
		case hasAt(s, i, `\(`):
			m, _ := c.mathOpen(i, 2, `\)`)
			return m, true
		case hasAt(s, i, `\]`), hasAt(s, i, `\)`):
			return c.mathClose(i, 2), true
		case inDollar && s[i] == '$':
			inDollar = false
			return c.mathClose(i, 1), true
		case hasAt(s, i, "$$"):
			if inDisplay {
				inDisplay = false
				return c.mathClose(i, 2), true
			}
			m, closed := c.mathOpen(i, 2, "$$")
			inDisplay = !closed
			return m, true
		case s[i] == '$':
			m, closed := c.mathOpen(i, 1, "$")
			inDollar = !closed
			return m, true
		}
		return match{}, false
	}
}

func (c *cursor) mathOpen(i, width int, closer string) (match, bool) {
	end := c.absorbMarkers(i + width)
	if k := skipSpace(c.s, end); hasAt(c.s, k, closer) {
		return match{start: i, end: k + len(closer)}, true
	}
	return match{start: i, end: end}, false
}

func (c *cursor) mathClose(i, width int) match {
	return match{start: c.extendBack(i), end: i + width}
}

// matchMarkedCommand tokenizes \<marker> and its argument groups except
// the last brace group, which stays in place for translation. The stored
// template holds the sentinel where that group goes back.
func matchMarkedCommand(c *cursor, i int) (match, bool) {
	if c.s[i] != '\\' {
		return match{}, false
	}
	end, ok := c.markerAt(i + 1)
	if !ok {
		return match{}, false
	}

	gs := c.groups(end)
	kept := -1
	for k, g := range gs {
		if g.brace {
			kept = k
		}
	}
	if kept < 0 {
		if len(gs) > 0 {
			end = gs[len(gs)-1].end
		}
		return match{start: i, end: end}, true
	}

	start := gs[kept].start
	return match{start: i, end: start, value: c.s[i:start] + Sentinel, splice: true}, true
}

// tokenizeTrailingOptions tokenizes the bracket groups that directly
// follow the group kept by a marked command, as in \//1//{x}[a].
func (t *Tokenizer) tokenizeTrailingOptions(s string) string {
	locs := t.tokenRe.FindAllStringIndex(s, -1)
	starts := make(map[int]bool, len(locs))
	for _, loc := range locs {
		starts[loc[0]] = true
	}

	tails := make(map[int]int)
	for _, loc := range locs {
		if !t.splice[s[loc[0]:loc[1]]] {
			continue
		}
		kept := groupEnd(s, loc[1])
		if kept < 0 || s[loc[1]] != '{' {
			continue
		}
		end := kept
		for end < len(s) && s[end] == '[' && !starts[end] {
			e := groupEnd(s, end)
			if e < 0 {
				break
			}
			end = e
		}
		if end > kept {
			tails[kept] = end
		}
	}
	if len(tails) == 0 {
		return s
	}
	return t.run(s, func(_ *cursor, i int) (match, bool) {
		end, ok := tails[i]
		return match{start: i, end: end}, ok
	})
}

// matchMarkedEnv tokenizes \begin{<marker>} with its arguments and the
// markers after it, and \end{<marker>} with the markers before it. An
// environment holding nothing but markers becomes a single token.
func matchMarkedEnv(c *cursor, i int) (match, bool) {
	switch {
	case hasAt(c.s, i, `\begin{`):
		name, end, ok := c.envMarker(i + len(`\begin{`))
		if !ok {
			return match{}, false
		}
		if gs := c.groups(end); len(gs) > 0 {
			end = gs[len(gs)-1].end
		}
		end = c.absorbMarkers(end)
		closing := `\end{` + name + `}`
		if k := skipSpace(c.s, end); hasAt(c.s, k, closing) {
			end = k + len(closing)
		}
		return match{start: i, end: end}, true

	case hasAt(c.s, i, `\end{`):
		_, end, ok := c.envMarker(i + len(`\end{`))
		if !ok {
			return match{}, false
		}
		return match{start: c.extendBack(i), end: end}, true
	}
	return match{}, false
}

// envMarker reads "<marker>}" at i and returns the marker and the index
// after the brace.
func (c *cursor) envMarker(i int) (string, int, bool) {
	end, ok := c.markerAt(i)
	if !ok || end >= len(c.s) || c.s[end] != '}' {
		return "", 0, false
	}
	return c.s[i:end], end + 1, true
}

func matchMarker(c *cursor, i int) (match, bool) {
	end, ok := c.markerAt(i)
	if !ok {
		return match{}, false
	}
	return match{start: i, end: end}, true
}

// matchEscape tokenizes what is left of backslash sequences: control
// symbols such as \, \; \\ \% and \$.
func matchEscape(c *cursor, i int) (match, bool) {
	if c.s[i] != '\\' || i+1 >= len(c.s) || isLetter(c.s[i+1]) {
		return match{}, false
	}
	if _, tok := c.tokens[i+1]; tok {
		return match{}, false
	}
	if c.s[i+1] == '\\' {
		end := i + 2
		if end < len(c.s) && c.s[end] == '*' {
			end++
		}
		return match{start: i, end: c.optionalGroup(end)}, true
	}
	_, size := utf8.DecodeRuneInString(c.s[i+1:])
	return match{start: i, end: i + 1 + size}, true
}
