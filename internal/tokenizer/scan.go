package tokenizer

import (
	"regexp"
	"sort"
	"strings"
)

// match is a replacement found by a pass. The replaced span is
// s[start:end]; start may lie before the position the pass was called at
// when a closing construct absorbs the markers in front of it.
type match struct {
	start, end int
	// value is stored instead of s[start:end] when set.
	value  string
	splice bool
}

// matcher is called at every position of the string that is not inside a
// token. It reports a match starting at or before i.
type matcher func(c *cursor, i int) (match, bool)

// cursor is the view of the string a pass works on.
type cursor struct {
	s string
	// last is the end of the previous replacement of the running pass.
	last int
	// tokens maps start to end of the tokens placed by earlier passes;
	// spans holds the same in order.
	tokens map[int]int
	spans  [][]int
	// markers maps start to end, markerEnds end to start.
	markers    map[int]int
	markerEnds map[int]int
}

func newCursor(s string, tokenRe, markerRe *regexp.Regexp) *cursor {
	c := &cursor{
		s:          s,
		tokens:     make(map[int]int),
		markers:    make(map[int]int),
		markerEnds: make(map[int]int),
	}
	c.spans = tokenRe.FindAllStringIndex(s, -1)
	for _, loc := range c.spans {
		c.tokens[loc[0]] = loc[1]
	}
	for _, loc := range markerRe.FindAllStringIndex(s, -1) {
		if c.insideToken(loc[0]) {
			continue
		}
		c.markers[loc[0]] = loc[1]
		c.markerEnds[loc[1]] = loc[0]
	}
	return c
}

func (c *cursor) insideToken(i int) bool {
	k := sort.Search(len(c.spans), func(n int) bool { return c.spans[n][1] > i })
	return k < len(c.spans) && c.spans[k][0] <= i
}

// run applies fn over s once, left to right, and returns the string with
// every match replaced by a fresh token.
func (t *Tokenizer) run(s string, fn matcher) string {
	c := newCursor(s, t.tokenRe, t.markerRe)
	var b strings.Builder
	i := 0
	for i < len(s) {
		if end, ok := c.tokens[i]; ok {
			i = end
			continue
		}
		if m, ok := fn(c, i); ok && m.end > m.start {
			if m.start < c.last {
				m.start = c.last
			}
			value := m.value
			if value == "" {
				value = s[m.start:m.end]
			}
			b.WriteString(s[c.last:m.start])
			b.WriteString(t.put(value, m.splice))
			c.last = m.end
			i = m.end
			continue
		}
		if s[i] == '\\' && i+1 < len(s) {
			if _, tok := c.tokens[i+1]; !tok {
				i += 2
				continue
			}
		}
		i++
	}
	b.WriteString(s[c.last:])
	return b.String()
}

func hasAt(s string, i int, lit string) bool {
	return strings.HasPrefix(s[i:], lit)
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '@'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func skipSpaceBack(s string, i int) int {
	for i > 0 && isSpace(s[i-1]) {
		i--
	}
	return i
}

// commandAt returns the letters of the control word at i and the index
// after them, or "" if s[i:] does not start one.
func commandAt(s string, i int) (string, int) {
	if i+1 >= len(s) || s[i] != '\\' || !isLetter(s[i+1]) {
		return "", i
	}
	end := i + 1
	for end < len(s) && isLetter(s[end]) {
		end++
	}
	return s[i+1 : end], end
}

// groupEnd returns the index after the brace or bracket group opened at
// s[i], or -1 when it is not closed. Escaped delimiters do not count and
// brace groups inside a bracket group are skipped whole.
func groupEnd(s string, i int) int {
	if i >= len(s) {
		return -1
	}
	open := s[i]
	closing := byte('}')
	if open == '[' {
		closing = ']'
	} else if open != '{' {
		return -1
	}
	depth := 0
	for j := i; j < len(s); j++ {
		switch c := s[j]; {
		case c == '\\':
			j++
		case c == '{' && open == '[':
			end := groupEnd(s, j)
			if end < 0 {
				return -1
			}
			j = end - 1
		case c == open:
			depth++
		case c == closing:
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return -1
}

// group is one argument group found after a command.
type group struct {
	start, end int
	brace      bool
}

// groups collects the brace and bracket groups directly following i. A
// bracket that starts a token is not an argument.
func (c *cursor) groups(i int) []group {
	var out []group
	for i < len(c.s) {
		ch := c.s[i]
		if ch != '{' && ch != '[' {
			break
		}
		if _, tok := c.tokens[i]; tok {
			break
		}
		end := groupEnd(c.s, i)
		if end < 0 {
			break
		}
		out = append(out, group{start: i, end: end, brace: ch == '{'})
		i = end
	}
	return out
}

// markerAt returns the end of the marker starting at i.
func (c *cursor) markerAt(i int) (int, bool) {
	end, ok := c.markers[i]
	return end, ok
}

// absorbMarkers moves forward from i over whitespace separated markers,
// leaving trailing whitespace alone.
func (c *cursor) absorbMarkers(i int) int {
	for {
		k := skipSpace(c.s, i)
		end, ok := c.markerAt(k)
		if !ok {
			return i
		}
		i = end
	}
}

// extendBack moves backward from i over markers and the whitespace
// between them. Markers directly after a backslash belong to a command
// and stop the walk.
func (c *cursor) extendBack(i int) int {
	for {
		k := skipSpaceBack(c.s, i)
		start, ok := c.markerEnds[k]
		if !ok || start < c.last || (start > 0 && c.s[start-1] == '\\') {
			return i
		}
		i = start
	}
}
