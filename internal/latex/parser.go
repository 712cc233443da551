package latex

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// DefaultVerbatimEnvs are environments whose body is kept as raw text.
var DefaultVerbatimEnvs = []string{"verbatim", "verbatim*", "lstlisting", "minted", "comment"}

// DefaultRawArgCommands are commands whose first brace argument is raw
// text (it may hold "%", "#" or "_" unescaped).
var DefaultRawArgCommands = []string{"url"}

// Parser turns LaTeX source into a tree.
type Parser struct {
	verbatim map[string]bool
	rawArg   map[string]bool
}

// NewParser returns a parser with the given verbatim environments and raw
// argument commands.
func NewParser(verbatimEnvs, rawArgCommands []string) *Parser {
	p := &Parser{
		verbatim: make(map[string]bool, len(verbatimEnvs)),
		rawArg:   make(map[string]bool, len(rawArgCommands)),
	}
	for _, e := range verbatimEnvs {
		p.verbatim[e] = true
	}
	for _, c := range rawArgCommands {
		p.rawArg[c] = true
	}
	return p
}

// Parse parses src with the default tables.
func Parse(src string) (*Node, error) {
	return NewParser(DefaultVerbatimEnvs, DefaultRawArgCommands).Parse(src)
}

// Parse parses src into a tree rooted at a KindRoot node.
func (p *Parser) Parse(src string) (*Node, error) {
	s := &scanner{src: src, p: p}
	contents, err := s.seq(stop{kind: stopEOF})
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindRoot, Name: "[tex]", Contents: contents}, nil
}

type stopKind int

const (
	stopEOF stopKind = iota
	stopBrace
	stopBracket
	stopEnd
	stopMath
)

// stop describes what ends the sequence being parsed.
type stop struct {
	kind  stopKind
	env   string // stopEnd
	close string // stopMath
}

type scanner struct {
	src string
	pos int
	p   *Parser
}

func (s *scanner) errorf(format string, args ...any) error {
	line := strings.Count(s.src[:min(s.pos, len(s.src))], "\n") + 1
	return translation.NewError(translation.ErrCodeParse, translation.StageMarker,
		fmt.Sprintf("line %d: %s", line, fmt.Sprintf(format, args...)), translation.ErrParse)
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) at(lit string) bool {
	return strings.HasPrefix(s.src[s.pos:], lit)
}

// seq parses nodes until the stop condition is met and consumes the
// closing delimiter.
func (s *scanner) seq(st stop) ([]*Node, error) {
	var (
		items   []*Node
		text    strings.Builder
		bracket int
	)
	flush := func() {
		if text.Len() > 0 {
			items = append(items, NewText(text.String()))
			text.Reset()
		}
	}

	for {
		if s.eof() {
			if st.kind == stopEOF {
				flush()
				return items, nil
			}
			return nil, s.errorf("unexpected end of input, %s", st.describe())
		}

		if st.kind == stopMath && s.at(st.close) {
			flush()
			s.pos += len(st.close)
			return items, nil
		}

		c := s.src[s.pos]
		switch c {
		case '}':
			if st.kind != stopBrace {
				return nil, s.errorf("unmatched closing brace")
			}
			flush()
			s.pos++
			return items, nil

		case ']':
			if st.kind == stopBracket && bracket == 0 {
				flush()
				s.pos++
				return items, nil
			}
			if bracket > 0 {
				bracket--
			}
			text.WriteByte(c)
			s.pos++

		case '[':
			if st.kind == stopBracket {
				bracket++
			}
			text.WriteByte(c)
			s.pos++

		case '{':
			flush()
			s.pos++
			contents, err := s.seq(stop{kind: stopBrace})
			if err != nil {
				return nil, err
			}
			items = append(items, &Node{Kind: KindGroup, Contents: contents})

		case '%':
			flush()
			end := strings.IndexByte(s.src[s.pos:], '\n')
			if end < 0 {
				end = len(s.src) - s.pos
			}
			items = append(items, &Node{Kind: KindComment, Text: s.src[s.pos : s.pos+end]})
			s.pos += end

		case '$':
			flush()
			n, err := s.dollarMath()
			if err != nil {
				return nil, err
			}
			items = append(items, n)

		case '\\':
			n, done, err := s.backslash(st, &text)
			if err != nil {
				return nil, err
			}
			if done {
				flush()
				return items, nil
			}
			if n != nil {
				flush()
				items = append(items, n)
			}

		default:
			text.WriteByte(c)
			s.pos++
		}
	}
}

func (st stop) describe() string {
	switch st.kind {
	case stopBrace:
		return "missing }"
	case stopBracket:
		return "missing ]"
	case stopEnd:
		return fmt.Sprintf("missing \\end{%s}", st.env)
	case stopMath:
		return fmt.Sprintf("missing %s", st.close)
	}
	return "unexpected input"
}

func (s *scanner) dollarMath() (*Node, error) {
	open, name := "$", "$"
	if s.at("$$") {
		open, name = "$$", "$$"
	}
	s.pos += len(open)
	contents, err := s.seq(stop{kind: stopMath, close: open})
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindMath, Name: name, Contents: contents, open: open, close: open}, nil
}

// backslash handles everything starting with "\". It either appends an
// escape to text, returns a new node, or reports that the current \end
// sequence is finished.
func (s *scanner) backslash(st stop, text *strings.Builder) (*Node, bool, error) {
	if s.pos+1 >= len(s.src) {
		text.WriteByte('\\')
		s.pos++
		return nil, false, nil
	}

	next := s.src[s.pos+1]
	if !isLetter(next) {
		switch next {
		case '(', '[':
			open := s.src[s.pos : s.pos+2]
			close, name := `\)`, "math"
			if next == '[' {
				close, name = `\]`, "displaymath"
			}
			s.pos += 2
			contents, err := s.seq(stop{kind: stopMath, close: close})
			if err != nil {
				return nil, false, err
			}
			return &Node{Kind: KindMath, Name: name, Contents: contents, open: open, close: close}, false, nil
		case ')', ']':
			return nil, false, s.errorf("unmatched %s", s.src[s.pos:s.pos+2])
		}
		_, size := utf8.DecodeRuneInString(s.src[s.pos+1:])
		text.WriteString(s.src[s.pos : s.pos+1+size])
		s.pos += 1 + size
		return nil, false, nil
	}

	start := s.pos + 1
	end := start
	for end < len(s.src) && isLetter(s.src[end]) {
		end++
	}
	name := s.src[start:end]

	switch name {
	case "begin":
		s.pos = end
		n, err := s.env()
		return n, false, err
	case "end":
		s.pos = end
		envName, err := s.braceName()
		if err != nil {
			return nil, false, err
		}
		if st.kind != stopEnd || st.env != envName {
			return nil, false, s.errorf("unexpected \\end{%s}, %s", envName, st.describe())
		}
		return nil, true, nil
	case "verb":
		s.pos = end
		n, err := s.verb()
		return n, false, err
	}

	if end < len(s.src) && s.src[end] == '*' {
		end++
		name = s.src[start:end]
	}
	s.pos = end
	n := &Node{Kind: KindCommand, Name: name}
	if s.p.rawArg[name] && s.at("{") {
		raw, err := s.rawGroup()
		if err != nil {
			return nil, false, err
		}
		n.Args = append(n.Args, &Arg{Open: "{", Close: "}", Contents: []*Node{NewText(raw)}})
	}
	args, err := s.args()
	if err != nil {
		return nil, false, err
	}
	n.Args = append(n.Args, args...)
	return n, false, nil
}

// args parses the brace and bracket groups directly following a command
// or \begin{...}. A bracket that never closes is left as text.
func (s *scanner) args() ([]*Arg, error) {
	var args []*Arg
	for !s.eof() {
		switch s.src[s.pos] {
		case '{':
			s.pos++
			contents, err := s.seq(stop{kind: stopBrace})
			if err != nil {
				return nil, err
			}
			args = append(args, &Arg{Open: "{", Close: "}", Contents: contents})
		case '[':
			save := s.pos
			s.pos++
			contents, err := s.seq(stop{kind: stopBracket})
			if err != nil {
				s.pos = save
				return args, nil
			}
			args = append(args, &Arg{Open: "[", Close: "]", Contents: contents})
		default:
			return args, nil
		}
	}
	return args, nil
}

func (s *scanner) env() (*Node, error) {
	name, err := s.braceName()
	if err != nil {
		return nil, err
	}
	args, err := s.args()
	if err != nil {
		return nil, err
	}
	n := &Node{Kind: KindEnv, Name: name, Args: args}

	if s.p.verbatim[name] {
		closing := `\end{` + name + `}`
		i := strings.Index(s.src[s.pos:], closing)
		if i < 0 {
			return nil, s.errorf("missing %s", closing)
		}
		if i > 0 {
			n.Contents = []*Node{NewText(s.src[s.pos : s.pos+i])}
		}
		s.pos += i + len(closing)
		return n, nil
	}

	contents, err := s.seq(stop{kind: stopEnd, env: name})
	if err != nil {
		return nil, err
	}
	n.Contents = contents
	return n, nil
}

// braceName reads "{name}" verbatim.
func (s *scanner) braceName() (string, error) {
	if !s.at("{") {
		return "", s.errorf("expected { after \\begin or \\end")
	}
	end := strings.IndexByte(s.src[s.pos:], '}')
	if end < 0 {
		return "", s.errorf("missing } in environment name")
	}
	name := s.src[s.pos+1 : s.pos+end]
	s.pos += end + 1
	return name, nil
}

// verb reads \verb<d>...<d> and \verb*<d>...<d>.
func (s *scanner) verb() (*Node, error) {
	open := ""
	if s.at("*") {
		open = "*"
		s.pos++
	}
	if s.eof() {
		return nil, s.errorf("missing \\verb delimiter")
	}
	d, size := utf8.DecodeRuneInString(s.src[s.pos:])
	delim := string(d)
	s.pos += size
	end := strings.Index(s.src[s.pos:], delim)
	if end < 0 {
		return nil, s.errorf("unterminated \\verb")
	}
	body := s.src[s.pos : s.pos+end]
	s.pos += end + len(delim)
	return &Node{
		Kind: KindCommand,
		Name: "verb",
		Args: []*Arg{{Open: open + delim, Close: delim, Contents: []*Node{NewText(body)}}},
	}, nil
}

// rawGroup reads a balanced brace group without interpreting its body.
func (s *scanner) rawGroup() (string, error) {
	depth := 0
	for i := s.pos; i < len(s.src); i++ {
		switch s.src[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				raw := s.src[s.pos+1 : i]
				s.pos = i + 1
				return raw, nil
			}
		}
	}
	return "", s.errorf("missing }")
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '@'
}
