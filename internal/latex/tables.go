package latex

// Fixed classification tables. Everything the pipeline knows about the
// meaning of LaTeX names lives here.

// MathEnvs are the math environments. Matched against environment and
// math node names only, never against commands.
var MathEnvs = set(
	"$", "$$", "math", "displaymath", "equation", "equation*",
	"cases", "array", "matrix", "pmatrix", "bmatrix", "Bmatrix",
	"vmatrix", "Vmatrix",
)

// RemovedEnvs are environments whose whole body is hidden from the
// translation service.
var RemovedEnvs = set("verbatim", "verbatim*", "lstlisting", "tikzpicture")

// TextCommands typeset regular text inside math.
var TextCommands = set("text", "texttt", "textsf", "textrm", "textnormal", "mbox")

// SpecialCommands have arguments that are not brace groups.
var SpecialCommands = set("draw", "fill", "filldraw", "node", "verb", "item")

// RemovedCommands are removed together with their arguments.
var RemovedCommands = set(
	"label", "ref", "cite", "pageref", "url", "lstinputlisting",
	"inputencoding", "bibliography", "bibliographystyle", "setlength",
	"color", "pagecolor", "input", "includegraphics", "rule",
)

// SkippedCommands keep their names through marking; the tokenizer
// recognises them by name instead.
var SkippedCommands = union(SpecialCommands, RemovedCommands)

// TikzCommands are the SpecialCommands that run up to a semicolon.
var TikzCommands = set("draw", "fill", "filldraw", "node")

// Set is a string set.
type Set map[string]struct{}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the members in no particular order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}

func set(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func union(sets ...Set) Set {
	s := make(Set)
	for _, in := range sets {
		for k := range in {
			s[k] = struct{}{}
		}
	}
	return s
}
