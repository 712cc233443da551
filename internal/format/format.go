// Package format encodes integers into marker and token placeholders.
//
// A template is any string holding empty "{}" placeholders, for example
// "//{}//" for markers or "[{}-{}]" for tokens. Every other package goes
// through these helpers instead of parsing templates itself.
package format

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// Placeholder is the positional slot inside a template.
const Placeholder = "{}"

// digits replaces each placeholder in a derived regex.
const digits = `(?:\d+)`

const (
	// MarkerPlaceholders is the placeholder count of a marker template.
	MarkerPlaceholders = 1
	// TokenPlaceholders is the placeholder count of a token template.
	TokenPlaceholders = 2
)

const (
	DefaultMarker    = "//{}//"
	DefaultToken     = "[{}-{}]"
	DefaultIndicator = "%@=TRANSLATEX_MANUAL_REPLACEMENT_{}"
)

// Count returns the number of placeholders in template.
func Count(template string) int {
	return strings.Count(template, Placeholder)
}

// Check verifies template holds exactly want placeholders.
func Check(template string, want int) error {
	if Count(template) != want {
		return translation.InvalidFormat(template, want)
	}
	return nil
}

// Regex builds the pattern matching any encoding of template. Literal
// segments are quoted and each placeholder becomes a digit run.
func Regex(template string) string {
	parts := strings.Split(template, Placeholder)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(parts, digits)
}

// Compile is Regex followed by regexp.MustCompile. Quoted templates always
// compile.
func Compile(template string) *regexp.Regexp {
	return regexp.MustCompile(Regex(template))
}

// CompileCapture is like Compile, with each placeholder in a capturing
// group.
func CompileCapture(template string) *regexp.Regexp {
	return regexp.MustCompile(strings.Join(quoteAll(strings.Split(template, Placeholder)), `(\d+)`))
}

// Substitute replaces, in one left to right scan, every encoding of a
// one placeholder template in s for which fn returns a value. It reports
// the integers that were replaced.
func Substitute(template, s string, fn func(n int) (string, bool)) (string, map[int]bool) {
	re := CompileCapture(template)
	seen := make(map[int]bool)
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringSubmatchIndex(s, -1) {
		n, err := strconv.Atoi(s[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		v, ok := fn(n)
		if !ok {
			continue
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(v)
		last = loc[1]
		seen[n] = true
	}
	b.WriteString(s[last:])
	return b.String(), seen
}

// Taken returns the integers of every encoding of a one placeholder
// template found in s, or nil when there is none.
func Taken(template, s string) map[int]bool {
	var out map[int]bool
	for _, m := range CompileCapture(template).FindAllStringSubmatch(s, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if out == nil {
			out = make(map[int]bool)
		}
		out[n] = true
	}
	return out
}

// Encode substitutes ns into the placeholders of template, left to right.
// Placeholders without a matching value are kept as is.
func Encode(template string, ns ...int) string {
	var b strings.Builder
	rest := template
	for _, n := range ns {
		i := strings.Index(rest, Placeholder)
		if i < 0 {
			break
		}
		b.WriteString(rest[:i])
		b.WriteString(strconv.Itoa(n))
		rest = rest[i+len(Placeholder):]
	}
	b.WriteString(rest)
	return b.String()
}

// Decode extracts the integers of s, which must be a full encoding of
// template.
func Decode(template, s string) ([]int, bool) {
	parts := strings.Split(template, Placeholder)
	if len(parts) == 1 {
		return nil, s == template
	}
	re := regexp.MustCompile("^" + strings.Join(quoteAll(parts), `(\d+)`) + "$")
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	out := make([]int, 0, len(m)-1)
	for _, g := range m[1:] {
		n, err := strconv.Atoi(g)
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func quoteAll(parts []string) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = regexp.QuoteMeta(p)
	}
	return out
}
