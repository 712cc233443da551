package marker

import (
	"fmt"

	"github.com/nerdneilsfield/go-translatex/internal/latex"
	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// rule is one traversal policy. The first rule whose match returns true
// handles the node.
type rule struct {
	name  string
	match func(n *latex.Node) bool
	apply func(m *Marker, n *latex.Node) error
}

// rules are evaluated in order. The table is filled in init because the
// rules recurse through traverse, which reads it.
var rules []rule

func init() {
	rules = []rule{
		{name: "math", match: isMath, apply: (*Marker).markMath},
		{name: "removed-env", match: isRemovedEnv, apply: (*Marker).markRemovedEnv},
		{name: "leaf", match: isLeaf, apply: (*Marker).markLeaf},
		{name: "interior", match: func(*latex.Node) bool { return true }, apply: (*Marker).markInterior},
	}
}

func isMath(n *latex.Node) bool {
	return (n.Kind == latex.KindEnv || n.Kind == latex.KindMath) && latex.MathEnvs.Has(n.Name)
}

func isRemovedEnv(n *latex.Node) bool {
	return n.Kind == latex.KindEnv && latex.RemovedEnvs.Has(n.Name)
}

func isLeaf(n *latex.Node) bool {
	return len(n.Children()) == 0
}

func isTextCommand(n *latex.Node) bool {
	return n.Kind == latex.KindCommand && latex.TextCommands.Has(n.Name)
}

func (m *Marker) traverse(n *latex.Node) error {
	for _, r := range rules {
		if r.match(n) {
			return r.apply(m, n)
		}
	}
	return nil
}

func (m *Marker) traverseChildren(n *latex.Node) error {
	for _, c := range n.Children() {
		if err := m.traverse(c); err != nil {
			return err
		}
	}
	return nil
}

// markMath collapses a math region to a single marker unless it holds a
// text command. Then only the runs between text commands are marked, and
// the text commands are visited like any other node.
func (m *Marker) markMath(n *latex.Node) error {
	hasText := false
	for _, d := range n.Descendants() {
		if isTextCommand(d) {
			hasText = true
			break
		}
	}

	if !hasText {
		if err := m.markContents(n, 0, nil); err != nil {
			return err
		}
		m.markName(n)
		return nil
	}

	size := len(n.Contents)
	for _, r := range textFreeRanges(n.Contents) {
		if err := m.markContents(n, size, &r); err != nil {
			return err
		}
	}
	if err := m.traverseChildren(n); err != nil {
		return err
	}
	m.markName(n)
	return nil
}

func (m *Marker) markRemovedEnv(n *latex.Node) error {
	if err := m.markContents(n, 0, nil); err != nil {
		return err
	}
	m.markName(n)
	return nil
}

func (m *Marker) markLeaf(n *latex.Node) error {
	m.markName(n)
	return nil
}

func (m *Marker) markInterior(n *latex.Node) error {
	if err := m.traverseChildren(n); err != nil {
		return err
	}
	m.markName(n)
	return nil
}

// markName swaps the name of an environment or a command for a marker.
// Skipped commands keep their name so the tokenizer can find them.
func (m *Marker) markName(n *latex.Node) {
	switch n.Kind {
	case latex.KindEnv:
	case latex.KindCommand:
		if latex.SkippedCommands.Has(n.Name) {
			return
		}
	default:
		return
	}
	idx, marker := m.next()
	m.store.Put(idx, n.Name)
	n.Name = marker
}

// Range is a half open interval of content indexes.
type Range struct {
	Start, End int
}

// markContents replaces the contents of n, or the sub range rng of them,
// with one marker. origSize is the content length rng was computed
// against; earlier calls may have shortened the list since. Either both
// origSize and rng are given, or neither.
func (m *Marker) markContents(n *latex.Node, origSize int, rng *Range) error {
	if (origSize != 0) != (rng != nil) {
		return translation.InvalidArguments(translation.StageMarker,
			"content marking needs both the original size and a range, or neither")
	}

	start, end := 0, len(n.Contents)
	if rng != nil {
		shift := origSize - len(n.Contents)
		start, end = rng.Start-shift, rng.End-shift
		if start < 0 || end > len(n.Contents) || start > end {
			return translation.InvalidArguments(translation.StageMarker,
				fmt.Sprintf("range [%d, %d) outside of %d contents", start, end, len(n.Contents)))
		}
	}

	idx, marker := m.next()
	m.store.Put(idx, latex.ContentString(n.Contents[start:end]))

	contents := make([]*latex.Node, 0, len(n.Contents)-(end-start)+1)
	contents = append(contents, n.Contents[:start]...)
	contents = append(contents, latex.NewText(marker))
	contents = append(contents, n.Contents[end:]...)
	n.Contents = contents
	return nil
}

// textFreeRanges returns the maximal runs of contents that are not text
// commands. Only direct contents are inspected; a text command nested in
// a group ends up inside a range.
func textFreeRanges(contents []*latex.Node) []Range {
	var out []Range
	start := -1
	for i, c := range contents {
		if isTextCommand(c) {
			if start >= 0 {
				out = append(out, Range{Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, Range{Start: start, End: len(contents)})
	}
	return out
}
