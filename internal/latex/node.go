// Package latex parses LaTeX source into a mutable syntax tree.
//
// The tree is lossless: String on the root returns the exact source the
// tree was parsed from, and keeps doing so after names or content lists
// are replaced. It knows nothing about macro expansion; it only tracks
// commands, environments, math regions, groups, comments and text.
package latex

import "strings"

// Kind is the type of a node.
type Kind int

const (
	KindRoot    Kind = iota
	KindText         // plain text, escapes included
	KindComment      // "%" up to the end of the line, newline excluded
	KindCommand      // \name followed by adjacent argument groups
	KindEnv          // \begin{name}...\end{name}
	KindMath         // $...$, $$...$$, \(...\), \[...\]
	KindGroup        // bare {...}
)

var kindNames = map[Kind]string{
	KindRoot:    "root",
	KindText:    "text",
	KindComment: "comment",
	KindCommand: "command",
	KindEnv:     "env",
	KindMath:    "math",
	KindGroup:   "group",
}

func (k Kind) String() string {
	return kindNames[k]
}

// Arg is an argument group attached to a command or an environment.
type Arg struct {
	Open     string
	Close    string
	Contents []*Node
}

// IsOptional reports whether the group is a bracket group.
func (a *Arg) IsOptional() bool {
	return a.Open == "["
}

func (a *Arg) String() string {
	var b strings.Builder
	b.WriteString(a.Open)
	writeAll(&b, a.Contents)
	b.WriteString(a.Close)
	return b.String()
}

// Node is one element of the tree. Name and Contents may be replaced in
// place; String always reflects the current values.
type Node struct {
	Kind Kind
	// Name is the command name after the backslash, the environment name
	// inside \begin{...}, or the math flavour ("$", "$$", "math",
	// "displaymath").
	Name     string
	Text     string
	Args     []*Arg
	Contents []*Node

	open, close string
}

// NewText returns a text node.
func NewText(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// IsExpr reports whether the node is a structural node, as opposed to
// text or comments.
func (n *Node) IsExpr() bool {
	return n.Kind != KindText && n.Kind != KindComment
}

// Children returns the structural nodes directly below n. For commands
// these are the nodes inside the argument groups; for environments the
// argument groups come first, then the contents.
func (n *Node) Children() []*Node {
	var out []*Node
	for _, a := range n.Args {
		out = appendExprs(out, a.Contents)
	}
	return appendExprs(out, n.Contents)
}

// Descendants returns every structural node below n, depth first.
func (n *Node) Descendants() []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.Children() {
			out = append(out, c)
			walk(c)
		}
	}
	walk(n)
	return out
}

// Find returns the first environment named name below n, or nil.
func (n *Node) Find(name string) *Node {
	for _, d := range n.Descendants() {
		if d.Kind == KindEnv && d.Name == name {
			return d
		}
	}
	return nil
}

// ContentString concatenates the string form of contents.
func ContentString(contents []*Node) string {
	var b strings.Builder
	writeAll(&b, contents)
	return b.String()
}

func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	switch n.Kind {
	case KindText, KindComment:
		b.WriteString(n.Text)
	case KindCommand:
		b.WriteString(`\`)
		b.WriteString(n.Name)
		writeArgs(b, n.Args)
	case KindEnv:
		b.WriteString(`\begin{`)
		b.WriteString(n.Name)
		b.WriteString(`}`)
		writeArgs(b, n.Args)
		writeAll(b, n.Contents)
		b.WriteString(`\end{`)
		b.WriteString(n.Name)
		b.WriteString(`}`)
	case KindMath:
		b.WriteString(n.open)
		writeAll(b, n.Contents)
		b.WriteString(n.close)
	case KindGroup:
		b.WriteString("{")
		writeAll(b, n.Contents)
		b.WriteString("}")
	default:
		writeAll(b, n.Contents)
	}
}

func writeArgs(b *strings.Builder, args []*Arg) {
	for _, a := range args {
		b.WriteString(a.Open)
		writeAll(b, a.Contents)
		b.WriteString(a.Close)
	}
}

func writeAll(b *strings.Builder, nodes []*Node) {
	for _, c := range nodes {
		c.write(b)
	}
}

func appendExprs(out, nodes []*Node) []*Node {
	for _, c := range nodes {
		if c.IsExpr() {
			out = append(out, c)
		}
	}
	return out
}
