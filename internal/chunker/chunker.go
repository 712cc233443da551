// Package chunker cuts text into sentence aligned chunks that fit the
// character limit of a translation service.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/sentences"
)

// terminals end a sentence. closers may follow them.
const (
	terminals = ".!?…。！？"
	closers   = "\"')]}»”’"
)

// Split 按句子边界将文本分块，每块不超过 maxLength 个字符。
// 超长的单个句子单独成块。所有块拼接后等于原文。
func Split(text string, maxLength int) []string {
	if text == "" {
		return nil
	}
	if maxLength <= 0 || utf8.RuneCountInString(text) <= maxLength {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	size := 0
	for _, s := range Sentences(text) {
		n := utf8.RuneCountInString(s)
		if size > 0 && size+n > maxLength {
			chunks = append(chunks, cur.String())
			cur.Reset()
			size = 0
		}
		cur.WriteString(s)
		size += n
	}
	if size > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// Sentences 返回文本的句子切分。不以终止标点结尾的片段并入下一个片段，
// 这样句子内部的换行不会切断句子。
func Sentences(text string) []string {
	var out []string
	var pending strings.Builder

	it := sentences.FromString(text)
	for it.Next() {
		pending.WriteString(it.Value())
		if terminal(pending.String()) {
			out = append(out, pending.String())
			pending.Reset()
		}
	}
	if pending.Len() > 0 {
		out = append(out, pending.String())
	}
	return out
}

// terminal reports whether s ends a sentence, ignoring trailing spaces
// and closing quotes or brackets.
func terminal(s string) bool {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	s = strings.TrimRight(s, closers)
	r, _ := utf8.DecodeLastRuneInString(s)
	return r != utf8.RuneError && strings.ContainsRune(terminals, r)
}
