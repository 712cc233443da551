// Package textenc reads and writes LaTeX sources in the charset they were
// written in. Old documents often use latin1 through inputenc.
package textenc

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// UTF8 默认字符集
const UTF8 = "utf-8"

// Lookup 按 IANA 名称查找字符集，空名称表示 UTF-8
func Lookup(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, UTF8) || strings.EqualFold(name, "utf8") {
		return unicode.UTF8, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}

// Decode 将 src 从指定字符集解码为 UTF-8 字符串
func Decode(src []byte, name string) (string, error) {
	enc, err := Lookup(name)
	if err != nil {
		return "", err
	}
	if enc == unicode.UTF8 {
		if !utf8.Valid(src) {
			return "", fmt.Errorf("input is not valid UTF-8, set the encoding")
		}
		return string(bytes.TrimPrefix(src, []byte("\ufeff"))), nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), src)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s input: %w", name, err)
	}
	return string(out), nil
}

// Encode 将 UTF-8 字符串编码为指定字符集
func Encode(s, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return []byte(s), nil
	}
	out, _, err := transform.Bytes(encoding.HTMLEscapeUnsupported(enc.NewEncoder()), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s output: %w", name, err)
	}
	return out, nil
}

// ReadAll 读取并解码
func ReadAll(r io.Reader, name string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return Decode(b, name)
}
