package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nerdneilsfield/go-translatex/internal/pipeline"
	"github.com/nerdneilsfield/go-translatex/internal/textenc"
)

// stdio 表示标准输入或标准输出的路径
const stdio = "-"

func isStdio(path string) bool { return path == "" || path == stdio }

// readInput 读取并解码输入，path 为空或 "-" 时读取 stdin
func readInput(path string, stdin io.Reader, encoding string) (string, error) {
	if isStdio(path) {
		return textenc.ReadAll(stdin, encoding)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return textenc.Decode(data, encoding)
}

// writeOutput 编码并写出结果，path 为空或 "-" 时写入 stdout
func writeOutput(path string, stdout io.Writer, s, encoding string) error {
	data, err := textenc.Encode(s, encoding)
	if err != nil {
		return err
	}
	if isStdio(path) {
		_, err = stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// debugBase 返回调试文件的基名：优先使用输出文件，其次输入文件
func debugBase(input, output string) string {
	path := "translatex"
	switch {
	case !isStdio(output):
		path = output
	case !isStdio(input):
		path = input
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// writeDebug 写出所有中间产物与运行清单，返回写入的文件
func writeDebug(base string, res *pipeline.Result) ([]string, error) {
	var written []string
	for _, a := range res.Artifacts() {
		path := base + "." + a.Suffix
		if err := os.WriteFile(path, []byte(a.Content), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	manifest, err := res.Manifest()
	if err != nil {
		return written, err
	}
	path := base + ".manifest.yaml"
	if err := os.WriteFile(path, manifest, 0o644); err != nil {
		return written, fmt.Errorf("write %s: %w", path, err)
	}
	return append(written, path), nil
}
