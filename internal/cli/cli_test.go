package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-translatex/internal/config"
	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// execute 在进程内运行根命令
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	// 使用空配置文件，避免读取家目录中的配置
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("service: google\n"), 0o644))

	cmd := NewRootCommand("test", "none", "unknown")
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeDictionary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dict.toml")
	d := config.NewDictionary("en", "fr", map[string]string{"Hello World": "Bonjour le monde"})
	require.NoError(t, d.Save(path))
	return path
}

// 测试服务列表
func TestListServices(t *testing.T) {
	out, _, err := execute(t, "", "--list-services")
	require.NoError(t, err)

	for _, name := range []string{"google", "google-web", "deepl", "openai", "ollama", "dictionary", "identity"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "GOOGLE_API_KEY")
	assert.Contains(t, out, "DEEPL_API_KEY")
}

// 测试未知服务在处理之前失败并给出候选
func TestUnknownService(t *testing.T) {
	_, _, err := execute(t, "\\section{Hello World}", "--service", "gogle")
	require.Error(t, err)
	assert.True(t, errors.Is(err, translation.ErrUnavailableService))
	assert.Contains(t, err.Error(), "did you mean")
	assert.Contains(t, err.Error(), "google")
}

// 测试缺少凭据
func TestMissingCredential(t *testing.T) {
	t.Setenv("DEEPL_API_KEY", "")
	_, _, err := execute(t, "\\section{Hello World}", "--service", "deepl")
	require.Error(t, err)
	assert.True(t, errors.Is(err, translation.ErrMissingCredential))

	var stderr bytes.Buffer
	cmd := NewRootCommand("test", "none", "unknown")
	cmd.SetErr(&stderr)
	PrintError(cmd, err)
	assert.Contains(t, stderr.String(), "DEEPL_API_KEY")
}

// 测试从标准输入翻译到标准输出
func TestTranslateStdio(t *testing.T) {
	dict := writeDictionary(t)
	out, _, err := execute(t, "\\begin{document}\nHello World\n\\end{document}\n",
		"-s", "en", "-t", "fr", "--dictionary", dict)
	require.NoError(t, err)
	assert.Equal(t, "\\begin{document}\nBonjour le monde\n\\end{document}\n", out)
}

// 测试文件输入输出与调试文件
func TestTranslateFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "paper.tex")
	out := filepath.Join(dir, "out", "paper.fr.tex")
	src := "\\documentclass{article}\n\\begin{document}\n\\section{Hello World}\n\\end{document}\n"
	require.NoError(t, os.WriteFile(in, []byte(src), 0o644))

	dict := writeDictionary(t)
	stdout, stderr, err := execute(t, "", "-s", "en", "-t", "fr", "--dictionary", dict, "--debug", in, out)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Translation summary")

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, strings.Replace(src, "Hello World", "Bonjour le monde", 1), string(got))

	base := filepath.Join(dir, "out", "paper.fr")
	for _, suffix := range []string{"marked.tex", "tokenized.tex", "translated.tex", "marker.store", "tokenizer.store", "manifest.yaml"} {
		assert.FileExists(t, base+"."+suffix)
	}
	manifest, err := os.ReadFile(base + ".manifest.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(manifest), "service: dictionary")
}

// 测试预演模式不需要服务，输出与输入相同
func TestDryRun(t *testing.T) {
	src := "\\begin{document}\nSome \\textbf{bold} text, $x$.\n\\end{document}\n"
	out, _, err := execute(t, src, "--dry-run", "--service", "no-such-service")
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

// 测试提前停止
func TestStopAt(t *testing.T) {
	src := "\\begin{document}\nHello World\n\\end{document}\n"
	dict := writeDictionary(t)

	out, _, err := execute(t, src, "--dry-run", "--stop-at", "marker")
	require.NoError(t, err)
	assert.Equal(t, "\\begin{//1//}\nHello World\n\\end{//1//}\n", out)

	out, _, err = execute(t, src, "--dictionary", dict, "--stop-at", "tokenizer")
	require.NoError(t, err)
	assert.Equal(t, "[0-1]\nHello World\n[0-2]\n", out)

	out, _, err = execute(t, src, "-s", "en", "-t", "fr", "--dictionary", dict, "--stop-at", "translator")
	require.NoError(t, err)
	assert.Equal(t, "[0-1]\nBonjour le monde\n[0-2]\n", out)

	_, _, err = execute(t, src, "--dictionary", dict, "--stop-at", "nowhere")
	assert.True(t, errors.Is(err, translation.ErrInvalidArguments))
}

// 测试非 UTF-8 编码的输入输出
func TestEncoding(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "latin1.tex")
	out := filepath.Join(dir, "latin1.out.tex")
	src := []byte("\\section{Caf\xe9}\n")
	require.NoError(t, os.WriteFile(in, src, 0o644))

	_, _, err := execute(t, "", "--dry-run", "--encoding", "latin1", in, out)
	require.NoError(t, err)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

// 测试无效的配置值
func TestInvalidFlags(t *testing.T) {
	_, _, err := execute(t, "x", "--token-format", "[{}]")
	assert.True(t, errors.Is(err, translation.ErrInvalidFormatTemplate))

	_, _, err = execute(t, "x", "--concurrency", "0")
	assert.Error(t, err)

	_, _, err = execute(t, "x", "a", "b", "c")
	assert.Error(t, err)
}
