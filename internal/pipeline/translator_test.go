package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nerdneilsfield/go-translatex/internal/marker"
	"github.com/nerdneilsfield/go-translatex/internal/tokenizer"
	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// 测试第一个 token 之前的内容原样保留
func TestTranslatorHeader(t *testing.T) {
	svc := &fake{fn: upper}
	tr, err := NewTranslator("\\documentclass{article}\n[0-1]\nhello\n[0-2]\n", "[{}-{}]", svc, nil)
	require.NoError(t, err)
	require.NoError(t, tr.Translate(context.Background()))

	assert.Equal(t, "\\documentclass{article}\n[0-1]\nHELLO\n[0-2]\n", tr.Translated())
	assert.Empty(t, tr.Tokenized())
	assert.Equal(t, []string{"[0-1]\nhello\n[0-2]\n"}, svc.sent)
	assert.Equal(t, 1, tr.Chunks())
}

// 测试没有 token 时翻译整个字符串
func TestTranslatorNoToken(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc := &fake{fn: upper}
	tr, err := NewTranslator("plain text", "[{}-{}]", svc, zap.New(core))
	require.NoError(t, err)
	require.NoError(t, tr.Translate(context.Background()))

	assert.Equal(t, "PLAIN TEXT", tr.Translated())
	assert.Equal(t, 1, logs.FilterMessage("no token found, translating the whole string").Len())
}

// 测试只有 token 的分块不发送给服务
func TestTranslatorSkipsTokenOnlyChunks(t *testing.T) {
	svc := &fake{fn: upper}
	tr, err := NewTranslator("[0-1] [0-2]\n[0-3]", "[{}-{}]", svc, nil)
	require.NoError(t, err)
	require.NoError(t, tr.Translate(context.Background()))

	assert.Equal(t, "[0-1] [0-2]\n[0-3]", tr.Translated())
	assert.Empty(t, svc.sent)
}

// 测试失败的分块记录为服务调用错误
func TestTranslatorFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	svc := &fake{fn: func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded")
	}}
	tr, err := NewTranslator("[0-1] Bonjour.", "[{}-{}]", svc, zap.New(core))
	require.NoError(t, err)
	require.NoError(t, tr.Translate(context.Background()))

	assert.Equal(t, "[0-1] Bonjour.", tr.Translated())
	assert.Equal(t, 1, tr.Failures())

	entries := logs.FilterMessage("chunk left untranslated").All()
	require.Len(t, entries, 1)
	msg, ok := entries[0].ContextMap()["error"].(string)
	require.True(t, ok)
	assert.Contains(t, msg, "quota exceeded")
	assert.Contains(t, msg, translation.ErrServiceCall.Error())
}

// 测试参数校验
func TestTranslatorArguments(t *testing.T) {
	_, err := NewTranslator("x", "[{}]", &fake{fn: upper}, nil)
	assert.True(t, errors.Is(err, translation.ErrInvalidFormatTemplate))

	_, err = NewTranslator("x", "[{}-{}]", nil, nil)
	assert.True(t, errors.Is(err, translation.ErrUnavailableService))

	tr, err := NewTranslator("", "[{}-{}]", &fake{fn: upper}, nil)
	require.NoError(t, err)
	assert.True(t, errors.Is(tr.Translate(context.Background()), translation.ErrEmptyInput))
	assert.True(t, errors.Is(tr.SetConcurrency(0), translation.ErrInvalidArguments))
	assert.True(t, errors.Is(tr.SetLanguages("en", "not a language"), translation.ErrInvalidArguments))

	require.NoError(t, tr.SetLanguages("pt_br", "EN"))
	src, dst := tr.Languages()
	assert.Equal(t, "pt-BR", src)
	assert.Equal(t, "en", dst)
}

// 测试与分词器之间的转换
func TestTranslatorFromTokenizer(t *testing.T) {
	mk := marker.New("\\textbf{hello}", nil)
	require.NoError(t, mk.Mark())
	tk, err := tokenizer.FromMarker(mk, nil)
	require.NoError(t, err)
	require.NoError(t, tk.Tokenize())

	tr, err := FromTokenizer(tk, &fake{fn: upper}, nil)
	require.NoError(t, err)
	assert.Equal(t, tk.Tokenized(), tr.Base())
	require.NoError(t, tr.Translate(context.Background()))

	tk.UpdateFromTranslator(tr)
	require.NoError(t, tk.Detokenize())
	mk.UpdateFromTokenizer(tk)
	require.NoError(t, mk.Unmark())
	assert.Equal(t, "\\textbf{HELLO}", mk.Unmarked())
}
