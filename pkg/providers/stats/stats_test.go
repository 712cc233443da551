package stats

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fake struct {
	out string
	err error
}

func (f fake) Name() string        { return "fake" }
func (f fake) Description() string { return "fake" }
func (f fake) CharLimit() int      { return 10 }
func (f fake) Translate(context.Context, string, string, string) (string, error) {
	return f.out, f.err
}

var tokenRe = regexp.MustCompile(`\[(?:\d+)-(?:\d+)\]`)

// 测试 token 丢失与新增的统计
func TestMiddleware(t *testing.T) {
	m := NewManager()
	ctx := context.Background()

	svc := Wrap(fake{out: "Bonjour [0-1] [0-3]"}, m, tokenRe, nil)
	out, err := svc.Translate(ctx, "Hello [0-1] [0-2] [0-2]", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour [0-1] [0-3]", out)
	assert.Equal(t, 10, svc.CharLimit())

	failing := Wrap(fake{err: errors.New("boom")}, m, tokenRe, nil)
	_, err = failing.Translate(ctx, "Hello", "en", "fr")
	assert.Error(t, err)

	s, ok := m.Get("fake")
	require.True(t, ok)
	assert.Equal(t, int64(2), s.Requests)
	assert.Equal(t, int64(1), s.Failures)
	assert.Equal(t, int64(3), s.TokensSent)
	assert.Equal(t, int64(2), s.TokensReceived)
	assert.Equal(t, int64(2), s.TokensLost)
	assert.Equal(t, int64(1), s.TokensAdded)
	assert.Len(t, m.All(), 1)
}

// 测试差异计数
func TestDiff(t *testing.T) {
	lost, added := diff(map[string]int{"a": 2, "b": 1}, map[string]int{"a": 1, "c": 1})
	assert.Equal(t, 2, lost)
	assert.Equal(t, 1, added)

	_, ok := NewManager().Get("none")
	assert.False(t, ok)
	assert.Zero(t, ServiceStats{}.AverageLatency())
}
