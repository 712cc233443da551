package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// 测试日志级别
func TestNewLogger(t *testing.T) {
	assert.True(t, NewLogger(true).Core().Enabled(zapcore.DebugLevel))
	assert.False(t, NewLogger(false).Core().Enabled(zapcore.DebugLevel))
	assert.NotNil(t, OrNop(nil))
}

// 测试占位符诊断的字段
func TestMissingPlaceholder(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	MissingPlaceholder(zap.New(core), "MARKER", "//3//")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		fields := entries[0].ContextMap()
		assert.Equal(t, "MARKER", fields["stage"])
		assert.Equal(t, "//3//", fields["placeholder"])
	}
}
