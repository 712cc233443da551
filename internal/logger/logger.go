package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// NewLogger 创建一个新的日志记录器，输出到标准错误
func NewLogger(debug bool) *zap.Logger {
	config := zap.NewProductionConfig()

	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.DisableStacktrace = true
	config.OutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		panic("初始化日志系统失败: " + err.Error())
	}

	return logger
}

// OrNop 返回 l，为 nil 时返回空日志记录器
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// MissingPlaceholder 记录占位符丢失或被修改的诊断，不中断处理
func MissingPlaceholder(l *zap.Logger, stage, placeholder string) {
	l.Error(translation.ErrMissingPlaceholder.Error(),
		zap.String("stage", stage),
		zap.String("placeholder", placeholder),
	)
}
