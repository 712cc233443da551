package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// 预定义错误
var (
	// ErrEmptyInput 对空字符串执行了处理操作
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidFormatTemplate 格式模板缺少所需的占位符
	ErrInvalidFormatTemplate = errors.New("invalid format template")

	// ErrInvalidArguments 内容标记参数只提供了一半
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrMissingPlaceholder 占位符在往返过程中丢失或被修改（仅用于诊断）
	ErrMissingPlaceholder = errors.New("missing or altered placeholder")

	// ErrUnavailableService 翻译服务不可用
	ErrUnavailableService = errors.New("translation service unavailable")

	// ErrMissingCredential 缺少 API 凭据
	ErrMissingCredential = errors.New("missing credential")

	// ErrServiceCall 单个分块的翻译调用失败
	ErrServiceCall = errors.New("translation service call failed")

	// ErrParse LaTeX 解析失败
	ErrParse = errors.New("latex parse error")
)

// 阶段名称，用于错误与诊断日志
const (
	StagePreprocessor = "PREPROCESSOR"
	StageMarker       = "MARKER"
	StageTokenizer    = "TOKENIZER"
	StageTranslator   = "TRANSLATOR"
)

// 错误代码常量
const (
	ErrCodeEmptyInput  = "EMPTY_INPUT"
	ErrCodeFormat      = "FORMAT_ERROR"
	ErrCodeArguments   = "ARGUMENT_ERROR"
	ErrCodePlaceholder = "PLACEHOLDER_ERROR"
	ErrCodeService     = "SERVICE_ERROR"
	ErrCodeCredential  = "CREDENTIAL_ERROR"
	ErrCodeParse       = "PARSE_ERROR"
	ErrCodeUnknown     = "UNKNOWN_ERROR"
)

// Error 流水线错误
type Error struct {
	Code    string // 错误代码
	Stage   string // 发生错误的阶段
	Message string // 错误消息
	Cause   error  // 原因
}

// Error 实现error接口
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(e.Code)
	b.WriteString("] ")
	b.WriteString(e.Message)
	if e.Stage != "" {
		b.WriteString(" during stage ")
		b.WriteString(e.Stage)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap 返回原因错误
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError 创建流水线错误
func NewError(code, stage, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}

// EmptyInput 创建空输入错误
func EmptyInput(stage, what string) *Error {
	return NewError(ErrCodeEmptyInput, stage, what+" is empty, nothing to do", ErrEmptyInput)
}

// InvalidFormat 创建格式模板错误
func InvalidFormat(template string, want int) *Error {
	return NewError(ErrCodeFormat, "",
		fmt.Sprintf("format %q must contain exactly %d empty placeholder(s) \"{}\"", template, want),
		ErrInvalidFormatTemplate)
}

// InvalidArguments 创建参数错误
func InvalidArguments(stage, message string) *Error {
	return NewError(ErrCodeArguments, stage, message, ErrInvalidArguments)
}

// MissingCredential 创建凭据缺失错误
func MissingCredential(service, envVar string) *Error {
	return NewError(ErrCodeCredential, "",
		fmt.Sprintf("service %q needs an API key, set %s or configure it", service, envVar),
		ErrMissingCredential)
}

// Unavailable 创建服务不可用错误
func Unavailable(service string, cause error) *Error {
	return NewError(ErrCodeService, "", fmt.Sprintf("service %q cannot be used", service),
		fmt.Errorf("%w: %w", ErrUnavailableService, cause))
}

// ServiceCall 创建分块翻译失败错误，不会中止流水线
func ServiceCall(service string, cause error) *Error {
	return NewError(ErrCodeService, StageTranslator, fmt.Sprintf("service %q failed on a chunk", service),
		fmt.Errorf("%w: %w", ErrServiceCall, cause))
}

// WrapError 包装错误
func WrapError(err error, code, stage, message string) error {
	if err == nil {
		return nil
	}

	// 如果已经是流水线错误，保留原有信息
	var pe *Error
	if errors.As(err, &pe) {
		return fmt.Errorf("%s: %w", message, err)
	}

	return NewError(code, stage, message, err)
}

// IsFatal 判断错误是否必须中止整个流水线
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrMissingPlaceholder),
		errors.Is(err, ErrServiceCall):
		return false
	}
	return true
}

// IsCanceled 判断错误是否来自上下文取消
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
