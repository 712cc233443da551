package stats

import (
	"context"
	"regexp"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/pkg/providers"
)

// Middleware 统计中间件，包装一个服务并记录每次调用
type Middleware struct {
	next    providers.Service
	manager *Manager
	tokenRe *regexp.Regexp
	logger  *zap.Logger
}

var _ providers.Service = (*Middleware)(nil)

// Wrap 创建统计中间件。tokenRe 匹配分词器产生的 token。
func Wrap(next providers.Service, manager *Manager, tokenRe *regexp.Regexp, log *zap.Logger) *Middleware {
	if log == nil {
		log = zap.NewNop()
	}
	return &Middleware{next: next, manager: manager, tokenRe: tokenRe, logger: log.Named("stats")}
}

// Unwrap 返回被包装的服务
func (m *Middleware) Unwrap() providers.Service { return m.next }

func (m *Middleware) Name() string { return m.next.Name() }

func (m *Middleware) Description() string { return m.next.Description() }

func (m *Middleware) CharLimit() int { return m.next.CharLimit() }

// Translate 带统计的翻译方法
func (m *Middleware) Translate(ctx context.Context, text, source, target string) (string, error) {
	start := time.Now()
	out, err := m.next.Translate(ctx, text, source, target)

	r := RequestResult{
		Success:   err == nil,
		Latency:   time.Since(start),
		CharsSent: utf8.RuneCountInString(text),
	}
	sent := m.tokens(text)
	r.TokensSent = count(sent)
	if err == nil {
		r.CharsReceived = utf8.RuneCountInString(out)
		received := m.tokens(out)
		r.TokensReceived = count(received)
		r.TokensLost, r.TokensAdded = diff(sent, received)
		if r.TokensLost > 0 || r.TokensAdded > 0 {
			m.logger.Warn("service altered tokens",
				zap.String("service", m.next.Name()),
				zap.Int("lost", r.TokensLost),
				zap.Int("added", r.TokensAdded))
		}
	}
	m.manager.Record(m.next.Name(), r)
	return out, err
}

func (m *Middleware) tokens(s string) map[string]int {
	out := make(map[string]int)
	if m.tokenRe == nil {
		return out
	}
	for _, t := range m.tokenRe.FindAllString(s, -1) {
		out[t]++
	}
	return out
}

func count(set map[string]int) int {
	n := 0
	for _, c := range set {
		n += c
	}
	return n
}

// diff counts the occurrences missing from received and the extra ones.
func diff(sent, received map[string]int) (lost, added int) {
	for t, c := range sent {
		if d := c - received[t]; d > 0 {
			lost += d
		}
	}
	for t, c := range received {
		if d := c - sent[t]; d > 0 {
			added += d
		}
	}
	return lost, added
}
