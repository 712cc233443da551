// Package stats records how each translation service treats the chunks
// it is sent: latency, failures and the tokens it drops or invents.
package stats

import (
	"sort"
	"sync"
	"time"
)

// ServiceStats 单个服务的统计
type ServiceStats struct {
	Service        string        `json:"service" yaml:"service"`
	Requests       int64         `json:"requests" yaml:"requests"`
	Failures       int64         `json:"failures" yaml:"failures"`
	CharsSent      int64         `json:"chars_sent" yaml:"chars_sent"`
	CharsReceived  int64         `json:"chars_received" yaml:"chars_received"`
	TokensSent     int64         `json:"tokens_sent" yaml:"tokens_sent"`
	TokensReceived int64         `json:"tokens_received" yaml:"tokens_received"`
	TokensLost     int64         `json:"tokens_lost" yaml:"tokens_lost"`
	TokensAdded    int64         `json:"tokens_added" yaml:"tokens_added"`
	TotalLatency   time.Duration `json:"total_latency" yaml:"total_latency"`
	MaxLatency     time.Duration `json:"max_latency" yaml:"max_latency"`
}

// AverageLatency 平均延迟
func (s ServiceStats) AverageLatency() time.Duration {
	if s.Requests == 0 {
		return 0
	}
	return s.TotalLatency / time.Duration(s.Requests)
}

// RequestResult 单次请求结果
type RequestResult struct {
	Success        bool
	Latency        time.Duration
	CharsSent      int
	CharsReceived  int
	TokensSent     int
	TokensReceived int
	TokensLost     int
	TokensAdded    int
}

// Manager 统计管理器，可并发使用
type Manager struct {
	mu    sync.Mutex
	stats map[string]*ServiceStats
}

// NewManager 创建统计管理器
func NewManager() *Manager {
	return &Manager{stats: make(map[string]*ServiceStats)}
}

// Record 记录请求结果
func (m *Manager) Record(service string, r RequestResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stats[service]
	if !ok {
		s = &ServiceStats{Service: service}
		m.stats[service] = s
	}

	s.Requests++
	if !r.Success {
		s.Failures++
	}
	s.CharsSent += int64(r.CharsSent)
	s.CharsReceived += int64(r.CharsReceived)
	s.TokensSent += int64(r.TokensSent)
	s.TokensReceived += int64(r.TokensReceived)
	s.TokensLost += int64(r.TokensLost)
	s.TokensAdded += int64(r.TokensAdded)
	s.TotalLatency += r.Latency
	if r.Latency > s.MaxLatency {
		s.MaxLatency = r.Latency
	}
}

// Get 返回统计副本
func (m *Manager) Get(service string) (ServiceStats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stats[service]
	if !ok {
		return ServiceStats{}, false
	}
	return *s, true
}

// All 按服务名称返回所有统计副本
func (m *Manager) All() []ServiceStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ServiceStats, 0, len(m.stats))
	for _, s := range m.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
	return out
}
