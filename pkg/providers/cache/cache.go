// Package cache keeps translated chunks on disk, so that running a
// document again only sends the chunks that changed since the last run.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/pkg/providers"
)

// entry 缓存文件内容
type entry struct {
	Service string    `json:"service"`
	Source  string    `json:"source"`
	Target  string    `json:"target"`
	Value   string    `json:"value"`
	Created time.Time `json:"created"`
}

// Store 文件缓存，内存中保留已读取的条目
type Store struct {
	dir    string
	mu     sync.RWMutex
	memory map[string]string

	hits   atomic.Int64
	misses atomic.Int64
}

// Open 打开缓存目录，不存在时创建
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Store{dir: dir, memory: make(map[string]string)}, nil
}

// Dir 返回缓存目录
func (s *Store) Dir() string { return s.dir }

// Key 生成缓存键。scope 区分同一服务的不同模型或端点。
func Key(scope, source, target, text string) string {
	h := sha256.New()
	for _, part := range []string{scope, source, target, text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key[:2], key+".json")
}

// Get 获取缓存
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	v, ok := s.memory[key]
	s.mu.RUnlock()
	if ok {
		s.hits.Add(1)
		return v, true
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		s.misses.Add(1)
		return "", false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		s.misses.Add(1)
		return "", false
	}

	s.mu.Lock()
	s.memory[key] = e.Value
	s.mu.Unlock()
	s.hits.Add(1)
	return e.Value, true
}

// Set 写入缓存。先写临时文件再改名，中断的运行不会留下半个条目。
func (s *Store) Set(key, service, source, target, value string) error {
	data, err := json.Marshal(entry{
		Service: service,
		Source:  source,
		Target:  target,
		Value:   value,
		Created: time.Now(),
	})
	if err != nil {
		return err
	}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	s.mu.Lock()
	s.memory[key] = value
	s.mu.Unlock()
	return nil
}

// Stats 返回命中与未命中次数
func (s *Store) Stats() (hits, misses int64) {
	return s.hits.Load(), s.misses.Load()
}

// Middleware 缓存中间件
type Middleware struct {
	next   providers.Service
	store  *Store
	scope  string
	logger *zap.Logger
}

var _ providers.Service = (*Middleware)(nil)

// Wrap 用缓存包装服务。scope 为空时使用服务名称。
func Wrap(next providers.Service, store *Store, scope string, log *zap.Logger) *Middleware {
	if log == nil {
		log = zap.NewNop()
	}
	if scope == "" {
		scope = next.Name()
	}
	return &Middleware{next: next, store: store, scope: scope, logger: log.Named("cache")}
}

// Unwrap 返回被包装的服务
func (m *Middleware) Unwrap() providers.Service { return m.next }

func (m *Middleware) Name() string { return m.next.Name() }

func (m *Middleware) Description() string { return m.next.Description() }

func (m *Middleware) CharLimit() int { return m.next.CharLimit() }

// Translate 命中时直接返回缓存的译文，否则调用服务并保存结果
func (m *Middleware) Translate(ctx context.Context, text, source, target string) (string, error) {
	key := Key(m.scope, source, target, text)
	if v, ok := m.store.Get(key); ok {
		m.logger.Debug("cache hit", zap.String("key", key[:12]))
		return v, nil
	}

	out, err := m.next.Translate(ctx, text, source, target)
	if err != nil {
		return "", err
	}
	if err := m.store.Set(key, m.next.Name(), source, target, out); err != nil {
		m.logger.Warn("failed to save translation in cache", zap.Error(err))
	}
	return out, nil
}
