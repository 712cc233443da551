package providers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-translatex/pkg/translation"
)

// Constructor 根据配置创建服务
type Constructor func(cfg BaseConfig, log *zap.Logger) (Service, error)

// Entry 注册表中的一个服务
type Entry struct {
	Name        string
	Description string
	// EnvVar 保存凭据的环境变量，空表示不需要凭据
	EnvVar string
	New    Constructor
}

// NeedsKey 报告服务是否需要 API 密钥
func (e Entry) NeedsKey() bool { return e.EnvVar != "" }

// Registry 服务注册表
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry 创建新的注册表
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{entries: make(map[string]Entry)}
	for _, e := range entries {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
	return r
}

// Register 注册服务
func (r *Registry) Register(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[e.Name]; exists {
		return fmt.Errorf("service %s already registered", e.Name)
	}
	r.entries[e.Name] = e
	return nil
}

// Get 获取服务条目
func (r *Registry) Get(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	if !exists {
		return Entry{}, translation.Unavailable(name, fmt.Errorf("unknown service"))
	}
	return e, nil
}

// Build 创建服务实例
func (r *Registry) Build(name string, cfg BaseConfig, log *zap.Logger) (Service, error) {
	e, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	svc, err := e.New(cfg, log)
	if err != nil {
		return nil, translation.WrapError(err, translation.ErrCodeService, "", fmt.Sprintf("create service %q", name))
	}
	return svc, nil
}

// Names 按字母顺序列出服务名称
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries 按名称顺序返回所有条目
func (r *Registry) Entries() []Entry {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, len(names))
	for i, n := range names {
		out[i] = r.entries[n]
	}
	return out
}

// Suggest 返回与 name 相近的服务名称，最相近的在前
func (r *Registry) Suggest(name string) []string {
	ranks := fuzzy.RankFindNormalizedFold(name, r.Names())
	if len(ranks) == 0 {
		// 反向匹配，处理输入比服务名更长的情况
		for _, n := range r.Names() {
			if fuzzy.MatchNormalizedFold(n, name) {
				ranks = append(ranks, fuzzy.Rank{Target: n})
			}
		}
	}
	sort.Sort(ranks)

	out := make([]string, len(ranks))
	for i, rk := range ranks {
		out[i] = rk.Target
	}
	return out
}
