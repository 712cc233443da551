package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Dictionary 预定义译文，以 TOML 保存：
//
//	source_lang = "en"
//	target_lang = "fr"
//
//	[translations]
//	"Hello World" = "Bonjour le monde"
type Dictionary struct {
	SourceLang   string            `toml:"source_lang"`
	TargetLang   string            `toml:"target_lang"`
	Translations map[string]string `toml:"translations"`
}

// NewDictionary 创建词典
func NewDictionary(sourceLang, targetLang string, translations map[string]string) *Dictionary {
	if translations == nil {
		translations = make(map[string]string)
	}
	return &Dictionary{
		SourceLang:   sourceLang,
		TargetLang:   targetLang,
		Translations: translations,
	}
}

// LoadDictionary 读取词典文件
func LoadDictionary(path string) (*Dictionary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary file: %w", err)
	}

	d := &Dictionary{}
	if _, err := toml.Decode(string(content), d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dictionary %s: %w", path, err)
	}
	if len(d.Translations) == 0 {
		return nil, fmt.Errorf("dictionary %s has no translations", path)
	}
	return d, nil
}

// Save 写入词典文件
func (d *Dictionary) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(d); err != nil {
		return fmt.Errorf("failed to encode dictionary: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Covers 报告词典是否适用于该语言对。未声明语言的词典适用于任何语言对。
func (d *Dictionary) Covers(source, target string) bool {
	return (d.SourceLang == "" || d.SourceLang == source) &&
		(d.TargetLang == "" || d.TargetLang == target)
}
