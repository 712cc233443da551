package providers

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// NormalizeLanguage 将语言代码规范为 BCP 47 形式，如 "pt_br" 变为 "pt-BR"
func NormalizeLanguage(code string) (string, error) {
	code = strings.TrimSpace(strings.ReplaceAll(code, "_", "-"))
	if code == "" {
		return "", fmt.Errorf("empty language code")
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("unknown language %q: %w", code, err)
	}
	return tag.String(), nil
}

// BaseLanguage 返回语言代码的主语言部分，如 "en-US" 变为 "en"
func BaseLanguage(code string) string {
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return strings.ToLower(code)
	}
	base, _ := tag.Base()
	return base.String()
}

// RegionalLanguage 返回带地区的代码，无地区时补全最可能的地区，
// 如 "en" 变为 "en-US"
func RegionalLanguage(code string) string {
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return code
	}
	base, _ := tag.Base()
	region, _ := tag.Region()
	return base.String() + "-" + region.String()
}
