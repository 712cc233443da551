package providers

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// reasoningPattern matches the thinking blocks some models emit before
// their answer.
var reasoningPattern = regexp.MustCompile(`(?s)<(think|thinking|reasoning)>.*?</(think|thinking|reasoning)>\s*`)

// SystemPrompt 大模型服务使用的系统提示词
func SystemPrompt(source, target string) string {
	return fmt.Sprintf(
		"You are a professional translator. Translate the user's text from %s to %s. "+
			"The text is LaTeX where markup was replaced by tokens such as [0-3]. "+
			"Keep every token exactly as written and at the matching place in the sentence. "+
			"Keep line breaks and leading or trailing spaces. "+
			"Answer with the translation only, without comments.",
		languageName(source), languageName(target))
}

// CleanCompletion 去掉推理标记
func CleanCompletion(s string) string {
	return reasoningPattern.ReplaceAllString(s, "")
}

// languageName returns the English name of a language code, or the code.
func languageName(code string) string {
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}
