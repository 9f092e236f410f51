package scoring

import (
	"regexp"
	"strings"
)

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize 将文本归一化为适合关键词匹配的形式：
// 小写化，非单词/非空白字符替换为空格，连续空白折叠为单个空格，去除首尾空白。
// 对任意输入都不会出错，空串输入返回空串。满足幂等性：Normalize(Normalize(x)) == Normalize(x)
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	t := strings.ToLower(text)
	t = nonWordRe.ReplaceAllString(t, " ")
	t = whitespaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// Tokenize 归一化后按空白切分，丢弃长度<=2的token
// 与语义相似度计算共用同一套归一化规则
func Tokenize(text string) []string {
	norm := Normalize(text)
	if norm == "" {
		return nil
	}
	fields := strings.Fields(norm)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// containsPhrase 判断归一化文本中是否包含归一化后的短语（按词边界）
// 用于学历关键词这类短token，避免 "b e" 之类的子串误伤
func containsPhrase(normText, phrase string) bool {
	if normText == "" || phrase == "" {
		return false
	}
	return strings.Contains(" "+normText+" ", " "+phrase+" ")
}
