package scoring

import (
	"regexp"
	"strings"
)

// 联系方式提取使用简历原文而非归一化文本：大小写和标点本身就是信号

var (
	// 简历区块标题行，姓名扫描时跳过
	sectionHeaderRe = regexp.MustCompile(`(?i)\b(resume|cv|curriculum vitae|profile|summary|objective|biodata)\b`)
	// 连续2-4个首字母大写的单词
	titlecaseNameRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3}\b`)
	// 姓名中不允许出现的保留词
	nameReservedRe = regexp.MustCompile(`(?i)\b(email|phone|mobile|address|contact)\b`)
	hasAlphaRe     = regexp.MustCompile(`[A-Za-z]`)
	alphaWordRe    = regexp.MustCompile(`^[A-Za-z]+$`)

	emailRe = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9._%+\-]*@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// 电话模式，按优先级排列：国际区号 > 印度手机号 > 美国格式 > 通用长数字
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+\d{1,3}[\s\-]?\d(?:[\d\s\-()]{7,16}\d)`),
		regexp.MustCompile(`\b[6-9]\d{9}\b`),
		regexp.MustCompile(`\(\d{3}\)\s?\d{3}[\s\-]?\d{4}`),
		regexp.MustCompile(`\d[\d\s\-]{8,14}\d`),
	}
	phonePrefixRe = regexp.MustCompile(`(?i)\b(?:tel|phone|mobile|ph)\s*[:.]?\s*`)
	phoneCleanRe  = regexp.MustCompile(`[^\d+\-\s()]`)
	digitRe       = regexp.MustCompile(`\d`)
)

// 占位邮箱域名，仅在没有其他候选时才返回
var placeholderEmailDomains = []string{"example.com", "sample.com", "test.com"}

// ExtractName 从简历原文中提取候选人姓名，未命中返回空串
// 扫描前5个非空行：跳过区块标题行和无字母内容的行，
// 匹配2-4个连续首字母大写单词且不含保留词的序列；
// 兜底策略：首行较短且形如2-4个纯字母单词时直接当作姓名
func ExtractName(text string) string {
	if text == "" {
		return ""
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == 5 {
			break
		}
	}

	for _, line := range lines {
		if sectionHeaderRe.MatchString(line) {
			continue
		}
		if !hasAlphaRe.MatchString(line) {
			continue
		}
		if m := titlecaseNameRe.FindString(line); m != "" && !nameReservedRe.MatchString(m) {
			return m
		}
	}

	// 兜底：首行即姓名的简历很常见
	if len(lines) > 0 {
		first := lines[0]
		if len(first) < 50 && !nameReservedRe.MatchString(first) {
			words := strings.Fields(first)
			if len(words) >= 2 && len(words) <= 4 {
				allAlpha := true
				for _, w := range words {
					if !alphaWordRe.MatchString(w) {
						allAlpha = false
						break
					}
				}
				if allAlpha {
					return first
				}
			}
		}
	}

	return ""
}

// ExtractEmail 提取邮箱并小写返回，未命中返回空串
// 有多个候选时优先选择非占位域名（example.com等）的地址
func ExtractEmail(text string) string {
	matches := emailRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return ""
	}

	for _, m := range matches {
		lower := strings.ToLower(m)
		placeholder := false
		for _, domain := range placeholderEmailDomains {
			if strings.HasSuffix(lower, "@"+domain) || strings.Contains(lower, domain) {
				placeholder = true
				break
			}
		}
		if !placeholder {
			return lower
		}
	}
	return strings.ToLower(matches[0])
}

// ExtractPhone 提取电话号码，未命中返回空串
// 去掉 tel:/phone:/mobile:/ph: 前缀后按模式优先级依次尝试，
// 仅保留数字/加号/连字符/空格/括号，且数字位数在10-15之间才接受
func ExtractPhone(text string) string {
	if text == "" {
		return ""
	}
	cleaned := phonePrefixRe.ReplaceAllString(text, "")

	for _, pattern := range phonePatterns {
		m := pattern.FindString(cleaned)
		if m == "" {
			continue
		}
		candidate := strings.TrimSpace(phoneCleanRe.ReplaceAllString(m, ""))
		digits := len(digitRe.FindAllString(candidate, -1))
		if digits >= 10 && digits <= 15 {
			return candidate
		}
	}
	return ""
}
