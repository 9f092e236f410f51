package scoring

import (
	"regexp"
	"strconv"
)

var (
	// 显式年限表述，按优先级排列，取第一个命中
	explicitExpPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*years?(?:\s+of)?\s+experience`),
		regexp.MustCompile(`(?i)experience\s*[:\-]?\s*(\d+(?:\.\d+)?)\s*\+?\s*years?`),
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*yrs?\b`),
	}
	// 2000年代的4位年份
	yearRe = regexp.MustCompile(`\b20\d{2}\b`)
	// 应届/实习信号
	fresherRe = regexp.MustCompile(`(?i)\b(intern|internship|fresher|graduate|entry[\s\-]?level)\b`)

	firstNumberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ExtractExperience 估算简历中的工作年限，返回nil表示无法推断
// 优先级：
//  1. 显式的 "N+ years experience" / "experience: N years" / "N yrs" 表述
//  2. 文本中出现>=2个 "20xx" 年份，且最大年份距当前年不超过1年（视为在职/近期岗位）时，
//     取 max-min 作为年限（下限0）
//  3. 出现 intern/fresher/graduate/entry-level 等应届信号时返回0
//  4. 都没有则返回nil，由聚合器按宽容策略处理
func (e *Engine) ExtractExperience(text string) *float64 {
	if text == "" {
		return nil
	}

	for _, re := range explicitExpPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				return &v
			}
		}
	}

	if years := yearRe.FindAllString(text, -1); len(years) >= 2 {
		minYear, maxYear := 9999, 0
		for _, y := range years {
			v, err := strconv.Atoi(y)
			if err != nil {
				continue
			}
			if v < minYear {
				minYear = v
			}
			if v > maxYear {
				maxYear = v
			}
		}
		currentYear := e.now().Year()
		if maxYear >= currentYear-1 {
			span := float64(maxYear - minYear)
			if span < 0 {
				span = 0
			}
			return &span
		}
	}

	if fresherRe.MatchString(text) {
		zero := 0.0
		return &zero
	}

	return nil
}

// ParseRequiredExperience 从岗位的自由文本年限要求中解析数字，取第一个出现的数字
// 例如 "3+ years" -> 3，"at least 5 yrs" -> 5；没有数字返回0
func ParseRequiredExperience(text string) float64 {
	if m := firstNumberRe.FindString(text); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			return v
		}
	}
	return 0
}
