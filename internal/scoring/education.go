package scoring

import (
	"regexp"
	"strconv"
)

// 学历层级常量，聚合器按 phd > master > bachelor 取最高
const (
	LevelBachelor = "bachelor"
	LevelMaster   = "master"
	LevelPhD      = "phd"
)

var (
	gpaLabelRe  = regexp.MustCompile(`(?i)\bgpa\s*[:\-]?\s*(\d{1,2}(?:\.\d{1,2})?)`)
	cgpaLabelRe = regexp.MustCompile(`(?i)\bcgpa\s*[:\-]?\s*(\d{1,2}(?:\.\d{1,2})?)`)
	outOfTenRe  = regexp.MustCompile(`(\d{1,2}(?:\.\d{1,2})?)\s*/\s*10\b`)
	outOfFourRe = regexp.MustCompile(`(\d(?:\.\d{1,2})?)\s*/\s*4\b`)
)

// ExtractEducation 在归一化文本中检测学历层级
// 三个层级各自独立检测，结果列表不代表高低排序
func (e *Engine) ExtractEducation(normText string) []string {
	levels := []string{}
	if matchAnyPhrase(normText, e.dict.BachelorKeywords) {
		levels = append(levels, LevelBachelor)
	}
	if matchAnyPhrase(normText, e.dict.MasterKeywords) {
		levels = append(levels, LevelMaster)
	}
	if matchAnyPhrase(normText, e.dict.PhDKeywords) {
		levels = append(levels, LevelPhD)
	}
	return levels
}

func matchAnyPhrase(normText string, phrases []string) bool {
	for _, p := range phrases {
		if containsPhrase(normText, p) {
			return true
		}
	}
	return false
}

// ExtractGPA 提取绩点并归一到10分制，未命中返回nil
// 依次尝试 gpa:、cgpa:、X/10、X/4 四种写法，取第一个命中；
// 只有 X/4 写法按 (value/4)*10 换算，前三种按原值接受（上限10）
func ExtractGPA(text string) *float64 {
	if text == "" {
		return nil
	}

	for _, re := range []*regexp.Regexp{gpaLabelRe, cgpaLabelRe, outOfTenRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err == nil && v >= 0 && v <= 10 {
				return &v
			}
		}
	}

	if m := outOfFourRe.FindStringSubmatch(text); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil && v >= 0 && v <= 4 {
			scaled := (v / 4) * 10
			return &scaled
		}
	}

	return nil
}
