package scoring

import (
	"regexp"
	"strings"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/types"
)

var (
	projectWordRe = regexp.MustCompile(`\bproject\b`)

	percentFigureRe  = regexp.MustCompile(`\d+(?:\.\d+)?\s*%`)
	rankFigureRe     = regexp.MustCompile(`(?i)\brank\s*#?\s*\d+`)
	awardKeywordRe   = regexp.MustCompile(`(?i)\b(award|awards|awarded|achievement|achievements|honou?rs?|recognition|winner|medal|scholarship)\b`)
	leadershipVerbRe = regexp.MustCompile(`(?i)\b(lead|led|managed|mentored)\b`)
	improvementRe    = regexp.MustCompile(`(?i)\b(improved|increased|reduced|optimi[sz]ed)\b`)
)

// ScanSoftSkills 扫描软技能
// 先对岗位要求的软技能做子串匹配，再始终扫描内置软技能表并并入新命中项。
// 一项都没有时给40分的基准分（疑罪从无），否则每项20分封顶100
func (e *Engine) ScanSoftSkills(normText string, required []string) types.SoftSkillScore {
	matched := []string{}
	seen := make(map[string]struct{})

	for _, skill := range required {
		key := Normalize(skill)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		if strings.Contains(normText, key) {
			seen[key] = struct{}{}
			matched = append(matched, skill)
		}
	}

	for _, skill := range e.dict.SoftSkills {
		key := Normalize(skill)
		if _, dup := seen[key]; dup {
			continue
		}
		if strings.Contains(normText, key) {
			seen[key] = struct{}{}
			matched = append(matched, skill)
		}
	}

	score := float64(len(matched) * 20)
	if len(matched) == 0 {
		score = 40
	} else if score > 100 {
		score = 100
	}

	return types.SoftSkillScore{Score: score, Matched: matched}
}

// ScanProjects 扫描项目证据
// count 统计字面单词 "project" 的出现次数（上限5，仅作证据展示）；
// 得分为每个命中的指示词10分封顶100，出现项目链接提示词再加20分（总分仍封顶100）
func (e *Engine) ScanProjects(normText string) types.ProjectScore {
	count := len(projectWordRe.FindAllString(normText, -1))
	if count > 5 {
		count = 5
	}

	indicators := []string{}
	score := 0.0
	for _, word := range e.dict.ProjectIndicators {
		if strings.Contains(normText, word) {
			indicators = append(indicators, word)
			score += 10
		}
	}
	if score > 100 {
		score = 100
	}

	hasLinks := false
	for _, hint := range e.dict.ProjectLinkHints {
		if strings.Contains(normText, hint) {
			hasLinks = true
			break
		}
	}
	if hasLinks {
		score += 20
		if score > 100 {
			score = 100
		}
	}

	return types.ProjectScore{Score: score, Count: count, HasLinks: hasLinks, Indicators: indicators}
}

// ScanAchievements 扫描量化成果
// 在原文上检测（百分号会被归一化吃掉）：百分比数字+20、名次+15、
// 获奖词+25、管理动词+20、改进动词+15，总分封顶100，证据列表去重
func ScanAchievements(text string) types.AchievementScore {
	score := 0.0
	evidence := []string{}
	seen := make(map[string]struct{})

	add := func(points float64, label string) {
		score += points
		if _, dup := seen[label]; !dup {
			seen[label] = struct{}{}
			evidence = append(evidence, label)
		}
	}

	if percentFigureRe.MatchString(text) {
		add(20, "Quantified results with percentages")
	}
	if rankFigureRe.MatchString(text) {
		add(15, "Ranked achievements")
	}
	if awardKeywordRe.MatchString(text) {
		add(25, "Awards and recognitions")
	}
	if leadershipVerbRe.MatchString(text) {
		add(20, "Leadership experience")
	}
	if improvementRe.MatchString(text) {
		add(15, "Impact-oriented outcomes")
	}

	if score > 100 {
		score = 100
	}
	return types.AchievementScore{Score: score, Evidence: evidence}
}
