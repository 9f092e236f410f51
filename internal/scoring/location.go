package scoring

import (
	"regexp"
	"strings"
)

const (
	locationNeutralScore  = 75  // 岗位未给定地点
	locationMatchScore    = 100 // 简历提到岗位地点
	locationRelocateScore = 80  // 未提到地点但表达了搬迁意愿
	locationMissScore     = 30
)

var (
	locationSplitRe = regexp.MustCompile(`[,\s]+`)
	relocateRe      = regexp.MustCompile(`(?i)relocat|willing to relocate|open to relocat`)
)

// LocationScore 计算地点匹配分
// 岗位地点按逗号/空白切分后保留长度>2的部分，任意一部分出现在归一化简历文本中即满分；
// 未命中但简历表达了搬迁意愿时给80分，否则30分
func LocationScore(normText, requiredLocation string) float64 {
	requiredLocation = strings.TrimSpace(requiredLocation)
	if requiredLocation == "" {
		return locationNeutralScore
	}

	for _, part := range locationSplitRe.Split(strings.ToLower(requiredLocation), -1) {
		if len(part) <= 2 {
			continue
		}
		if strings.Contains(normText, part) {
			return locationMatchScore
		}
	}

	if relocateRe.MatchString(normText) {
		return locationRelocateScore
	}
	return locationMissScore
}
