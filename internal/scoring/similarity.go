package scoring

import "math"

// Similarity 计算两段文本的词袋余弦相似度，返回[0,100]
// 两边用同一套归一化+切分规则（丢弃长度<=2的token），
// 在词表并集上构建词频向量后计算 dot(a,b)/(|a|*|b|)*100；
// 任一侧向量模为0时返回0，避免除零
func Similarity(resumeText, jobDescription string) float64 {
	tfA := termFrequency(Tokenize(resumeText))
	tfB := termFrequency(Tokenize(jobDescription))
	if len(tfA) == 0 || len(tfB) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for term, a := range tfA {
		magA += a * a
		if b, ok := tfB[term]; ok {
			dot += a * b
		}
	}
	for _, b := range tfB {
		magB += b * b
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(magA) * math.Sqrt(magB)) * 100
	// 浮点误差可能让自相似度略超100
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

func termFrequency(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}
