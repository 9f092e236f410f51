package scoring

import "strings"

// MatchSkills 在归一化文本中匹配技能清单
// 返回命中与未命中两个列表，均保持输入的原始大小写和顺序
//
// 每个技能先按小写名查同义词表，无词条时同义词集合即其自身；
// 任意一个同义词作为子串出现在归一化文本中即视为命中。
// 注意这里是刻意的子串包含而非词边界匹配（"react" 也会命中 "reactjs"），
// 该简化是既定行为，不要改成token匹配
func (e *Engine) MatchSkills(normText string, skills []string) (matched, missing []string) {
	matched = []string{}
	missing = []string{}
	if len(skills) == 0 {
		return matched, missing
	}

	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		key := strings.ToLower(strings.TrimSpace(skill))
		if key == "" {
			continue
		}
		// 按大小写折叠去重，保留首次出现
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		synonyms, ok := e.dict.Synonyms[key]
		if !ok {
			synonyms = []string{key}
		}

		hit := false
		for _, syn := range synonyms {
			if syn == "" {
				continue
			}
			if strings.Contains(normText, strings.ToLower(syn)) {
				hit = true
				break
			}
		}

		if hit {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	return matched, missing
}
