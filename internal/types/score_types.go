package types

// MatchCategory 总分对应的匹配档位
type MatchCategory string

const (
	// MatchExcellent 综合得分 >= 85
	MatchExcellent MatchCategory = "Excellent Match"
	// MatchGood 综合得分 >= 70
	MatchGood MatchCategory = "Good Match"
	// MatchPartial 综合得分 >= 55
	MatchPartial MatchCategory = "Partial Match"
	// MatchPoor 其余情况
	MatchPoor MatchCategory = "Poor Match"
)

// JobRequirement 岗位要求，评分引擎的输入
// RequiredExperienceYears 由 ExperienceText 解析得到（取文本中出现的第一个数字）
type JobRequirement struct {
	JobID                   string   `json:"job_id,omitempty"`
	Title                   string   `json:"title"`
	RequiredSkills          []string `json:"required_skills"`
	GoodToHaveSkills        []string `json:"good_to_have_skills,omitempty"`
	SoftSkills              []string `json:"soft_skills,omitempty"`
	Location                string   `json:"location,omitempty"`
	ExperienceText          string   `json:"experience_text,omitempty"`
	RequiredExperienceYears float64  `json:"required_experience_years"`
	Description             string   `json:"description,omitempty"`
}

// ContactInfo 从简历原文提取的联系方式，未命中时为空串
type ContactInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// SkillScore 技能维度子分及证据
type SkillScore struct {
	Score   float64  `json:"score"`
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
}

// ExperienceScore 工作年限维度子分及证据
// ExtractedYears 为 nil 表示简历中无法推断年限（聚合器按宽容策略处理，不视为0年）
type ExperienceScore struct {
	Score          float64  `json:"score"`
	ExtractedYears *float64 `json:"extracted_years,omitempty"`
	RequiredYears  float64  `json:"required_years"`
}

// EducationScore 教育维度子分及证据
type EducationScore struct {
	Score        float64  `json:"score"`
	Levels       []string `json:"levels,omitempty"`
	HighestLevel string   `json:"highest_level,omitempty"`
	GPA          *float64 `json:"gpa,omitempty"`
}

// ProjectScore 项目维度子分及证据
type ProjectScore struct {
	Score      float64  `json:"score"`
	Count      int      `json:"count"`
	HasLinks   bool     `json:"has_links"`
	Indicators []string `json:"indicators,omitempty"`
}

// AchievementScore 成果维度子分及证据（证据列表已去重）
type AchievementScore struct {
	Score    float64  `json:"score"`
	Evidence []string `json:"evidence,omitempty"`
}

// SoftSkillScore 软技能维度子分及证据
type SoftSkillScore struct {
	Score   float64  `json:"score"`
	Matched []string `json:"matched,omitempty"`
}

// ScoreBreakdown 一次评分调用的完整输出，不可变值对象
// Semantic 仅作整体参考维度，不参与加权
type ScoreBreakdown struct {
	Contact          ContactInfo      `json:"contact"`
	KeySkills        SkillScore       `json:"key_skills"`
	GoodToHaveSkills SkillScore       `json:"good_to_have_skills"`
	Experience       ExperienceScore  `json:"experience"`
	Education        EducationScore   `json:"education"`
	Location         float64          `json:"location"`
	Projects         ProjectScore     `json:"projects"`
	Achievements     AchievementScore `json:"achievements"`
	SoftSkills       SoftSkillScore   `json:"soft_skills"`
	Semantic         float64          `json:"semantic"`

	TotalScore     int           `json:"total_score"`
	MatchCategory  MatchCategory `json:"match_category"`
	Recommendation string        `json:"recommendation"`
	Feedback       []string      `json:"feedback"`
}
