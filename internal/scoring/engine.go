// Package scoring 实现确定性的规则简历评分引擎：
// 文本归一化、联系方式/技能/学历/年限等实体提取、词袋余弦相似度，
// 以及固定权重的分数聚合。整个包是纯计算，无I/O，无共享可变状态，
// 同一输入反复调用得到逐字节一致的输出，可被任意并发调用。
package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/types"
)

// MinResumeLength 简历文本的最小长度，低于该值视为上游提取失败（如纯扫描件），直接拒绝评分
const MinResumeLength = 100

// EngineVersion 写入评分报告，规则或权重调整时递增
const EngineVersion = "rule-engine/1.0"

// 聚合权重，8项之和必须恰好为1.0
const (
	weightKeySkills    = 0.35
	weightExperience   = 0.25
	weightGoodToHave   = 0.15
	weightEducation    = 0.10
	weightLocation     = 0.05
	weightProjects     = 0.05
	weightAchievements = 0.03
	weightSoftSkills   = 0.02
)

// 档位阈值，从高到低依次判定
const (
	thresholdExcellent = 85
	thresholdGood      = 70
	thresholdPartial   = 55
)

// 各档位固定的推荐语
var recommendations = map[types.MatchCategory]string{
	types.MatchExcellent: "Strong candidate for this role. Recommend moving directly to the interview stage.",
	types.MatchGood:      "Good fit for the role. Recommend a screening call to confirm key skills.",
	types.MatchPartial:   "Partial fit. Consider for the role if the pipeline is thin, or for adjacent openings.",
	types.MatchPoor:      "Not a fit for this role based on the resume. Consider other open positions.",
}

// ValidationError 输入校验失败，调用方应将其映射为4xx类错误
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("评分输入校验失败 (%s): %s", e.Field, e.Reason)
}

// Engine 评分引擎
// 持有的查找表在构造后只读，单个实例可安全地被并发使用
type Engine struct {
	dict Dictionaries
	now  func() time.Time
}

// Option 引擎构造选项
type Option func(*Engine)

// WithDictionaries 注入自定义查找表，替换内置默认表
func WithDictionaries(dict Dictionaries) Option {
	return func(e *Engine) {
		e.dict = dict
	}
}

// WithClock 注入时钟，年份区间推断依赖"当前年"，测试时固定它以保证可复现
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine 创建评分引擎
func NewEngine(options ...Option) *Engine {
	e := &Engine{
		dict: DefaultDictionaries(),
		now:  time.Now,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Weights 返回聚合权重表的副本，供自检和展示使用
func Weights() map[string]float64 {
	return map[string]float64{
		"key_skills":          weightKeySkills,
		"experience":          weightExperience,
		"good_to_have_skills": weightGoodToHave,
		"education":           weightEducation,
		"location":            weightLocation,
		"projects":            weightProjects,
		"achievements":        weightAchievements,
		"soft_skills":         weightSoftSkills,
	}
}

// ScoreResume 对一份简历文本和一个岗位要求执行一次完整评分
// 校验通过后必定返回完整的 ScoreBreakdown：所有提取器都是防御性的，
// 未命中时退化为nil/空/中性默认值而不是报错
func (e *Engine) ScoreResume(resumeText string, job *types.JobRequirement) (*types.ScoreBreakdown, error) {
	if err := validate(resumeText, job); err != nil {
		return nil, err
	}

	normText := Normalize(resumeText)

	breakdown := &types.ScoreBreakdown{
		Contact: types.ContactInfo{
			Name:  ExtractName(resumeText),
			Email: ExtractEmail(resumeText),
			Phone: ExtractPhone(resumeText),
		},
	}

	// 技能维度：要求列表为空时得0分而不是100分，属既定产品行为，不要悄悄"修复"
	matched, missing := e.MatchSkills(normText, job.RequiredSkills)
	breakdown.KeySkills = types.SkillScore{
		Score:   ratioScore(len(matched), len(job.RequiredSkills)),
		Matched: matched,
		Missing: missing,
	}

	goodMatched, goodMissing := e.MatchSkills(normText, job.GoodToHaveSkills)
	breakdown.GoodToHaveSkills = types.SkillScore{
		Score:   ratioScore(len(goodMatched), len(job.GoodToHaveSkills)),
		Matched: goodMatched,
		Missing: goodMissing,
	}

	extractedYears := e.ExtractExperience(resumeText)
	breakdown.Experience = types.ExperienceScore{
		Score:          experienceScore(extractedYears, job.RequiredExperienceYears),
		ExtractedYears: extractedYears,
		RequiredYears:  job.RequiredExperienceYears,
	}

	levels := e.ExtractEducation(normText)
	gpa := ExtractGPA(resumeText)
	eduScore, highest := educationScore(levels, gpa)
	breakdown.Education = types.EducationScore{
		Score:        eduScore,
		Levels:       levels,
		HighestLevel: highest,
		GPA:          gpa,
	}

	breakdown.Location = LocationScore(normText, job.Location)
	breakdown.Projects = e.ScanProjects(normText)
	breakdown.Achievements = ScanAchievements(resumeText)
	breakdown.SoftSkills = e.ScanSoftSkills(normText, job.SoftSkills)

	// 语义相似度仅作整体参考，不进入加权
	breakdown.Semantic = Similarity(resumeText, job.Description)

	total := breakdown.KeySkills.Score*weightKeySkills +
		breakdown.Experience.Score*weightExperience +
		breakdown.GoodToHaveSkills.Score*weightGoodToHave +
		breakdown.Education.Score*weightEducation +
		breakdown.Location*weightLocation +
		breakdown.Projects.Score*weightProjects +
		breakdown.Achievements.Score*weightAchievements +
		breakdown.SoftSkills.Score*weightSoftSkills

	breakdown.TotalScore = clampInt(int(math.Round(total)), 0, 100)
	breakdown.MatchCategory = Categorize(breakdown.TotalScore)
	breakdown.Recommendation = recommendations[breakdown.MatchCategory]
	breakdown.Feedback = buildFeedback(breakdown, job)

	return breakdown, nil
}

// Categorize 按固定阈值将总分映射到匹配档位
func Categorize(totalScore int) types.MatchCategory {
	switch {
	case totalScore >= thresholdExcellent:
		return types.MatchExcellent
	case totalScore >= thresholdGood:
		return types.MatchGood
	case totalScore >= thresholdPartial:
		return types.MatchPartial
	default:
		return types.MatchPoor
	}
}

func validate(resumeText string, job *types.JobRequirement) error {
	if len(strings.TrimSpace(resumeText)) < MinResumeLength {
		return &ValidationError{
			Field:  "resume_text",
			Reason: fmt.Sprintf("简历文本缺失或过短（不足%d字符），可能是扫描件或上游解析失败", MinResumeLength),
		}
	}
	if job == nil {
		return &ValidationError{Field: "job", Reason: "岗位要求不能为空"}
	}
	// 空列表是合法输入（按既定行为得0分），缺失的列表不是
	if job.RequiredSkills == nil {
		return &ValidationError{Field: "required_skills", Reason: "岗位必备技能列表缺失"}
	}
	return nil
}

// ratioScore 命中数/要求数*100，要求列表为空时返回0
func ratioScore(matched, required int) float64 {
	if required == 0 {
		return 0
	}
	return float64(matched) / float64(required) * 100
}

// experienceScore 年限子分
// 年限可提取时按占要求的比例分档；无法提取时不按0年处理：
// 要求<=1年的岗位给60分（入门岗疑罪从无），否则给20分
func experienceScore(extracted *float64, required float64) float64 {
	if extracted == nil {
		if required <= 1 {
			return 60
		}
		return 20
	}

	ratio := 1.0
	if required > 0 {
		ratio = *extracted / required
	}
	switch {
	case ratio >= 1.0:
		return 100
	case ratio >= 0.8:
		return 85
	case ratio >= 0.6:
		return 70
	case ratio >= 0.4:
		return 50
	default:
		return 30
	}
}

// educationScore 学历子分，基准50，检出层级按 phd > master > bachelor 覆盖，
// 绩点在此之上加成，总分封顶100
func educationScore(levels []string, gpa *float64) (float64, string) {
	score := 50.0
	highest := ""

	has := func(level string) bool {
		for _, l := range levels {
			if l == level {
				return true
			}
		}
		return false
	}

	switch {
	case has(LevelPhD):
		score, highest = 100, LevelPhD
	case has(LevelMaster):
		score, highest = 90, LevelMaster
	case has(LevelBachelor):
		score, highest = 80, LevelBachelor
	}

	if gpa != nil {
		switch {
		case *gpa >= 8.5:
			score += 15
		case *gpa >= 7.5:
			score += 10
		case *gpa >= 6.5:
			score += 5
		}
	}

	if score > 100 {
		score = 100
	}
	return score, highest
}

// buildFeedback 生成有序的差距描述，所有适用项都会列出
func buildFeedback(b *types.ScoreBreakdown, job *types.JobRequirement) []string {
	feedback := []string{}

	if b.KeySkills.Score < 60 && len(b.KeySkills.Missing) > 0 {
		feedback = append(feedback,
			fmt.Sprintf("Missing required skills: %s", strings.Join(b.KeySkills.Missing, ", ")))
	}

	if b.Experience.Score < 70 && job.RequiredExperienceYears > 0 {
		gap := job.RequiredExperienceYears
		if b.Experience.ExtractedYears != nil {
			gap = job.RequiredExperienceYears - *b.Experience.ExtractedYears
		}
		if gap < 0 {
			gap = 0
		}
		feedback = append(feedback,
			fmt.Sprintf("Experience gap of about %.1f year(s) against the %.1f year requirement", gap, job.RequiredExperienceYears))
	}

	if b.Location < 60 {
		feedback = append(feedback,
			"Resume does not mention the required location; relocation may be needed")
	}

	if b.Projects.Score < 50 {
		feedback = append(feedback, "Limited project evidence in the resume")
	}

	return feedback
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
