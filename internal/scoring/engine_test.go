package scoring

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/types"
)

// 一份可控的样例简历：python/aws命中、不含"sql"子串、本科+高绩点、5年显式年限
const sampleResume = `Ananya Sharma
Senior Backend Engineer
Email: ananya.sharma@gmail.com | Phone: +91 98765 43210
Bangalore, India

Summary
Backend engineer with 5 years of experience building cloud services in Python on AWS.
Developed and designed multiple services, portfolio on github.

Education
B.Tech in Computer Science, CGPA: 9.2

Strong communication and teamwork across distributed teams.`

func sampleJob() *types.JobRequirement {
	return &types.JobRequirement{
		JobID:                   "job-001",
		Title:                   "Backend Engineer",
		RequiredSkills:          []string{"Python", "AWS", "SQL"},
		GoodToHaveSkills:        []string{"Docker"},
		SoftSkills:              []string{"Communication"},
		Location:                "Bangalore",
		ExperienceText:          "3+ years",
		RequiredExperienceYears: 3,
		Description:             "We need a backend engineer with Python and AWS for cloud services.",
	}
}

func TestScoreResumeValidation(t *testing.T) {
	e := fixedClockEngine()

	t.Run("简历不足100字符被拒绝", func(t *testing.T) {
		short := strings.Repeat("a", 99)
		_, err := e.ScoreResume(short, sampleJob())
		require.Error(t, err)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "resume_text", verr.Field)
	})

	t.Run("首尾空白不计入长度", func(t *testing.T) {
		padded := "   " + strings.Repeat("a", 99) + "   "
		_, err := e.ScoreResume(padded, sampleJob())
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
	})

	t.Run("恰好100字符可以评分", func(t *testing.T) {
		_, err := e.ScoreResume(strings.Repeat("a", 100), sampleJob())
		assert.NoError(t, err)
	})

	t.Run("岗位为nil被拒绝", func(t *testing.T) {
		_, err := e.ScoreResume(sampleResume, nil)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "job", verr.Field)
	})

	t.Run("必备技能列表缺失被拒绝", func(t *testing.T) {
		job := sampleJob()
		job.RequiredSkills = nil
		_, err := e.ScoreResume(sampleResume, job)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "required_skills", verr.Field)
	})

	t.Run("空的必备技能列表是合法输入", func(t *testing.T) {
		job := sampleJob()
		job.RequiredSkills = []string{}
		got, err := e.ScoreResume(sampleResume, job)
		require.NoError(t, err)
		// 既定行为：空列表得0分而不是满分
		assert.Equal(t, 0.0, got.KeySkills.Score)
	})
}

func TestWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range Weights() {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestScoreResumeDeterministic(t *testing.T) {
	e := fixedClockEngine()

	first, err := e.ScoreResume(sampleResume, sampleJob())
	require.NoError(t, err)
	second, err := e.ScoreResume(sampleResume, sampleJob())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScoreResumeRange(t *testing.T) {
	e := fixedClockEngine()

	inputs := []string{
		sampleResume,
		strings.Repeat("x", 150),
		strings.Repeat("python aws docker kubernetes leadership communication 99% awarded led improved ", 5),
	}

	for _, in := range inputs {
		got, err := e.ScoreResume(in, sampleJob())
		require.NoError(t, err)

		assert.GreaterOrEqual(t, got.TotalScore, 0)
		assert.LessOrEqual(t, got.TotalScore, 100)

		for name, sub := range map[string]float64{
			"key_skills":   got.KeySkills.Score,
			"good_to_have": got.GoodToHaveSkills.Score,
			"experience":   got.Experience.Score,
			"education":    got.Education.Score,
			"location":     got.Location,
			"projects":     got.Projects.Score,
			"achievements": got.Achievements.Score,
			"soft_skills":  got.SoftSkills.Score,
			"semantic":     got.Semantic,
		} {
			assert.GreaterOrEqual(t, sub, 0.0, name)
			assert.LessOrEqual(t, sub, 100.0, name)
		}
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		score int
		want  types.MatchCategory
	}{
		{100, types.MatchExcellent},
		{85, types.MatchExcellent},
		{84, types.MatchGood},
		{70, types.MatchGood},
		{69, types.MatchPartial},
		{55, types.MatchPartial},
		{54, types.MatchPoor},
		{0, types.MatchPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.score), "score=%d", tt.score)
	}
}

// 必备技能3项命中2项，子分为66.67
func TestKeySkillsPartialMatch(t *testing.T) {
	e := fixedClockEngine()

	got, err := e.ScoreResume(sampleResume, sampleJob())
	require.NoError(t, err)

	assert.InDelta(t, 66.67, got.KeySkills.Score, 0.01)
	assert.ElementsMatch(t, []string{"Python", "AWS"}, got.KeySkills.Matched)
	assert.Equal(t, []string{"SQL"}, got.KeySkills.Missing)
}

func TestExperienceScoring(t *testing.T) {
	e := fixedClockEngine()

	t.Run("年限超出要求得满分", func(t *testing.T) {
		got, err := e.ScoreResume(sampleResume, sampleJob())
		require.NoError(t, err)

		require.NotNil(t, got.Experience.ExtractedYears)
		assert.Equal(t, 5.0, *got.Experience.ExtractedYears)
		assert.Equal(t, 100.0, got.Experience.Score)
	})

	// 年限无法推断时不按0年处理
	noSignal := "Skilled backend developer passionate about distributed systems, event streaming and cloud native infrastructure work."

	t.Run("无年限信号且要求高给20分", func(t *testing.T) {
		job := sampleJob()
		job.RequiredExperienceYears = 5
		got, err := e.ScoreResume(noSignal, job)
		require.NoError(t, err)

		assert.Nil(t, got.Experience.ExtractedYears)
		assert.Equal(t, 20.0, got.Experience.Score)
	})

	t.Run("无年限信号但入门岗给60分", func(t *testing.T) {
		job := sampleJob()
		job.RequiredExperienceYears = 1
		got, err := e.ScoreResume(noSignal, job)
		require.NoError(t, err)

		assert.Equal(t, 60.0, got.Experience.Score)
	})
}

func TestEducationScoring(t *testing.T) {
	e := fixedClockEngine()

	got, err := e.ScoreResume(sampleResume, sampleJob())
	require.NoError(t, err)

	// 本科80 + 高绩点加成15
	assert.Equal(t, LevelBachelor, got.Education.HighestLevel)
	require.NotNil(t, got.Education.GPA)
	assert.InDelta(t, 9.2, *got.Education.GPA, 1e-9)
	assert.Equal(t, 95.0, got.Education.Score)
}

func TestContactExtractionInBreakdown(t *testing.T) {
	e := fixedClockEngine()

	got, err := e.ScoreResume(sampleResume, sampleJob())
	require.NoError(t, err)

	assert.Equal(t, "Ananya Sharma", got.Contact.Name)
	assert.Equal(t, "ananya.sharma@gmail.com", got.Contact.Email)
	assert.Equal(t, "+91 98765 43210", got.Contact.Phone)
}

// 在已有简历上追加一项必备技能，总分不能下降
func TestScoreMonotonicity(t *testing.T) {
	e := fixedClockEngine()

	job := sampleJob()
	job.RequiredSkills = []string{"Python", "Kubernetes"}
	job.Location = ""

	base := strings.Repeat("backend services written in python for cloud platforms. ", 4)
	withSkill := base + "\nkubernetes"

	before, err := e.ScoreResume(base, job)
	require.NoError(t, err)
	after, err := e.ScoreResume(withSkill, job)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, after.TotalScore, before.TotalScore)
	assert.Greater(t, after.KeySkills.Score, before.KeySkills.Score)
}

func TestRecommendationAndFeedback(t *testing.T) {
	e := fixedClockEngine()

	t.Run("推荐语与档位一致", func(t *testing.T) {
		got, err := e.ScoreResume(sampleResume, sampleJob())
		require.NoError(t, err)
		assert.Equal(t, recommendations[got.MatchCategory], got.Recommendation)
	})

	t.Run("差距全部列出且顺序固定", func(t *testing.T) {
		job := sampleJob()
		job.RequiredSkills = []string{"Rust", "Scala", "Haskell"}
		job.RequiredExperienceYears = 8
		job.Location = "Tokyo"

		weak := "Skilled developer passionate about functional programming concepts and compiler theory, still studying advanced topics."
		got, err := e.ScoreResume(weak, job)
		require.NoError(t, err)

		require.Len(t, got.Feedback, 4)
		assert.Contains(t, got.Feedback[0], "Missing required skills")
		assert.Contains(t, got.Feedback[0], "Rust")
		assert.Contains(t, got.Feedback[1], "Experience gap")
		assert.Contains(t, got.Feedback[2], "relocation")
		assert.Contains(t, got.Feedback[3], "project evidence")
		assert.Equal(t, types.MatchPoor, got.MatchCategory)
	})
}

func TestSemanticScoreIsUnweighted(t *testing.T) {
	e := fixedClockEngine()

	jobA := sampleJob()
	jobB := sampleJob()
	// 描述完全不同只影响semantic字段，不影响总分
	jobB.Description = "totally unrelated wording about quantum chemistry simulations"

	a, err := e.ScoreResume(sampleResume, jobA)
	require.NoError(t, err)
	b, err := e.ScoreResume(sampleResume, jobB)
	require.NoError(t, err)

	assert.NotEqual(t, a.Semantic, b.Semantic)
	assert.Equal(t, a.TotalScore, b.TotalScore)
}
