package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 固定时钟，年份区间推断不受真实日期影响
func fixedClockEngine(opts ...Option) *Engine {
	base := []Option{WithClock(func() time.Time {
		return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	})}
	return NewEngine(append(base, opts...)...)
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"首行姓名", "Ananya Sharma\nSenior Backend Engineer\nBangalore", "Ananya Sharma"},
		{"跳过标题行", "RESUME\nRahul Verma\nemail: rv@mail.com", "Rahul Verma"},
		{"保留词不算姓名", "Email Address\nPhone Number\n12345", ""},
		{"空文本", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractName(tt.text))
		})
	}
}

func TestExtractEmail(t *testing.T) {
	t.Run("小写返回", func(t *testing.T) {
		assert.Equal(t, "priya.nair@gmail.com", ExtractEmail("Contact: Priya.Nair@Gmail.COM"))
	})

	t.Run("优先非占位域名", func(t *testing.T) {
		text := "template: someone@example.com real: dev.lee@outlook.com"
		assert.Equal(t, "dev.lee@outlook.com", ExtractEmail(text))
	})

	t.Run("只有占位邮箱时仍返回", func(t *testing.T) {
		assert.Equal(t, "a@example.com", ExtractEmail("a@example.com"))
	})

	t.Run("未命中", func(t *testing.T) {
		assert.Equal(t, "", ExtractEmail("no contact info here"))
	})
}

func TestExtractPhone(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"国际区号", "Phone: +91 98765 43210", "+91 98765 43210"},
		{"印度手机号", "mobile: 9876543210", "9876543210"},
		{"美国格式", "(415) 555-0199", "(415) 555-0199"},
		{"位数不足则拒绝", "ext 12345", ""},
		{"空文本", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPhone(tt.text))
		})
	}
}

func TestExtractEducation(t *testing.T) {
	e := fixedClockEngine()

	t.Run("多层级同时检出", func(t *testing.T) {
		norm := Normalize("B.Tech in CS, later completed M.Tech")
		levels := e.ExtractEducation(norm)
		assert.Contains(t, levels, LevelBachelor)
		assert.Contains(t, levels, LevelMaster)
		assert.NotContains(t, levels, LevelPhD)
	})

	t.Run("词边界保护", func(t *testing.T) {
		// "be" 作为普通单词不能命中 "b e"
		levels := e.ExtractEducation(Normalize("I want to be an engineer"))
		assert.Empty(t, levels)
	})

	t.Run("phd检出", func(t *testing.T) {
		levels := e.ExtractEducation(Normalize("Ph.D. in Machine Learning"))
		assert.Contains(t, levels, LevelPhD)
	})
}

func TestExtractGPA(t *testing.T) {
	ptr := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		text string
		want *float64
	}{
		{"gpa标注", "GPA: 8.7", ptr(8.7)},
		{"cgpa标注", "CGPA: 9.2", ptr(9.2)},
		{"十分制", "scored 8.1/10 in final year", ptr(8.1)},
		{"四分制换算", "graduated with 3.6/4", ptr(9.0)},
		{"无绩点", "no academic scores listed", nil},
		{"超出范围拒绝", "GPA: 42", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractGPA(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestExtractExperience(t *testing.T) {
	e := fixedClockEngine()

	t.Run("显式年限", func(t *testing.T) {
		got := e.ExtractExperience("5 years of experience in backend development")
		require.NotNil(t, got)
		assert.Equal(t, 5.0, *got)
	})

	t.Run("带加号的年限", func(t *testing.T) {
		got := e.ExtractExperience("3+ years experience with Go")
		require.NotNil(t, got)
		assert.Equal(t, 3.0, *got)
	})

	t.Run("年份区间", func(t *testing.T) {
		// 最大年份2025距固定时钟2026不超过1年，视为近期在职
		got := e.ExtractExperience("Software Engineer at Acme, 2021 - 2025")
		require.NotNil(t, got)
		assert.Equal(t, 4.0, *got)
	})

	t.Run("年份区间过于久远则忽略", func(t *testing.T) {
		assert.Nil(t, e.ExtractExperience("worked from 2010 to 2014 then unknown"))
	})

	t.Run("应届信号", func(t *testing.T) {
		got := e.ExtractExperience("Fresher seeking first role")
		require.NotNil(t, got)
		assert.Equal(t, 0.0, *got)
	})

	t.Run("无信号", func(t *testing.T) {
		assert.Nil(t, e.ExtractExperience("passionate about software"))
	})
}

func TestParseRequiredExperience(t *testing.T) {
	assert.Equal(t, 3.0, ParseRequiredExperience("3+ years"))
	assert.Equal(t, 5.0, ParseRequiredExperience("at least 5 yrs of Go"))
	assert.Equal(t, 2.5, ParseRequiredExperience("2.5 years"))
	assert.Equal(t, 0.0, ParseRequiredExperience("no experience requirement"))
}

func TestLocationScore(t *testing.T) {
	tests := []struct {
		name     string
		resume   string
		location string
		want     float64
	}{
		{"岗位未给定地点", "anything", "", 75},
		{"地点命中", "based in bangalore india", "Bangalore, India", 100},
		{"表达搬迁意愿", Normalize("Open to relocating anywhere in India"), "Mumbai", 80},
		{"完全未提及", "lives in pune", "Chennai", 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LocationScore(tt.resume, tt.location))
		})
	}
}

func TestMatchSkills(t *testing.T) {
	e := fixedClockEngine()

	t.Run("同义词命中", func(t *testing.T) {
		norm := Normalize("Built SPAs with ReactJS and wrote services in Golang")
		matched, missing := e.MatchSkills(norm, []string{"React", "Go", "Rust"})
		assert.Equal(t, []string{"React"}, matched[:1])
		assert.Contains(t, matched, "Go")
		assert.Equal(t, []string{"Rust"}, missing)
	})

	t.Run("大小写折叠去重", func(t *testing.T) {
		norm := Normalize("python everywhere")
		matched, missing := e.MatchSkills(norm, []string{"Python", "python", "PYTHON"})
		assert.Equal(t, []string{"Python"}, matched)
		assert.Empty(t, missing)
	})

	t.Run("空清单", func(t *testing.T) {
		matched, missing := e.MatchSkills("whatever", nil)
		assert.Empty(t, matched)
		assert.Empty(t, missing)
	})
}

func TestScanSoftSkills(t *testing.T) {
	e := fixedClockEngine()

	t.Run("无命中给基准分", func(t *testing.T) {
		got := e.ScanSoftSkills(Normalize("wrote code"), nil)
		assert.Equal(t, 40.0, got.Score)
		assert.Empty(t, got.Matched)
	})

	t.Run("每项20分", func(t *testing.T) {
		got := e.ScanSoftSkills(Normalize("strong communication and proven leadership"), nil)
		assert.Equal(t, 40.0, got.Score)
		assert.Len(t, got.Matched, 2)
	})

	t.Run("岗位要求项与内置项去重", func(t *testing.T) {
		got := e.ScanSoftSkills(Normalize("excellent teamwork record"), []string{"Teamwork"})
		assert.Equal(t, []string{"Teamwork"}, got.Matched)
		assert.Equal(t, 20.0, got.Score)
	})
}

func TestScanProjects(t *testing.T) {
	e := fixedClockEngine()

	t.Run("指示词累加与链接加成", func(t *testing.T) {
		norm := Normalize("Developed a portfolio website, project hosted on GitHub")
		got := e.ScanProjects(norm)
		assert.True(t, got.HasLinks)
		assert.GreaterOrEqual(t, got.Score, 50.0)
		assert.LessOrEqual(t, got.Score, 100.0)
		assert.Equal(t, 1, got.Count)
	})

	t.Run("无项目证据", func(t *testing.T) {
		got := e.ScanProjects(Normalize("attended lectures"))
		assert.Equal(t, 0.0, got.Score)
		assert.False(t, got.HasLinks)
	})
}

func TestScanAchievements(t *testing.T) {
	t.Run("百分比与获奖", func(t *testing.T) {
		got := ScanAchievements("Improved latency by 40%. Awarded best engineer of 2024.")
		assert.Contains(t, got.Evidence, "Quantified results with percentages")
		assert.Contains(t, got.Evidence, "Awards and recognitions")
		assert.Contains(t, got.Evidence, "Impact-oriented outcomes")
		assert.Equal(t, 60.0, got.Score)
	})

	t.Run("无成果信号", func(t *testing.T) {
		got := ScanAchievements("attended meetings")
		assert.Equal(t, 0.0, got.Score)
		assert.Empty(t, got.Evidence)
	})
}
