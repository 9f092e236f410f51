package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPII(t *testing.T) {
	assert.Equal(t, "", MaskPII(""))
	assert.Equal(t, "*", MaskPII("a"))
	assert.Equal(t, "张*", MaskPII("张三"))
	assert.Equal(t, "王*明", MaskPII("王小明"))

	masked := MaskPII("13812345678")
	assert.Equal(t, "13*******78", masked)
	assert.Len(t, masked, len("13812345678"))

	email := MaskPII("ananya.sharma@example.com")
	assert.True(t, strings.HasPrefix(email, "an"))
	assert.True(t, strings.HasSuffix(email, "om"))
	assert.Contains(t, email, "*")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))

	long := strings.Repeat("x", 300)
	truncated := TruncateString(long, 100)
	assert.LessOrEqual(t, len([]rune(truncated)), 100)
	assert.Contains(t, truncated, "...")

	// 极小长度不加省略号
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
}

func TestSafeAttributeValue(t *testing.T) {
	// 敏感属性名触发掩码
	masked := SafeAttributeValue("candidate_email", "ananya@example.com", DefaultMaxLength)
	assert.NotEqual(t, "ananya@example.com", masked)
	assert.Contains(t, masked, "*")

	// 普通属性名只做截断
	plain := SafeAttributeValue("object_key", "resume/0195/original.pdf", DefaultMaxLength)
	assert.Equal(t, "resume/0195/original.pdf", plain)
}

func TestSafeHelpers(t *testing.T) {
	sql := "SELECT * FROM resume_submissions WHERE " + strings.Repeat("submission_uuid = ? AND ", 100) + "1=1"
	assert.LessOrEqual(t, len([]rune(SafeSQL(sql))), MaxSQLLength)

	key := "app:job:requirement:" + strings.Repeat("a", 200)
	assert.LessOrEqual(t, len([]rune(SafeRedisKey(key))), MaxRedisLength)

	content := strings.Repeat("简历内容", 100)
	assert.LessOrEqual(t, len([]rune(SafeResumeContent(content))), MaxResumeLength)
}
