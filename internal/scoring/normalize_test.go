package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"空串", "", ""},
		{"小写化", "Senior Go Developer", "senior go developer"},
		{"标点替换为空格", "C++, Node.js & REST-APIs!", "c node js rest apis"},
		{"连续空白折叠", "a  b\t\tc\n\nd", "a b c d"},
		{"首尾空白去除", "  hello world  ", "hello world"},
		{"纯标点", "!!! ???", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

// 归一化必须幂等，重复归一化不能再改变结果
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Backend Engineer — Go/Python (2019–2024)",
		"  GPA: 8.7/10  ",
		"已有文本 with MIXED 内容!!!",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestTokenize(t *testing.T) {
	// 长度<=2的token被丢弃
	tokens := Tokenize("Go is a great fit for API work")
	assert.Equal(t, []string{"great", "fit", "for", "api", "work"}, tokens)

	assert.Nil(t, Tokenize(""))
	assert.Empty(t, Tokenize("a b c"))
}

func TestSimilarity(t *testing.T) {
	text := "Built distributed systems with Golang, Kafka and PostgreSQL over five years"

	t.Run("相同文本相似度为100", func(t *testing.T) {
		assert.InDelta(t, 100.0, Similarity(text, text), 1e-9)
	})

	t.Run("完全无交集为0", func(t *testing.T) {
		assert.Equal(t, 0.0, Similarity("apple banana cherry", "xylophone quartz zephyr"))
	})

	t.Run("空输入为0", func(t *testing.T) {
		assert.Equal(t, 0.0, Similarity("", text))
		assert.Equal(t, 0.0, Similarity(text, ""))
	})

	t.Run("部分重叠落在0到100之间", func(t *testing.T) {
		s := Similarity(text, "Looking for a Golang engineer with PostgreSQL experience")
		assert.Greater(t, s, 0.0)
		assert.Less(t, s, 100.0)
	})
}
