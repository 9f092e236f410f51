package parser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/config"
)

// TextExtractor 文档文本提取接口
// 评分流水线只关心纯文本，结构化信息由评分引擎自行解析
type TextExtractor interface {
	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error)

	// ExtractTextFromReader 从io.Reader提取文本和元数据
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error)
}

// NewTextExtractor 根据配置选择提取器实现
// "tika" 走Tika服务器，支持PDF/DOC/DOCX；"eino" 为进程内PDF解析，无外部依赖
func NewTextExtractor(ctx context.Context, cfg *config.TikaConfig) (TextExtractor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("提取器配置不能为空")
	}

	switch strings.ToLower(cfg.Type) {
	case "", "tika":
		return NewTikaExtractor(cfg), nil
	case "eino":
		return NewEinoPDFExtractor(ctx)
	default:
		return nil, fmt.Errorf("未知的提取器类型: %s", cfg.Type)
	}
}
