package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/logger"
)

// 元数据提取模式
const (
	MetadataModeNone    = "none"
	MetadataModeMinimal = "minimal"
	MetadataModeFull    = "full"
)

// TikaExtractor 基于Apache Tika Server的文档文本提取器
// 支持PDF、DOC、DOCX等格式，由Tika自动探测内容类型
type TikaExtractor struct {
	// Tika服务器地址，例如 http://localhost:9998
	ServerURL string
	// HTTP客户端，可配置超时等参数
	Client *http.Client
	// 元数据模式: none / minimal / full
	metadataMode string
	// 是否提取链接注释文本
	extractAnnotations bool
}

// TikaOption 配置选项函数
type TikaOption func(*TikaExtractor)

// WithMetadataMode 配置元数据提取模式
func WithMetadataMode(mode string) TikaOption {
	return func(e *TikaExtractor) {
		e.metadataMode = mode
	}
}

// WithAnnotations 配置是否提取PDF链接注释文本
func WithAnnotations(extract bool) TikaOption {
	return func(e *TikaExtractor) {
		e.extractAnnotations = extract
	}
}

// WithTimeout 配置HTTP客户端超时时间
func WithTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaExtractor) {
		e.Client.Timeout = timeout
	}
}

var _ TextExtractor = (*TikaExtractor)(nil)

// NewTikaExtractor 创建Tika文本提取器
func NewTikaExtractor(cfg *config.TikaConfig, options ...TikaOption) *TikaExtractor {
	timeout := 60 * time.Second
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	mode := cfg.MetadataMode
	if mode == "" {
		mode = MetadataModeMinimal
	}

	extractor := &TikaExtractor{
		ServerURL:          cfg.ServerURL,
		Client:             &http.Client{Timeout: timeout},
		metadataMode:       mode,
		extractAnnotations: true,
	}

	for _, option := range options {
		option(extractor)
	}

	return extractor
}

// ExtractTextFromReader 从io.Reader提取文本内容
func (e *TikaExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取文档内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri)
}

// ExtractTextFromBytes 从字节数组提取文本内容
func (e *TikaExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	startTime := time.Now()

	baseMetadata := map[string]interface{}{
		"extraction_time":  time.Now().Format(time.RFC3339),
		"source_file_path": uri,
	}

	url := fmt.Sprintf("%s/tika", e.ServerURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return "", baseMetadata, fmt.Errorf("创建HTTP请求失败: %w", err)
	}

	req.Header.Set("Content-Type", contentTypeForURI(uri))
	req.Header.Set("Accept", "text/plain")
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", uri)
	}
	if !e.extractAnnotations {
		req.Header.Set("X-Tika-PDFExtractAnnotationText", "false")
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return "", baseMetadata, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", baseMetadata, fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
	}

	textBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", baseMetadata, fmt.Errorf("读取Tika响应失败: %w", err)
	}

	text := string(textBytes)
	baseMetadata["text_length"] = len(text)
	baseMetadata["processing_duration_ms"] = time.Since(startTime).Milliseconds()

	if e.metadataMode == MetadataModeNone {
		return text, baseMetadata, nil
	}

	// 元数据提取失败不阻塞主流程
	rawMetadata, err := e.extractMetadata(ctx, data, uri)
	if err != nil {
		logger.Warn().Err(err).Str("uri", uri).Msg("Tika元数据提取失败，仅保留基本元数据")
		return text, baseMetadata, nil
	}

	if e.metadataMode == MetadataModeFull {
		for k, v := range rawMetadata {
			baseMetadata[k] = v
		}
	} else {
		for k, v := range rawMetadata {
			if isImportantMetadata(k) {
				baseMetadata[k] = v
			}
		}
	}

	return text, baseMetadata, nil
}

// extractMetadata 调用/meta端点提取文档元数据
func (e *TikaExtractor) extractMetadata(ctx context.Context, data []byte, uri string) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/meta", e.ServerURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}

	req.Header.Set("Content-Type", contentTypeForURI(uri))
	req.Header.Set("Accept", "application/json")
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", uri)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
	}

	metadataBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取Tika响应失败: %w", err)
	}

	var metadata map[string]interface{}
	if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
		return nil, fmt.Errorf("解析元数据JSON失败: %w", err)
	}
	return metadata, nil
}

// 精简模式下保留的元数据字段
func isImportantMetadata(key string) bool {
	importantKeys := map[string]bool{
		"pdf:PDFVersion":                true,
		"xmpTPg:NPages":                 true,
		"dcterms:created":               true,
		"language":                      true,
		"pdf:charsPerPage":              true,
		"dc:title":                      true,
		"Content-Type":                  true,
		"pdf:docinfo:title":             true,
		"pdf:docinfo:created":           true,
		"pdf:totalUnmappedUnicodeChars": true,
	}
	return importantKeys[key]
}

// contentTypeForURI 根据文件扩展名给出Content-Type，未知类型交给Tika自动探测
func contentTypeForURI(uri string) string {
	switch strings.ToLower(filepath.Ext(uri)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
