package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/config"
)

func newFakeTikaServer(t *testing.T, text string, metadata string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tika":
			assert.Equal(t, http.MethodPut, r.Method)
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(text))
		case "/meta":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(metadata))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestTikaExtractorExtractText(t *testing.T) {
	meta := `{"Content-Type":"application/pdf","xmpTPg:NPages":"2","X-TIKA:parse_time_millis":"12"}`
	server := newFakeTikaServer(t, "Ananya Sharma\nSenior Backend Engineer", meta)
	defer server.Close()

	extractor := NewTikaExtractor(&config.TikaConfig{
		ServerURL:    server.URL,
		Timeout:      5,
		MetadataMode: MetadataModeMinimal,
	})

	text, metadata, err := extractor.ExtractTextFromBytes(context.Background(), []byte("%PDF-1.4 fake"), "resume.pdf")
	require.NoError(t, err)
	assert.Contains(t, text, "Ananya Sharma")

	// 精简模式只保留白名单字段
	assert.Equal(t, "application/pdf", metadata["Content-Type"])
	assert.Equal(t, "2", metadata["xmpTPg:NPages"])
	assert.NotContains(t, metadata, "X-TIKA:parse_time_millis")
	assert.Equal(t, "resume.pdf", metadata["source_file_path"])
}

func TestTikaExtractorMetadataModeNone(t *testing.T) {
	metaCalled := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/meta" {
			metaCalled = true
		}
		_, _ = w.Write([]byte("plain text"))
	}))
	defer server.Close()

	extractor := NewTikaExtractor(&config.TikaConfig{ServerURL: server.URL, MetadataMode: MetadataModeNone})

	text, metadata, err := extractor.ExtractTextFromBytes(context.Background(), []byte("data"), "resume.docx")
	require.NoError(t, err)
	assert.Equal(t, "plain text", text)
	assert.False(t, metaCalled, "none模式不应请求/meta端点")
	assert.Equal(t, len(text), metadata["text_length"])
}

func TestTikaExtractorServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	extractor := NewTikaExtractor(&config.TikaConfig{ServerURL: server.URL})

	_, _, err := extractor.ExtractTextFromBytes(context.Background(), []byte("broken"), "resume.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestTikaExtractorMetadataFailureIsNonFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/meta" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("extracted body"))
	}))
	defer server.Close()

	extractor := NewTikaExtractor(&config.TikaConfig{ServerURL: server.URL, MetadataMode: MetadataModeFull})

	text, metadata, err := extractor.ExtractTextFromBytes(context.Background(), []byte("data"), "resume.pdf")
	require.NoError(t, err)
	assert.Equal(t, "extracted body", text)
	assert.Equal(t, "resume.pdf", metadata["source_file_path"])
}

func TestTikaExtractorFromReaderWithoutAnnotations(t *testing.T) {
	var annotationHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tika" {
			annotationHeader = r.Header.Get("X-Tika-PDFExtractAnnotationText")
		}
		_, _ = w.Write([]byte("reader body"))
	}))
	defer server.Close()

	extractor := NewTikaExtractor(
		&config.TikaConfig{ServerURL: server.URL, MetadataMode: MetadataModeNone},
		WithAnnotations(false),
	)

	text, _, err := extractor.ExtractTextFromReader(context.Background(), strings.NewReader("%PDF-1.4 fake"), "resume.pdf")
	require.NoError(t, err)
	assert.Equal(t, "reader body", text)
	assert.Equal(t, "false", annotationHeader)
}

func TestTikaExtractorTimeoutOption(t *testing.T) {
	extractor := NewTikaExtractor(
		&config.TikaConfig{ServerURL: "http://localhost:9998"},
		WithTimeout(3*time.Second),
	)
	assert.Equal(t, 3*time.Second, extractor.Client.Timeout)
}

func TestContentTypeForURI(t *testing.T) {
	cases := map[string]string{
		"resume.pdf":  "application/pdf",
		"resume.PDF":  "application/pdf",
		"resume.doc":  "application/msword",
		"resume.docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"resume.txt":  "text/plain",
		"resume.rtf":  "application/octet-stream",
	}
	for uri, want := range cases {
		assert.Equal(t, want, contentTypeForURI(uri), uri)
	}
}

func TestNewTextExtractorSelection(t *testing.T) {
	ext, err := NewTextExtractor(context.Background(), &config.TikaConfig{Type: "tika", ServerURL: "http://localhost:9998"})
	require.NoError(t, err)
	assert.IsType(t, &TikaExtractor{}, ext)

	// 默认也走Tika
	ext, err = NewTextExtractor(context.Background(), &config.TikaConfig{ServerURL: "http://localhost:9998"})
	require.NoError(t, err)
	assert.IsType(t, &TikaExtractor{}, ext)

	_, err = NewTextExtractor(context.Background(), &config.TikaConfig{Type: "mystery"})
	require.Error(t, err)
}
