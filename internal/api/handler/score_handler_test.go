package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/api/handler"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/api/router"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/processor"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/storage"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/types"
)

const handlerTestResume = `Ananya Sharma
ananya.sharma@example.com
+91 98765 43210
Senior engineer with 5 years of experience building python services on aws.
Worked from bangalore on distributed systems with strong communication skills.
Projects: github.com/ananya/batcher with a live demo.`

func newTestServer(t *testing.T, apiKeys []string) *server.Hertz {
	t.Helper()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Server.APIKeys = apiKeys

	svc, err := processor.NewScoreService(context.Background(), cfg, &storage.Storage{})
	require.NoError(t, err)

	scoreHandler := handler.NewScoreHandler(cfg, &storage.Storage{}, svc)

	h := server.New()
	router.RegisterRoutes(h, cfg, scoreHandler, &handler.JobHandler{})
	return h
}

func performJSON(t *testing.T, h *server.Hertz, method, path string, body interface{}, headers ...ut.Header) *ut.ResponseRecorder {
	t.Helper()
	var reqBody *ut.Body
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = &ut.Body{Body: bytes.NewReader(raw), Len: len(raw)}
		headers = append(headers, ut.Header{Key: "Content-Type", Value: "application/json"})
	}
	return ut.PerformRequest(h.Engine, method, path, reqBody, headers...)
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t, nil)

	w := ut.PerformRequest(h.Engine, "GET", "/api/v1/health", nil)
	resp := w.Result()
	assert.Equal(t, 200, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "ok")
}

func TestSyncScoreWithInlineJob(t *testing.T) {
	h := newTestServer(t, nil)

	req := handler.SyncScoreRequest{
		ResumeText: handlerTestResume,
		Job: &types.JobRequirement{
			Title:                   "Backend Engineer",
			RequiredSkills:          []string{"Python", "AWS"},
			Location:                "Bangalore",
			RequiredExperienceYears: 3,
		},
	}

	w := performJSON(t, h, "POST", "/api/v1/scores", req)
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode())

	var breakdown types.ScoreBreakdown
	require.NoError(t, json.Unmarshal(resp.Body(), &breakdown))
	assert.GreaterOrEqual(t, breakdown.TotalScore, 0)
	assert.LessOrEqual(t, breakdown.TotalScore, 100)
	assert.NotEmpty(t, breakdown.MatchCategory)
	assert.Equal(t, "ananya.sharma@example.com", breakdown.Contact.Email)
}

func TestSyncScoreValidationErrors(t *testing.T) {
	h := newTestServer(t, nil)

	// 缺少job_id和job
	w := performJSON(t, h, "POST", "/api/v1/scores", handler.SyncScoreRequest{ResumeText: handlerTestResume})
	assert.Equal(t, 400, w.Result().StatusCode())

	// 简历文本过短
	w = performJSON(t, h, "POST", "/api/v1/scores", handler.SyncScoreRequest{
		ResumeText: "too short",
		Job:        &types.JobRequirement{Title: "x", RequiredSkills: []string{"Go"}},
	})
	resp := w.Result()
	assert.Equal(t, 400, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "resume_text")
}

func TestAPIKeyAuth(t *testing.T) {
	h := newTestServer(t, []string{"secret-key"})

	// 无鉴权头被拒绝，统一返回401而不是默认的400
	w := performJSON(t, h, "POST", "/api/v1/scores", handler.SyncScoreRequest{ResumeText: handlerTestResume})
	assert.Equal(t, 401, w.Result().StatusCode())

	// 错误的API Key同样401
	w = performJSON(t, h, "POST", "/api/v1/scores",
		handler.SyncScoreRequest{ResumeText: handlerTestResume},
		ut.Header{Key: "Authorization", Value: "Bearer wrong-key"},
	)
	assert.Equal(t, 401, w.Result().StatusCode())

	// 携带正确的API Key通过
	w = performJSON(t, h, "POST", "/api/v1/scores",
		handler.SyncScoreRequest{
			ResumeText: handlerTestResume,
			Job:        &types.JobRequirement{Title: "x", RequiredSkills: []string{"Python"}},
		},
		ut.Header{Key: "Authorization", Value: "Bearer secret-key"},
	)
	assert.Equal(t, 200, w.Result().StatusCode())

	// 健康检查不需要鉴权
	w = ut.PerformRequest(h.Engine, "GET", "/api/v1/health", nil)
	assert.Equal(t, 200, w.Result().StatusCode())
}
