package processor

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/scoring"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/storage"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/storage/models"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/types"
)

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	return s.text, nil, s.err
}

func (s *stubExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	return s.text, nil, s.err
}

func testConfig() *config.Config {
	cfg, _ := config.LoadConfig("")
	return cfg
}

func newTestService(t *testing.T) ScoreService {
	t.Helper()
	svc, err := NewScoreService(context.Background(), testConfig(), &storage.Storage{},
		WithExtractor(&stubExtractor{text: "stub"}))
	require.NoError(t, err)
	return svc
}

func sampleRequirement() *types.JobRequirement {
	return &types.JobRequirement{
		JobID:                   "job-1",
		Title:                   "Backend Engineer",
		RequiredSkills:          []string{"Python", "AWS"},
		GoodToHaveSkills:        []string{"Docker"},
		SoftSkills:              []string{"Communication"},
		Location:                "Bangalore",
		RequiredExperienceYears: 3,
		Description:             "Backend services on AWS.",
	}
}

const serviceTestResume = `Ananya Sharma
ananya.sharma@example.com
+91 98765 43210
Senior engineer with 5 years of experience building python services on aws.
Worked from bangalore on distributed systems, communication heavy teamwork.
Projects: github.com/ananya/batcher with live demo links.`

func TestScoreWithRequirement(t *testing.T) {
	svc := newTestService(t)

	breakdown, err := svc.ScoreWithRequirement(context.Background(), serviceTestResume, sampleRequirement())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, breakdown.TotalScore, 0)
	assert.LessOrEqual(t, breakdown.TotalScore, 100)
	assert.NotEmpty(t, breakdown.MatchCategory)
	assert.NotEmpty(t, breakdown.Recommendation)
}

func TestScoreWithRequirementValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ScoreWithRequirement(context.Background(), "too short", sampleRequirement())
	require.Error(t, err)

	var validationErr *scoring.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "resume_text", validationErr.Field)

	_, err = svc.ScoreWithRequirement(context.Background(), serviceTestResume, nil)
	require.Error(t, err)
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "job", validationErr.Field)
}

func TestHandleResumeUploadRequiresStorage(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.HandleResumeUpload(context.Background(), &UploadRequest{
		FileName: "resume.pdf",
		Reader:   strings.NewReader("data"),
	})
	assert.ErrorIs(t, err, ErrStorageNotInit)
}

func TestScoreProcessErrorWrapping(t *testing.T) {
	err := NewDownloadError("uuid-1", "connection refused")

	assert.True(t, errors.Is(err, ErrResumeDownloadFailed))
	assert.False(t, errors.Is(err, ErrParseTextFailed))

	var procErr *ScoreProcessError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, "uuid-1", procErr.SubmissionUUID)
	assert.Equal(t, "download", procErr.Op)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestValidateJobInput(t *testing.T) {
	valid := &JobInput{
		Title:          "Backend Engineer",
		Description:    "Build services.",
		RequiredSkills: []string{"Go"},
	}
	assert.NoError(t, validateJobInput(valid))

	assert.Error(t, validateJobInput(nil))
	assert.Error(t, validateJobInput(&JobInput{Description: "d", RequiredSkills: []string{"Go"}}))
	assert.Error(t, validateJobInput(&JobInput{Title: "t", RequiredSkills: []string{"Go"}}))
	assert.Error(t, validateJobInput(&JobInput{Title: "t", Description: "d"}))

	// 空切片合法，nil切片不合法
	assert.NoError(t, validateJobInput(&JobInput{Title: "t", Description: "d", RequiredSkills: []string{}}))
}

func TestApplyInputDerivesExperienceYears(t *testing.T) {
	input := &JobInput{
		Title:          "Backend Engineer",
		Description:    "Build services.",
		RequiredSkills: []string{"Go"},
		ExperienceText: "3+ years of backend experience",
	}

	job := &models.Job{}
	require.NoError(t, applyInput(job, input))
	assert.Equal(t, 3.0, job.RequiredExperienceYears)
	assert.Equal(t, "Backend Engineer", job.JobTitle)

	// 显式年限优先于文本推导
	input.RequiredExperienceYears = 5
	require.NoError(t, applyInput(job, input))
	assert.Equal(t, 5.0, job.RequiredExperienceYears)
}
