package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-subtitler/internal/api/middleware"
	"video-subtitler/internal/api/v1/handlers"
	v1routes "video-subtitler/internal/api/v1/routes"
	"video-subtitler/internal/app/api/provider"
	appconfig "video-subtitler/internal/app/config"
	"video-subtitler/internal/app/model"
	"video-subtitler/internal/app/pipeline"
	"video-subtitler/internal/app/quota"
	"video-subtitler/internal/app/render"
	"video-subtitler/internal/app/repository/sqlite"
	"video-subtitler/internal/app/util/files"
)

const probeJSON = `{
	"streams": [{"codec_type": "video", "width": 640, "height": 360, "r_frame_rate": "25/1"}],
	"format": {"duration": "30.0"}
}`

type stubProvider struct{}

func (stubProvider) Transcribe(ctx context.Context, audioFilePath string) (model.Transcript, string, error) {
	return model.Transcript{{Start: 0, End: 2, Text: "hello"}}, "en", nil
}

func (stubProvider) Translate(ctx context.Context, transcript model.Transcript, targetLanguage string, styleHint string) (model.Transcript, error) {
	out := make(model.Transcript, len(transcript))
	for i, seg := range transcript {
		out[i] = model.Segment{Start: seg.Start, End: seg.End, Text: targetLanguage + ": " + seg.Text}
	}
	return out, nil
}

func fakeRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if name == "ffprobe" {
		return []byte(probeJSON), nil, nil
	}
	return nil, nil, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ws, err := files.NewWorkspace(t.TempDir())
	require.NoError(t, err)

	dao, err := sqlite.NewSQLiteDB(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dao.Close() })

	limits, err := appconfig.NewLimitsStore(filepath.Join(t.TempDir(), "limits.yaml"))
	require.NoError(t, err)

	ledger := quota.NewLedger(dao, limits)

	registry := provider.NewRegistry()
	require.NoError(t, registry.Register("stub", stubProvider{}))

	renderer := render.NewRenderer(render.WithCommandRunner(fakeRunner))
	coord := pipeline.NewCoordinator(ws, ledger, registry, renderer)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(slog.Default()))
	v1 := router.Group("/api/v1")
	v1routes.RegisterRoutes(v1, handlers.NewSubtitleHandler(coord), handlers.NewAdminHandler(ledger, limits))
	return router
}

func multipartUpload(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake video bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func doUpload(t *testing.T, router *gin.Engine, filename string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, filename)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Identity", "alice")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadReturnsFileID(t *testing.T) {
	router := newTestRouter(t)

	w := doUpload(t, router, "clip.mp4")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["file_id"])
	assert.InDelta(t, 30.0, resp["duration_seconds"].(float64), 0.001)
}

func TestUploadRejectsBadExtension(t *testing.T) {
	router := newTestRouter(t)

	w := doUpload(t, router, "malware.exe")

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation", resp["kind"])
	assert.Contains(t, resp["message"], ".exe")
}

func TestUploadWithoutFileField(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTranscribeUnknownProviderIs503(t *testing.T) {
	router := newTestRouter(t)
	w := doUpload(t, router, "clip.mp4")
	var upload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upload))
	fileID := upload["file_id"].(string)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/"+fileID+"/transcription",
		strings.NewReader(`{"provider":"ghost"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetTranscriptNotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/nothere/transcription", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExtractAudioEndpoint(t *testing.T) {
	router := newTestRouter(t)
	w := doUpload(t, router, "clip.mp4")
	require.Equal(t, http.StatusCreated, w.Code)
	var upload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upload))
	fileID := upload["file_id"].(string)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/"+fileID+"/audio", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUsageReflectsUploads(t *testing.T) {
	router := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doUpload(t, router, "a.mp4").Code)
	require.Equal(t, http.StatusCreated, doUpload(t, router, "b.mp4").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage", nil)
	req.Header.Set("X-Identity", "alice")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var usage model.Usage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usage))
	assert.Equal(t, 2, usage.VideosCount)
	assert.Equal(t, 8, usage.RemainingVideos)
}

func TestAdminResetAndStats(t *testing.T) {
	router := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doUpload(t, router, "a.mp4").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var stats model.LedgerStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalVideos)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/reset/alice", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var reset map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reset))
	assert.Equal(t, 1.0, reset["removed_records"])
}

func TestAdminLimitsOverrideLifecycle(t *testing.T) {
	router := newTestRouter(t)

	body := `{"max_videos":1,"max_duration_minutes":5,"max_file_size_mb":10,"allowed_extensions":[".mp4"]}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/limits/alice", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The override applies immediately: second upload is rejected.
	require.Equal(t, http.StatusCreated, doUpload(t, router, "a.mp4").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, doUpload(t, router, "b.mp4").Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/admin/limits/alice", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusCreated, doUpload(t, router, "c.mp4").Code)
}
