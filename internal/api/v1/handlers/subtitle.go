package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"video-subtitler/internal/api/errors"
	"video-subtitler/internal/api/middleware"
	"video-subtitler/internal/api/v1/dto"
	"video-subtitler/internal/app/model"
	"video-subtitler/internal/app/pipeline"
	"video-subtitler/internal/app/render"
)

// SubtitleHandler exposes the pipeline operations over HTTP.
type SubtitleHandler struct {
	coord *pipeline.Coordinator
}

func NewSubtitleHandler(coord *pipeline.Coordinator) *SubtitleHandler {
	return &SubtitleHandler{coord: coord}
}

// identity resolves the opaque caller identity set by the upstream auth
// proxy. Anonymous callers share one bucket.
func identity(c *gin.Context) string {
	if id := c.GetHeader("X-Identity"); id != "" {
		return id
	}
	return "anonymous"
}

// Upload handles POST /api/v1/files
func (h *SubtitleHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("multipart field 'file' is required"))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("cannot read uploaded file"))
		return
	}
	defer src.Close()

	rec, err := h.coord.AdmitUpload(c.Request.Context(), identity(c), fileHeader.Filename, src, fileHeader.Size)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.UploadResponse{
		FileID:          rec.FileID,
		SizeMB:          rec.SizeMB,
		DurationSeconds: rec.DurationSeconds,
		UploadedAt:      rec.UploadedAt,
	})
}

// ExtractAudio handles POST /api/v1/files/:fileId/audio
func (h *SubtitleHandler) ExtractAudio(c *gin.Context) {
	fileID := c.Param("fileId")

	mp3Path, info, err := h.coord.ExtractAudio(c.Request.Context(), fileID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ExtractAudioResponse{
		FileID:    fileID,
		AudioPath: mp3Path,
		Info:      info,
	})
}

// Transcribe handles POST /api/v1/files/:fileId/transcription
func (h *SubtitleHandler) Transcribe(c *gin.Context) {
	var req dto.TranscribeRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	fileID := c.Param("fileId")
	result, err := h.coord.Transcribe(c.Request.Context(), fileID, req.Provider)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TranscriptResponse{
		FileID:   fileID,
		Language: result.Language,
		Segments: result.Transcript,
	})
}

// GetTranscript handles GET /api/v1/files/:fileId/transcription
func (h *SubtitleHandler) GetTranscript(c *gin.Context) {
	fileID := c.Param("fileId")

	transcript, err := h.coord.OriginalTranscript(fileID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TranscriptResponse{FileID: fileID, Segments: transcript})
}

// UpdateTranscript handles PUT /api/v1/files/:fileId/transcription
func (h *SubtitleHandler) UpdateTranscript(c *gin.Context) {
	var req dto.UpdateTranscriptRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	fileID := c.Param("fileId")
	if err := h.coord.UpdateTranscript(fileID, model.Transcript(req.Segments)); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"file_id": fileID, "segments": len(req.Segments)})
}

// Translate handles POST /api/v1/files/:fileId/translations
func (h *SubtitleHandler) Translate(c *gin.Context) {
	var req dto.TranslateRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	fileID := c.Param("fileId")
	translated, err := h.coord.Translate(c.Request.Context(), fileID, req.TargetLanguage, req.Provider, req.StyleHint)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TranscriptResponse{
		FileID:   fileID,
		Language: req.TargetLanguage,
		Segments: translated,
	})
}

// GetTranslation handles GET /api/v1/files/:fileId/translations/:language
func (h *SubtitleHandler) GetTranslation(c *gin.Context) {
	fileID := c.Param("fileId")
	language := c.Param("language")

	transcript, err := h.coord.TranslatedTranscript(fileID, language)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TranscriptResponse{
		FileID:   fileID,
		Language: language,
		Segments: transcript,
	})
}

// EmbedHard handles POST /api/v1/files/:fileId/embed/hard
func (h *SubtitleHandler) EmbedHard(c *gin.Context) {
	var req dto.EmbedHardRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}
	if req.Preset == "" {
		req.Preset = render.PresetBalanced.Name
	}

	fileID := c.Param("fileId")
	out, err := h.coord.EmbedHard(c.Request.Context(), fileID, req.Language, req.Preset, req.Style.ToModel())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.EmbedResponse{
		FileID:     fileID,
		Language:   req.Language,
		Mode:       string(model.EmbedHard),
		OutputPath: out,
	})
}

// EmbedSoft handles POST /api/v1/files/:fileId/embed/soft
func (h *SubtitleHandler) EmbedSoft(c *gin.Context) {
	var req dto.EmbedSoftRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	fileID := c.Param("fileId")
	out, err := h.coord.EmbedSoft(c.Request.Context(), fileID, req.Language)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.EmbedResponse{
		FileID:     fileID,
		Language:   req.Language,
		Mode:       string(model.EmbedSoft),
		OutputPath: out,
	})
}

// GetUsage handles GET /api/v1/usage
func (h *SubtitleHandler) GetUsage(c *gin.Context) {
	usage, err := h.coord.GetUsage(identity(c))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, usage)
}

// ListProviders handles GET /api/v1/providers
func (h *SubtitleHandler) ListProviders(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ProvidersResponse{Providers: h.coord.Providers()})
}

// DownloadVideo handles GET /api/v1/files/:fileId/download/video
func (h *SubtitleHandler) DownloadVideo(c *gin.Context) {
	path, err := h.coord.VideoFile(c.Param("fileId"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.FileAttachment(path, pathBase(path))
}

// DownloadSubtitle handles GET /api/v1/files/:fileId/download/subtitle.
// The optional language query selects a translation; default is the
// original transcript.
func (h *SubtitleHandler) DownloadSubtitle(c *gin.Context) {
	path, err := h.coord.SubtitleFile(c.Param("fileId"), c.Query("language"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.FileAttachment(path, pathBase(path))
}

// DownloadEmbedded handles GET /api/v1/files/:fileId/download/embedded
func (h *SubtitleHandler) DownloadEmbedded(c *gin.Context) {
	mode := model.EmbedMode(c.DefaultQuery("mode", string(model.EmbedHard)))
	if mode != model.EmbedHard && mode != model.EmbedSoft {
		middleware.HandleError(c, errors.NewBadRequestError("mode must be 'hard' or 'soft'"))
		return
	}
	language := c.Query("language")
	if language == "" {
		middleware.HandleError(c, errors.NewBadRequestError("language query parameter is required"))
		return
	}

	path, err := h.coord.EmbeddedFile(c.Param("fileId"), language, mode)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.FileAttachment(path, pathBase(path))
}
