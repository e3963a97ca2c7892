package dto

import (
	"time"

	"video-subtitler/internal/app/model"
)

// UploadResponse is returned after a successful admission.
type UploadResponse struct {
	FileID          string    `json:"file_id"`
	SizeMB          float64   `json:"size_mb"`
	DurationSeconds float64   `json:"duration_seconds"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

// ExtractAudioResponse reports the produced audio artifact.
type ExtractAudioResponse struct {
	FileID    string          `json:"file_id"`
	AudioPath string          `json:"audio_path"`
	Info      model.VideoInfo `json:"info"`
}

// TranscribeRequest selects the ASR backend.
type TranscribeRequest struct {
	Provider string `json:"provider" binding:"required"`
}

// TranscriptResponse carries one language variant of a transcript.
type TranscriptResponse struct {
	FileID   string          `json:"file_id"`
	Language string          `json:"language,omitempty"`
	Segments []model.Segment `json:"segments"`
}

// UpdateTranscriptRequest replaces the original transcript wholesale.
type UpdateTranscriptRequest struct {
	Segments []model.Segment `json:"segments" binding:"required"`
}

// TranslateRequest derives a new language variant.
type TranslateRequest struct {
	TargetLanguage string `json:"target_language" binding:"required"`
	Provider       string `json:"provider" binding:"required"`
	StyleHint      string `json:"style_hint"`
}

// FontStyleRequest mirrors model.FontStyle for embed requests.
type FontStyleRequest struct {
	FontName     string `json:"font_name"`
	SizePt       int    `json:"size_pt"`
	Bold         bool   `json:"bold"`
	OutlineWidth int    `json:"outline_width"`
	ShadowDepth  int    `json:"shadow_depth"`
	PrimaryColor string `json:"primary_color"`
	OutlineColor string `json:"outline_color"`
}

func (r FontStyleRequest) ToModel() model.FontStyle {
	return model.FontStyle{
		FontName:     r.FontName,
		SizePt:       r.SizePt,
		Bold:         r.Bold,
		OutlineWidth: r.OutlineWidth,
		ShadowDepth:  r.ShadowDepth,
		PrimaryColor: r.PrimaryColor,
		OutlineColor: r.OutlineColor,
	}
}

// EmbedHardRequest burns subtitles into the video frames.
type EmbedHardRequest struct {
	Language string           `json:"language" binding:"required"`
	Preset   string           `json:"preset" binding:"omitempty,oneof=quality balanced fast"`
	Style    FontStyleRequest `json:"style"`
}

// EmbedSoftRequest muxes subtitles as a selectable track.
type EmbedSoftRequest struct {
	Language string `json:"language" binding:"required"`
}

// EmbedResponse names the produced video artifact.
type EmbedResponse struct {
	FileID     string `json:"file_id"`
	Language   string `json:"language"`
	Mode       string `json:"mode"`
	OutputPath string `json:"output_path"`
}

// ProvidersResponse lists the configured backends.
type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

// ResetResponse reports how many ledger rows an administrative reset removed.
type ResetResponse struct {
	RemovedRecords int64 `json:"removed_records"`
}

// LimitsOverrideRequest installs a per-identity limits override.
type LimitsOverrideRequest struct {
	MaxVideos          int      `json:"max_videos" binding:"required,gt=0"`
	MaxDurationMinutes float64  `json:"max_duration_minutes" binding:"required,gt=0"`
	MaxFileSizeMB      float64  `json:"max_file_size_mb" binding:"required,gt=0"`
	AllowedExtensions  []string `json:"allowed_extensions" binding:"required,min=1"`
}

func (r LimitsOverrideRequest) ToModel() model.Limits {
	return model.Limits{
		MaxVideos:          r.MaxVideos,
		MaxDurationMinutes: r.MaxDurationMinutes,
		MaxFileSizeMB:      r.MaxFileSizeMB,
		AllowedExtensions:  r.AllowedExtensions,
	}
}
