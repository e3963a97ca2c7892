package model

// EmbedMode selects how subtitles are attached to the output container.
type EmbedMode string

const (
	EmbedHard EmbedMode = "hard" // burned into the video frames, re-encode
	EmbedSoft EmbedMode = "soft" // separate muxed stream, stream copy
)

// FontStyle carries the styling directives for hard-burned subtitles. Values
// pass through to the encoder's force_style expression verbatim; color names
// the renderer does not recognize fall back to white text on black outline.
type FontStyle struct {
	FontName     string `json:"font_name"`
	SizePt       int    `json:"size_pt"`
	Bold         bool   `json:"bold"`
	OutlineWidth int    `json:"outline_width"`
	ShadowDepth  int    `json:"shadow_depth"`
	PrimaryColor string `json:"primary_color"`
	OutlineColor string `json:"outline_color"`
}

// RenderJob describes one embed invocation. It lives only for the duration
// of the call and is never persisted.
type RenderJob struct {
	VideoPath    string
	SubtitlePath string
	OutputPath   string
	Mode         EmbedMode
	Language     string
	Style        FontStyle
}

// VideoInfo is the result of probing a media container without decoding it.
type VideoInfo struct {
	DurationSeconds float64 `json:"duration_seconds"`
	FrameRate       float64 `json:"frame_rate"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
}
