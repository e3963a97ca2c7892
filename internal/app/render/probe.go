package render

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	apperrors "video-subtitler/internal/app/errors"
	"video-subtitler/internal/app/model"
)

// Probe inspects a media file without decoding it. Probe failures never stop
// the pipeline; callers treat them as advisory.
func (r *Renderer) Probe(ctx context.Context, path string) (model.VideoInfo, error) {
	args := []string{"-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path}
	stdout, _, err := r.run(ctx, r.ffprobe, args...)
	if err != nil {
		return model.VideoInfo{}, apperrors.MediaProbe(path, err)
	}

	var out model.FFProbeOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return model.VideoInfo{}, apperrors.MediaProbe(path, err)
	}

	info := model.VideoInfo{}
	if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		info.DurationSeconds = d
	}
	for _, stream := range out.Streams {
		if stream.CodecType != "video" {
			continue
		}
		info.Width = stream.Width
		info.Height = stream.Height
		info.FrameRate = parseFrameRate(stream.RFrameRate)
		if info.FrameRate == 0 {
			info.FrameRate = parseFrameRate(stream.AvgFrameRate)
		}
		break
	}
	return info, nil
}

// parseFrameRate handles ffprobe's rational notation ("30000/1001").
func parseFrameRate(raw string) float64 {
	if raw == "" || raw == "0/0" {
		return 0
	}
	num, den, found := strings.Cut(raw, "/")
	if !found {
		f, _ := strconv.ParseFloat(raw, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
