package render

import (
	"fmt"
	"strings"

	"video-subtitler/internal/app/model"
)

// ASS styling defaults for burned subtitles. Alignment 2 is bottom center.
const (
	defaultFontSize     = 24
	defaultOutlineWidth = 2
	defaultPrimary      = "&Hffffff"
	defaultOutline      = "&H000000"
)

// assColors maps color names to ASS &HBBGGRR values.
var assColors = map[string]string{
	"white":   "&Hffffff",
	"black":   "&H000000",
	"yellow":  "&H00ffff",
	"red":     "&H0000ff",
	"green":   "&H00ff00",
	"blue":    "&Hff0000",
	"cyan":    "&Hffff00",
	"magenta": "&Hff00ff",
}

func assColor(name, fallback string) string {
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "&H") {
		return name
	}
	if v, ok := assColors[strings.ToLower(name)]; ok {
		return v
	}
	return fallback
}

// forceStyle renders a FontStyle as the force_style expression passed to the
// subtitles filter. Zero values fall back to the defaults above.
func forceStyle(style model.FontStyle) string {
	size := style.SizePt
	if size <= 0 {
		size = defaultFontSize
	}
	outline := style.OutlineWidth
	if outline <= 0 {
		outline = defaultOutlineWidth
	}

	parts := []string{}
	if style.FontName != "" {
		parts = append(parts, "FontName="+style.FontName)
	}
	parts = append(parts,
		fmt.Sprintf("FontSize=%d", size),
		"PrimaryColour="+assColor(style.PrimaryColor, defaultPrimary),
		"OutlineColour="+assColor(style.OutlineColor, defaultOutline),
		fmt.Sprintf("Outline=%d", outline),
	)
	if style.Bold {
		parts = append(parts, "Bold=1")
	}
	if style.ShadowDepth > 0 {
		parts = append(parts, fmt.Sprintf("Shadow=%d", style.ShadowDepth))
	}
	parts = append(parts, "Alignment=2", "MarginV=30")
	return strings.Join(parts, ",")
}
