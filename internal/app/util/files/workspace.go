// Package files maps fileIds to their on-disk artifacts. Every artifact of
// one upload lives in the same directory under a name derived from the
// fileId, so external tooling can locate outputs without a database lookup.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"video-subtitler/internal/app/model"
)

// Workspace is the upload directory.
type Workspace struct {
	root string
}

func NewWorkspace(root string) (*Workspace, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Workspace{root: root}, nil
}

func (w *Workspace) Root() string { return w.root }

// VideoPath is the staged original video, `{fileId}{ext}`.
func (w *Workspace) VideoPath(fileID, ext string) string {
	return filepath.Join(w.root, fileID+strings.ToLower(ext))
}

// AudioPath is the extracted audio, `{fileId}.mp3`.
func (w *Workspace) AudioPath(fileID string) string {
	return filepath.Join(w.root, fileID+".mp3")
}

// OriginalSubtitlePath is the source-language SRT, `{fileId}_original.srt`.
func (w *Workspace) OriginalSubtitlePath(fileID string) string {
	return filepath.Join(w.root, fileID+"_original.srt")
}

// TranslatedSubtitlePath is `{fileId}_{language}.srt`.
func (w *Workspace) TranslatedSubtitlePath(fileID, language string) string {
	return filepath.Join(w.root, fmt.Sprintf("%s_%s.srt", fileID, language))
}

// EmbeddedVideoPath is `{fileId}_{language}_{mode}.mp4`.
func (w *Workspace) EmbeddedVideoPath(fileID, language string, mode model.EmbedMode) string {
	return filepath.Join(w.root, fmt.Sprintf("%s_%s_%s.mp4", fileID, language, mode))
}

// FindVideo locates the staged video for fileID by trying the candidate
// extensions in order. Returns the path of the first that exists.
func (w *Workspace) FindVideo(fileID string, extensions []string) (string, bool) {
	for _, ext := range extensions {
		path := w.VideoPath(fileID, ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
