package api

import (
	"context"

	"video-subtitler/internal/app/model"
)

// SubtitleProvider is the capability interface every transcription/translation
// backend implements. Implementations are selected by explicit caller choice;
// there is no automatic failover between providers.
type SubtitleProvider interface {
	// Transcribe sends the audio file to the backend and returns the
	// time-aligned transcript plus the language detected in the audio.
	// Transcription of multi-minute audio is slow; implementations enforce
	// timeouts measured in minutes and honor ctx cancellation.
	Transcribe(ctx context.Context, audioFilePath string) (model.Transcript, string, error)

	// Translate rewrites every segment's text into targetLanguage while
	// preserving each segment's start and end untouched. A failed segment
	// degrades to its original text; Translate never fails a whole job
	// because single segments could not be translated.
	Translate(ctx context.Context, transcript model.Transcript, targetLanguage, styleHint string) (model.Transcript, error)
}
