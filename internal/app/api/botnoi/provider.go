package botnoi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	apperrors "video-subtitler/internal/app/errors"
	"video-subtitler/internal/app/model"
)

const (
	defaultBaseURL = "https://api-voice.botnoi.ai"

	gensubPath    = "/api/gensub/gensub_upload"
	translatePath = "/api/gensub/translate"

	// Segmentation knobs the gensub endpoint expects on every request.
	gensubMaxDuration = "10"
	gensubMaxSilence  = "0.3"
)

// Provider talks to the Botnoi Gensub API. Transcription uploads the audio
// file as multipart form data; translation is one HTTP call per segment.
type Provider struct {
	httpClient *http.Client
	baseURL    string
	token      string
	language   string
	logger     *slog.Logger
}

type Option func(*Provider)

// WithBaseURL overrides the production endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.baseURL = url }
}

// WithLanguage sets the source language sent to gensub. Defaults to "th".
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) { p.httpClient = client }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

func NewProvider(token string, opts ...Option) *Provider {
	p := &Provider{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    defaultBaseURL,
		token:      token,
		language:   "th",
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Transcribe uploads the audio file to the gensub endpoint and decodes
// whichever response shape the service happens to return.
func (p *Provider) Transcribe(ctx context.Context, audioFilePath string) (model.Transcript, string, error) {
	file, err := os.Open(audioFilePath)
	if err != nil {
		return nil, "", apperrors.Internal("open audio file", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(audioFilePath))
	if err != nil {
		return nil, "", apperrors.Internal("build multipart request", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", apperrors.Internal("read audio file", err)
	}
	fields := map[string]string{
		"max_duration": gensubMaxDuration,
		"max_silence":  gensubMaxSilence,
		"language":     p.language,
		"srt":          "yes",
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", apperrors.Internal("build multipart request", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", apperrors.Internal("build multipart request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+gensubPath, &body)
	if err != nil {
		return nil, "", apperrors.Internal("build gensub request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("botnoi-token", p.token)

	payload, err := p.do(req)
	if err != nil {
		return nil, "", err
	}

	transcript, ok := parseTranscriptionResponse(payload)
	if !ok {
		p.logger.Error("botnoi returned unrecognized transcription shape",
			"bytes", len(payload))
		return nil, "", apperrors.ProviderResponse("botnoi", payload)
	}
	return transcript, p.language, nil
}

// Translate translates segment by segment. A failed segment keeps its
// original text so one bad call never loses the whole transcript.
func (p *Provider) Translate(ctx context.Context, transcript model.Transcript, targetLanguage string, styleHint string) (model.Transcript, error) {
	translated := make(model.Transcript, len(transcript))
	for i, seg := range transcript {
		text, err := p.translateText(ctx, seg.Text, targetLanguage, styleHint)
		if err != nil {
			p.logger.Warn("segment translation failed, keeping original text",
				"segment", i, "error", err)
			text = seg.Text
		}
		translated[i] = model.Segment{Start: seg.Start, End: seg.End, Text: text}
	}
	return translated, nil
}

func (p *Provider) translateText(ctx context.Context, text, targetLanguage, styleHint string) (string, error) {
	reqBody := map[string]string{
		"language":     targetLanguage,
		"native_style": styleHint,
		"simple_style": styleHint,
		"text":         text,
	}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperrors.Internal("encode translate request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+translatePath, bytes.NewReader(encoded))
	if err != nil {
		return "", apperrors.Internal("build translate request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("botnoi-token", p.token)

	payload, err := p.do(req)
	if err != nil {
		return "", err
	}
	translated, ok := parseTranslationResponse(payload)
	if !ok {
		return "", apperrors.ProviderResponse("botnoi", payload)
	}
	return translated, nil
}

func (p *Provider) do(req *http.Request) ([]byte, error) {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.ProviderUnavailable("botnoi", err.Error())
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ProviderUnavailable("botnoi", err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ProviderUnavailable("botnoi",
			fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(payload, 256)))
	}
	return payload, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
