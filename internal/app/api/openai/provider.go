package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sashabaranov/go-openai"

	apperrors "video-subtitler/internal/app/errors"
	"video-subtitler/internal/app/model"
)

// batchSize bounds how many segment texts go into one translation prompt.
const batchSize = 10

// defaultCallTimeout bounds each remote call. Transcription of multi-minute
// audio is slow, so the budget is minutes, not seconds.
const defaultCallTimeout = 5 * time.Minute

// batchSeparator delimits segment texts inside a batched prompt so the reply
// can be split back into per-segment translations.
const batchSeparator = "\n---SEPARATOR---\n"

// client is the slice of the go-openai surface the provider uses. Narrowed
// to an interface so tests can substitute a fake.
type client interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Provider implements transcription via the Whisper API and translation via
// chat completions.
type Provider struct {
	client      client
	asrModel    string
	chatModel   string
	sourceLang  string
	callTimeout time.Duration
}

// Option customizes a Provider.
type Option func(*Provider)

// WithASRModel overrides the transcription model.
func WithASRModel(m string) Option { return func(p *Provider) { p.asrModel = m } }

// WithChatModel overrides the translation model.
func WithChatModel(m string) Option { return func(p *Provider) { p.chatModel = m } }

// WithSourceLanguage pins the transcription language instead of letting the
// backend auto-detect.
func WithSourceLanguage(lang string) Option { return func(p *Provider) { p.sourceLang = lang } }

// WithCallTimeout overrides the per-call deadline applied to every remote
// request.
func WithCallTimeout(d time.Duration) Option { return func(p *Provider) { p.callTimeout = d } }

// NewProvider creates an OpenAI-backed subtitle provider around an existing
// client. The client is injected rather than built from process globals so
// the coordinator owns all shared state.
func NewProvider(c *openai.Client, opts ...Option) *Provider {
	return newProvider(c, opts...)
}

func newProvider(c client, opts ...Option) *Provider {
	p := &Provider{
		client:      c,
		asrModel:    openai.Whisper1,
		chatModel:   openai.GPT4oMini,
		callTimeout: defaultCallTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Transcribe sends the audio file to the Whisper endpoint requesting
// segment-level timestamps and returns the aligned transcript plus the
// detected language.
func (p *Provider) Transcribe(ctx context.Context, audioFilePath string) (model.Transcript, string, error) {
	req := openai.AudioRequest{
		Model:    p.asrModel,
		FilePath: audioFilePath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
		},
		Language: p.sourceLang,
	}

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	resp, err := p.client.CreateTranscription(callCtx, req)
	if err != nil {
		return nil, "", apperrors.ProviderUnavailable("openai", fmt.Sprintf("transcription request failed: %v", err))
	}

	transcript := make(model.Transcript, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		if seg.End <= seg.Start {
			continue
		}
		transcript = append(transcript, model.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	return transcript, resp.Language, nil
}

// Translate rewrites segment texts into targetLanguage in batches of
// batchSize. A batch whose reply does not split back into the same number of
// texts is retried segment by segment; a segment that still fails keeps its
// original text. Timestamps are carried over untouched.
func (p *Provider) Translate(ctx context.Context, transcript model.Transcript, targetLanguage, styleHint string) (model.Transcript, error) {
	if len(transcript) == 0 {
		return model.Transcript{}, nil
	}

	systemPrompt := buildTranslationPrompt(targetLanguage, styleHint)
	translated := make(model.Transcript, 0, len(transcript))

	for _, batch := range lo.Chunk(transcript, batchSize) {
		texts, err := p.translateBatch(ctx, batch.Texts(), systemPrompt)
		if err != nil {
			texts = p.translateOneByOne(ctx, batch.Texts(), systemPrompt)
		}
		for i, seg := range batch {
			translated = append(translated, model.Segment{
				Start: seg.Start,
				End:   seg.End,
				Text:  strings.TrimSpace(texts[i]),
			})
		}
	}
	return translated, nil
}

// translateBatch translates a group of texts in one chat call. An error is
// returned when the reply cannot be matched one-to-one with the inputs,
// which triggers the per-segment fallback.
func (p *Provider) translateBatch(ctx context.Context, texts []string, systemPrompt string) ([]string, error) {
	reply, err := p.chat(ctx, systemPrompt, strings.Join(texts, batchSeparator), 4000)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(reply, strings.TrimSpace(batchSeparator))
	if len(parts) != len(texts) {
		return nil, fmt.Errorf("batch reply has %d parts, want %d", len(parts), len(texts))
	}
	return parts, nil
}

// translateOneByOne is the degradation path: each text is translated on its
// own, and a text whose call fails is passed through unchanged.
func (p *Provider) translateOneByOne(ctx context.Context, texts []string, systemPrompt string) []string {
	out := make([]string, len(texts))
	for i, text := range texts {
		reply, err := p.chat(ctx, systemPrompt, text, 1000)
		if err != nil {
			out[i] = text
			continue
		}
		out[i] = reply
	}
	return out
}

func (p *Provider) chat(ctx context.Context, systemPrompt, userContent string, maxTokens int) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: p.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userContent},
		},
		Temperature: 0.3,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildTranslationPrompt(targetLanguage, styleHint string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a professional subtitle translator. Translate each of the following subtitle lines into %s.\n", targetLanguage)
	b.WriteString("Guidelines:\n")
	b.WriteString("1. Keep each translation close to the original length.\n")
	b.WriteString("2. Translate naturally and keep the original meaning and context.\n")
	b.WriteString("3. Use vocabulary appropriate to the content.\n")
	if styleHint != "" {
		fmt.Fprintf(&b, "4. Translation style: %s\n", styleHint)
	}
	b.WriteString("\nReply with the translations only, keeping the same separators between entries.")
	return b.String()
}
