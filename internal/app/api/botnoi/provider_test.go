package botnoi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "video-subtitler/internal/app/errors"
	"video-subtitler/internal/app/model"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp3")
	require.NoError(t, os.WriteFile(path, []byte("fake mp3 bytes"), 0o644))
	return path
}

func TestTranscribeSendsMultipartForm(t *testing.T) {
	var gotToken, gotLanguage, gotSRT, gotMaxDuration string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotToken = r.Header.Get("botnoi-token")
		gotLanguage = r.FormValue("language")
		gotSRT = r.FormValue("srt")
		gotMaxDuration = r.FormValue("max_duration")
		_, _, err := r.FormFile("file")
		require.NoError(t, err)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"text": "1\n00:00:00,000 --> 00:00:02,000\nสวัสดีครับ\n\n",
			},
		})
	}))
	defer server.Close()

	p := NewProvider("secret-token", WithBaseURL(server.URL))
	transcript, language, err := p.Transcribe(context.Background(), writeTempAudio(t))

	require.NoError(t, err)
	assert.Equal(t, "secret-token", gotToken)
	assert.Equal(t, "th", gotLanguage)
	assert.Equal(t, "yes", gotSRT)
	assert.Equal(t, "10", gotMaxDuration)
	assert.Equal(t, "th", language)
	require.Len(t, transcript, 1)
	assert.Equal(t, "สวัสดีครับ", transcript[0].Text)
	assert.Equal(t, 0.0, transcript[0].Start)
	assert.Equal(t, 2.0, transcript[0].End)
}

func TestTranscribeShapeMatchers(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected model.Transcript
	}{
		{
			name: "srt document under data.text",
			body: `{"data":{"text":"1\n00:00:01,000 --> 00:00:02,500\nhello\n\n"}}`,
			expected: model.Transcript{
				{Start: 1.0, End: 2.5, Text: "hello"},
			},
		},
		{
			name: "top level segments",
			body: `{"segments":[{"start":0,"end":1.5,"text":"one"},{"start":1.5,"end":3,"text":"two"}]}`,
			expected: model.Transcript{
				{Start: 0, End: 1.5, Text: "one"},
				{Start: 1.5, End: 3, Text: "two"},
			},
		},
		{
			name: "result as segment list",
			body: `{"result":[{"start":0,"end":2,"text":"alpha"}]}`,
			expected: model.Transcript{
				{Start: 0, End: 2, Text: "alpha"},
			},
		},
		{
			name: "result as object with segments",
			body: `{"result":{"segments":[{"start":0,"end":2,"text":"beta"}]}}`,
			expected: model.Transcript{
				{Start: 0, End: 2, Text: "beta"},
			},
		},
		{
			name: "segments nested under data",
			body: `{"data":{"segments":[{"start":0.5,"end":2,"text":"nested"}]}}`,
			expected: model.Transcript{
				{Start: 0.5, End: 2, Text: "nested"},
			},
		},
		{
			name: "transcript with word field",
			body: `{"transcript":[{"start":0,"end":1,"word":"คำ"}]}`,
			expected: model.Transcript{
				{Start: 0, End: 1, Text: "คำ"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewProvider("token", WithBaseURL(server.URL))
			transcript, _, err := p.Transcribe(context.Background(), writeTempAudio(t))

			require.NoError(t, err)
			assert.Equal(t, tt.expected, transcript)
		})
	}
}

func TestTranscribeShapeMatcherOrder(t *testing.T) {
	// When data.text carries an SRT document, it wins even if a segments
	// array is also present.
	body := `{"data":{"text":"1\n00:00:00,000 --> 00:00:01,000\nfrom srt\n\n"},"segments":[{"start":0,"end":1,"text":"from segments"}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	p := NewProvider("token", WithBaseURL(server.URL))
	transcript, _, err := p.Transcribe(context.Background(), writeTempAudio(t))

	require.NoError(t, err)
	require.Len(t, transcript, 1)
	assert.Equal(t, "from srt", transcript[0].Text)
}

func TestTranscribeUnrecognizedShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","something":"else"}`))
	}))
	defer server.Close()

	p := NewProvider("token", WithBaseURL(server.URL))
	_, _, err := p.Transcribe(context.Background(), writeTempAudio(t))

	require.Error(t, err)
	assert.Equal(t, apperrors.KindProviderResponse, apperrors.KindOf(err))
}

func TestTranscribeHTTPErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	p := NewProvider("token", WithBaseURL(server.URL))
	_, _, err := p.Transcribe(context.Background(), writeTempAudio(t))

	require.Error(t, err)
	assert.Equal(t, apperrors.KindProviderUnavailable, apperrors.KindOf(err))
}

func TestTranslatePerSegment(t *testing.T) {
	var requests []map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		requests = append(requests, body)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"text": "translated: " + body["text"]},
		})
	}))
	defer server.Close()

	p := NewProvider("token", WithBaseURL(server.URL))
	in := model.Transcript{
		{Start: 0, End: 1, Text: "หนึ่ง"},
		{Start: 1, End: 2, Text: "สอง"},
	}
	out, err := p.Translate(context.Background(), in, "en", "casual")

	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "en", requests[0]["language"])
	assert.Equal(t, "casual", requests[0]["native_style"])
	require.Len(t, out, 2)
	assert.Equal(t, "translated: หนึ่ง", out[0].Text)
	assert.Equal(t, "translated: สอง", out[1].Text)
	assert.Equal(t, in[0].Start, out[0].Start)
	assert.Equal(t, in[1].End, out[1].End)
}

func TestTranslateResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "data.text", body: `{"data":{"text":"first"}}`, want: "first"},
		{name: "text", body: `{"text":"second"}`, want: "second"},
		{name: "result", body: `{"result":"third"}`, want: "third"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewProvider("token", WithBaseURL(server.URL))
			out, err := p.Translate(context.Background(), model.Transcript{{Start: 0, End: 1, Text: "x"}}, "en", "")

			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.Equal(t, tt.want, out[0].Text)
		})
	}
}

func TestTranslateFailedSegmentKeepsOriginal(t *testing.T) {
	call := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call++
		if call == 2 {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"text": "ok"})
	}))
	defer server.Close()

	p := NewProvider("token", WithBaseURL(server.URL))
	in := model.Transcript{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1, End: 2, Text: "b"},
		{Start: 2, End: 3, Text: "c"},
	}
	out, err := p.Translate(context.Background(), in, "en", "")

	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "ok", out[0].Text)
	assert.Equal(t, "b", out[1].Text)
	assert.Equal(t, "ok", out[2].Text)
}
