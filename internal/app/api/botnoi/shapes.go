package botnoi

import (
	"encoding/json"
	"strings"

	"video-subtitler/internal/app/model"
	"video-subtitler/internal/app/subtitle"
)

// segmentPayload is the segment layout shared by every Botnoi response shape
// observed so far.
type segmentPayload struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Word  string  `json:"word"`
}

func (s segmentPayload) toSegment() (model.Segment, bool) {
	text := s.Text
	if text == "" {
		text = s.Word
	}
	if s.End <= s.Start {
		return model.Segment{}, false
	}
	return model.Segment{Start: s.Start, End: s.End, Text: strings.TrimSpace(text)}, true
}

// shapeMatcher attempts to extract a transcript from one known vendor
// response layout. Matchers are pure: they inspect the decoded document and
// report whether the shape applied.
type shapeMatcher struct {
	name  string
	match func(doc map[string]json.RawMessage) (model.Transcript, bool)
}

// transcribeShapes is the ordered list of layouts tried against a
// transcription response before giving up.
var transcribeShapes = []shapeMatcher{
	{name: "data.text_srt", match: matchDataTextSRT},
	{name: "segments", match: matchSegments},
	{name: "result", match: matchResult},
	{name: "data.segments", match: matchDataSegments},
	{name: "transcript", match: matchTranscript},
}

// parseTranscriptionResponse runs the shape matchers in order and returns
// the first transcript any of them extracts.
func parseTranscriptionResponse(payload []byte) (model.Transcript, bool) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, false
	}
	for _, shape := range transcribeShapes {
		if transcript, ok := shape.match(doc); ok && len(transcript) > 0 {
			return transcript, true
		}
	}
	return nil, false
}

// matchDataTextSRT handles the documented layout: an SRT document embedded
// at data.text.
func matchDataTextSRT(doc map[string]json.RawMessage) (model.Transcript, bool) {
	raw, ok := doc["data"]
	if !ok {
		return nil, false
	}
	var data struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &data); err != nil || data.Text == "" {
		return nil, false
	}
	transcript := subtitle.Parse([]byte(data.Text))
	return transcript, len(transcript) > 0
}

// matchSegments handles a top-level segments array.
func matchSegments(doc map[string]json.RawMessage) (model.Transcript, bool) {
	raw, ok := doc["segments"]
	if !ok {
		return nil, false
	}
	return decodeSegmentList(raw)
}

// matchResult handles result as either a segment array or an object holding
// a segments array.
func matchResult(doc map[string]json.RawMessage) (model.Transcript, bool) {
	raw, ok := doc["result"]
	if !ok {
		return nil, false
	}
	if transcript, ok := decodeSegmentList(raw); ok {
		return transcript, true
	}
	var nested struct {
		Segments []segmentPayload `json:"segments"`
	}
	if err := json.Unmarshal(raw, &nested); err != nil || len(nested.Segments) == 0 {
		return nil, false
	}
	return collectSegments(nested.Segments)
}

// matchDataSegments handles segments nested under data.
func matchDataSegments(doc map[string]json.RawMessage) (model.Transcript, bool) {
	raw, ok := doc["data"]
	if !ok {
		return nil, false
	}
	var data struct {
		Segments []segmentPayload `json:"segments"`
	}
	if err := json.Unmarshal(raw, &data); err != nil || len(data.Segments) == 0 {
		return nil, false
	}
	return collectSegments(data.Segments)
}

// matchTranscript handles a transcript array of word/segment entries.
func matchTranscript(doc map[string]json.RawMessage) (model.Transcript, bool) {
	raw, ok := doc["transcript"]
	if !ok {
		return nil, false
	}
	return decodeSegmentList(raw)
}

func decodeSegmentList(raw json.RawMessage) (model.Transcript, bool) {
	var payloads []segmentPayload
	if err := json.Unmarshal(raw, &payloads); err != nil || len(payloads) == 0 {
		return nil, false
	}
	return collectSegments(payloads)
}

func collectSegments(payloads []segmentPayload) (model.Transcript, bool) {
	transcript := make(model.Transcript, 0, len(payloads))
	for _, p := range payloads {
		if seg, ok := p.toSegment(); ok {
			transcript = append(transcript, seg)
		}
	}
	return transcript, len(transcript) > 0
}

// parseTranslationResponse extracts the translated text from the layouts the
// translate endpoint is known to use: data.text, then text, then result.
func parseTranslationResponse(payload []byte) (string, bool) {
	var doc struct {
		Data struct {
			Text string `json:"text"`
		} `json:"data"`
		Text   string `json:"text"`
		Result string `json:"result"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return "", false
	}
	switch {
	case doc.Data.Text != "":
		return doc.Data.Text, true
	case doc.Text != "":
		return doc.Text, true
	case doc.Result != "":
		return doc.Result, true
	}
	return "", false
}
