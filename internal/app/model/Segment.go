package model

// Segment is one timed caption unit. Start and End are seconds from the
// beginning of the media; End is always strictly greater than Start for
// segments produced by the codec or the providers.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is an ordered sequence of segments for one language variant of
// one upload, ordered by ascending Start.
type Transcript []Segment

// Duration returns the end timestamp of the last segment, or 0 for an empty
// transcript.
func (t Transcript) Duration() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].End
}

// Texts returns the text of every segment in order.
func (t Transcript) Texts() []string {
	texts := make([]string, len(t))
	for i, s := range t {
		texts[i] = s.Text
	}
	return texts
}

// TranscriptionResult bundles a transcript with the language the provider
// detected in the audio.
type TranscriptionResult struct {
	Transcript Transcript `json:"transcript"`
	Language   string     `json:"language"`
}
