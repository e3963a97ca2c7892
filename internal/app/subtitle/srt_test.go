package subtitle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-subtitler/internal/app/model"
)

func TestParseSingleBlock(t *testing.T) {
	input := "1\n00:00:01,000 --> 00:00:03,500\nHello\n\n"

	transcript := Parse([]byte(input))

	require.Len(t, transcript, 1)
	assert.Equal(t, 1.0, transcript[0].Start)
	assert.Equal(t, 3.5, transcript[0].End)
	assert.Equal(t, "Hello", transcript[0].Text)
}

func TestSerializeSingleBlock(t *testing.T) {
	transcript := model.Transcript{{Start: 1.0, End: 3.5, Text: "Hello"}}

	got := string(Serialize(transcript))

	assert.Equal(t, "1\n00:00:01,000 --> 00:00:03,500\nHello\n\n", got)
}

func TestParseMultilineText(t *testing.T) {
	input := "1\n00:00:01,000 --> 00:00:03,500\nfirst line\nsecond line\n\n" +
		"2\n00:00:04,000 --> 00:00:06,000\nnext\n\n"

	transcript := Parse([]byte(input))

	require.Len(t, transcript, 2)
	assert.Equal(t, "first line\nsecond line", transcript[0].Text)
	assert.Equal(t, "next", transcript[1].Text)
}

func TestParseSkipsMalformedBlocks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{
			name: "missing_arrow_separator",
			input: "1\n00:00:01,000 --> 00:00:03,500\nok\n\n" +
				"2\n00:00:04,000 00:00:06,000\nbroken\n\n",
			want: 1,
		},
		{
			name: "unparsable_start",
			input: "1\nxx:00:01,000 --> 00:00:03,500\nbroken\n\n" +
				"2\n00:00:04,000 --> 00:00:06,000\nok\n\n",
			want: 1,
		},
		{
			name:  "end_not_after_start",
			input: "1\n00:00:05,000 --> 00:00:05,000\nbroken\n\n",
			want:  0,
		},
		{
			name:  "no_text_line",
			input: "1\n00:00:01,000 --> 00:00:03,500\n\n",
			want:  0,
		},
		{
			name:  "stray_text_only_block",
			input: "just some words\n\n1\n00:00:01,000 --> 00:00:02,000\nok\n\n",
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Parse([]byte(tt.input)), tt.want)
		})
	}
}

func TestParseEmptyDocument(t *testing.T) {
	assert.Empty(t, Parse(nil))
	assert.Empty(t, Parse([]byte("")))
	assert.Empty(t, Parse([]byte("\n\n\n")))
}

func TestSerializeEmptyTranscript(t *testing.T) {
	assert.Equal(t, "", string(Serialize(model.Transcript{})))
}

func TestSerializeRenumbersIndices(t *testing.T) {
	input := "7\n00:00:01,000 --> 00:00:02,000\na\n\n" +
		"42\n00:00:03,000 --> 00:00:04,000\nb\n\n"

	out := string(Serialize(Parse([]byte(input))))

	assert.Equal(t, "1\n00:00:01,000 --> 00:00:02,000\na\n\n"+
		"2\n00:00:03,000 --> 00:00:04,000\nb\n\n", out)
}

func TestRoundTripMillisecondPrecision(t *testing.T) {
	original := model.Transcript{
		{Start: 0, End: 2.858, Text: "first"},
		{Start: 2.858, End: 5.001, Text: "second\nwith newline"},
		{Start: 3599.999, End: 3661.042, Text: "crosses the hour"},
	}

	parsed := Parse(Serialize(original))

	require.Len(t, parsed, len(original))
	for i := range original {
		assert.InDelta(t, original[i].Start, parsed[i].Start, 0.0005, "segment %d start", i)
		assert.InDelta(t, original[i].End, parsed[i].End, 0.0005, "segment %d end", i)
		assert.Equal(t, original[i].Text, parsed[i].Text, "segment %d text", i)
	}
}

func TestReserializationIsIdempotent(t *testing.T) {
	input := "1\n00:00:00,500 --> 00:00:02,858\nหนึ่ง\n\n" +
		"2\n00:01:02,003 --> 00:01:05,000\nสอง สาม\n\n"

	once := Serialize(Parse([]byte(input)))
	twice := Serialize(Parse(once))

	assert.Equal(t, string(once), string(twice))
}

func TestParseAcceptsPeriodMillisecondSeparator(t *testing.T) {
	input := "1\n00:00:01.250 --> 00:00:02.750\nok\n\n"

	transcript := Parse([]byte(input))

	require.Len(t, transcript, 1)
	assert.Equal(t, 1.25, transcript[0].Start)
	assert.Equal(t, 2.75, transcript[0].End)
}

func TestFormatTimestampPadding(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1, "00:00:01,000"},
		{59.999, "00:00:59,999"},
		{61.5, "00:01:01,500"},
		{3600, "01:00:00,000"},
		{36610.042, "10:10:10,042"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatTimestamp(tt.seconds))
	}
}
