package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisperbatch/internal/chunker"
	"whisperbatch/internal/transcript"
)

func fixedResult() *transcript.Result {
	segments := []transcript.Segment{
		{Start: 0.0, End: 5.2, Text: "Hello there", Confidence: 0.9},
		{Start: 5.2, End: 12.1, Text: "this is a test", Confidence: 0.8},
		{Start: 12.1, End: 15.0, Text: "done", Confidence: 0.95},
	}
	return &transcript.Result{
		SourcePath: "/media/interview.mp4",
		Language:   "en",
		ModelName:  "medium",
		Duration:   15.0,
		Segments:   segments,
		FullText:   transcript.JoinSegments(segments),
		CreatedAt:  time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC),
		Status:     transcript.StatusOK,
	}
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00:00:00", formatTimestamp(0))
	assert.Equal(t, "00:00:05", formatTimestamp(5.2))
	assert.Equal(t, "00:01:12", formatTimestamp(72.9))
	assert.Equal(t, "01:01:01", formatTimestamp(3661))
}

func TestFormatSRTTimestamp(t *testing.T) {
	assert.Equal(t, "00:00:00,000", formatSRTTimestamp(0))
	assert.Equal(t, "00:00:05,200", formatSRTTimestamp(5.2))
	assert.Equal(t, "00:02:03,450", formatSRTTimestamp(123.45))
	assert.Equal(t, "01:00:00,001", formatSRTTimestamp(3600.001))
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"markdown", "json", "srt", "txt"} {
		format, err := ParseFormat(name)
		assert.NoError(t, err)
		assert.Equal(t, Format(name), format)
	}

	format, err := ParseFormat(" JSON ")
	assert.NoError(t, err)
	assert.Equal(t, FormatJSON, format)

	_, err = ParseFormat("html")
	assert.Error(t, err)
}

func TestMarkdownExporter(t *testing.T) {
	// Arrange
	exporter := &MarkdownExporter{}

	// Act
	data, err := exporter.Export(fixedResult(), nil)

	// Assert
	require.NoError(t, err)
	output := string(data)

	assert.True(t, strings.HasPrefix(output, "---\n"))
	assert.Contains(t, output, "title: interview\n")
	assert.Contains(t, output, "duration: 15\n")
	assert.Contains(t, output, "language: en\n")
	assert.Contains(t, output, "model: medium\n")
	assert.Contains(t, output, "transcribed_at: 2026-05-04T10:30:00Z\n")
	assert.Contains(t, output, "word_count: 7\n")
	assert.Contains(t, output, "# interview\n")
	assert.Contains(t, output, "[00:00:00] Hello there\n")
	assert.Contains(t, output, "[00:00:05] this is a test\n")
	assert.Contains(t, output, "[00:00:12] done\n")
	assert.NotContains(t, output, "## Chunks")
}

func TestMarkdownExporter_WithChunks(t *testing.T) {
	exporter := &MarkdownExporter{}
	result := fixedResult()
	chunks, err := chunker.Split(result, chunker.Config{ChunkSize: 20, Overlap: 5})
	require.NoError(t, err)

	data, err := exporter.Export(result, chunks)

	require.NoError(t, err)
	output := string(data)
	assert.Contains(t, output, "## Chunks")
	assert.Contains(t, output, "### Chunk 0 [00:00:00 - 00:00:05]")
	assert.Contains(t, output, "### Chunk 1 [00:00:00 - 00:00:15]")
}

func TestJSONExporter_KeyContract(t *testing.T) {
	exporter := &JSONExporter{}

	data, err := exporter.Export(fixedResult(), nil)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &parsed))

	require.Contains(t, parsed, "metadata")
	require.Contains(t, parsed, "segments")
	require.Contains(t, parsed, "text")

	metadata := parsed["metadata"].(map[string]interface{})
	assert.Equal(t, "interview.mp4", metadata["filename"])
	assert.Equal(t, 15.0, metadata["duration"])
	assert.Equal(t, "en", metadata["language"])
	assert.Equal(t, "medium", metadata["model"])
	assert.Equal(t, "2026-05-04T10:30:00Z", metadata["transcribed_at"])
	assert.Equal(t, float64(7), metadata["word_count"])

	assert.Equal(t, "Hello there this is a test done", parsed["text"])
}

func TestJSONExporter_SegmentRoundTrip(t *testing.T) {
	exporter := &JSONExporter{}
	result := fixedResult()

	data, err := exporter.Export(result, nil)
	require.NoError(t, err)

	var parsed struct {
		Segments []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
		} `json:"segments"`
	}
	require.NoError(t, json.Unmarshal(data, &parsed))

	require.Len(t, parsed.Segments, len(result.Segments))
	for i, seg := range result.Segments {
		assert.InDelta(t, seg.Start, parsed.Segments[i].Start, 1e-3)
		assert.InDelta(t, seg.End, parsed.Segments[i].End, 1e-3)
		assert.Equal(t, seg.Text, parsed.Segments[i].Text)
	}
}

func TestJSONExporter_WithChunks(t *testing.T) {
	exporter := &JSONExporter{}
	result := fixedResult()
	chunks, err := chunker.Split(result, chunker.Config{ChunkSize: 20, Overlap: 5})
	require.NoError(t, err)

	data, err := exporter.Export(result, chunks)
	require.NoError(t, err)

	var parsed struct {
		Chunks []struct {
			Index     int     `json:"index"`
			Text      string  `json:"text"`
			StartChar int     `json:"start_char"`
			EndChar   int     `json:"end_char"`
			StartTime float64 `json:"start_time"`
			EndTime   float64 `json:"end_time"`
		} `json:"chunks"`
	}
	require.NoError(t, json.Unmarshal(data, &parsed))

	require.Len(t, parsed.Chunks, 2)
	assert.Equal(t, "Hello there", parsed.Chunks[0].Text)
	assert.Equal(t, 11, parsed.Chunks[0].EndChar)
}

func TestSRTExporter(t *testing.T) {
	exporter := &SRTExporter{}

	data, err := exporter.Export(fixedResult(), nil)
	require.NoError(t, err)

	expected := "1\n" +
		"00:00:00,000 --> 00:00:05,200\n" +
		"Hello there\n" +
		"\n" +
		"2\n" +
		"00:00:05,200 --> 00:00:12,100\n" +
		"this is a test\n" +
		"\n" +
		"3\n" +
		"00:00:12,100 --> 00:00:15,000\n" +
		"done\n" +
		"\n"
	assert.Equal(t, expected, string(data))
}

func TestSRTExporter_TimestampsParseBack(t *testing.T) {
	exporter := &SRTExporter{}
	result := fixedResult()

	data, err := exporter.Export(result, nil)
	require.NoError(t, err)

	blocks := strings.Split(strings.TrimRight(string(data), "\n"), "\n\n")
	require.Len(t, blocks, len(result.Segments))

	for i, block := range blocks {
		lines := strings.Split(block, "\n")
		require.Len(t, lines, 3)

		times := strings.Split(lines[1], " --> ")
		require.Len(t, times, 2)

		assert.InDelta(t, result.Segments[i].Start, parseSRTTimestamp(t, times[0]), 1e-3)
		assert.InDelta(t, result.Segments[i].End, parseSRTTimestamp(t, times[1]), 1e-3)
	}
}

// parseSRTTimestamp converts HH:MM:SS,mmm back to seconds.
func parseSRTTimestamp(t *testing.T, value string) float64 {
	t.Helper()
	parsed, err := time.Parse("15:04:05,000", value)
	require.NoError(t, err)
	return float64(parsed.Hour()*3600+parsed.Minute()*60+parsed.Second()) +
		float64(parsed.Nanosecond())/1e9
}

func TestTXTExporter(t *testing.T) {
	exporter := &TXTExporter{}

	data, err := exporter.Export(fixedResult(), nil)

	require.NoError(t, err)
	assert.Equal(t, "Hello there this is a test done\n", string(data))
}

func TestExporters_AgreeOnText(t *testing.T) {
	// Two exporters run on the same result must agree on text content.
	result := fixedResult()

	mdData, err := (&MarkdownExporter{}).Export(result, nil)
	require.NoError(t, err)
	jsonData, err := (&JSONExporter{}).Export(result, nil)
	require.NoError(t, err)

	var parsed struct {
		Segments []struct {
			Text string `json:"text"`
		} `json:"segments"`
	}
	require.NoError(t, json.Unmarshal(jsonData, &parsed))

	for _, seg := range parsed.Segments {
		assert.Contains(t, string(mdData), seg.Text)
	}
}
