package llm

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkedReader yields its segments one per Read call, regardless of the
// caller's buffer size, to simulate arbitrary network chunk boundaries.
type chunkedReader struct {
	segments []string
	pos      int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.segments) {
		return 0, io.EOF
	}
	n := copy(p, r.segments[r.pos])
	r.pos++
	return n, nil
}

func collectDeltas(t *testing.T, segments ...string) ([]string, error) {
	t.Helper()
	decoder := NewStreamDecoder(&chunkedReader{segments: segments})
	var deltas []string
	err := decoder.Decode(context.Background(), func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})
	return deltas, err
}

func event(content string) string {
	return `data: {"choices":[{"delta":{"content":"` + content + `"}}]}` + "\n"
}

func TestStreamDecoder_BasicStream(t *testing.T) {
	deltas, err := collectDeltas(t,
		event("Hello")+event(" world")+"data: [DONE]\n")

	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", " world"}, deltas)
}

func TestStreamDecoder_ChunkBoundariesAreEquivalent(t *testing.T) {
	full := event("alpha") + event("beta") + event("gamma") + "data: [DONE]\n"

	// Whole stream in one read
	wantDeltas, err := collectDeltas(t, full)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "beta", "gamma"}, wantDeltas)

	// Byte-at-a-time delivery must produce the identical sequence
	segments := make([]string, 0, len(full))
	for i := 0; i < len(full); i++ {
		segments = append(segments, full[i:i+1])
	}
	deltas, err := collectDeltas(t, segments...)
	require.NoError(t, err)
	assert.Equal(t, wantDeltas, deltas)
}

func TestStreamDecoder_MultiByteCharacterAcrossChunks(t *testing.T) {
	// Split the stream mid-rune: the euro sign is three bytes
	full := event("价格 €100") + "data: [DONE]\n"
	cut := strings.Index(full, "€") + 1

	deltas, err := collectDeltas(t, full[:cut], full[cut:])

	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, "价格 €100", deltas[0])
}

func TestStreamDecoder_EventSplitAcrossChunksEmitsOnce(t *testing.T) {
	line := event("split-me")
	cut := len(line) / 2

	deltas, err := collectDeltas(t,
		line[:cut],
		line[cut:]+event("after")+"data: [DONE]\n")

	require.NoError(t, err)
	assert.Equal(t, []string{"split-me", "after"}, deltas)
}

func TestStreamDecoder_TerminatorStopsConsumption(t *testing.T) {
	reader := &chunkedReader{segments: []string{
		event("before") + "data: [DONE]\n" + event("never"),
		event("also-never"),
	}}
	decoder := NewStreamDecoder(reader)

	var deltas []string
	err := decoder.Decode(context.Background(), func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"before"}, deltas)
	// The segment after the terminator was never read
	assert.Equal(t, 1, reader.pos)
}

func TestStreamDecoder_IgnoresCommentsBlanksAndForeignLines(t *testing.T) {
	deltas, err := collectDeltas(t,
		": keep-alive\n\nevent: ping\n"+event("real")+"data: [DONE]\n")

	require.NoError(t, err)
	assert.Equal(t, []string{"real"}, deltas)
}

func TestStreamDecoder_MissingTerminatorFlushesOnEOF(t *testing.T) {
	deltas, err := collectDeltas(t,
		event("one")+event("two"))

	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, deltas)
}

func TestStreamDecoder_FinalFlushSwallowsMalformedLines(t *testing.T) {
	deltas, err := collectDeltas(t,
		"data: {not-json\n"+event("good"))

	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, deltas)
}

func TestStreamDecoder_EmptyDeltasAreSkipped(t *testing.T) {
	deltas, err := collectDeltas(t,
		`data: {"choices":[{"delta":{}}]}`+"\n"+event("x")+"data: [DONE]\n")

	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, deltas)
}

func TestStreamDecoder_CallbackErrorAbortsDecode(t *testing.T) {
	decoder := NewStreamDecoder(&chunkedReader{segments: []string{
		event("one") + event("two") + "data: [DONE]\n",
	}})

	calls := 0
	err := decoder.Decode(context.Background(), func(delta string) error {
		calls++
		return io.ErrClosedPipe
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestStreamDecoder_NotReusable(t *testing.T) {
	decoder := NewStreamDecoder(&chunkedReader{segments: []string{"data: [DONE]\n"}})
	require.NoError(t, decoder.Decode(context.Background(), func(string) error { return nil }))

	err := decoder.Decode(context.Background(), func(string) error { return nil })
	require.Error(t, err)
}

func TestStreamDecoder_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	decoder := NewStreamDecoder(&chunkedReader{segments: []string{event("x")}})
	err := decoder.Decode(ctx, func(string) error { return nil })

	require.ErrorIs(t, err, context.Canceled)
}
