package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	ssePrefix     = "data:"
	sseTerminator = "[DONE]"

	streamReadChunkSize = 4096
)

type decodeState int

const (
	decodeIdle decodeState = iota
	decodeReading
	decodeDone
	decodeFailed
)

// chatStreamChunk is the per-event payload of an OpenAI-compatible
// streaming completion. Only content deltas are consumed; role and finish
// reason fields are ignored.
type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// StreamDecoder incrementally decodes a server-sent event completion stream
// into content deltas. Input is buffered as raw bytes and only split on
// newlines, so multi-byte characters that straddle a network chunk boundary
// are never corrupted. A decoder reads one stream and is not reusable.
type StreamDecoder struct {
	reader io.Reader
	buf    []byte
	state  decodeState
}

func NewStreamDecoder(r io.Reader) *StreamDecoder {
	return &StreamDecoder{
		reader: r,
		state:  decodeIdle,
	}
}

// Decode consumes the stream until the terminator event, end of input, or an
// error, invoking emit once per content delta in arrival order. When the
// terminator is seen no further input is consumed. On end of input without a
// terminator, remaining complete lines are flushed best-effort with parse
// errors swallowed.
func (d *StreamDecoder) Decode(ctx context.Context, emit func(delta string) error) error {
	if d.state != decodeIdle {
		return &DecodeError{Reason: "decoder already consumed"}
	}
	d.state = decodeReading

	chunk := make([]byte, streamReadChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			d.state = decodeFailed
			return wrapTransportErr(err)
		}

		n, readErr := d.reader.Read(chunk)
		if n > 0 {
			d.buf = append(d.buf, chunk[:n]...)
			done, err := d.drain(emit, false)
			if err != nil {
				d.state = decodeFailed
				return err
			}
			if done {
				d.state = decodeDone
				return nil
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				if _, err := d.drain(emit, true); err != nil {
					d.state = decodeFailed
					return err
				}
				d.state = decodeDone
				return nil
			}
			d.state = decodeFailed
			return wrapTransportErr(fmt.Errorf("stream read failed: %w", readErr))
		}
	}
}

// drain processes every complete line currently buffered. A data line whose
// JSON payload fails to parse is returned to the front of the buffer with
// its newline restored so the next network chunk can complete it; finalFlush
// disables the requeue and swallows parse errors because no more input is
// coming. Returns true once the terminator event has been seen.
func (d *StreamDecoder) drain(emit func(delta string) error, finalFlush bool) (bool, error) {
	for {
		idx := bytes.IndexByte(d.buf, '\n')
		if idx < 0 {
			return false, nil
		}

		line := string(d.buf[:idx])
		d.buf = d.buf[idx+1:]
		line = strings.TrimSuffix(line, "\r")

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ":") {
			continue
		}
		if !strings.HasPrefix(trimmed, ssePrefix) {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(trimmed, ssePrefix))
		if payload == sseTerminator {
			// Anything still buffered after the terminator is discarded
			d.buf = nil
			return true, nil
		}

		var event chatStreamChunk
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			if finalFlush {
				continue
			}
			requeued := make([]byte, 0, len(line)+1+len(d.buf))
			requeued = append(requeued, line...)
			requeued = append(requeued, '\n')
			requeued = append(requeued, d.buf...)
			d.buf = requeued
			return false, nil
		}

		for _, choice := range event.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := emit(choice.Delta.Content); err != nil {
				return false, fmt.Errorf("delta callback failed: %w", err)
			}
		}
	}
}
