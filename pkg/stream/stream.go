// Package stream turns an incremental LLM text stream into UI Schema
// documents. The model's output arrives as arbitrary chunk boundaries;
// an Accumulator concatenates them and, after each chunk, tries to
// extract and parse the most recent complete schema document so hosts
// can render progressively instead of waiting for the stream to close.
package stream

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/siciyuan404/llm2ui/pkg/schema"
)

// ErrNoDocument is returned when the text contains no JSON candidate
// at all, neither a fenced block nor a balanced object.
var ErrNoDocument = errors.New("stream: no schema document in text")

// Accumulator collects streamed text for one generation session.
// It is not safe for concurrent use; a session is a single stream.
type Accumulator struct {
	sessionID  uuid.UUID
	buf        strings.Builder
	lastSchema *schema.UISchema
	logger     *slog.Logger
}

// NewAccumulator starts an empty session.
func NewAccumulator() *Accumulator {
	id := uuid.New()
	return &Accumulator{
		sessionID: id,
		logger:    slog.Default().With("component", "stream", "session", id.String()),
	}
}

// SessionID identifies this stream for logging and host correlation.
func (a *Accumulator) SessionID() uuid.UUID { return a.sessionID }

// Text returns everything accumulated so far.
func (a *Accumulator) Text() string { return a.buf.String() }

// Schema returns the most recently extracted valid document, or nil if
// none has parsed yet.
func (a *Accumulator) Schema() *schema.UISchema { return a.lastSchema }

// OnChunk appends one chunk and re-attempts extraction. It returns the
// freshest valid schema (which may be one extracted on an earlier
// chunk) and whether this chunk produced a new one. Extraction failures
// on a partial stream are expected and only logged at debug level;
// a failure on the final chunk is a warning.
func (a *Accumulator) OnChunk(chunk string, done bool) (*schema.UISchema, bool) {
	a.buf.WriteString(chunk)

	s, err := ExtractSchema(a.buf.String())
	if err != nil {
		if done {
			a.logger.Warn("stream ended without a valid schema", "error", err)
		} else {
			a.logger.Debug("no complete schema yet", "error", err)
		}
		return a.lastSchema, false
	}

	a.lastSchema = s
	return s, true
}

// ExtractSchema finds the last complete UI Schema document inside free
// text. Fenced ```json blocks are preferred; failing that, the last
// balanced top-level JSON object is tried. Either way the candidate
// must parse as a valid document.
func ExtractSchema(text string) (*schema.UISchema, error) {
	var lastErr error
	for _, candidate := range fencedBlocks(text) {
		s, err := schema.Parse([]byte(candidate))
		if err == nil {
			return s, nil
		}
		lastErr = err
	}

	if candidate := lastBalancedObject(text); candidate != "" {
		s, err := schema.Parse([]byte(candidate))
		if err == nil {
			return s, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoDocument
}

// fencedBlocks returns the contents of ```json fences, last first, so
// callers prefer the most recent document the model emitted.
func fencedBlocks(text string) []string {
	var blocks []string
	rest := text
	for {
		start := strings.Index(rest, "```json")
		if start < 0 {
			break
		}
		body := rest[start+len("```json"):]
		end := strings.Index(body, "```")
		if end < 0 {
			break
		}
		blocks = append(blocks, strings.TrimSpace(body[:end]))
		rest = body[end+3:]
	}
	for i, j := 0, len(blocks)-1; i < j; i, j = i+1, j-1 {
		blocks[i], blocks[j] = blocks[j], blocks[i]
	}
	return blocks
}

// lastBalancedObject scans for the last top-level {...} with balanced
// braces, honoring JSON string literals and escapes.
func lastBalancedObject(text string) string {
	var best string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					best = text[start : i+1]
				}
			}
		}
	}
	return best
}
