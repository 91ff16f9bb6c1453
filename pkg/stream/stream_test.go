package stream

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fencedDoc = "Here is the interface:\n```json\n" +
	`{"version": "1.0", "root": {"id": "r", "type": "Text", "text": "hi"}}` +
	"\n```\nDone."

func TestExtractSchema(t *testing.T) {
	t.Run("Fenced Block", func(t *testing.T) {
		s, err := ExtractSchema(fencedDoc)
		require.NoError(t, err)
		assert.Equal(t, "hi", s.Root.Text)
	})

	t.Run("Last Fenced Block Wins", func(t *testing.T) {
		text := "```json\n" +
			`{"version": "1.0", "root": {"id": "a", "type": "Text"}}` +
			"\n```\nrevised:\n```json\n" +
			`{"version": "1.0", "root": {"id": "b", "type": "Text"}}` +
			"\n```"
		s, err := ExtractSchema(text)
		require.NoError(t, err)
		assert.Equal(t, "b", s.Root.ID)
	})

	t.Run("Bare Object", func(t *testing.T) {
		text := `The schema is {"version": "1.0", "root": {"id": "r", "type": "Card"}} as requested.`
		s, err := ExtractSchema(text)
		require.NoError(t, err)
		assert.Equal(t, "Card", s.Root.Type)
	})

	t.Run("Braces Inside Strings Ignored", func(t *testing.T) {
		text := `{"version": "1.0", "root": {"id": "r", "type": "Text", "text": "use {curly} braces"}}`
		s, err := ExtractSchema(text)
		require.NoError(t, err)
		assert.Equal(t, "use {curly} braces", s.Root.Text)
	})

	t.Run("Unterminated Object", func(t *testing.T) {
		_, err := ExtractSchema(`{"version": "1.0", "root": {"id": "r",`)
		assert.Error(t, err)
	})

	t.Run("No JSON At All", func(t *testing.T) {
		_, err := ExtractSchema("just words, no document")
		assert.ErrorIs(t, err, ErrNoDocument)
	})

	t.Run("Invalid Document In Fence", func(t *testing.T) {
		_, err := ExtractSchema("```json\n{\"version\": \"1.0\"}\n```")
		assert.Error(t, err)
	})

	t.Run("Broken Fence Falls Back To Bare Object", func(t *testing.T) {
		text := "```json\n" +
			`{"version": "1.0", "root": {"id": "r", "type": "Text"}}`
		s, err := ExtractSchema(text)
		require.NoError(t, err)
		assert.Equal(t, "r", s.Root.ID)
	})
}

func TestAccumulator(t *testing.T) {
	t.Run("Incremental Chunks", func(t *testing.T) {
		a := NewAccumulator()

		s, fresh := a.OnChunk(`{"version": "1.0", "root": {"id"`, false)
		assert.Nil(t, s)
		assert.False(t, fresh)

		s, fresh = a.OnChunk(`: "r", "type": "Text"}}`, true)
		require.NotNil(t, s)
		assert.True(t, fresh)
		assert.Equal(t, "r", s.Root.ID)
		assert.Same(t, s, a.Schema())
	})

	t.Run("Keeps Last Valid Schema", func(t *testing.T) {
		a := NewAccumulator()
		doc := `{"version": "1.0", "root": {"id": "r", "type": "Text"}}`
		s1, fresh := a.OnChunk(doc, false)
		require.True(t, fresh)

		// Trailing prose after the document is not a new schema.
		s2, fresh := a.OnChunk("\nThat is the layout.", true)
		assert.True(t, fresh) // re-extraction still finds the same document
		assert.Equal(t, s1.Root.ID, s2.Root.ID)
	})

	t.Run("Progressive Refinement", func(t *testing.T) {
		a := NewAccumulator()
		first := `{"version": "1.0", "root": {"id": "v1", "type": "Text"}}`
		second := `{"version": "1.0", "root": {"id": "v2", "type": "Text"}}`

		s, _ := a.OnChunk("```json\n"+first+"\n```\n", false)
		require.NotNil(t, s)
		assert.Equal(t, "v1", s.Root.ID)

		s, fresh := a.OnChunk("```json\n"+second+"\n```\n", true)
		require.True(t, fresh)
		assert.Equal(t, "v2", s.Root.ID)
	})

	t.Run("Distinct Sessions", func(t *testing.T) {
		a, b := NewAccumulator(), NewAccumulator()
		assert.NotEqual(t, a.SessionID(), b.SessionID())
	})

	t.Run("Text Accumulates", func(t *testing.T) {
		a := NewAccumulator()
		for i := 0; i < 3; i++ {
			a.OnChunk(fmt.Sprintf("part%d ", i), false)
		}
		assert.Equal(t, "part0 part1 part2 ", a.Text())
	})
}
