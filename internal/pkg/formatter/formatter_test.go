package formatter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offlinellm/client-go/internal/entity"
	"github.com/offlinellm/client-go/internal/pkg/formatter"
)

func sampleTranscript() entity.Transcript {
	return entity.Transcript{
		Title: "Offline chat",
		Messages: []entity.Message{
			{Origin: entity.OriginUser, Text: "What is RAG?"},
			{Origin: entity.OriginAssistant, Text: "<think>recalling</think>Retrieval-augmented generation."},
		},
	}
}

func TestFactoryCreatesByFormat(t *testing.T) {
	factory := formatter.NewFactory()

	cases := []struct {
		format    entity.TranscriptFormat
		extension string
	}{
		{entity.FormatMarkdown, ".md"},
		{entity.FormatPDF, ".pdf"},
		{entity.FormatDOCX, ".docx"},
	}

	for _, tc := range cases {
		f, err := factory.Create(tc.format)
		require.NoError(t, err)
		assert.Equal(t, tc.extension, f.FileExtension())
		assert.NotEmpty(t, f.ContentType())
	}
}

func TestFactoryRejectsUnknownFormat(t *testing.T) {
	factory := formatter.NewFactory()

	_, err := factory.Create(entity.TranscriptFormat("html"))
	assert.ErrorIs(t, err, entity.ErrUnsupportedFormat)
}

func TestMarkdownStripsReasoning(t *testing.T) {
	out, err := formatter.NewMarkdownFormatter().Format(sampleTranscript())
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "# Offline chat")
	assert.Contains(t, text, "**User:** What is RAG?")
	assert.Contains(t, text, "**Assistant:** Retrieval-augmented generation.")
	assert.NotContains(t, text, "recalling")
	assert.NotContains(t, text, "<think>")
}

func TestPDFProducesDocument(t *testing.T) {
	out, err := formatter.NewPDFFormatter().Format(sampleTranscript())
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestDOCXProducesDocument(t *testing.T) {
	out, err := formatter.NewDOCXFormatter().Format(sampleTranscript())
	require.NoError(t, err)
	// docx files are zip archives
	require.True(t, len(out) > 4)
	assert.Equal(t, "PK", string(out[:2]))
}
