// Package formatter renders chat transcripts for export. Reasoning
// traces are stripped before rendering; only the visible answer text
// reaches the document.
package formatter

import (
	"fmt"

	"github.com/offlinellm/client-go/internal/entity"
)

type Formatter interface {
	Format(transcript entity.Transcript) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.TranscriptFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, format)
	}
}

func originLabel(origin entity.MessageOrigin) string {
	if origin == entity.OriginAssistant {
		return "Assistant"
	}
	return "User"
}
