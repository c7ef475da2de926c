package formatter

import (
	"bytes"
	"fmt"

	"github.com/offlinellm/client-go/internal/entity"
	"github.com/offlinellm/client-go/internal/pkg/think"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(transcript entity.Transcript) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", transcript.Title)

	for _, msg := range transcript.Messages {
		visible := think.Split(msg.Text).Visible
		if visible == "" {
			continue
		}
		fmt.Fprintf(&buf, "\n**%s:** %s\n", originLabel(msg.Origin), visible)
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
