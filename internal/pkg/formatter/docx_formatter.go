package formatter

import (
	"bytes"

	"github.com/unidoc/unioffice/document"

	"github.com/offlinellm/client-go/internal/entity"
	"github.com/offlinellm/client-go/internal/pkg/think"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(transcript entity.Transcript) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(transcript.Title)

	for _, msg := range transcript.Messages {
		visible := think.Split(msg.Text).Visible
		if visible == "" {
			continue
		}

		par := doc.AddParagraph()
		label := par.AddRun()
		label.Properties().SetBold(true)
		label.AddText(originLabel(msg.Origin) + ": ")
		par.AddRun().AddText(visible)
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
