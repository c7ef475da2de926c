package entity

// MessageOrigin identifies which side of the conversation produced a
// message.
type MessageOrigin string

const (
	OriginUser      MessageOrigin = "user"
	OriginAssistant MessageOrigin = "assistant"
)

// Message is one entry in a chat log. Logs are append-only; insertion
// order is display order.
type Message struct {
	Origin MessageOrigin
	Text   string
}

// QaTurn is one question/answer exchange against a knowledge base. A
// turn is created pending and transitions exactly once to answered (or
// is removed on error). Only SourcesVisible may change afterwards.
type QaTurn struct {
	Question       string
	Answer         string
	Sources        []SourceChunk
	Pending        bool
	SourcesVisible bool
}

// Transcript is an exportable snapshot of a chat session.
type Transcript struct {
	Title    string
	Messages []Message
}

// TranscriptFormat selects the export encoding.
type TranscriptFormat string

const (
	FormatMarkdown TranscriptFormat = "markdown"
	FormatPDF      TranscriptFormat = "pdf"
	FormatDOCX     TranscriptFormat = "docx"
)
