package entity

import "encoding/json"

// Wire types for the OfflineLLM backend API.

type ModelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type ChatRequest struct {
	SessionID string `json:"session_id"`
	UserMsg   string `json:"user_msg"`
	// Model is omitted from the payload when unset; the backend then
	// falls back to its default model.
	Model string `json:"model,omitempty"`
}

type ChatResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type QARequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
	Model     string `json:"model,omitempty"`
}

type SessionQARequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
	// Persistent tells the backend to consult the durable knowledge
	// base in addition to the session's uploaded document.
	Persistent bool   `json:"persistent"`
	Model      string `json:"model,omitempty"`
}

type QAResponse struct {
	Answer  string        `json:"answer"`
	Sources []SourceChunk `json:"sources"`
}

// SourceChunk is opaque citation data. Older backend builds return
// sources as plain strings, newer ones as objects, so decoding accepts
// both.
type SourceChunk struct {
	PageNumber int    `json:"page_number,omitempty"`
	Snippet    string `json:"snippet"`
}

func (s *SourceChunk) UnmarshalJSON(data []byte) error {
	var snippet string
	if err := json.Unmarshal(data, &snippet); err == nil {
		s.PageNumber = 0
		s.Snippet = snippet
		return nil
	}

	type sourceChunk SourceChunk
	var chunk sourceChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return err
	}
	*s = SourceChunk(chunk)
	return nil
}

type UploadPDFResponse struct {
	Status        string `json:"status"`
	SessionID     string `json:"session_id"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

type AdminUploadResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
}

type AdminFilesResponse struct {
	Ingested []string `json:"ingested"`
	Failed   []string `json:"failed"`
}

type AdminDeleteResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
}

type RewriteRequest struct {
	Text string `json:"text"`
}

type RewriteResponse struct {
	Corrected string `json:"corrected"`
}

type TranscriptionResponse struct {
	Text string `json:"text"`
}

type PingResponse struct {
	Status string `json:"status"`
}
