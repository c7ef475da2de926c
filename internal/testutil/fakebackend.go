// Package testutil provides an in-process OfflineLLM backend double
// for client tests, routing the same REST surface the real API serves.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/offlinellm/client-go/internal/entity"
)

const adminPassword = "hunter2"

// AdminPassword is the Basic auth password the fake backend accepts
// for the fixed "admin" user.
func AdminPassword() string { return adminPassword }

// FakeBackend serves canned responses and records what the client
// sent, so tests can assert on wire-level behavior.
type FakeBackend struct {
	server *httptest.Server

	mu            sync.Mutex
	chatRequests  []map[string]any
	qaRequests    []map[string]any
	uploads       []UploadRecord
	kbFiles       []string
	endedSessions []string
	failWith      int
	failBody      string
}

// UploadRecord captures one multipart upload the fake backend received.
type UploadRecord struct {
	Endpoint  string
	SessionID string
	Filename  string
	Size      int
}

func NewFakeBackend() *FakeBackend {
	fb := &FakeBackend{}

	r := chi.NewRouter()
	r.Get("/ping", fb.handlePing)
	r.Get("/models", fb.handleModels)
	r.Post("/chat", fb.handleChat)
	r.Post("/doc_qa", fb.handleQA("doc_qa"))
	r.Post("/session_qa", fb.handleQA("session_qa"))
	r.Post("/upload_pdf", fb.handleUpload("upload_pdf"))
	r.Delete("/session/{sessionID}", fb.handleEndSession)
	r.Post("/proofread", fb.handleRewrite)
	r.Post("/redraft", fb.handleRewrite)
	r.Post("/speech_to_text", fb.handleSpeech)

	r.Group(func(r chi.Router) {
		r.Use(fb.requireBasicAuth)
		r.Post("/admin/upload_pdf", fb.handleUpload("admin/upload_pdf"))
		r.Get("/admin/files", fb.handleAdminFiles)
		r.Delete("/admin/file/{filename}", fb.handleAdminDelete)
	})

	fb.server = httptest.NewServer(r)
	return fb
}

func (fb *FakeBackend) URL() string { return fb.server.URL }
func (fb *FakeBackend) Close()      { fb.server.Close() }

// FailNextWith makes every subsequent request fail with the given
// status and body until cleared with FailNextWith(0, "").
func (fb *FakeBackend) FailNextWith(status int, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failWith = status
	fb.failBody = body
}

func (fb *FakeBackend) ChatRequests() []map[string]any {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]map[string]any(nil), fb.chatRequests...)
}

func (fb *FakeBackend) QARequests() []map[string]any {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]map[string]any(nil), fb.qaRequests...)
}

func (fb *FakeBackend) Uploads() []UploadRecord {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]UploadRecord(nil), fb.uploads...)
}

func (fb *FakeBackend) EndedSessions() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.endedSessions...)
}

func (fb *FakeBackend) failing(w http.ResponseWriter) bool {
	fb.mu.Lock()
	status, body := fb.failWith, fb.failBody
	fb.mu.Unlock()

	if status == 0 {
		return false
	}
	w.WriteHeader(status)
	io.WriteString(w, body)
	return true
}

func (fb *FakeBackend) requireBasicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != adminPassword {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, "invalid credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (fb *FakeBackend) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, entity.PingResponse{Status: "ok"})
}

func (fb *FakeBackend) handleModels(w http.ResponseWriter, r *http.Request) {
	if fb.failing(w) {
		return
	}
	writeJSON(w, []entity.ModelInfo{
		{Name: "llama3:8b-instruct-q4_K_M", Description: "default"},
		{Name: "deepseek-r1:8b"},
	})
}

func (fb *FakeBackend) handleChat(w http.ResponseWriter, r *http.Request) {
	if fb.failing(w) {
		return
	}

	payload := decodeBody(r)
	fb.mu.Lock()
	fb.chatRequests = append(fb.chatRequests, payload)
	fb.mu.Unlock()

	sessionID, _ := payload["session_id"].(string)
	userMsg, _ := payload["user_msg"].(string)
	writeJSON(w, entity.ChatResponse{
		SessionID: sessionID,
		Answer:    "echo: " + userMsg,
	})
}

func (fb *FakeBackend) handleQA(endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if fb.failing(w) {
			return
		}

		payload := decodeBody(r)
		payload["_endpoint"] = endpoint
		fb.mu.Lock()
		fb.qaRequests = append(fb.qaRequests, payload)
		fb.mu.Unlock()

		writeJSON(w, map[string]any{
			"answer": "answer from " + endpoint,
			// one string source and one object source, like mixed
			// backend builds in the wild
			"sources": []any{
				"plain snippet",
				map[string]any{"page_number": 4, "snippet": "page four"},
			},
		})
	}
}

func (fb *FakeBackend) handleUpload(endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if fb.failing(w) {
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, "missing file part")
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)

		record := UploadRecord{
			Endpoint:  endpoint,
			SessionID: r.URL.Query().Get("session_id"),
			Filename:  header.Filename,
			Size:      len(content),
		}
		fb.mu.Lock()
		fb.uploads = append(fb.uploads, record)
		if endpoint == "admin/upload_pdf" {
			fb.kbFiles = append(fb.kbFiles, header.Filename)
		}
		fb.mu.Unlock()

		if endpoint == "admin/upload_pdf" {
			writeJSON(w, entity.AdminUploadResponse{Status: "ok", Filename: header.Filename})
			return
		}
		writeJSON(w, entity.UploadPDFResponse{
			Status:        "ok",
			SessionID:     record.SessionID,
			ChunksIndexed: 12,
		})
	}
}

func (fb *FakeBackend) handleEndSession(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	fb.endedSessions = append(fb.endedSessions, chi.URLParam(r, "sessionID"))
	fb.mu.Unlock()
	writeJSON(w, map[string]string{"status": "purged"})
}

func (fb *FakeBackend) handleAdminFiles(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	ingested := append([]string(nil), fb.kbFiles...)
	fb.mu.Unlock()
	writeJSON(w, entity.AdminFilesResponse{Ingested: ingested, Failed: []string{}})
}

func (fb *FakeBackend) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	fb.mu.Lock()
	kept := fb.kbFiles[:0]
	for _, f := range fb.kbFiles {
		if f != filename {
			kept = append(kept, f)
		}
	}
	fb.kbFiles = kept
	fb.mu.Unlock()
	writeJSON(w, entity.AdminDeleteResponse{Status: "deleted", Filename: filename})
}

func (fb *FakeBackend) handleRewrite(w http.ResponseWriter, r *http.Request) {
	if fb.failing(w) {
		return
	}
	payload := decodeBody(r)
	text, _ := payload["text"].(string)
	writeJSON(w, entity.RewriteResponse{Corrected: "corrected: " + text})
}

func (fb *FakeBackend) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if fb.failing(w) {
		return
	}
	if _, _, err := r.FormFile("file"); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "missing file part")
		return
	}
	writeJSON(w, entity.TranscriptionResponse{Text: "transcribed speech"})
}

func decodeBody(r *http.Request) map[string]any {
	payload := map[string]any{}
	_ = json.NewDecoder(r.Body).Decode(&payload)
	return payload
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
