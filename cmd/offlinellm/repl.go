package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/offlinellm/client-go/internal/builder"
	"github.com/offlinellm/client-go/internal/entity"
	"github.com/offlinellm/client-go/internal/pkg/formatter"
	"github.com/offlinellm/client-go/internal/pkg/think"
	"github.com/offlinellm/client-go/internal/usecase/rewrite"
)

// repl is the interactive terminal client. Plain input is a chat turn;
// slash commands cover document QA, knowledge base administration,
// rewriting and export.
type repl struct {
	deps    *builder.Deps
	formats *formatter.Factory
	scanner *bufio.Scanner

	lastReasoning string
}

func newRepl(deps *builder.Deps) *repl {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &repl{
		deps:    deps,
		formats: formatter.NewFactory(),
		scanner: scanner,
	}
}

func (r *repl) run() error {
	ctx := context.Background()

	r.checkBackend(ctx)
	fmt.Println("OfflineLLM client. Type /help for commands, /quit to exit.")

	for {
		fmt.Print("> ")
		if !r.scanner.Scan() {
			break
		}
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := r.dispatch(ctx, line); quit {
				break
			}
			continue
		}

		r.chat(ctx, line)
	}

	return r.endSession()
}

func (r *repl) checkBackend(ctx context.Context) {
	if err := r.deps.Connector.Ping(ctx); err != nil {
		fmt.Println("Warning: backend unreachable:", err)
		return
	}

	if _, err := r.deps.Chat.LoadModels(ctx); err != nil {
		fmt.Println("Warning: model list unavailable, the backend default will answer.")
	}
}

// dispatch runs one slash command and reports whether to exit.
func (r *repl) dispatch(ctx context.Context, line string) bool {
	cmd, args, _ := strings.Cut(line, " ")
	args = strings.TrimSpace(args)

	switch cmd {
	case "/quit", "/exit":
		return true

	case "/help":
		fmt.Println(replHelp)

	case "/new":
		if err := r.endSession(); err != nil {
			fmt.Println("Warning: could not purge old session:", err)
		}
		r.deps.NewSession()
		r.lastReasoning = ""
		fmt.Println("Started a fresh session.")

	case "/models":
		r.listModels(ctx)

	case "/model":
		if args == "" {
			fmt.Println("Current model:", displayModel(r.deps.Chat.Model()))
			return false
		}
		r.deps.Chat.SetModel(args)
		fmt.Println("Model set to", args+".")

	case "/reasoning":
		if r.lastReasoning == "" {
			fmt.Println("The last answer had no reasoning trace.")
		} else {
			fmt.Println(r.lastReasoning)
		}

	case "/ask":
		r.ask(ctx, args)

	case "/upload":
		r.upload(ctx, args)

	case "/doconly":
		on := !r.deps.DocQA.DocumentOnly()
		r.deps.DocQA.SetDocumentOnly(on)
		if on && !r.deps.DocQA.HasUploadedDocument() {
			fmt.Println("Document-only answers enabled; takes effect once a PDF is uploaded.")
		} else if on {
			fmt.Println("Document-only answers enabled.")
		} else {
			fmt.Println("Document-only answers disabled.")
		}

	case "/sources":
		r.sources(args)

	case "/export":
		r.export(args)

	case "/proofread":
		r.rewrite(ctx, rewrite.TransformProofread, args)

	case "/redraft":
		r.rewrite(ctx, rewrite.TransformRedraft, args)

	case "/admin-upload":
		r.adminUpload(ctx, args)

	case "/admin-files":
		r.adminFiles(ctx)

	case "/admin-delete":
		r.adminDelete(ctx, args)

	default:
		fmt.Println("Unknown command. See /help.")
	}

	return false
}

func (r *repl) chat(ctx context.Context, text string) {
	answer, err := r.deps.Chat.SendMessage(ctx, text)
	if err != nil {
		r.printError(err)
		return
	}

	parsed := think.Split(answer)
	r.lastReasoning = parsed.Reasoning
	fmt.Println(parsed.Visible)
	if parsed.Reasoning != "" {
		fmt.Println("(reasoning available, /reasoning to show)")
	}
}

func (r *repl) ask(ctx context.Context, question string) {
	if question == "" {
		fmt.Println("Usage: /ask <question>.")
		return
	}

	turn, err := r.deps.DocQA.Ask(ctx, question)
	if err != nil {
		r.printError(err)
		return
	}

	parsed := think.Split(turn.Answer)
	r.lastReasoning = parsed.Reasoning
	fmt.Println(parsed.Visible)
	if len(turn.Sources) > 0 {
		index := len(r.deps.DocQA.Turns()) - 1
		fmt.Printf("(%d source passages, /sources %d to show)\n", len(turn.Sources), index)
	}
}

func (r *repl) sources(args string) {
	turns := r.deps.DocQA.Turns()

	index := len(turns) - 1
	if args != "" {
		i, err := strconv.Atoi(args)
		if err != nil {
			fmt.Println("Usage: /sources [turn index].")
			return
		}
		index = i
	}
	if index < 0 || index >= len(turns) {
		fmt.Println("No such QA turn.")
		return
	}

	if !r.deps.DocQA.ToggleSources(index) {
		fmt.Println("That turn is still pending.")
		return
	}

	turn := r.deps.DocQA.Turns()[index]
	if !turn.SourcesVisible {
		fmt.Println("Sources hidden.")
		return
	}
	for _, src := range turn.Sources {
		if src.PageNumber > 0 {
			fmt.Printf("  p.%d: %s\n", src.PageNumber, src.Snippet)
		} else {
			fmt.Printf("  %s\n", src.Snippet)
		}
	}
}

func (r *repl) upload(ctx context.Context, path string) {
	if path == "" {
		fmt.Println("Usage: /upload <file.pdf>.")
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("Could not read file:", err)
		return
	}

	resp, err := r.deps.DocQA.UploadFile(ctx, filepath.Base(path), content)
	if err != nil {
		r.printError(err)
		return
	}
	fmt.Printf("Indexed %s (%d chunks). Ask about it with /ask.\n", filepath.Base(path), resp.ChunksIndexed)
}

func (r *repl) listModels(ctx context.Context) {
	models, err := r.deps.Chat.LoadModels(ctx)
	if err != nil {
		r.printError(err)
		return
	}

	current := r.deps.Chat.Model()
	for _, m := range models {
		marker := "  "
		if m.Name == current {
			marker = "* "
		}
		if m.Description != "" {
			fmt.Printf("%s%s (%s)\n", marker, m.Name, m.Description)
		} else {
			fmt.Printf("%s%s\n", marker, m.Name)
		}
	}
}

func (r *repl) export(args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		fmt.Println("Usage: /export markdown|pdf|docx [path].")
		return
	}

	fm, err := r.formats.Create(entity.TranscriptFormat(fields[0]))
	if err != nil {
		fmt.Println("Unknown format. Use markdown, pdf or docx.")
		return
	}

	transcript := r.deps.Chat.Transcript("Chat transcript " + time.Now().Format("2006-01-02"))
	if len(transcript.Messages) == 0 {
		fmt.Println("Nothing to export yet.")
		return
	}

	content, err := fm.Format(transcript)
	if err != nil {
		fmt.Println("Export failed:", err)
		return
	}

	path := "transcript" + fm.FileExtension()
	if len(fields) > 1 {
		path = fields[1]
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		fmt.Println("Could not write file:", err)
		return
	}
	fmt.Println("Transcript written to", path)
}

func (r *repl) rewrite(ctx context.Context, transform rewrite.Transform, text string) {
	if text == "" {
		fmt.Println("Pass the text after the command.")
		return
	}

	result, err := r.deps.Rewrite.Run(ctx, transform, text)
	if err != nil {
		r.printError(err)
		return
	}
	fmt.Println(result)
}

func (r *repl) adminUpload(ctx context.Context, path string) {
	if path == "" {
		fmt.Println("Usage: /admin-upload <file.pdf>.")
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("Could not read file:", err)
		return
	}

	password, ok := r.promptPassword()
	if !ok {
		return
	}

	_, err = r.deps.Admin.Upload(ctx, filepath.Base(path), content, password, func(percent int) {
		fmt.Printf("\ruploading... %3d%%", percent)
	})
	fmt.Println()
	if err != nil {
		r.printError(err)
		return
	}
	fmt.Println("Ingested into the knowledge base.")
}

func (r *repl) adminFiles(ctx context.Context) {
	password, ok := r.promptPassword()
	if !ok {
		return
	}

	if err := r.deps.Admin.Refresh(ctx, password); err != nil {
		r.printError(err)
		return
	}

	ingested, failed := r.deps.Admin.Files()
	if len(ingested) == 0 && len(failed) == 0 {
		fmt.Println("The knowledge base is empty.")
		return
	}
	for _, f := range ingested {
		fmt.Println("  ok:    ", f)
	}
	for _, f := range failed {
		fmt.Println("  failed:", f)
	}
}

func (r *repl) adminDelete(ctx context.Context, filename string) {
	if filename == "" {
		fmt.Println("Usage: /admin-delete <filename>.")
		return
	}

	password, ok := r.promptPassword()
	if !ok {
		return
	}

	if err := r.deps.Admin.DeleteFile(ctx, filename, password); err != nil {
		r.printError(err)
		return
	}
	fmt.Println("Deleted", filename, "from the knowledge base.")
}

// promptPassword reads the admin password for one call. It is passed
// through and never kept.
func (r *repl) promptPassword() (string, bool) {
	fmt.Print("admin password: ")
	if !r.scanner.Scan() {
		return "", false
	}
	password := strings.TrimSpace(r.scanner.Text())
	if password == "" {
		fmt.Println("Password must not be empty.")
		return "", false
	}
	return password, true
}

func (r *repl) endSession() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.deps.Chat.End(ctx)
}

func (r *repl) printError(err error) {
	switch {
	case errors.Is(err, entity.ErrExchangeInFlight):
		fmt.Println("Still waiting for the previous answer.")
	case errors.Is(err, entity.ErrEmptyMessage), errors.Is(err, entity.ErrEmptyQuestion), errors.Is(err, entity.ErrEmptyText):
		fmt.Println("The input is empty.")
	default:
		fmt.Println("Request failed:", err)
	}
}

func displayModel(model string) string {
	if model == "" {
		return "(backend default)"
	}
	return model
}

const replHelp = `Plain text is sent as a chat message. Commands:
  /models                     list available models
  /model [name]               show or set the model
  /ask <question>             answer from documents
  /upload <file.pdf>          index a PDF into this session
  /doconly                    toggle answering only from the uploaded PDF
  /sources [n]                toggle source passages for a QA turn
  /reasoning                  show the last answer's reasoning trace
  /export markdown|pdf|docx   write the chat transcript to a file
  /proofread <text>           fix grammar and spelling
  /redraft <text>             rewrite in a cleaner style
  /admin-upload <file.pdf>    ingest a PDF into the knowledge base
  /admin-files                list knowledge base files
  /admin-delete <filename>    remove a knowledge base file
  /new                        start a fresh session
  /quit                       exit`
