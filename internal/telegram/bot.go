// Package telegram relays Telegram chats to the OfflineLLM backend:
// text messages go through the chat session, PDF attachments feed the
// document QA panel, voice notes are transcribed first.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/offlinellm/client-go/internal/config"
	"github.com/offlinellm/client-go/internal/entity"
	"github.com/offlinellm/client-go/internal/pkg/formatter"
	pkglogger "github.com/offlinellm/client-go/internal/pkg/logger"
	"github.com/offlinellm/client-go/internal/pkg/think"
	"github.com/offlinellm/client-go/internal/usecase/rewrite"
)

// maxAttachmentSize caps downloads from Telegram; the Bot API itself
// refuses files over 20MB, this just fails earlier with a clear reply.
const maxAttachmentSize = 20 << 20

// Transcriber converts a recorded voice note to text.
type Transcriber interface {
	SpeechToText(ctx context.Context, filename string, audio []byte) (string, error)
}

// Bot is the Telegram front end. One Session per chat id, expired by
// TTL; commands cover model selection, document QA and export.
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.TelegramConfig
	sessions    *Sessions
	rewriteUC   *rewrite.RewriteUsecase
	transcriber Transcriber
	formats     *formatter.Factory
	downloads   *http.Client
	logger      *zap.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func New(
	cfg *config.TelegramConfig,
	sessions *Sessions,
	rewriteUC *rewrite.RewriteUsecase,
	transcriber Transcriber,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	return &Bot{
		api:         api,
		cfg:         cfg,
		sessions:    sessions,
		rewriteUC:   rewriteUC,
		transcriber: transcriber,
		formats:     formatter.NewFactory(),
		downloads:   &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
		stopChan:    make(chan struct{}),
	}, nil
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx, updates)

	return nil
}

// Stop drains in-flight handlers before returning.
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")
	close(b.stopChan)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(30 * time.Second):
		return errors.New("shutdown timeout exceeded")
	}
}

func (b *Bot) processUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.stopChan:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}

			msg := update.Message
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				defer func() {
					if r := recover(); r != nil {
						ctxzap.Error(ctx, "handler panic",
							zap.Int64("chat_id", msg.Chat.ID),
							zap.Any("panic", r),
						)
						b.reply(msg.Chat.ID, "Something went wrong, please try again.")
					}
				}()
				b.handleMessage(ctx, msg)
			}()
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	ctx = pkglogger.AddFields(ctx, zap.Int64("chat_id", msg.Chat.ID))

	switch {
	case msg.IsCommand():
		b.handleCommand(pkglogger.WithAction(ctx, "command"), msg)
	case msg.Document != nil:
		b.handleDocument(pkglogger.WithAction(ctx, "upload"), msg)
	case msg.Voice != nil:
		b.handleVoice(pkglogger.WithAction(ctx, "voice"), msg)
	case strings.TrimSpace(msg.Text) != "":
		b.handleChat(pkglogger.WithAction(ctx, "chat"), msg.Chat.ID, msg.Text)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		b.reply(chatID, helpText)

	case "new":
		b.sessions.Reset(chatID)
		b.reply(chatID, "Session reset. The next message starts a fresh conversation.")

	case "models":
		b.handleModels(ctx, chatID)

	case "model":
		if args == "" {
			b.reply(chatID, "Usage: /model <name>. See /models for the list.")
			return
		}
		b.sessions.Get(chatID).Chat.SetModel(args)
		b.reply(chatID, "Model set to "+args+".")

	case "ask":
		if args == "" {
			b.reply(chatID, "Usage: /ask <question>.")
			return
		}
		b.handleAsk(ctx, chatID, args)

	case "doconly":
		sess := b.sessions.Get(chatID)
		on := !sess.DocQA.DocumentOnly()
		sess.DocQA.SetDocumentOnly(on)
		if on {
			b.reply(chatID, "Document-only answers enabled. Takes effect once a PDF is uploaded.")
		} else {
			b.reply(chatID, "Document-only answers disabled.")
		}

	case "export":
		b.handleExport(ctx, chatID, args)

	case "proofread":
		b.handleRewrite(ctx, chatID, rewrite.TransformProofread, args)

	case "redraft":
		b.handleRewrite(ctx, chatID, rewrite.TransformRedraft, args)

	default:
		b.reply(chatID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleChat(ctx context.Context, chatID int64, text string) {
	b.sendTyping(chatID)

	answer, err := b.sessions.Get(chatID).Chat.SendMessage(ctx, text)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.reply(chatID, think.Split(answer).Visible)
}

func (b *Bot) handleAsk(ctx context.Context, chatID int64, question string) {
	b.sendTyping(chatID)

	turn, err := b.sessions.Get(chatID).DocQA.Ask(ctx, question)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	text := think.Split(turn.Answer).Visible
	if n := len(turn.Sources); n > 0 {
		text += fmt.Sprintf("\n\n(%d source passages)", n)
	}
	b.reply(chatID, text)
}

func (b *Bot) handleModels(ctx context.Context, chatID int64) {
	models, err := b.sessions.Get(chatID).Chat.LoadModels(ctx)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	var sb strings.Builder
	sb.WriteString("Available models:\n")
	for _, m := range models {
		sb.WriteString("- " + m.Name)
		if m.Description != "" {
			sb.WriteString(" (" + m.Description + ")")
		}
		sb.WriteByte('\n')
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleExport(ctx context.Context, chatID int64, args string) {
	format := entity.TranscriptFormat(strings.ToLower(args))
	if args == "" {
		format = entity.FormatMarkdown
	}

	fm, err := b.formats.Create(format)
	if err != nil {
		b.reply(chatID, "Usage: /export markdown|pdf|docx.")
		return
	}

	transcript := b.sessions.Get(chatID).Chat.Transcript("Chat transcript")
	if len(transcript.Messages) == 0 {
		b.reply(chatID, "Nothing to export yet.")
		return
	}

	content, err := fm.Format(transcript)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "transcript" + fm.FileExtension(),
		Bytes: content,
	})
	if _, err := b.api.Send(doc); err != nil {
		ctxzap.Error(ctx, "failed to send transcript", zap.Error(err))
	}
}

func (b *Bot) handleRewrite(ctx context.Context, chatID int64, transform rewrite.Transform, text string) {
	if text == "" {
		b.reply(chatID, "Pass the text after the command.")
		return
	}

	b.sendTyping(chatID)
	result, err := b.rewriteUC.Run(ctx, transform, text)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.reply(chatID, result)
}

func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	doc := msg.Document

	if !strings.EqualFold(doc.MimeType, "application/pdf") &&
		!strings.HasSuffix(strings.ToLower(doc.FileName), ".pdf") {
		b.reply(chatID, "Only PDF documents can be indexed.")
		return
	}
	if doc.FileSize > maxAttachmentSize {
		b.reply(chatID, "The file is too large, the limit is 20MB.")
		return
	}

	content, err := b.download(ctx, doc.FileID)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.sendTyping(chatID)
	resp, err := b.sessions.Get(chatID).DocQA.UploadFile(ctx, doc.FileName, content)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.reply(chatID, fmt.Sprintf("Indexed %s (%d chunks). Ask about it with /ask.",
		doc.FileName, resp.ChunksIndexed))
}

// handleVoice transcribes the note and runs it through the chat
// session like a typed message.
func (b *Bot) handleVoice(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	audio, err := b.download(ctx, msg.Voice.FileID)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.sendTyping(chatID)
	text, err := b.transcriber.SpeechToText(ctx, "voice.ogg", audio)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	b.reply(chatID, "You said: "+text)
	b.handleChat(ctx, chatID, text)
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	resp, err := b.downloads.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxAttachmentSize))
}

func (b *Bot) reply(chatID int64, text string) {
	if text == "" {
		return
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("failed to send reply",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

func (b *Bot) replyError(ctx context.Context, chatID int64, err error) {
	ctxzap.Error(ctx, "request failed", zap.Error(err))

	switch {
	case errors.Is(err, entity.ErrExchangeInFlight):
		b.reply(chatID, "Still working on the previous message, one moment.")
	case errors.Is(err, entity.ErrEmptyMessage), errors.Is(err, entity.ErrEmptyQuestion):
		b.reply(chatID, "The message is empty.")
	default:
		b.reply(chatID, "The backend request failed, please try again.")
	}
}

func (b *Bot) sendTyping(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	if _, err := b.api.Request(action); err != nil {
		b.logger.Debug("failed to send typing action", zap.Error(err))
	}
}

const helpText = `I relay your messages to a local LLM with document retrieval.

Plain text is answered in a running conversation. Send a PDF to index it, then /ask questions against it. Voice notes are transcribed and answered.

/new - start a fresh session
/models - list available models
/model <name> - pick a model
/ask <question> - answer from documents
/doconly - answer only from your uploaded PDF
/export [markdown|pdf|docx] - download the transcript
/proofread <text> - fix grammar and spelling
/redraft <text> - rewrite in a cleaner style`
