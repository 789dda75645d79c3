package handlers

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/gemini"
)

const fileReplyFmt = "📁 File Received: %s\n📄 Description: %s"

// Attachment is the file carried by a message.
type Attachment struct {
	FileID   string
	FileName string
	MIMEType string
	FileSize int64
}

// AttachmentFromMessage extracts the document, or the largest photo size,
// from msg. Document name and MIME type may still be empty.
func AttachmentFromMessage(msg *models.Message) (Attachment, bool) {
	if doc := msg.Document; doc != nil {
		return Attachment{
			FileID:   doc.FileID,
			FileName: doc.FileName,
			MIMEType: doc.MimeType,
			FileSize: int64(doc.FileSize),
		}, true
	}
	if len(msg.Photo) == 0 {
		return Attachment{}, false
	}

	best := msg.Photo[0]
	for _, p := range msg.Photo[1:] {
		if p.Width*p.Height >= best.Width*best.Height {
			best = p
		}
	}
	return Attachment{
		FileID:   best.FileID,
		FileName: best.FileID + ".jpg",
		MIMEType: "image/jpeg",
		FileSize: int64(best.FileSize),
	}, true
}

// completeAttachment fills a missing MIME type by sniffing data and a
// missing name from the file id plus an extension for the MIME type.
func completeAttachment(a Attachment, data []byte) Attachment {
	if a.MIMEType == "" && a.FileName != "" {
		a.MIMEType = mime.TypeByExtension(path.Ext(a.FileName))
	}
	if a.MIMEType == "" {
		a.MIMEType = http.DetectContentType(data)
	}
	if a.FileName == "" {
		a.FileName = a.FileID
		mediaType, _, err := mime.ParseMediaType(a.MIMEType)
		if err == nil {
			if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
				a.FileName += exts[0]
			}
		}
	}
	if a.FileSize == 0 {
		a.FileSize = int64(len(data))
	}
	return a
}

// fileHandler describes uploaded documents and photos with the model.
type fileHandler struct {
	deps HandlerDeps
}

func (h fileHandler) Handle(ctx context.Context, m Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "file")
	msg := update.Message
	chatID := msg.Chat.ID
	messages := h.deps.Config.Messages

	att, ok := AttachmentFromMessage(msg)
	if !ok {
		log.WarnContext(ctx, "File handler received message without attachment", "chat_id", chatID)
		return
	}

	log.InfoContext(ctx, "Handling file upload", "chat_id", chatID, "file_id", att.FileID, "mime_type", att.MIMEType)

	if att.MIMEType != "" && !gemini.SupportedMIMEType(att.MIMEType) {
		log.InfoContext(ctx, "Rejecting unsupported file type", "chat_id", chatID, "mime_type", att.MIMEType)
		if err := sendMarkdown(ctx, h.deps, m, chatID, fmt.Sprintf(messages.UnsupportedFileFmt, att.MIMEType)); err != nil {
			log.ErrorContext(ctx, "Failed to send unsupported file message", "error", err, "chat_id", chatID)
		}
		return
	}

	sendTyping(ctx, h.deps, m, chatID)

	downloadCtx, cancel := context.WithTimeout(ctx, h.deps.Config.Telegram.DownloadTimeout)
	data, err := h.deps.Fetcher.Fetch(downloadCtx, m, att.FileID)
	cancel()
	if err != nil {
		log.ErrorContext(ctx, "File download failed", "error", err, "chat_id", chatID, "file_id", att.FileID)
		if sendErr := sendMarkdown(ctx, h.deps, m, chatID, messages.FileDownloadError); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send download error message", "error", sendErr, "chat_id", chatID)
		}
		return
	}

	att = completeAttachment(att, data)

	description, err := h.deps.GeminiClient.GenerateFromMedia(ctx, gemini.FileAnalysisPrompt(att.MIMEType), data, att.MIMEType)
	if err != nil {
		log.ErrorContext(ctx, "AI file analysis failed", "error", err, "chat_id", chatID, "mime_type", att.MIMEType)
		replyAIError(ctx, h.deps, m, chatID, err)
		return
	}

	if err := sendMarkdown(ctx, h.deps, m, chatID, fmt.Sprintf(fileReplyFmt, att.FileName, description)); err != nil {
		log.ErrorContext(ctx, "Failed to send file description", "error", err, "chat_id", chatID)
	}

	persist(ctx, h.deps, "file record", chatID, func(ctx context.Context) error {
		return h.deps.Store.SaveFileRecord(ctx, &database.FileRecord{
			ChatID:      chatID,
			FileID:      att.FileID,
			FileName:    att.FileName,
			FileType:    att.MIMEType,
			FileSize:    att.FileSize,
			Description: description,
		})
	})
}
