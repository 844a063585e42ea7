package handler

import (
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	"chitchat/internal/usecase"
	"chitchat/pkg/errors"
	"chitchat/pkg/logger"
	"chitchat/pkg/response"
	"chitchat/pkg/utils"
)

const maxAttachmentSize = 10 * 1024 * 1024

type MessageHandler struct {
	messageUseCase *usecase.MessageUseCase
}

func NewMessageHandler(messageUseCase *usecase.MessageUseCase) *MessageHandler {
	return &MessageHandler{
		messageUseCase: messageUseCase,
	}
}

// Send accepts multipart form data: a "text" field plus any number of
// "attachments" files. Either may be absent, not both.
func (h *MessageHandler) Send(c echo.Context) error {
	uid := c.Get("uid").(string)
	receiverID := c.Param("id")
	if receiverID == "" {
		return response.Error(c, errors.BadRequest("Recipient is required", nil))
	}

	input := usecase.SendMessageInput{
		Text: c.FormValue("text"),
	}

	form, err := c.MultipartForm()
	if err == nil && form != nil {
		for _, file := range form.File["attachments"] {
			if file.Size > maxAttachmentSize {
				return response.Error(c, errors.BadRequest("Attachment exceeds the 10MB limit", nil))
			}

			src, err := file.Open()
			if err != nil {
				logger.Error("Send: open attachment %s: %v", file.Filename, err)
				return response.Error(c, errors.Internal("Unable to read attachment", err))
			}
			data, err := io.ReadAll(src)
			src.Close()
			if err != nil {
				return response.Error(c, errors.Internal("Unable to read attachment", err))
			}

			input.Attachments = append(input.Attachments, usecase.AttachmentUpload{
				Data: data,
				Kind: attachmentKind(file.Header.Get("Content-Type")),
				Name: file.Filename,
			})
		}
	}

	message, err := h.messageUseCase.SendMessage(c.Request().Context(), uid, receiverID, input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// History returns one newest-first page of the conversation with the
// user in the path.
func (h *MessageHandler) History(c echo.Context) error {
	uid := c.Get("uid").(string)
	otherID := c.Param("id")
	if otherID == "" {
		return response.Error(c, errors.BadRequest("User is required", nil))
	}

	params := utils.GetPaginationParams(c, 8)

	messages, total, hasMore, err := h.messageUseCase.GetMessagesWithUser(c.Request().Context(), uid, otherID, params.Page)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"messages": messages,
		"total":    total,
		"page":     params.Page,
		"hasMore":  hasMore,
	})
}

// Statuses is the reconciliation fetch: the authoritative status of
// every message in the conversation, so a client can repair state after
// missed pushes.
func (h *MessageHandler) Statuses(c echo.Context) error {
	uid := c.Get("uid").(string)
	otherID := c.Param("id")
	if otherID == "" {
		return response.Error(c, errors.BadRequest("User is required", nil))
	}

	entries, err := h.messageUseCase.ConversationStatuses(c.Request().Context(), uid, otherID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, entries)
}

// MarkSeen is the HTTP fallback for clients without a live channel.
func (h *MessageHandler) MarkSeen(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req struct {
		SenderID   string   `json:"senderId"`
		MessageIDs []string `json:"messageIds" validate:"required,min=1"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.messageUseCase.MessagesSeen(c.Request().Context(), uid, req.SenderID, req.MessageIDs); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{"updated": true})
}

func attachmentKind(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return "file"
	}
}
