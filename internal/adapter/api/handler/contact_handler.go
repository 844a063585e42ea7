package handler

import (
	"github.com/labstack/echo/v4"

	"chitchat/internal/usecase"
	"chitchat/pkg/response"
)

type ContactHandler struct {
	contactUseCase *usecase.ContactUseCase
}

func NewContactHandler(contactUseCase *usecase.ContactUseCase) *ContactHandler {
	return &ContactHandler{
		contactUseCase: contactUseCase,
	}
}

func (h *ContactHandler) ListAll(c echo.Context) error {
	uid := c.Get("uid").(string)

	contacts, err := h.contactUseCase.AllContacts(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, contacts)
}

// ListChatted is the sidebar feed: everyone the caller has a
// conversation with, plus the last message and unread count per entry.
func (h *ContactHandler) ListChatted(c echo.Context) error {
	uid := c.Get("uid").(string)

	contacts, err := h.contactUseCase.ChattedContacts(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, contacts)
}

func (h *ContactHandler) ListSuggested(c echo.Context) error {
	uid := c.Get("uid").(string)

	contacts, err := h.contactUseCase.SuggestedContacts(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, contacts)
}
