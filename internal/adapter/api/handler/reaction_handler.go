package handler

import (
	"github.com/labstack/echo/v4"

	"chitchat/internal/usecase"
	"chitchat/pkg/errors"
	"chitchat/pkg/response"
)

type ReactionHandler struct {
	reactionUseCase *usecase.ReactionUseCase
}

func NewReactionHandler(reactionUseCase *usecase.ReactionUseCase) *ReactionHandler {
	return &ReactionHandler{
		reactionUseCase: reactionUseCase,
	}
}

func (h *ReactionHandler) Toggle(c echo.Context) error {
	uid := c.Get("uid").(string)
	messageID := c.Param("id")
	if messageID == "" {
		return response.Error(c, errors.BadRequest("Message is required", nil))
	}

	var req struct {
		Kind string `json:"kind" validate:"required,oneof=like love haha wow sad angry"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.reactionUseCase.Toggle(c.Request().Context(), uid, messageID, req.Kind)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *ReactionHandler) List(c echo.Context) error {
	messageID := c.Param("id")
	if messageID == "" {
		return response.Error(c, errors.BadRequest("Message is required", nil))
	}

	reactions, err := h.reactionUseCase.Reactions(c.Request().Context(), messageID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reactions)
}
