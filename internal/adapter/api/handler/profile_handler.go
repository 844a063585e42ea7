package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"chitchat/internal/usecase"
	"chitchat/pkg/errors"
	"chitchat/pkg/logger"
	"chitchat/pkg/response"
)

const maxProfilePictureSize = 5 * 1024 * 1024

type ProfileHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewProfileHandler(userUseCase *usecase.UserUseCase) *ProfileHandler {
	return &ProfileHandler{
		userUseCase: userUseCase,
	}
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	uid := c.Get("uid").(string)

	user, err := h.userUseCase.GetProfile(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *ProfileHandler) GetProfileByUsername(c echo.Context) error {
	username := c.Param("username")
	if username == "" {
		return response.Error(c, errors.BadRequest("Username is required", nil))
	}

	user, err := h.userUseCase.GetProfileByUsername(c.Request().Context(), username)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req usecase.UpdateProfileInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), uid, req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *ProfileHandler) UpdateProfilePicture(c echo.Context) error {
	uid := c.Get("uid").(string)

	file, err := c.FormFile("image")
	if err != nil {
		return response.Error(c, errors.BadRequest("Missing or invalid image", err))
	}

	if file.Size > maxProfilePictureSize {
		return response.Error(c, errors.BadRequest("Image exceeds the 5MB limit", nil))
	}

	src, err := file.Open()
	if err != nil {
		logger.Error("UpdateProfilePicture: open upload: %v", err)
		return response.Error(c, errors.Internal("Unable to read image", err))
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return response.Error(c, errors.Internal("Unable to read image", err))
	}

	user, err := h.userUseCase.UpdateProfilePicture(c.Request().Context(), uid, data)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
