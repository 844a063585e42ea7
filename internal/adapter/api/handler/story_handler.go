package handler

import (
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	"chitchat/internal/usecase"
	"chitchat/pkg/errors"
	"chitchat/pkg/response"
)

const maxStoryMediaSize = 20 * 1024 * 1024

type StoryHandler struct {
	storyUseCase *usecase.StoryUseCase
}

func NewStoryHandler(storyUseCase *usecase.StoryUseCase) *StoryHandler {
	return &StoryHandler{
		storyUseCase: storyUseCase,
	}
}

// Create accepts multipart form data: optional "caption" and
// "backgroundColor" fields, plus an optional "media" file. A text-only
// story renders the caption on the background color.
func (h *StoryHandler) Create(c echo.Context) error {
	uid := c.Get("uid").(string)

	input := usecase.CreateStoryInput{
		Caption:         c.FormValue("caption"),
		BackgroundColor: c.FormValue("backgroundColor"),
	}

	if file, err := c.FormFile("media"); err == nil {
		if file.Size > maxStoryMediaSize {
			return response.Error(c, errors.BadRequest("Story media exceeds the 20MB limit", nil))
		}

		src, err := file.Open()
		if err != nil {
			return response.Error(c, errors.Internal("Unable to read media", err))
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return response.Error(c, errors.Internal("Unable to read media", err))
		}

		input.MediaData = data
		contentType := file.Header.Get("Content-Type")
		switch {
		case strings.HasPrefix(contentType, "image/"):
			input.MediaKind = "image"
		case strings.HasPrefix(contentType, "video/"):
			input.MediaKind = "video"
		default:
			return response.Error(c, errors.BadRequest("Story media must be an image or a video", nil))
		}
	}

	if input.Caption == "" && len(input.MediaData) == 0 {
		return response.Error(c, errors.BadRequest("Story must contain a caption or media", nil))
	}

	story, err := h.storyUseCase.CreateStory(c.Request().Context(), uid, input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, story)
}

func (h *StoryHandler) Feed(c echo.Context) error {
	uid := c.Get("uid").(string)

	groups, err := h.storyUseCase.Feed(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, groups)
}

// Mine returns the caller's own stories with per-viewer details.
func (h *StoryHandler) Mine(c echo.Context) error {
	uid := c.Get("uid").(string)

	stories, err := h.storyUseCase.UserStories(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stories)
}

func (h *StoryHandler) View(c echo.Context) error {
	uid := c.Get("uid").(string)
	storyID := c.Param("id")
	if storyID == "" {
		return response.Error(c, errors.BadRequest("Story is required", nil))
	}

	if err := h.storyUseCase.ViewStory(c.Request().Context(), uid, storyID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{"viewed": true})
}

func (h *StoryHandler) Delete(c echo.Context) error {
	uid := c.Get("uid").(string)
	storyID := c.Param("id")
	if storyID == "" {
		return response.Error(c, errors.BadRequest("Story is required", nil))
	}

	if err := h.storyUseCase.DeleteStory(c.Request().Context(), uid, storyID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{"deleted": true})
}
