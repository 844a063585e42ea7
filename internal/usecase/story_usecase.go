package usecase

import (
	"bytes"
	"context"
	"log"
	"time"

	"chitchat/internal/domain/entity"
	"chitchat/internal/domain/repository"
	"chitchat/internal/infrastructure/ratelimit"
	ws "chitchat/internal/infrastructure/websocket"
	"chitchat/pkg/errors"
)

const defaultStoryBackground = "#4F46E5"

type StoryUseCase struct {
	storyRepo   repository.StoryRepository
	userRepo    repository.UserRepository
	uploader    MediaUploader
	pusher      EventPusher
	rateLimiter *ratelimit.RateLimiter
}

func NewStoryUseCase(
	storyRepo repository.StoryRepository,
	userRepo repository.UserRepository,
	uploader MediaUploader,
	pusher EventPusher,
) *StoryUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &StoryUseCase{
		storyRepo:   storyRepo,
		userRepo:    userRepo,
		uploader:    uploader,
		pusher:      pusher,
		rateLimiter: rateLimiter,
	}
}

type CreateStoryInput struct {
	Caption         string
	BackgroundColor string
	MediaData       []byte
	MediaKind       string // "image" or "video"
}

func storyOwner(story *entity.Story) ws.StoryOwner {
	return ws.StoryOwner{
		ID:             story.UserID,
		FullName:       story.FullName,
		Username:       story.Username,
		ProfilePicture: story.ProfilePicture,
	}
}

func (uc *StoryUseCase) CreateStory(ctx context.Context, userID string, input CreateStoryInput) (*entity.Story, error) {
	allowed, _ := uc.rateLimiter.Allow(userID, "create_story")
	if !allowed {
		return nil, errors.TooManyRequests("Too many stories. Please wait before posting again")
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	background := input.BackgroundColor
	if background == "" {
		background = defaultStoryBackground
	}

	story := &entity.Story{
		UserID:          userID,
		FullName:        user.FullName,
		Username:        user.Username,
		ProfilePicture:  user.ProfilePicture,
		Caption:         input.Caption,
		BackgroundColor: background,
	}

	if len(input.MediaData) > 0 {
		if input.MediaKind != "image" && input.MediaKind != "video" {
			return nil, errors.BadRequest("Story media must be an image or a video", nil)
		}
		url, _, err := uc.uploader.Upload(ctx, bytes.NewReader(input.MediaData), input.MediaKind, "myday/"+input.MediaKind+"s")
		if err != nil {
			return nil, errors.Internal("Failed to upload story media", err)
		}
		story.MediaType = input.MediaKind
		story.MediaURL = url
	}

	if err := uc.storyRepo.Create(ctx, story); err != nil {
		return nil, err
	}

	uc.pusher.BroadcastExcept(userID, ws.EventNewStoryCreated, ws.StoryCreatedPayload{
		User:  storyOwner(story),
		Story: story,
	})

	return story, nil
}

// FeedGroup is one user's unexpired stories in the contacts feed.
type FeedGroup struct {
	User    ws.StoryOwner   `json:"user"`
	Stories []*entity.Story `json:"stories"`
}

// Feed returns unexpired stories from the caller's contacts plus their
// own, grouped by user, most recent group first. A caller with no
// contacts sees recent users' stories instead of an empty feed.
func (uc *StoryUseCase) Feed(ctx context.Context, userID string) ([]*FeedGroup, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	userIDs := append([]string{}, user.Contacts...)
	if len(userIDs) == 0 {
		others, err := uc.userRepo.ListExcluding(ctx, []string{userID}, 50)
		if err != nil {
			return nil, err
		}
		for _, other := range others {
			userIDs = append(userIDs, other.ID)
		}
	}
	userIDs = append(userIDs, userID)

	stories, err := uc.storyRepo.ListActiveByUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	groupIndex := map[string]int{}
	var groups []*FeedGroup
	for _, story := range stories {
		idx, ok := groupIndex[story.UserID]
		if !ok {
			groups = append(groups, &FeedGroup{User: storyOwner(story)})
			idx = len(groups) - 1
			groupIndex[story.UserID] = idx
		}
		groups[idx].Stories = append(groups[idx].Stories, story)
	}

	return groups, nil
}

type StoryViewDetail struct {
	entity.StoryView
	User *entity.User `json:"user,omitempty"`
}

type StoryDetail struct {
	*entity.Story
	Views []StoryViewDetail `json:"views"`
}

// UserStories returns one user's unexpired stories, oldest first, with
// viewer details resolved.
func (uc *StoryUseCase) UserStories(ctx context.Context, userID string) ([]*StoryDetail, error) {
	stories, err := uc.storyRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := make([]*StoryDetail, 0, len(stories))
	for _, story := range stories {
		detail := &StoryDetail{Story: story, Views: []StoryViewDetail{}}
		for _, view := range story.Views {
			viewer, err := uc.userRepo.GetByID(ctx, view.UserID)
			if err != nil {
				log.Printf("UserStories: viewer %s missing: %v", view.UserID, err)
			}
			detail.Views = append(detail.Views, StoryViewDetail{StoryView: view, User: viewer})
		}
		details = append(details, detail)
	}

	return details, nil
}

// ViewStory records a view once per viewer and notifies the owner.
func (uc *StoryUseCase) ViewStory(ctx context.Context, viewerID, storyID string) error {
	story, err := uc.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return err
	}

	if story.ViewedBy(viewerID) {
		return nil
	}

	viewedAt := time.Now()
	story.Views = append(story.Views, entity.StoryView{UserID: viewerID, ViewedAt: viewedAt})
	if err := uc.storyRepo.Update(ctx, story); err != nil {
		return err
	}

	if story.UserID != viewerID {
		viewer, err := uc.userRepo.GetByID(ctx, viewerID)
		if err == nil {
			uc.pusher.SendToUser(story.UserID, ws.EventStoryViewed, ws.StoryViewedPayload{
				StoryID: story.ID,
				Viewer: ws.StoryOwner{
					ID:             viewer.ID,
					FullName:       viewer.FullName,
					Username:       viewer.Username,
					ProfilePicture: viewer.ProfilePicture,
				},
				ViewedAt: viewedAt,
			})
		}
	}

	return nil
}

// DeleteStory removes the caller's own story and cleans up its media.
func (uc *StoryUseCase) DeleteStory(ctx context.Context, userID, storyID string) error {
	story, err := uc.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return err
	}
	if story.UserID != userID {
		return errors.Forbidden("You can only delete your own stories", nil)
	}

	if err := uc.storyRepo.Delete(ctx, storyID); err != nil {
		return err
	}

	uc.pusher.BroadcastExcept(userID, ws.EventStoryDeleted, ws.StoryDeletedPayload{
		StoryID: story.ID,
		UserID:  story.UserID,
	})

	if story.MediaURL != "" {
		if err := uc.uploader.Delete(ctx, story.MediaURL); err != nil {
			log.Printf("DeleteStory: media cleanup failed for %s: %v", story.ID, err)
		}
	}

	return nil
}
