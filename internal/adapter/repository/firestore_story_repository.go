package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"chitchat/internal/domain/entity"
	"chitchat/internal/domain/repository"
	"chitchat/pkg/errors"
)

// Firestore caps "in" filters; feed queries chunk the user id list.
const storyUserChunkSize = 30

type firestoreStoryRepository struct {
	client *firestore.Client
}

func NewFirestoreStoryRepository(client *firestore.Client) repository.StoryRepository {
	return &firestoreStoryRepository{
		client: client,
	}
}

func (r *firestoreStoryRepository) Create(ctx context.Context, story *entity.Story) error {
	if story.ID == "" {
		story.ID = uuid.New().String()
	}

	story.CreatedAt = time.Now()
	if story.ExpiresAt.IsZero() {
		story.ExpiresAt = story.CreatedAt.Add(entity.StoryLifetime)
	}

	_, err := r.client.Collection("stories").Doc(story.ID).Set(ctx, story)
	if err != nil {
		return errors.Internal("Failed to create story", err)
	}
	return nil
}

func (r *firestoreStoryRepository) GetByID(ctx context.Context, id string) (*entity.Story, error) {
	doc, err := r.client.Collection("stories").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Story", err)
		}
		return nil, errors.Internal("Failed to get story", err)
	}

	var story entity.Story
	if err := doc.DataTo(&story); err != nil {
		return nil, errors.Internal("Failed to parse story data", err)
	}
	return &story, nil
}

func (r *firestoreStoryRepository) Update(ctx context.Context, story *entity.Story) error {
	_, err := r.client.Collection("stories").Doc(story.ID).Set(ctx, story)
	if err != nil {
		return errors.Internal("Failed to update story", err)
	}
	return nil
}

func (r *firestoreStoryRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("stories").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete story", err)
	}
	return nil
}

func (r *firestoreStoryRepository) ListActiveByUsers(ctx context.Context, userIDs []string) ([]*entity.Story, error) {
	now := time.Now()
	var stories []*entity.Story

	for start := 0; start < len(userIDs); start += storyUserChunkSize {
		end := start + storyUserChunkSize
		if end > len(userIDs) {
			end = len(userIDs)
		}

		docs, err := r.client.Collection("stories").
			Where("userId", "in", userIDs[start:end]).
			Where("expiresAt", ">", now).
			Documents(ctx).GetAll()
		if err != nil {
			return nil, errors.Internal("Failed to fetch stories", err)
		}

		for _, doc := range docs {
			var story entity.Story
			if err := doc.DataTo(&story); err != nil {
				return nil, errors.Internal("Failed to parse story data", err)
			}
			stories = append(stories, &story)
		}
	}

	sort.Slice(stories, func(i, j int) bool {
		return stories[i].CreatedAt.After(stories[j].CreatedAt)
	})

	return stories, nil
}

func (r *firestoreStoryRepository) ListActiveByUser(ctx context.Context, userID string) ([]*entity.Story, error) {
	docs, err := r.client.Collection("stories").
		Where("userId", "==", userID).
		Where("expiresAt", ">", time.Now()).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to fetch stories", err)
	}

	stories := make([]*entity.Story, 0, len(docs))
	for _, doc := range docs {
		var story entity.Story
		if err := doc.DataTo(&story); err != nil {
			return nil, errors.Internal("Failed to parse story data", err)
		}
		stories = append(stories, &story)
	}

	sort.Slice(stories, func(i, j int) bool {
		return stories[i].CreatedAt.Before(stories[j].CreatedAt)
	})

	return stories, nil
}
