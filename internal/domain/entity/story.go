package entity

import "time"

const StoryLifetime = 24 * time.Hour

type StoryView struct {
	UserID   string    `json:"userId" firestore:"userId"`
	ViewedAt time.Time `json:"viewedAt" firestore:"viewedAt"`
}

// Story is an ephemeral "my day" post. Documents expire through a TTL
// policy on ExpiresAt; queries additionally filter on it so a not-yet
// collected document never leaks past its lifetime.
type Story struct {
	ID              string      `json:"id" firestore:"id"`
	UserID          string      `json:"userId" firestore:"userId"`
	FullName        string      `json:"fullName" firestore:"fullName"`
	Username        string      `json:"userName" firestore:"userName"`
	ProfilePicture  string      `json:"profilePicture,omitempty" firestore:"profilePicture,omitempty"`
	MediaType       string      `json:"mediaType,omitempty" firestore:"mediaType,omitempty"` // "image" or "video"
	MediaURL        string      `json:"mediaUrl,omitempty" firestore:"mediaUrl,omitempty"`
	Caption         string      `json:"caption,omitempty" firestore:"caption,omitempty"`
	BackgroundColor string      `json:"backgroundColor" firestore:"backgroundColor"`
	Views           []StoryView `json:"views,omitempty" firestore:"views,omitempty"`
	ExpiresAt       time.Time   `json:"expiresAt" firestore:"expiresAt"`
	CreatedAt       time.Time   `json:"createdAt" firestore:"createdAt"`
}

// ViewedBy reports whether userID already viewed the story.
func (s *Story) ViewedBy(userID string) bool {
	for _, v := range s.Views {
		if v.UserID == userID {
			return true
		}
	}
	return false
}
