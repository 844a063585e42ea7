package entity

import "time"

type User struct {
	ID             string    `json:"id" firestore:"id"`
	Email          string    `json:"email" firestore:"email"`
	Username       string    `json:"username" firestore:"username"`
	FullName       string    `json:"fullName" firestore:"fullName"`
	Bio            string    `json:"bio,omitempty" firestore:"bio,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty" firestore:"profilePicture,omitempty"`
	Contacts       []string  `json:"contacts,omitempty" firestore:"contacts,omitempty"`
	LastSeen       time.Time `json:"lastSeen,omitempty" firestore:"lastSeen,omitempty"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" firestore:"updatedAt"`
}
