package usecase

import (
	"bytes"
	"context"

	"chitchat/internal/domain/entity"
	"chitchat/internal/domain/repository"
	"chitchat/pkg/errors"
)

type UserUseCase struct {
	userRepo repository.UserRepository
	uploader MediaUploader
}

func NewUserUseCase(userRepo repository.UserRepository, uploader MediaUploader) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		uploader: uploader,
	}
}

type UpdateProfileInput struct {
	FullName string `json:"fullName" validate:"omitempty,max=100"`
	Bio      string `json:"bio" validate:"omitempty,max=300"`
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

func (uc *UserUseCase) GetProfileByUsername(ctx context.Context, username string) (*entity.User, error) {
	return uc.userRepo.GetByUsername(ctx, username)
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Bio != "" {
		user.Bio = input.Bio
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateProfilePicture uploads the new image first so a failed upload
// never leaves the profile pointing at a missing object.
func (uc *UserUseCase) UpdateProfilePicture(ctx context.Context, userID string, image []byte) (*entity.User, error) {
	if len(image) == 0 {
		return nil, errors.BadRequest("Profile picture is required", nil)
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, _, err := uc.uploader.Upload(ctx, bytes.NewReader(image), "image", "profiles")
	if err != nil {
		return nil, errors.Internal("Failed to upload profile picture", err)
	}

	previous := user.ProfilePicture
	user.ProfilePicture = url
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if previous != "" {
		// Best effort; a dangling object is harmless.
		_ = uc.uploader.Delete(ctx, previous)
	}

	return user, nil
}
