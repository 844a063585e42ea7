package usecase

import (
	"context"
	"time"

	"chitchat/internal/domain/entity"
	"chitchat/internal/domain/repository"
	"chitchat/internal/infrastructure/firebase"
	"chitchat/pkg/errors"
)

type AuthUseCase struct {
	authClient *firebase.AuthClient
	userRepo   repository.UserRepository
}

func NewAuthUseCase(authClient *firebase.AuthClient, userRepo repository.UserRepository) *AuthUseCase {
	return &AuthUseCase{
		authClient: authClient,
		userRepo:   userRepo,
	}
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// Register creates the account in the identity provider and mirrors the
// profile into the user store under the provider's uid.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if _, err := uc.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, errors.Conflict("Email is already registered")
	} else if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	if _, err := uc.userRepo.GetByUsername(ctx, input.Username); err == nil {
		return nil, errors.Conflict("Username is already taken")
	} else if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	uid, err := uc.authClient.CreateUser(ctx, input.Email, input.Password, input.FullName)
	if err != nil {
		return nil, errors.Internal("Failed to create account", err)
	}

	user := &entity.User{
		ID:       uid,
		Email:    input.Email,
		Username: input.Username,
		FullName: input.FullName,
		LastSeen: time.Now(),
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		// Roll the orphaned identity back so the email can retry.
		if delErr := uc.authClient.DeleteUser(ctx, uid); delErr != nil {
			return nil, errors.Internal("Failed to store profile", err)
		}
		return nil, err
	}

	token, err := uc.authClient.GenerateToken(ctx, uid)
	if err != nil {
		return nil, errors.Internal("Failed to issue token", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// CurrentUser resolves the authenticated uid to its profile.
func (uc *AuthUseCase) CurrentUser(ctx context.Context, uid string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, uid)
}
