package handler

import (
	"chitchat/internal/usecase"
)

var (
	authHandler     *AuthHandler
	profileHandler  *ProfileHandler
	contactHandler  *ContactHandler
	messageHandler  *MessageHandler
	reactionHandler *ReactionHandler
	storyHandler    *StoryHandler
	healthHandler   *HealthHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	contactUseCase *usecase.ContactUseCase,
	messageUseCase *usecase.MessageUseCase,
	reactionUseCase *usecase.ReactionUseCase,
	storyUseCase *usecase.StoryUseCase,
) {
	authHandler = NewAuthHandler(authUseCase)
	profileHandler = NewProfileHandler(userUseCase)
	contactHandler = NewContactHandler(contactUseCase)
	messageHandler = NewMessageHandler(messageUseCase)
	reactionHandler = NewReactionHandler(reactionUseCase)
	storyHandler = NewStoryHandler(storyUseCase)
	healthHandler = NewHealthHandler()
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetProfileHandler() *ProfileHandler {
	return profileHandler
}

func GetContactHandler() *ContactHandler {
	return contactHandler
}

func GetMessageHandler() *MessageHandler {
	return messageHandler
}

func GetReactionHandler() *ReactionHandler {
	return reactionHandler
}

func GetStoryHandler() *StoryHandler {
	return storyHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}
