// Command seed fills the development project with fake users,
// conversations, messages and stories.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/brianvoe/gofakeit/v6"
	"google.golang.org/api/option"

	"chitchat/internal/adapter/repository"
	"chitchat/internal/domain/entity"
	domainrepo "chitchat/internal/domain/repository"
	"chitchat/pkg/config"
)

const (
	userCount             = 12
	messagesPerPair       = 15
	storyChancePercent    = 60
	reactionChancePercent = 25
)

var reactionKinds = []string{"like", "love", "haha", "wow", "sad", "angry"}

func main() {
	gofakeit.Seed(time.Now().UnixNano())

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Environment == "production" {
		log.Fatal("Refusing to seed a production project")
	}

	ctx := context.Background()

	var opts []option.ClientOption
	if path := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}

	client, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer client.Close()

	userRepo := repository.NewFirestoreUserRepository(client)
	conversationRepo := repository.NewFirestoreConversationRepository(client)
	messageRepo := repository.NewFirestoreMessageRepository(client)
	storyRepo := repository.NewFirestoreStoryRepository(client)

	users := make([]*entity.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		user := &entity.User{
			Email:    gofakeit.Email(),
			Username: gofakeit.Username(),
			FullName: gofakeit.Name(),
			Bio:      gofakeit.Sentence(8),
			LastSeen: gofakeit.DateRange(time.Now().Add(-48*time.Hour), time.Now()),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		users = append(users, user)
		log.Printf("Created user %s (%s)", user.Username, user.ID)
	}

	// Everyone chats with the next two users in the list.
	for i, sender := range users {
		for step := 1; step <= 2; step++ {
			receiver := users[(i+step)%len(users)]
			seedConversation(ctx, conversationRepo, messageRepo, sender, receiver)
		}
	}

	for _, user := range users {
		if gofakeit.Number(1, 100) > storyChancePercent {
			continue
		}
		story := &entity.Story{
			UserID:          user.ID,
			FullName:        user.FullName,
			Username:        user.Username,
			ProfilePicture:  user.ProfilePicture,
			Caption:         gofakeit.HipsterSentence(6),
			BackgroundColor: gofakeit.HexColor(),
		}
		if err := storyRepo.Create(ctx, story); err != nil {
			log.Fatalf("Failed to create story: %v", err)
		}
		log.Printf("Created story for %s", user.Username)
	}

	log.Printf("Seeded %d users", len(users))
}

func seedConversation(
	ctx context.Context,
	conversationRepo domainrepo.ConversationRepository,
	messageRepo domainrepo.MessageRepository,
	userA, userB *entity.User,
) {
	conversation, err := conversationRepo.GetOrCreate(ctx, userA.ID, userB.ID)
	if err != nil {
		log.Fatalf("Failed to create conversation: %v", err)
	}

	var last *entity.Message
	for i := 0; i < messagesPerPair; i++ {
		sender, receiver := userA, userB
		if gofakeit.Bool() {
			sender, receiver = userB, userA
		}

		message := &entity.Message{
			ConversationID: conversation.ID,
			SenderID:       sender.ID,
			ReceiverID:     receiver.ID,
			Text:           gofakeit.Sentence(gofakeit.Number(2, 12)),
			Status:         randomStatus(),
		}
		if gofakeit.Number(1, 100) <= reactionChancePercent {
			message.Reactions = []entity.Reaction{{
				Kind:  gofakeit.RandomString(reactionKinds),
				Count: 1,
				Users: []string{receiver.ID},
			}}
		}
		if err := messageRepo.Create(ctx, message); err != nil {
			log.Fatalf("Failed to create message: %v", err)
		}
		last = message
	}

	if last != nil {
		if err := conversationRepo.SetLastMessage(ctx, conversation.ID, last); err != nil {
			log.Fatalf("Failed to set last message: %v", err)
		}
	}
	log.Printf("Seeded conversation %s with %d messages", conversation.ID, messagesPerPair)
}

func randomStatus() entity.MessageStatus {
	switch gofakeit.Number(1, 3) {
	case 1:
		return entity.StatusSent
	case 2:
		return entity.StatusDelivered
	default:
		return entity.StatusSeen
	}
}
