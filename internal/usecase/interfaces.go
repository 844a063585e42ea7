package usecase

import (
	"context"
	"io"
)

// EventPusher is the per-user-addressable push channel. Pushes are
// best-effort: a false return (or a dropped frame) never rolls back a
// store mutation that already succeeded.
type EventPusher interface {
	SendToUser(userID string, event string, payload interface{}) bool
	Broadcast(event string, payload interface{})
	BroadcastExcept(userID string, event string, payload interface{})
}

// PresenceReader answers reachability questions at message-creation time.
type PresenceReader interface {
	IsOnline(userID string) bool
	IsViewing(userID, partnerID string) bool
}

// MediaUploader is the media collaborator boundary. Upload failures abort
// the enclosing operation.
type MediaUploader interface {
	Upload(ctx context.Context, data io.Reader, kind, folder string) (url string, size int64, err error)
	Delete(ctx context.Context, url string) error
}
