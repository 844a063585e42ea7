package entity

// MessageStatus is the delivery lifecycle of a message. It only moves
// forward: sent -> delivered -> seen.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusSeen      MessageStatus = "seen"
)

var statusRank = map[MessageStatus]int{
	StatusSent:      0,
	StatusDelivered: 1,
	StatusSeen:      2,
}

func (s MessageStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanAdvanceTo reports whether moving from s to next is a legal forward
// transition. Re-applying the current status is not an advance.
func (s MessageStatus) CanAdvanceTo(next MessageStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// InitialStatus computes the status assigned at creation time from the
// recipient's presence: viewing the sender's conversation means the push
// lands in an open chat, so the message is seen immediately; merely being
// connected means delivered; otherwise it stays sent until redelivery.
func InitialStatus(recipientOnline, recipientViewingSender bool) MessageStatus {
	switch {
	case recipientOnline && recipientViewingSender:
		return StatusSeen
	case recipientOnline:
		return StatusDelivered
	default:
		return StatusSent
	}
}
