package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAdvanceTo(t *testing.T) {
	cases := []struct {
		from, to MessageStatus
		want     bool
	}{
		{StatusSent, StatusDelivered, true},
		{StatusSent, StatusSeen, true},
		{StatusDelivered, StatusSeen, true},
		{StatusDelivered, StatusSent, false},
		{StatusSeen, StatusDelivered, false},
		{StatusSeen, StatusSent, false},
		{StatusSent, StatusSent, false},
		{StatusDelivered, StatusDelivered, false},
		{StatusSeen, StatusSeen, false},
		{MessageStatus("sending"), StatusSent, false},
		{StatusSent, MessageStatus("bogus"), false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.CanAdvanceTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, StatusSeen, InitialStatus(true, true))
	assert.Equal(t, StatusDelivered, InitialStatus(true, false))
	assert.Equal(t, StatusSent, InitialStatus(false, false))
	// Viewing without a live connection is a stale hint; the recipient is
	// unreachable, so the message stays sent.
	assert.Equal(t, StatusSent, InitialStatus(false, true))
}

func TestPairKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, PairKey("alice", "bob"), PairKey("bob", "alice"))
	assert.Equal(t, "alice_bob", PairKey("bob", "alice"))
}
