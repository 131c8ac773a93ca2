package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetOrCreateDefaults(t *testing.T) {
	store := NewStore()

	sess := store.GetOrCreate("chat-1")
	assert.Equal(t, StateGreeting, sess.State)
	assert.Equal(t, PlanExtend, sess.Plan)
	assert.Equal(t, "USDT", sess.Currency)
	assert.False(t, sess.Started.IsZero())

	sess.State = StateCollectingCID
	again := store.GetOrCreate("chat-1")
	assert.Same(t, sess, again)
	assert.Equal(t, StateCollectingCID, again.State)
}

func TestResetDiscardsSession(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("chat-1").CID = "12345"
	store.Reset("chat-1")

	fresh := store.GetOrCreate("chat-1")
	assert.Equal(t, "", fresh.CID)
	assert.Equal(t, StateGreeting, fresh.State)
}

func TestRememberKeepsBoundedWindow(t *testing.T) {
	sess := &Session{}
	for i := 0; i < 15; i++ {
		sess.remember("pesan")
	}
	assert.Len(t, sess.RecentMessages, 10)
}

func TestStaticDirectoryLookup(t *testing.T) {
	dir := NewStaticDirectory()

	account, err := dir.Lookup(context.Background(), "12345")
	assert.NoError(t, err)
	assert.Equal(t, "Premium Monthly", account.CurrentSubscription)
	assert.NotEmpty(t, account.TransferAddress)
	assert.Len(t, account.AvailablePlans, 4)

	_, err = dir.Lookup(context.Background(), "")
	assert.True(t, errors.Is(err, ErrAccountNotFound))
}
