package transcript_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbarrios/forgeline/internal/adapters/persist"
	"github.com/nbarrios/forgeline/internal/domain"
	"github.com/nbarrios/forgeline/internal/transcript"
)

func newStore(t *testing.T) (*transcript.Store, *persist.MemorySlot) {
	t.Helper()
	slot := persist.NewMemorySlot()
	return transcript.NewStore(slot, domain.ModeLua), slot
}

func userMsg(s *transcript.Store, text string) *domain.Message {
	return s.NewMessage(domain.RoleUser, text)
}

func TestFreshStoreSeedsWelcomeSession(t *testing.T) {
	store, _ := newStore(t)

	snap := store.Snapshot()
	require.Len(t, snap.Sessions, 1)
	assert.Equal(t, transcript.DefaultTitle, snap.Sessions[0].Title)
	assert.Equal(t, snap.Sessions[0].ID, snap.ActiveID)
	require.Len(t, snap.Sessions[0].Messages, 1)
	assert.Equal(t, domain.RoleAssistant, snap.Sessions[0].Messages[0].Role)
}

func TestCreateSessionInsertsAtFrontAndActivates(t *testing.T) {
	store, _ := newStore(t)
	first := store.Snapshot().ActiveID

	id := store.CreateSession(domain.ModeHTML)

	snap := store.Snapshot()
	require.Len(t, snap.Sessions, 2)
	assert.Equal(t, id, snap.Sessions[0].ID)
	assert.Equal(t, id, snap.ActiveID)
	assert.Equal(t, first, snap.Sessions[1].ID)
	assert.Equal(t, domain.ModeHTML, snap.Sessions[0].Mode)
}

func TestDeleteLastSessionNeverLeavesStoreEmpty(t *testing.T) {
	store, _ := newStore(t)

	store.DeleteSession(store.Snapshot().ActiveID)

	snap := store.Snapshot()
	require.Len(t, snap.Sessions, 1)
	assert.Equal(t, snap.Sessions[0].ID, snap.ActiveID)
}

func TestActiveAlwaysResolvesAcrossCreateDelete(t *testing.T) {
	store, _ := newStore(t)

	a := store.CreateSession(domain.ModeLua)
	b := store.CreateSession(domain.ModeImage)
	store.SetActive(a)
	store.DeleteSession(a)
	store.DeleteSession(b)
	store.DeleteSession(store.Snapshot().ActiveID)

	snap := store.Snapshot()
	found := false
	for _, sess := range snap.Sessions {
		if sess.ID == snap.ActiveID {
			found = true
		}
	}
	assert.True(t, found, "active id must resolve to a member session")
}

func TestDeleteActiveRepointsToFirstRemaining(t *testing.T) {
	store, _ := newStore(t)
	keep := store.Snapshot().ActiveID
	id := store.CreateSession(domain.ModeLua)

	store.DeleteSession(id)

	snap := store.Snapshot()
	assert.Equal(t, keep, snap.ActiveID)
}

func TestAppendDerivesTitleFromFirstUserMessage(t *testing.T) {
	store, _ := newStore(t)
	id := store.CreateSession(domain.ModeLua)

	store.AppendMessages(id, userMsg(store, "hello"))

	sess, ok := store.Session(id)
	require.True(t, ok)
	assert.Equal(t, "hello", sess.Title)
}

func TestTitleTruncatesAtThirtyRunes(t *testing.T) {
	store, _ := newStore(t)
	id := store.CreateSession(domain.ModeLua)
	text := strings.Repeat("x", 45)

	store.AppendMessages(id, userMsg(store, text))

	sess, ok := store.Session(id)
	require.True(t, ok)
	assert.Equal(t, strings.Repeat("x", 30)+"...", sess.Title)
}

func TestTitleNotRederivedOnceSet(t *testing.T) {
	store, _ := newStore(t)
	id := store.CreateSession(domain.ModeLua)
	store.AppendMessages(id, userMsg(store, "first topic"))

	store.AppendMessages(id, userMsg(store, "second topic"))

	sess, _ := store.Session(id)
	assert.Equal(t, "first topic", sess.Title)
}

func TestAppendToUnknownSessionIsNoop(t *testing.T) {
	store, _ := newStore(t)
	before := store.Snapshot()

	store.AppendMessages("nope", userMsg(store, "lost"))

	after := store.Snapshot()
	require.Len(t, after.Sessions, len(before.Sessions))
	for i := range after.Sessions {
		assert.Len(t, after.Sessions[i].Messages, len(before.Sessions[i].Messages))
	}
}

func TestMessagesAreAppendOnly(t *testing.T) {
	store, _ := newStore(t)
	id := store.CreateSession(domain.ModeLua)

	prev := 0
	for _, text := range []string{"one", "two", "three"} {
		store.AppendMessages(id, userMsg(store, text))
		sess, _ := store.Session(id)
		assert.Greater(t, len(sess.Messages), prev)
		prev = len(sess.Messages)
	}
}

func TestRenameEmptyTitleGetsPlaceholder(t *testing.T) {
	store, _ := newStore(t)
	id := store.CreateSession(domain.ModeLua)

	store.RenameSession(id, "   ")

	sess, _ := store.Session(id)
	assert.Equal(t, transcript.UntitledTitle, sess.Title)
}

func TestSetModeLeavesMessagesAlone(t *testing.T) {
	store, _ := newStore(t)
	id := store.CreateSession(domain.ModeLua)
	store.AppendMessages(id, userMsg(store, "hi"))
	before, _ := store.Session(id)

	store.SetMode(id, domain.ModeImage)

	after, _ := store.Session(id)
	assert.Equal(t, domain.ModeImage, after.Mode)
	assert.Len(t, after.Messages, len(before.Messages))
}

func TestSetActiveUnknownIsNoop(t *testing.T) {
	store, _ := newStore(t)
	active := store.Snapshot().ActiveID

	store.SetActive("missing")

	assert.Equal(t, active, store.Snapshot().ActiveID)
}

func TestMutationsSurviveSaveFailures(t *testing.T) {
	store, slot := newStore(t)
	slot.FailSaves(true)

	id := store.CreateSession(domain.ModeHTML)
	store.AppendMessages(id, userMsg(store, "still here"))

	sess, ok := store.Session(id)
	require.True(t, ok)
	assert.Len(t, sess.Messages, 2)
}

func TestStoreRestoresFromSlot(t *testing.T) {
	slot := persist.NewMemorySlot()
	first := transcript.NewStore(slot, domain.ModeLua)
	id := first.CreateSession(domain.ModeHTML)
	first.AppendMessages(id, first.NewMessage(domain.RoleUser, "persist me"))

	second := transcript.NewStore(slot, domain.ModeLua)

	sess, ok := second.Session(id)
	require.True(t, ok)
	assert.Equal(t, "persist me", sess.Messages[len(sess.Messages)-1].Content)
	assert.Equal(t, second.Snapshot().ActiveID, first.Snapshot().ActiveID)
}
