package persist_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbarrios/forgeline/internal/adapters/persist"
	"github.com/nbarrios/forgeline/internal/domain"
	"github.com/nbarrios/forgeline/internal/transcript"
)

func sampleState() *transcript.State {
	return &transcript.State{
		Sessions: []*domain.Session{
			{
				ID:    "s1",
				Title: "Lua help",
				Mode:  domain.ModeLua,
				Messages: []*domain.Message{
					{ID: "m1", Role: domain.RoleAssistant, Content: "welcome", Timestamp: 1000},
					{ID: "m2", Role: domain.RoleUser, Content: "hi", Timestamp: 2000},
					{
						ID: "m3", Role: domain.RoleAssistant, Content: "grounded answer", Timestamp: 3000,
						Grounding: []domain.SourceRef{{URI: "https://example.com", Title: "Example", Kind: domain.SourceWeb}},
					},
				},
				CreatedAt: 1000,
			},
			{
				ID:    "s2",
				Title: transcript.DefaultTitle,
				Mode:  domain.ModeImage,
				Messages: []*domain.Message{
					{ID: "m4", Role: domain.RoleUser, Content: "draw", Timestamp: 4000,
						Image: domain.EncodeImageRef("image/png", []byte("png-bytes"))},
				},
				CreatedAt: 4000,
			},
		},
		ActiveID: "s1",
	}
}

func TestFileSlotRoundTrip(t *testing.T) {
	slot := persist.NewFileSlot(filepath.Join(t.TempDir(), "nested", "store.json"))
	st := sampleState()

	require.NoError(t, slot.Save(st))
	loaded, err := slot.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, st, loaded)
}

func TestFileSlotMissingFileIsFresh(t *testing.T) {
	slot := persist.NewFileSlot(filepath.Join(t.TempDir(), "absent.json"))

	loaded, err := slot.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileSlotCorruptFileIsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	loaded, err := persist.NewFileSlot(path).Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileSlotRejectsInvariantBreakingPayload(t *testing.T) {
	// Parses as JSON but the active id points nowhere.
	path := filepath.Join(t.TempDir(), "store.json")
	payload := `{"sessions":[{"id":"a","title":"t","mode":"lua","messages":[],"createdAt":1}],"activeSessionId":"ghost"}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0600))

	loaded, err := persist.NewFileSlot(path).Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileSlotSaveIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	slot := persist.NewFileSlot(path)
	require.NoError(t, slot.Save(sampleState()))

	// No leftover temp file after a successful save.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestMemorySlotRoundTrip(t *testing.T) {
	slot := persist.NewMemorySlot()
	st := sampleState()

	require.NoError(t, slot.Save(st))
	loaded, err := slot.Load()
	require.NoError(t, err)
	assert.Equal(t, st, loaded)
}

func TestMemorySlotCorruptSeedIsFresh(t *testing.T) {
	slot := persist.NewMemorySlot()
	slot.Seed([]byte("garbage"))

	loaded, err := slot.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
