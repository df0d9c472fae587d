package persist

import (
	"errors"
	"sync"

	"github.com/nbarrios/forgeline/internal/transcript"
)

// MemorySlot keeps the serialized store in memory. It is the slot the tests
// substitute and a usable ephemeral backend for hosts that opt out of
// durability.
type MemorySlot struct {
	mu       sync.Mutex
	data     []byte
	failSave bool
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Seed replaces the raw stored payload; tests use it to simulate prior or
// corrupted state.
func (s *MemorySlot) Seed(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte{}, data...)
}

// FailSaves makes subsequent saves return an error, for exercising the
// best-effort persistence contract.
func (s *MemorySlot) FailSaves(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSave = fail
}

// Bytes returns the last saved payload.
func (s *MemorySlot) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte{}, s.data...)
}

func (s *MemorySlot) Load() (*transcript.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.data) == 0 {
		return nil, nil
	}
	return decodeState(s.data), nil
}

func (s *MemorySlot) Save(st *transcript.State) error {
	data, err := encodeState(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errors.New("memory slot: saves disabled")
	}
	s.data = data
	return nil
}
