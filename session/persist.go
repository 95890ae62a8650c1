package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kbukum/socialauth/kvstore"
)

// NameSlotKey is the key of the JSON object held in the name slot store.
const NameSlotKey = "name"

// Persist splits the serialized entries and writes half a into the name
// slot and half b into the session half store.
func (s *Store) Persist(ctx context.Context) error {
	if s.nameSlot == nil || s.sessionHalf == nil {
		return nil
	}

	plain, err := s.marshal()
	if err != nil {
		return err
	}
	a, b, err := SplitString(string(plain))
	if err != nil {
		return err
	}

	slot, err := readNameSlot(ctx, s.nameSlot)
	if err != nil {
		return err
	}
	slot[s.sessionKey] = a
	if err := writeNameSlot(ctx, s.nameSlot, slot); err != nil {
		return err
	}
	if err := s.sessionHalf.Set(ctx, s.sessionKey, b); err != nil {
		return fmt.Errorf("session: write session half: %w", err)
	}

	s.log.Debug("Session persisted", map[string]interface{}{
		"session_key": s.sessionKey,
		"entries":     s.Len(),
	})
	return nil
}

// Open creates a store backed by nameSlot and sessionHalf and rehydrates
// it from a previous Persist. Half a is stripped from the name slot and
// half b is deleted before they are joined, so a persisted session can
// be restored once. A missing half or a length mismatch leaves the store
// empty. A returned error reports a failing backend; the store is still
// usable.
func Open(ctx context.Context, name string, nameSlot, sessionHalf kvstore.Store, opts ...Option) (*Store, error) {
	s := New(name, opts...)
	s.nameSlot = nameSlot
	s.sessionHalf = sessionHalf

	a, errA := s.takeNameSlot(ctx)
	b, errB := s.takeSessionHalf(ctx)
	if errA != nil {
		return s, errA
	}
	if errB != nil {
		return s, errB
	}
	if a == "" || b == "" {
		return s, nil
	}

	plain, err := JoinString(a, b)
	if err != nil {
		s.log.Debug("Discarding persisted session", map[string]interface{}{
			"session_key": s.sessionKey,
			"reason":      err.Error(),
		})
		return s, nil
	}
	if err := s.unmarshal([]byte(plain)); err != nil {
		s.log.Debug("Discarding persisted session", map[string]interface{}{
			"session_key": s.sessionKey,
			"reason":      err.Error(),
		})
		return s, nil
	}
	s.log.Debug("Session rehydrated", map[string]interface{}{
		"session_key": s.sessionKey,
		"entries":     s.Len(),
	})
	return s, nil
}

// takeNameSlot removes and returns this store's half from the name slot.
// Other sessions' entries are written back untouched.
func (s *Store) takeNameSlot(ctx context.Context) (string, error) {
	if s.nameSlot == nil {
		return "", nil
	}
	slot, err := readNameSlot(ctx, s.nameSlot)
	if err != nil {
		return "", err
	}
	a, ok := slot[s.sessionKey]
	if !ok {
		return "", nil
	}
	delete(slot, s.sessionKey)
	if len(slot) == 0 {
		if err := s.nameSlot.Delete(ctx, NameSlotKey); err != nil {
			return "", fmt.Errorf("session: clear name slot: %w", err)
		}
		return a, nil
	}
	return a, writeNameSlot(ctx, s.nameSlot, slot)
}

// takeSessionHalf reads and deletes half b.
func (s *Store) takeSessionHalf(ctx context.Context) (string, error) {
	if s.sessionHalf == nil {
		return "", nil
	}
	b, err := s.sessionHalf.Get(ctx, s.sessionKey)
	if err != nil && !kvstore.IsNotFound(err) {
		return "", fmt.Errorf("session: read session half: %w", err)
	}
	if err := s.sessionHalf.Delete(ctx, s.sessionKey); err != nil {
		return "", fmt.Errorf("session: delete session half: %w", err)
	}
	return b, nil
}

// marshal encodes the entries as [[key, entry], ...].
func (s *Store) marshal() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairs := make([][2]any, 0, len(s.entries))
	for _, key := range s.keys() {
		pairs = append(pairs, [2]any{key, s.entries[key]})
	}
	data, err := json.Marshal(pairs)
	if err != nil {
		return nil, fmt.Errorf("session: encode entries: %w", err)
	}
	return data, nil
}

func (s *Store) unmarshal(data []byte) error {
	var pairs [][2]json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("session: decode entries: %w", err)
	}
	entries := make(map[string]entry, len(pairs))
	for _, pair := range pairs {
		var key string
		var e entry
		if err := json.Unmarshal(pair[0], &key); err != nil {
			return fmt.Errorf("session: decode key: %w", err)
		}
		if err := json.Unmarshal(pair[1], &e); err != nil {
			return fmt.Errorf("session: decode entry %q: %w", key, err)
		}
		entries[key] = e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	return nil
}

func readNameSlot(ctx context.Context, store kvstore.Store) (map[string]string, error) {
	raw, err := store.Get(ctx, NameSlotKey)
	if kvstore.IsNotFound(err) || (err == nil && raw == "") {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read name slot: %w", err)
	}
	slot := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &slot); err != nil {
		// A foreign value in the slot is replaced rather than trusted.
		return map[string]string{}, nil
	}
	return slot, nil
}

func writeNameSlot(ctx context.Context, store kvstore.Store, slot map[string]string) error {
	raw, err := json.Marshal(slot)
	if err != nil {
		return fmt.Errorf("session: encode name slot: %w", err)
	}
	if err := store.Set(ctx, NameSlotKey, string(raw)); err != nil {
		return fmt.Errorf("session: write name slot: %w", err)
	}
	return nil
}
