package validator

import (
	"context"
	"errors"
	"sync/atomic"
)

// KeyProvider resolves the key material credentials are verified against.
// Implementations must be safe for concurrent use; validations in flight
// during a rotation see either the old key material or the new, never a
// partial update.
type KeyProvider interface {
	Key(ctx context.Context) (any, error)
}

// StaticKey is a KeyProvider holding in-memory key material that can be
// rotated at runtime. Rotation swaps the whole reference atomically, so it
// needs no locking on the validation path.
type StaticKey struct {
	key atomic.Pointer[keyMaterial]
}

type keyMaterial struct {
	key any
}

// NewStaticKey sets up a StaticKey with its initial key material.
func NewStaticKey(key any) (*StaticKey, error) {
	if key == nil {
		return nil, errors.New("key cannot be nil")
	}

	s := &StaticKey{}
	s.key.Store(&keyMaterial{key: key})

	return s, nil
}

// Key implements KeyProvider.
func (s *StaticKey) Key(_ context.Context) (any, error) {
	return s.key.Load().key, nil
}

// Rotate replaces the key material. Validations already holding the old
// material complete against it; later validations see only the new.
func (s *StaticKey) Rotate(key any) error {
	if key == nil {
		return errors.New("key cannot be nil")
	}

	s.key.Store(&keyMaterial{key: key})

	return nil
}
