package models

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// BundleSchemaVersion is bumped whenever the serialized state layout
// changes incompatibly.
const BundleSchemaVersion = 1

var (
	ErrHashMismatch  = errors.New("bundle hash does not match its state")
	ErrSchemaVersion = errors.New("unsupported bundle schema version")
)

// Bundle is the persisted form of a fitted model: the state, a schema
// version, and a content hash recomputed and verified on load so a corrupted
// or tampered artifact is rejected instead of silently producing different
// forecasts.
type Bundle struct {
	SchemaVersion int    `json:"schema_version"`
	State         *State `json:"state"`
	Hash          string `json:"hash"`
}

func NewBundle(state *State) (*Bundle, error) {
	if !state.IsFitted() {
		return nil, ErrModelNotFitted
	}
	hash, err := stateHash(state)
	if err != nil {
		return nil, err
	}
	return &Bundle{
		SchemaVersion: BundleSchemaVersion,
		State:         state,
		Hash:          hash,
	}, nil
}

func (b *Bundle) Marshal() ([]byte, error) {
	return json.Marshal(b)
}

// LoadBundle decodes a bundle and returns its state after verifying the
// schema version and content hash.
func LoadBundle(data []byte) (*State, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("unable to decode bundle, %w", err)
	}
	if b.SchemaVersion != BundleSchemaVersion {
		return nil, fmt.Errorf("got version %d, want %d, %w",
			b.SchemaVersion, BundleSchemaVersion, ErrSchemaVersion)
	}
	if !b.State.IsFitted() {
		return nil, ErrModelNotFitted
	}
	hash, err := stateHash(b.State)
	if err != nil {
		return nil, err
	}
	if hash != b.Hash {
		return nil, fmt.Errorf("got %s, want %s, %w", hash, b.Hash, ErrHashMismatch)
	}
	return b.State, nil
}

func stateHash(s *State) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
