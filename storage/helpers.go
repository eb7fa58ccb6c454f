package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// Artifact encoding/decoding
func encodeArtifact(a any) ([]byte, error) {
	encOpts := cbor.CoreDetEncOptions()
	em, err := encOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return em.Marshal(a)
}

func decodeArtifact(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}

// getArtifact reads and decodes the artifact stored under prefix/key.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	data, err := prefixeddb.NewPrefixedReader(s.db, prefix).Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get artifact: %w", err)
	}
	return decodeArtifact(data, out)
}

// setArtifact encodes an artifact and stages it in wTx under prefix/key.
func setArtifact(wTx db.WriteTx, prefix, key []byte, a any) error {
	val, err := encodeArtifact(a)
	if err != nil {
		return err
	}
	return prefixeddb.NewPrefixedWriteTx(wTx, prefix).Set(key, val)
}

// counter returns the value of a counter, zero if it was never set.
func (s *Storage) counter(key []byte) (uint64, error) {
	data, err := prefixeddb.NewPrefixedReader(s.db, counterPrefix).Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get counter: %w", err)
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupted counter %q", key)
	}
	return binary.BigEndian.Uint64(data), nil
}

// setCounter stages a counter update in wTx.
func setCounter(wTx db.WriteTx, key []byte, v uint64) error {
	return prefixeddb.NewPrefixedWriteTx(wTx, counterPrefix).Set(key, uint64Key(v))
}

// uint64Key encodes v as 8 big-endian bytes so keys sort numerically.
func uint64Key(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

// joinKey concatenates key parts into a new slice.
func joinKey(parts ...[]byte) []byte {
	var key []byte
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}
