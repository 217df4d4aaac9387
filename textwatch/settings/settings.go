// Package settings persists the face configuration as a packed fixed-size
// record.
package settings

import (
	"encoding/binary"
	"errors"
)

// RecordSize is the encoded size of Settings.
const RecordSize = 4

var (
	ErrNotFound    = errors.New("settings: no stored record")
	ErrShortRecord = errors.New("settings: short record")
)

// Settings is the persisted configuration.
type Settings struct {
	Invert int32 // invert colours (0/1)
}

// Default is used when nothing is stored.
var Default = Settings{Invert: 0}

// Inverted reports whether the inversion overlay should show.
func (s Settings) Inverted() bool { return s.Invert != 0 }

// MarshalBinary encodes s as a little-endian record.
func (s Settings) MarshalBinary() ([]byte, error) {
	b := make([]byte, RecordSize)
	binary.LittleEndian.PutUint32(b, uint32(s.Invert))
	return b, nil
}

// UnmarshalBinary decodes a record written by MarshalBinary.
func (s *Settings) UnmarshalBinary(b []byte) error {
	if len(b) < RecordSize {
		return ErrShortRecord
	}
	s.Invert = int32(binary.LittleEndian.Uint32(b))
	return nil
}

// Store loads and saves Settings.
type Store interface {
	Load() (Settings, error)
	Save(Settings) error
}

// MemStore keeps the record in memory.
type MemStore struct {
	record []byte
}

func (m *MemStore) Load() (Settings, error) {
	if m.record == nil {
		return Default, ErrNotFound
	}
	var s Settings
	if err := s.UnmarshalBinary(m.record); err != nil {
		return Default, err
	}
	return s, nil
}

func (m *MemStore) Save(s Settings) error {
	b, err := s.MarshalBinary()
	if err != nil {
		return err
	}
	m.record = b
	return nil
}
