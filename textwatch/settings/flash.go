package settings

import (
	"errors"
	"io"
)

// Flash is the subset of TinyGo's machine.Flash block device the store uses.
type Flash interface {
	io.ReaderAt
	io.WriterAt
	WriteBlockSize() int64
	EraseBlockSize() int64
	EraseBlocks(start, len int64) error
}

// FlashStore keeps the record at the start of the first erase block of a
// flash device.
type FlashStore struct {
	dev Flash
}

// NewFlashStore creates a store on dev, usually machine.Flash.
func NewFlashStore(dev Flash) *FlashStore {
	return &FlashStore{dev: dev}
}

func (f *FlashStore) Load() (Settings, error) {
	b := make([]byte, RecordSize)
	if _, err := f.dev.ReadAt(b, 0); err != nil {
		return Default, errors.New("settings read:" + err.Error())
	}
	if erased(b) {
		return Default, ErrNotFound
	}
	var s Settings
	if err := s.UnmarshalBinary(b); err != nil {
		return Default, err
	}
	return s, nil
}

func (f *FlashStore) Save(s Settings) error {
	rec, err := s.MarshalBinary()
	if err != nil {
		return err
	}
	if err := f.dev.EraseBlocks(0, 1); err != nil {
		return errors.New("settings erase:" + err.Error())
	}
	// Writes must cover whole write blocks.
	size := f.dev.WriteBlockSize()
	if size < RecordSize {
		size = RecordSize
	}
	page := make([]byte, size)
	for i := range page {
		page[i] = 0xff
	}
	copy(page, rec)
	if _, err := f.dev.WriteAt(page, 0); err != nil {
		return errors.New("settings write:" + err.Error())
	}
	return nil
}

// erased reports whether b reads as never-written flash.
func erased(b []byte) bool {
	for _, v := range b {
		if v != 0xff {
			return false
		}
	}
	return true
}
