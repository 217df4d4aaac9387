package settings

import (
	"errors"
	"testing"
)

// fakeFlash is an in-memory erase-before-write device.
type fakeFlash struct {
	mem        []byte
	erases     int
	writeBlock int64
}

func newFakeFlash() *fakeFlash {
	f := &fakeFlash{mem: make([]byte, 4096), writeBlock: 256}
	for i := range f.mem {
		f.mem[i] = 0xff
	}
	return f
}

func (f *fakeFlash) ReadAt(p []byte, off int64) (int, error) {
	return copy(p, f.mem[off:]), nil
}

func (f *fakeFlash) WriteAt(p []byte, off int64) (int, error) {
	if int64(len(p))%f.writeBlock != 0 {
		return 0, errors.New("unaligned write")
	}
	return copy(f.mem[off:], p), nil
}

func (f *fakeFlash) WriteBlockSize() int64 { return f.writeBlock }
func (f *fakeFlash) EraseBlockSize() int64 { return int64(len(f.mem)) }

func (f *fakeFlash) EraseBlocks(start, n int64) error {
	f.erases++
	for i := range f.mem {
		f.mem[i] = 0xff
	}
	return nil
}

func TestRecordLayout(t *testing.T) {
	b, err := Settings{Invert: 1}.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 0, 0, 0}
	if string(b) != string(want) {
		t.Fatalf("record = %v, want %v", b, want)
	}

	var s Settings
	if err := s.UnmarshalBinary(b[:2]); !errors.Is(err, ErrShortRecord) {
		t.Fatalf("err = %v, want ErrShortRecord", err)
	}
}

func TestStoresRoundTrip(t *testing.T) {
	stores := map[string]Store{
		"mem":   &MemStore{},
		"flash": NewFlashStore(newFakeFlash()),
	}
	for name, st := range stores {
		t.Run(name, func(t *testing.T) {
			s, err := st.Load()
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("empty load err = %v, want ErrNotFound", err)
			}
			if s != Default {
				t.Fatalf("empty load = %+v, want defaults", s)
			}

			for _, v := range []int32{1, 0, 1} {
				if err := st.Save(Settings{Invert: v}); err != nil {
					t.Fatalf("save: %v", err)
				}
				got, err := st.Load()
				if err != nil {
					t.Fatalf("load: %v", err)
				}
				if got.Invert != v {
					t.Fatalf("invert = %d, want %d", got.Invert, v)
				}
				// save(load()) keeps the value.
				if err := st.Save(got); err != nil {
					t.Fatal(err)
				}
				again, _ := st.Load()
				if again != got {
					t.Fatalf("save(load()) = %+v, want %+v", again, got)
				}
			}
		})
	}
}

func TestFlashSaveErasesFirst(t *testing.T) {
	dev := newFakeFlash()
	st := NewFlashStore(dev)
	if err := st.Save(Settings{Invert: 1}); err != nil {
		t.Fatal(err)
	}
	if dev.erases != 1 {
		t.Fatalf("erases = %d, want 1", dev.erases)
	}
	if dev.mem[4] != 0xff {
		t.Fatal("padding after the record must stay erased")
	}
}
