package configsync

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    uint8
		wantErr error
	}{
		{"set", `{"invert":1}`, 1, nil},
		{"clear", `{"invert":0}`, 0, nil},
		{"extra keys", `{"invert":1,"configureUrl":"x"}`, 1, nil},
		{"missing key", `{"other":1}`, 0, ErrNoKeys},
		{"null", `{"invert":null}`, 0, ErrNoKeys},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := Decode([]byte(tt.payload))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if *u.Invert != tt.want {
				t.Fatalf("invert = %d, want %d", *u.Invert, tt.want)
			}
		})
	}
}

func TestDecodeRejectsOutOfRange(t *testing.T) {
	for _, p := range []string{`{"invert":256}`, `{"invert":-1}`, `{"invert":"1"}`, `not json`} {
		if _, err := Decode([]byte(p)); err == nil {
			t.Errorf("Decode(%s) succeeded, want error", p)
		}
	}
}

func TestEncode(t *testing.T) {
	b, err := Encode(1)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"invert":1}` {
		t.Fatalf("encoded %s", b)
	}
	u, err := Decode(b)
	if err != nil || *u.Invert != 1 {
		t.Fatalf("decode of encoded = %v, %v", u, err)
	}
}

func TestTopics(t *testing.T) {
	if got := ConfigTopic("w1"); got != "textwatch/w1/config" {
		t.Errorf("config topic = %q", got)
	}
	if got := StateTopic("w1"); got != "textwatch/w1/state" {
		t.Errorf("state topic = %q", got)
	}
}
