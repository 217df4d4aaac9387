// Package configsync encodes the configuration messages exchanged with the
// companion: {"invert": n}, where n is an 8-bit value.
package configsync

import (
	"encoding/json"
	"errors"
)

// Topic suffixes under "textwatch/<device id>/".
const (
	ConfigSuffix = "/config" // companion -> watch
	StateSuffix  = "/state"  // watch -> companion, retained
)

var ErrNoKeys = errors.New("configsync: no known keys")

// Update is a configuration change. Nil fields were absent from the message.
type Update struct {
	Invert *uint8 `json:"invert,omitempty"`
}

// ConfigTopic is the topic a device subscribes to.
func ConfigTopic(deviceID string) string { return "textwatch/" + deviceID + ConfigSuffix }

// StateTopic is the topic a device publishes its current config on.
func StateTopic(deviceID string) string { return "textwatch/" + deviceID + StateSuffix }

// Decode parses a config message. A message with no known key returns
// ErrNoKeys and should be ignored.
func Decode(payload []byte) (Update, error) {
	var u Update
	if err := json.Unmarshal(payload, &u); err != nil {
		return Update{}, errors.New("configsync decode:" + err.Error())
	}
	if u.Invert == nil {
		return Update{}, ErrNoKeys
	}
	return u, nil
}

// Encode renders the current configuration.
func Encode(invert uint8) ([]byte, error) {
	return json.Marshal(Update{Invert: &invert})
}
