package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Each test file that registers kinds uses a distinct name/type pair so
// tests can run in any order within the package without colliding in
// the process-wide registry.

type greeting struct {
	Text string `json:"text"`
}

func init() {
	Register[greeting]("Greeting")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sender := "alice"
	endpoint := "ws://host:1"
	rec, err := Encode("bob", &sender, &endpoint, greeting{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "bob", rec.Receiver)
	assert.Equal(t, "Greeting", rec.MessageType)

	decoded, err := Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, greeting{Text: "hi"}, decoded)
}

func TestEncodeUnregisteredKind(t *testing.T) {
	type unregistered struct{}
	_, err := Encode("bob", nil, nil, unregistered{})
	assert.Error(t, err)
}

func TestDecodeUnknownKind(t *testing.T) {
	_, err := Decode(&Record{MessageType: "NoSuchKind", Message: []byte(`{}`)})
	assert.Error(t, err)
}

func TestDecodeMissingRequiredField(t *testing.T) {
	_, err := Decode(&Record{MessageType: "Greeting", Message: []byte(`{}`)})
	assert.Error(t, err)
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	rec := &Record{MessageType: "Greeting", Message: []byte(`{"text":"hi","extra":"ignored"}`)}
	decoded, err := Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, greeting{Text: "hi"}, decoded)
}
