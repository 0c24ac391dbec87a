package wire

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Record is the self-describing wire record exchanged between managers
// for actor-to-actor messages: a receiver name, optional sender
// identity for reply routing, and a message tagged with its registered
// kind name.
type Record struct {
	Receiver       string          `json:"receiver"`
	SenderActor    *string         `json:"sender_actor,omitempty"`
	SenderEndpoint *string         `json:"sender_endpoint,omitempty"`
	MessageType    string          `json:"message_type"`
	Message        json.RawMessage `json:"message"`
}

// Encode builds a wire record addressed to receiver carrying msg, with
// optional sender identity for reply routing on the far side.
func Encode(receiver string, senderActor, senderEndpoint *string, msg any) (*Record, error) {
	name, ok := KindName(msg)
	if !ok {
		return nil, fmt.Errorf("wire: message kind %T is not registered", msg)
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("wire: encoding %s: %w", name, err)
	}
	return &Record{
		Receiver:       receiver,
		SenderActor:    senderActor,
		SenderEndpoint: senderEndpoint,
		MessageType:    name,
		Message:        raw,
	}, nil
}

// Decode reconstructs the message carried by rec. Unknown JSON keys in
// the payload are ignored; a field with no `omitempty` json tag that is
// absent from the payload is a decode error.
func Decode(rec *Record) (any, error) {
	zeroPtr, ok := zeroPtrFor(rec.MessageType)
	if !ok {
		return nil, fmt.Errorf("wire: unknown message kind %q", rec.MessageType)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Message, &raw); err != nil {
		return nil, fmt.Errorf("wire: malformed payload for kind %q: %w", rec.MessageType, err)
	}
	if err := checkRequiredFields(rec.MessageType, zeroPtr.Type().Elem(), raw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rec.Message, zeroPtr.Interface()); err != nil {
		return nil, fmt.Errorf("wire: decoding %q: %w", rec.MessageType, err)
	}
	return zeroPtr.Elem().Interface(), nil
}

func checkRequiredFields(kind string, t reflect.Type, raw map[string]json.RawMessage) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		if strings.Contains(opts, "omitempty") {
			continue
		}
		if _, present := raw[name]; !present {
			return fmt.Errorf("wire: decode error: kind %q missing required field %q", kind, name)
		}
	}
	return nil
}
