package event

import (
	"encoding/json"
	"fmt"
	"reflect"

	"studychat/errors"
)

// wire is the self-describing JSON envelope: the kind discriminator sits
// next to the flattened variant so any consumer can recover the concrete
// type without guessing.
type wire struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

var kinds = map[Kind]reflect.Type{
	MessagePostedKind:   reflect.TypeOf(MessagePosted{}),
	MentionKind:         reflect.TypeOf(Mention{}),
	MessageRepeatedKind: reflect.TypeOf(MessageRepeated{}),
}

// Encode serializes an event for storage and publishing.
func Encode(e Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrSerialization, err)
	}
	raw, err := json.Marshal(wire{Kind: e.Kind(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrSerialization, err)
	}
	return raw, nil
}

// Decode restores a concrete event from its wire form. An unregistered
// kind is reported as ErrUnknownEventKind so consumers can skip the
// event instead of crashing on it.
func Decode(raw []byte) (Event, error) {
	var w wire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrSerialization, err)
	}
	tp, ok := kinds[w.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEventKind, w.Kind)
	}
	value := reflect.New(tp)
	if err := json.Unmarshal(w.Payload, value.Interface()); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrSerialization, err)
	}
	return value.Elem().Interface().(Event), nil
}
