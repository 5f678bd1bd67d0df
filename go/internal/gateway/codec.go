package gateway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrUnknownCodec is returned for an unsupported ?codec= value
var ErrUnknownCodec = errors.New("unknown codec")

// Codec handles the wire format of one websocket connection
type Codec interface {
	// Encode serializes an outbound envelope
	Encode(envelope *Envelope) ([]byte, error)

	// Decode deserializes a client intent
	Decode(data []byte) (*ClientMessage, error)

	Name() string

	// MessageType is the websocket frame type the codec writes
	MessageType() int
}

// JSONCodec is the default text codec
type JSONCodec struct{}

func NewJSONCodec() *JSONCodec { return &JSONCodec{} }

func (c *JSONCodec) Encode(envelope *Envelope) ([]byte, error) {
	return json.Marshal(envelope)
}

func (c *JSONCodec) Decode(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *JSONCodec) Name() string { return "json" }

func (c *JSONCodec) MessageType() int { return websocket.TextMessage }

// MsgPackCodec sends binary frames
type MsgPackCodec struct{}

func NewMsgPackCodec() *MsgPackCodec { return &MsgPackCodec{} }

func (c *MsgPackCodec) Encode(envelope *Envelope) ([]byte, error) {
	return msgpack.Marshal(envelope)
}

func (c *MsgPackCodec) Decode(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := msgpack.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *MsgPackCodec) Name() string { return "msgpack" }

func (c *MsgPackCodec) MessageType() int { return websocket.BinaryMessage }

// CodecByName resolves a codec, defaulting to JSON when name is empty
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return NewJSONCodec(), nil
	case "msgpack":
		return NewMsgPackCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, name)
	}
}
