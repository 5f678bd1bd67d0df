package gateway

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/mcdev12/coveytv/go/internal/events"
	"github.com/mcdev12/coveytv/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecByName(t *testing.T) {
	for name, want := range map[string]string{"": "json", "json": "json", "msgpack": "msgpack"} {
		codec, err := CodecByName(name)
		require.NoError(t, err)
		assert.Equal(t, want, codec.Name())
	}

	_, err := CodecByName("xml")
	assert.ErrorIs(t, err, ErrUnknownCodec)

	assert.Equal(t, websocket.TextMessage, NewJSONCodec().MessageType())
	assert.Equal(t, websocket.BinaryMessage, NewMsgPackCodec().MessageType())
}

func TestJSONCodec_DecodeIntent(t *testing.T) {
	msg, err := NewJSONCodec().Decode([]byte(`{"type":"move","location":{"x":1,"y":2,"rotation":"left","moving":false}}`))
	require.NoError(t, err)
	assert.Equal(t, IntentMove, msg.Type)
	require.NotNil(t, msg.Location)
	assert.Equal(t, models.Location{X: 1, Y: 2, Rotation: models.DirectionLeft}, *msg.Location)

	_, err = NewJSONCodec().Decode([]byte(`{`))
	assert.Error(t, err)
}

func TestNewEnvelope_Payloads(t *testing.T) {
	info := models.PlaybackInfo{URL: "u", Timestamp: 1.5, IsPlaying: true}
	assert.Equal(t, &info, NewEnvelope("T", events.Syncing(info)).Data)

	videos := []models.Video{{URL: "u"}}
	assert.Equal(t, videos, NewEnvelope("T", events.CandidatesUpdated(videos)).Data)

	player := models.NewPlayer("alice")
	assert.Equal(t, player, NewEnvelope("T", events.PlayerEvent(events.EventTypePlayerMoved, player)).Data)

	envelope := NewEnvelope("T", events.Paused())
	assert.Nil(t, envelope.Data)
	assert.Equal(t, "T", envelope.TownID)
	assert.Equal(t, events.EventTypePaused, envelope.Type)
	assert.NotEmpty(t, envelope.ID)
}
