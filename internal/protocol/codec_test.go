package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

func TestCodecByName(t *testing.T) {
	c, err := CodecByName("")
	require.NoError(t, err)
	assert.Equal(t, CodecJSON, c.Name())
	assert.False(t, c.Binary())

	c, err = CodecByName(CodecMsgpack)
	require.NoError(t, err)
	assert.True(t, c.Binary())

	_, err = CodecByName("xml")
	assert.ErrorIs(t, err, ErrUnknownCodec)
}

func TestCodecsCarryGameOver(t *testing.T) {
	in := GameOverPayload{Score: 42, Wave: 7, Cause: "base_destroyed", Receipt: "abc"}

	for _, name := range []string{CodecJSON, CodecMsgpack, CodecProto} {
		t.Run(name, func(t *testing.T) {
			codec, err := CodecByName(name)
			require.NoError(t, err)

			data, err := codec.Encode(MsgGameOver, in)
			require.NoError(t, err)

			msg, err := codec.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, MsgGameOver, msg.Type)

			var out GameOverPayload
			require.NoError(t, json.Unmarshal(msg.Payload, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestCodecsDecodeClientInput(t *testing.T) {
	in := PlayerInputPayload{MoveX: -1, Attack: true, Shoot: true, TargetX: 320.5, TargetY: 10}

	for _, name := range []string{CodecJSON, CodecMsgpack, CodecProto} {
		t.Run(name, func(t *testing.T) {
			codec, err := CodecByName(name)
			require.NoError(t, err)

			data, err := codec.Encode(MsgPlayerInput, in)
			require.NoError(t, err)
			msg, err := codec.Decode(data)
			require.NoError(t, err)

			var out PlayerInputPayload
			require.NoError(t, json.Unmarshal(msg.Payload, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestCodecWithoutPayload(t *testing.T) {
	for _, name := range []string{CodecJSON, CodecMsgpack, CodecProto} {
		codec, err := CodecByName(name)
		require.NoError(t, err)

		data, err := codec.Encode(MsgPause, nil)
		require.NoError(t, err)
		msg, err := codec.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, MsgPause, msg.Type, name)
		assert.Empty(t, msg.Payload, name)
	}
}

func TestJSONDecodeRejectsGarbage(t *testing.T) {
	_, err := JSONCodec{}.Decode([]byte("{not json"))
	assert.Error(t, err)
}

func TestConvertEntities(t *testing.T) {
	alive := &models.EnemyEntity{
		BaseEntity: models.BaseEntity{ID: "e1", Type: models.EntityEnemy, Position: models.Vector2D{X: 1, Y: 2}},
		Vitals:     models.Vitals{Health: 30, MaxHealth: 50},
	}
	dead := &models.EnemyEntity{BaseEntity: models.BaseEntity{ID: "e2", Removed: true}}

	states := ConvertEntities([]*models.EnemyEntity{alive, dead})

	require.Len(t, states, 1)
	assert.Equal(t, "e1", states[0].ID)
	assert.Equal(t, 30, states[0].Health)
	assert.Equal(t, 50, states[0].MaxHealth)

	coin := ConvertEntity(&models.CoinEntity{BaseEntity: models.BaseEntity{ID: "c1", Type: models.EntityCoin}})
	assert.Zero(t, coin.Health)
}
