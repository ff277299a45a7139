package protocol

import (
	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

// EntityState 实体在状态帧中的表示
type EntityState struct {
	ID        string            `json:"id" msgpack:"id"`
	Type      models.EntityType `json:"type" msgpack:"type"`
	Position  models.Vector2D   `json:"position" msgpack:"position"`
	Velocity  models.Vector2D   `json:"velocity" msgpack:"velocity"`
	Health    int               `json:"health,omitempty" msgpack:"health,omitempty"`
	MaxHealth int               `json:"max_health,omitempty" msgpack:"max_health,omitempty"`
}

// StateFrame 每个tick广播的完整状态
type StateFrame struct {
	FrameID        int64         `json:"frame_id" msgpack:"frame_id"`
	Status         string        `json:"status" msgpack:"status"`
	Wave           int           `json:"wave" msgpack:"wave"`
	CoinsCollected int           `json:"coins" msgpack:"coins"`
	ShotCount      int           `json:"shot_count" msgpack:"shot_count"`
	Player         EntityState   `json:"player" msgpack:"player"`
	Base           EntityState   `json:"base" msgpack:"base"`
	Enemies        []EntityState `json:"enemies" msgpack:"enemies"`
	Projectiles    []EntityState `json:"projectiles" msgpack:"projectiles"`
	Pickups        []EntityState `json:"pickups" msgpack:"pickups"`
}

type vitals interface {
	HP() int
	MaxHP() int
}

// ConvertEntity 将实体转换为状态帧条目
func ConvertEntity(e models.Entity) EntityState {
	state := EntityState{
		ID:       e.GetID(),
		Type:     e.GetType(),
		Position: e.GetPosition(),
		Velocity: e.GetVelocity(),
	}
	if v, ok := e.(vitals); ok {
		state.Health = v.HP()
		state.MaxHealth = v.MaxHP()
	}
	return state
}

// ConvertEntities 转换实体列表，跳过已移除的实体
func ConvertEntities[T models.Entity](list []T) []EntityState {
	states := make([]EntityState, 0, len(list))
	for _, e := range list {
		if e.IsRemoved() {
			continue
		}
		states = append(states, ConvertEntity(e))
	}
	return states
}
