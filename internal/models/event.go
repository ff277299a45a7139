package models

// EventType 对局产生的事件类型
type EventType string

const (
	EventWaveStarted      EventType = "wave_started"
	EventEnemyKilled      EventType = "enemy_killed"
	EventCoinDropped      EventType = "coin_dropped"
	EventCoinCollected    EventType = "coin_collected"
	EventBaseDamaged      EventType = "base_damaged"
	EventPlayerDamaged    EventType = "player_damaged"
	EventProjectilesFired EventType = "projectiles_fired"
	EventMeleeSwing       EventType = "melee_swing"
	EventGameOver         EventType = "game_over"
)

// GameEvent 对局事件，由房间广播给客户端
type GameEvent struct {
	Type     EventType    `json:"type" msgpack:"type"`
	EntityID string       `json:"entity_id,omitempty" msgpack:"entity_id,omitempty"`
	Position Vector2D     `json:"position" msgpack:"position"`
	Value    int          `json:"value,omitempty" msgpack:"value,omitempty"`
	Result   *MatchResult `json:"result,omitempty" msgpack:"result,omitempty"`
}
