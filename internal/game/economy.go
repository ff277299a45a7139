package game

import "github.com/jacl-coder/BaseDefender-Server/internal/models"

// ShotCount 根据累计金币计算一次射击的子弹数：
// 10枚金币前单发，之后每多5枚加一发，最多8发
func ShotCount(coins int) int {
	shots := 1
	if coins >= MultiShotCoins {
		shots = 2 + (coins-MultiShotCoins)/CoinsPerExtraShot
	}
	return min(shots, MaxShots)
}

// dropCoin 在敌人死亡位置放下一枚静止金币
func (m *Match) dropCoin(at models.Vector2D) *models.CoinEntity {
	coin := &models.CoinEntity{BaseEntity: m.newBase(models.EntityCoin, at)}
	m.Coins = append(m.Coins, coin)
	m.emit(models.GameEvent{Type: models.EventCoinDropped, EntityID: coin.ID, Position: at})
	return coin
}

// collectCoin 拾取金币，同一枚金币只计一次
func (m *Match) collectCoin(coin *models.CoinEntity) {
	if coin == nil || coin.Removed {
		return
	}
	coin.Remove()
	m.CoinsCollected++
	m.emit(models.GameEvent{Type: models.EventCoinCollected, EntityID: coin.ID, Value: m.CoinsCollected})
}
