package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

func TestApplyDamage(t *testing.T) {
	enemy := &models.EnemyEntity{Vitals: models.Vitals{Health: 40, MaxHealth: 40}}

	assert.False(t, ApplyDamage(enemy, 20))
	assert.Equal(t, 20, enemy.HP())

	assert.True(t, ApplyDamage(enemy, 30))
	assert.Equal(t, -10, enemy.HP())
	assert.Equal(t, 40, enemy.MaxHP())
}

func TestApplyDamageNegativeIsIgnored(t *testing.T) {
	base := &models.BaseStructure{Vitals: models.Vitals{Health: 300, MaxHealth: 300}}

	assert.False(t, ApplyDamage(base, -50))
	assert.Equal(t, 300, base.HP())
	assert.False(t, ApplyDamage(base, 0))
	assert.Equal(t, 300, base.HP())
}

func TestApplyDamageNilTarget(t *testing.T) {
	assert.False(t, ApplyDamage(nil, 10))
}
