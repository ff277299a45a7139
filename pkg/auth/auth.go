// Package auth 签发和校验游客令牌与成绩凭证(HS256 JWT)
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	audienceSession = "session"
	audienceReceipt = "receipt"

	// ReceiptTTL 结算凭证有效期
	ReceiptTTL = 30 * time.Minute

	maxNameRunes = 32
)

// ErrInvalidToken 令牌无效或已过期
var ErrInvalidToken = errors.New("无效的令牌")

// SessionClaims 游客会话
type SessionClaims struct {
	PlayerID string `json:"pid"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// ReceiptClaims 服务器签发的对局结算凭证
type ReceiptClaims struct {
	Score  int    `json:"score"`
	Wave   int    `json:"wave"`
	Game   string `json:"game"`
	RoomID string `json:"room"`
	jwt.RegisteredClaims
}

// Manager 令牌管理器
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager 创建令牌管理器
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// IssueGuest 为游客签发会话令牌，名字为空时生成默认名
func (m *Manager) IssueGuest(name string) (string, *SessionClaims, error) {
	playerID := uuid.New().String()
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Guest-" + playerID[:8]
	}
	if r := []rune(name); len(r) > maxNameRunes {
		name = string(r[:maxNameRunes])
	}

	now := m.now()
	claims := &SessionClaims{
		PlayerID: playerID,
		Name:     name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			Audience:  jwt.ClaimStrings{audienceSession},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := m.sign(claims)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// ParseSession 校验会话令牌
func (m *Manager) ParseSession(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := m.parse(token, claims, audienceSession); err != nil {
		return nil, err
	}
	return claims, nil
}

// IssueReceipt 为一局结算签发凭证
func (m *Manager) IssueReceipt(score, wave int, game, roomID string) (string, error) {
	now := m.now()
	return m.sign(&ReceiptClaims{
		Score:  score,
		Wave:   wave,
		Game:   game,
		RoomID: roomID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{audienceReceipt},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ReceiptTTL)),
		},
	})
}

// VerifyReceipt 校验结算凭证
func (m *Manager) VerifyReceipt(token string) (*ReceiptClaims, error) {
	claims := &ReceiptClaims{}
	if err := m.parse(token, claims, audienceReceipt); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *Manager) sign(claims jwt.Claims) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("签发令牌失败: %w", err)
	}
	return token, nil
}

func (m *Manager) parse(token string, claims jwt.Claims, audience string) error {
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}
