package scoreboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrReceiptUsed 结算凭证已经提交过
var ErrReceiptUsed = errors.New("结算凭证已使用")

// ReceiptLedger 登记已使用的结算凭证，每张凭证只能换一条已验证成绩
type ReceiptLedger interface {
	// Claim 首次登记返回 true，凭证已登记过返回 false。expires 之后可以忘记该凭证
	Claim(ctx context.Context, id string, expires time.Time) (bool, error)
}

// MemoryLedger 进程内的凭证登记，文件存储使用
type MemoryLedger struct {
	mu   sync.Mutex
	used map[string]time.Time
	now  func() time.Time
}

// NewMemoryLedger 创建进程内登记表
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{used: make(map[string]time.Time), now: time.Now}
}

// Claim 登记凭证，顺带清理已过期的记录
func (l *MemoryLedger) Claim(ctx context.Context, id string, expires time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, exp := range l.used {
		if now.After(exp) {
			delete(l.used, k)
		}
	}

	if _, ok := l.used[id]; ok {
		return false, nil
	}
	l.used[id] = expires
	return true, nil
}

// Claim 使用 SETNX 登记，键在凭证过期时一起过期
func (s *RedisStore) Claim(ctx context.Context, id string, expires time.Time) (bool, error) {
	ttl := time.Until(expires)
	if ttl <= 0 {
		ttl = time.Second
	}
	ok, err := s.client.SetNX(ctx, receiptKeyPrefix+id, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("登记结算凭证失败: %w", err)
	}
	return ok, nil
}

// Claim 插入 used_receipts，主键冲突说明已使用
func (s *PostgresStore) Claim(ctx context.Context, id string, expires time.Time) (bool, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM used_receipts WHERE expires_at < now()`); err != nil {
		return false, fmt.Errorf("清理结算凭证失败: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO used_receipts (id, expires_at) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		id, expires,
	)
	if err != nil {
		return false, fmt.Errorf("登记结算凭证失败: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("登记结算凭证失败: %w", err)
	}
	return n == 1, nil
}
