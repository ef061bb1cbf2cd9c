package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cocolytics/internal/domain/model"
	"cocolytics/internal/infra/redisx"
	repo "cocolytics/internal/repository"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

const dedupeTTL = 24 * time.Hour

// LowStockSweeper は定期的に在庫を見て、しきい値を下回った商品の
// 担当スタッフへ通知を作る。同じ商品への通知は24時間に1回。
type LowStockSweeper struct {
	products      repo.ProductRepository
	notifications repo.NotificationRepository
	rdb           *redis.Client // nilなら重複排除はプロセス内メモリのみ
	threshold     int64
	interval      time.Duration
	logger        *log.Logger

	mu   sync.Mutex
	seen map[int64]time.Time // Redisなし運用のフォールバック
}

func NewLowStockSweeper(
	products repo.ProductRepository,
	notifications repo.NotificationRepository,
	rdb *redis.Client,
	threshold int64,
	interval time.Duration,
) *LowStockSweeper {
	logger := log.New("lowstock")
	logger.SetHeader("${time_rfc3339} ${level} ${prefix}")

	return &LowStockSweeper{
		products:      products,
		notifications: notifications,
		rdb:           rdb,
		threshold:     threshold,
		interval:      interval,
		logger:        logger,
		seen:          make(map[int64]time.Time),
	}
}

// Run はctxが終わるまでスイープを繰り返す。goroutineで呼ぶ。
func (s *LowStockSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce は1回分のスイープ。失敗してもログだけ出して続行する。
func (s *LowStockSweeper) SweepOnce(ctx context.Context) {
	items, err := s.products.ListLowStock(ctx, s.threshold)
	if err != nil {
		s.logger.Warnf("low stock sweep failed: %v", err)
		return
	}

	for _, p := range items {
		ok, err := s.claimAlert(ctx, p.ID)
		if err != nil {
			s.logger.Warnf("alert dedupe check failed for cocolumber %d: %v", p.ID, err)
			continue
		}
		if !ok {
			continue
		}

		productID := p.ID
		n := model.Notification{
			UserID:           p.StaffID,
			Type:             model.NotificationLowStock,
			Title:            "Low stock alert",
			Message:          fmt.Sprintf("Cocolumber #%d (%s) is low on stock: %d remaining", p.ID, p.Size, p.Stock),
			RelatedProductID: &productID,
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			s.logger.Warnf("failed to create low stock notification for cocolumber %d: %v", p.ID, err)
		}
	}
}

// claimAlert は「この商品のアラートを今回出してよいか」を判定する。
// RedisがあればSETNX+TTL、なければプロセス内メモリで代用。
func (s *LowStockSweeper) claimAlert(ctx context.Context, productID int64) (bool, error) {
	if s.rdb != nil {
		return s.rdb.SetNX(ctx, redisx.LowStockAlertKey(productID), 1, dedupeTTL).Result()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if last, ok := s.seen[productID]; ok && now.Sub(last) < dedupeTTL {
		return false, nil
	}
	s.seen[productID] = now
	return true, nil
}
