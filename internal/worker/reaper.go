package worker

import (
	"context"
	"time"

	"app/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 期限切れ予約の一括解放を行う側の約束。
type Sweeper interface {
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

// 一定間隔で期限切れのPENDING予約をCANCELLEDにするバックグラウンド処理。
// 失敗してもログを出して次の周期に進む。多重起動しても、解放は
// 条件付きUPDATEなので二重キャンセルにはならない。
type ReservationReaper struct {
	sweeper  Sweeper
	clock    usecase.Clock
	interval time.Duration
	logger   *zap.Logger
}

// DI
func NewReservationReaper(sweeper Sweeper, clock usecase.Clock, interval time.Duration, logger *zap.Logger) *ReservationReaper {
	return &ReservationReaper{
		sweeper:  sweeper,
		clock:    clock,
		interval: interval,
		logger:   logger,
	}
}

// ctxがキャンセルされるまで回り続ける。goroutineで起動すること。
func (r *ReservationReaper) Run(ctx context.Context) {
	r.logger.Info("reservation reaper started", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reservation reaper stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// 1回分の掃除。テストやスケジューラから単発でも呼べる。
func (r *ReservationReaper) Sweep(ctx context.Context) {
	sweepID := uuid.NewString()

	count, err := r.sweeper.ExpirePending(ctx, r.clock.Now())
	if err != nil {
		//落とさない。次の周期でもう一度やる。
		r.logger.Error("reservation sweep failed",
			zap.String("sweep_id", sweepID),
			zap.Error(err))
		return
	}

	if count > 0 {
		r.logger.Info("expired pending reservations released",
			zap.String("sweep_id", sweepID),
			zap.Int64("count", count))
	}
}
