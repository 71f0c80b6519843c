package booking

import (
	"context"
	"time"

	"buffr-host/internal/domain"
	"buffr-host/internal/infrastructure/events"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ExpireHolds moves pending bookings whose hold ended before now to expired.
// It returns how many bookings it expired.
func (s *Service) ExpireHolds(ctx context.Context, now time.Time) (int, error) {
	var stale []domain.Booking
	if err := s.DB.WithContext(ctx).
		Where("status = ? AND hold_expires_at IS NOT NULL AND hold_expires_at < ?", domain.BookingPending, now.UTC()).
		Order("hold_expires_at ASC").
		Find(&stale).Error; err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		b := &stale[i]
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&domain.Booking{}).
				Where("booking_id = ? AND status = ?", b.BookingID, domain.BookingPending).
				Updates(map[string]interface{}{"status": domain.BookingExpired, "hold_expires_at": nil})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			expired++
			data := map[string]interface{}{"from": domain.BookingPending, "to": domain.BookingExpired}
			if b.HoldExpiresAt != nil {
				data["hold_expires_at"] = b.HoldExpiresAt.UTC()
			}
			b.Status = domain.BookingExpired
			return writeEvent(tx, b, EventExpired, uuid.Nil, data)
		})
		if err != nil {
			return expired, err
		}
		if b.Status == domain.BookingExpired {
			events.Emit(ctx, s.Events, events.Subject(b.TenantID.String(), "booking", domain.BookingExpired), b)
		}
	}
	s.Metrics.HoldsExpiredAdd(expired)
	return expired, nil
}

// Sweeper runs ExpireHolds on a fixed interval.
type Sweeper struct {
	Service  *Service
	Interval time.Duration
}

// Run sweeps until ctx is cancelled. Sweep errors are logged and retried on the next tick.
func (w *Sweeper) Run(ctx context.Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("booking hold sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("booking hold sweeper stopped")
			return nil
		case <-ticker.C:
			n, err := w.Service.ExpireHolds(ctx, w.Service.now())
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Error().Err(err).Msg("booking hold sweep failed")
				continue
			}
			if n > 0 {
				log.Info().Int("expired", n).Msg("booking holds expired")
			}
		}
	}
}
