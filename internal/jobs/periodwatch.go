package jobs

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/db"
	"github.com/eduraapp/edura-backend/internal/notify"
)

// PeriodWatch warns admins when the active period ran past its end date.
// Activation stays a manual, transactional decision; the job only nags.
func PeriodWatch(database *sql.DB, log *zap.SugaredLogger, notifier *notify.Notifier) Job {
	var lastWarned int64
	return func(ctx context.Context) error {
		period, err := db.GetActivePeriod(ctx, database)
		if err != nil {
			if apperr.Is(err, apperr.KindConflict) {
				// No active period: nothing to watch.
				return nil
			}
			return err
		}
		if time.Now().Before(period.EndDate) {
			return nil
		}
		if lastWarned == period.ID {
			return nil
		}
		lastWarned = period.ID
		log.Warnw("active period has ended", "period", period.Name, "ended", period.EndDate)
		notifier.PeriodExpired(period.Name, period.EndDate)
		return nil
	}
}
