package reminder

import (
	"context"
	"fmt"
	"time"

	"realty-crm/internal/config"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// maxPerRun bounds how many reminders one tick sends
const maxPerRun = 100

// Dispatcher sends due reminders on a cron schedule
type Dispatcher struct {
	repo     ReminderRepository
	sender   Sender
	logger   *zap.Logger
	schedule string

	scheduler *cron.Cron
	now       func() time.Time
}

func NewDispatcher(repo ReminderRepository, sender Sender, cfg *config.Config, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		repo:     repo,
		sender:   sender,
		logger:   logger,
		schedule: cfg.ReminderSchedule,
		now:      time.Now,
	}
}

// cronLogger routes the scheduler's own logging through zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

func (d *Dispatcher) Start() error {
	logger := cronLogger{s: d.logger.Sugar()}
	d.scheduler = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	if _, err := d.scheduler.AddFunc(d.schedule, func() {
		d.Dispatch(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", d.schedule, err)
	}

	d.scheduler.Start()
	d.logger.Info("Reminder dispatcher started", zap.String("schedule", d.schedule))
	return nil
}

func (d *Dispatcher) Stop(ctx context.Context) error {
	if d.scheduler == nil {
		return nil
	}
	select {
	case <-d.scheduler.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch sends every due reminder, marking each sent or failed
func (d *Dispatcher) Dispatch(ctx context.Context) (sent, failed int) {
	for i := 0; i < maxPerRun; i++ {
		rem, err := d.repo.ClaimDue(ctx, d.now())
		if err != nil {
			d.logger.Error("Failed to claim due reminder", zap.Error(err))
			break
		}
		if rem == nil {
			break
		}

		messageID, err := d.sender.Send(ctx, rem.PhoneNumber, rem.Message)
		now := d.now()
		if err != nil {
			failed++
			d.logger.Warn("Reminder SMS failed", zap.String("reminderId", rem.ID.Hex()), zap.Error(err))
			d.mark(ctx, rem, bson.M{"status": StatusFailed, "lastError": err.Error(), "updatedAt": now})
			continue
		}

		sent++
		d.mark(ctx, rem, bson.M{"status": StatusSent, "messageId": messageID, "sentAt": now, "updatedAt": now})
	}

	if sent+failed > 0 {
		d.logger.Info("Reminder dispatch finished", zap.Int("sent", sent), zap.Int("failed", failed))
	}
	return sent, failed
}

func (d *Dispatcher) mark(ctx context.Context, rem *Reminder, set bson.M) {
	if err := d.repo.Update(ctx, rem.ID, set); err != nil {
		d.logger.Error("Failed to record reminder outcome", zap.String("reminderId", rem.ID.Hex()), zap.Error(err))
	}
}

// RegisterDispatcher ties the scheduler to the application lifecycle
func RegisterDispatcher(lc fx.Lifecycle, d *Dispatcher) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return d.Start()
		},
		OnStop: func(ctx context.Context) error {
			return d.Stop(ctx)
		},
	})
}
