package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/HollandRoad/mls/internal/cache"
	"github.com/HollandRoad/mls/internal/events"
	"github.com/HollandRoad/mls/internal/observability/metrics"
	tenantdomain "github.com/HollandRoad/mls/internal/tenant/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const contactCacheTTL = 5 * time.Minute

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Mailer Mailer
	Config Config `optional:"true"`
}

// Worker drains the notification outbox and hands each event to the mailer.
// Events stay unpublished when delivery fails so the next poll retries them.
type Worker struct {
	db       *gorm.DB
	log      *zap.Logger
	mailer   Mailer
	cfg      Config
	contacts cache.Cache[snowflake.ID, string]
	metrics  *metrics.OutboxMetrics
}

func NewWorker(p Params) *Worker {
	cfg := p.Config.withDefaults()
	return &Worker{
		db:       p.DB,
		log:      p.Log.Named("notifier.worker"),
		mailer:   p.Mailer,
		cfg:      cfg,
		contacts: cache.NewTTLCache[snowflake.ID, string](),
		metrics:  metrics.Outbox(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(); err != nil {
			w.log.Warn("notifier run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce drains at most one batch and reports how many events it delivered.
func (w *Worker) RunOnce() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return w.processBatch(ctx, w.cfg.BatchSize)
}

func (w *Worker) processBatch(ctx context.Context, limit int) (int, error) {
	if w.db == nil || w.mailer == nil {
		return 0, errors.New("notifier_unavailable")
	}
	if limit <= 0 {
		limit = w.cfg.BatchSize
	}

	var pending []events.NotificationEvent
	err := w.db.WithContext(ctx).
		Where("published = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&pending).Error
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, event := range pending {
		email, err := w.contactEmail(ctx, event.TenantID)
		if err != nil {
			w.log.Warn("contact lookup failed",
				zap.String("event_id", event.ID.String()),
				zap.Error(err),
			)
			w.metrics.IncProcessed("skipped")
			continue
		}

		msg := Message{
			To:      email,
			Subject: subjectFor(event.EventType),
			Body:    renderBody(event),
		}
		if err := w.mailer.Send(ctx, msg); err != nil {
			w.log.Warn("delivery failed",
				zap.String("event_id", event.ID.String()),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			w.metrics.IncProcessed("failed")
			continue
		}

		now := time.Now().UTC()
		err = w.db.WithContext(ctx).
			Model(&events.NotificationEvent{}).
			Where("id = ? AND published = ?", event.ID, false).
			Updates(map[string]any{
				"published":    true,
				"published_at": now,
			}).Error
		if err != nil {
			return delivered, err
		}
		w.metrics.ObserveDeliveryLag(time.Since(event.CreatedAt))
		w.metrics.IncProcessed("delivered")
		delivered++
	}

	var backlog int64
	err = w.db.WithContext(ctx).
		Model(&events.NotificationEvent{}).
		Where("published = ?", false).
		Count(&backlog).Error
	if err == nil {
		w.metrics.SetBacklog(int(backlog))
	}
	return delivered, nil
}

func (w *Worker) contactEmail(ctx context.Context, tenantID snowflake.ID) (string, error) {
	if email, ok := w.contacts.Get(tenantID); ok {
		return email, nil
	}

	var tenant tenantdomain.Tenant
	err := w.db.WithContext(ctx).
		Where("id = ?", tenantID).
		First(&tenant).Error
	if err != nil {
		return "", err
	}

	w.contacts.Set(tenantID, tenant.Email, contactCacheTTL)
	return tenant.Email, nil
}

func subjectFor(eventType string) string {
	switch eventType {
	case events.EventTenancyAssigned:
		return "Your tenancy has started"
	case events.EventTenancyEnded:
		return "Your tenancy has ended"
	case events.EventPaymentRecorded:
		return "We received your rent payment"
	case events.EventAdjustmentBound:
		return "A utilities adjustment was applied to your rent"
	case events.EventAdjustmentUnbound:
		return "A utilities adjustment was removed from your rent"
	default:
		return "Notification from your property manager"
	}
}

func renderBody(event events.NotificationEvent) string {
	raw, err := json.Marshal(event.Payload)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
