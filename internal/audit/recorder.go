package audit

import (
	"context"
	"fmt"
	"time"

	"freightdesk_backend/internal/events"
	"freightdesk_backend/platform/config"
	"freightdesk_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Recorder enqueues audit entries as background tasks. When no queue is
// configured it falls back to a direct synchronous insert. Either way,
// recording is best-effort: failures are logged and swallowed.
type Recorder struct {
	client *asynq.Client
	queue  string
	repo   *Repository
	log    *logger.Logger
}

// NewRecorder creates an audit recorder. A nil or empty redis URL disables
// the queue path.
func NewRecorder(cfg config.SchedulerConfig, repo *Repository, log *logger.Logger) *Recorder {
	r := &Recorder{repo: repo, log: log}

	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		log.Warn("REDIS_URL not configured; audit entries will be written synchronously")
		return r
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		log.Error("invalid redis url; audit entries will be written synchronously", "error", err)
		return r
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	r.client = asynq.NewClient(opt)
	r.queue = queue
	return r
}

// Close releases the queue client.
func (r *Recorder) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

// Record submits an audit entry. Never returns an error to the caller.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if r.client != nil {
		task, err := NewAuditRecordTask(AuditRecordPayload{Entry: entry})
		if err == nil {
			if _, err = r.client.EnqueueContext(ctx, task, asynq.Queue(r.queue), asynq.MaxRetry(5)); err == nil {
				return
			}
		}
		r.log.Error("failed to enqueue audit entry, falling back to direct write",
			"resourceId", entry.ResourceID, "action", entry.Action, "error", err)
	}

	if err := r.repo.Insert(ctx, entry); err != nil {
		r.log.Error("failed to write audit entry",
			"resourceId", entry.ResourceID, "action", entry.Action, "error", err)
	}
}

// RegisterHandlers subscribes the recorder to quotation lifecycle events.
func (r *Recorder) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.QuotationCreated{}.EventName(), events.HandlerFunc(r.onQuotationCreated))
	bus.Subscribe(events.QuotationUpdated{}.EventName(), events.HandlerFunc(r.onQuotationUpdated))
	bus.Subscribe(events.QuotationStatusChanged{}.EventName(), events.HandlerFunc(r.onQuotationStatusChanged))
	bus.Subscribe(events.QuotationDeleted{}.EventName(), events.HandlerFunc(r.onQuotationDeleted))
}

func (r *Recorder) onQuotationCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.QuotationCreated)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	r.Record(ctx, Entry{
		ResourceType: ResourceQuotation,
		ResourceID:   e.QuotationID,
		Action:       ActionCreated,
		ActorID:      e.ActorID,
		ActorContact: e.ActorEmail,
		AfterFields: map[string]any{
			"referenceNumber": e.ReferenceNumber,
			"customerName":    e.CustomerName,
		},
		CreatedAt: e.OccurredAt(),
	})
	return nil
}

func (r *Recorder) onQuotationUpdated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.QuotationUpdated)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	r.Record(ctx, Entry{
		ResourceType: ResourceQuotation,
		ResourceID:   e.QuotationID,
		Action:       ActionUpdated,
		ActorID:      e.ActorID,
		ActorContact: e.ActorEmail,
		BeforeFields: e.BeforeFields,
		AfterFields:  e.AfterFields,
		CreatedAt:    e.OccurredAt(),
	})
	return nil
}

func (r *Recorder) onQuotationStatusChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(events.QuotationStatusChanged)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	r.Record(ctx, Entry{
		ResourceType: ResourceQuotation,
		ResourceID:   e.QuotationID,
		Action:       ActionStatusChanged,
		ActorID:      e.ActorID,
		ActorContact: e.ActorEmail,
		BeforeFields: map[string]any{"status": e.OldStatus},
		AfterFields:  map[string]any{"status": e.NewStatus, "closeReason": e.CloseReason},
		CreatedAt:    e.OccurredAt(),
	})
	return nil
}

func (r *Recorder) onQuotationDeleted(ctx context.Context, event events.Event) error {
	e, ok := event.(events.QuotationDeleted)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	r.Record(ctx, Entry{
		ResourceType: ResourceQuotation,
		ResourceID:   e.QuotationID,
		Action:       ActionDeleted,
		ActorID:      e.ActorID,
		ActorContact: e.ActorEmail,
		BeforeFields: map[string]any{"referenceNumber": e.ReferenceNumber},
		CreatedAt:    e.OccurredAt(),
	})
	return nil
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
