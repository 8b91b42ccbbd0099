// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/olegiv/agencyhub/internal/model"
	"github.com/olegiv/agencyhub/internal/store"
	"github.com/olegiv/agencyhub/internal/util"
)

// Dispatcher records deliveries for subscribed webhooks and sends them on
// a bounded pool of workers.
type Dispatcher struct {
	queries *store.Queries
	logger  *slog.Logger
	client  *http.Client
	queue   chan *QueuedDelivery
	workers int
	wg      sync.WaitGroup
	done    chan struct{}
	mu      sync.RWMutex
	running bool
	now     func() time.Time
}

// QueuedDelivery represents a delivery queued for processing.
type QueuedDelivery struct {
	DeliveryID int64
	WebhookID  int64
	Event      string
	Payload    []byte
	URL        string
	Secret     string
}

// Config holds dispatcher configuration.
type Config struct {
	Workers   int // Number of concurrent delivery workers
	QueueSize int
	// Client overrides the SSRF-guarded default HTTP client.
	Client *http.Client
}

// DefaultConfig returns default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Workers:   3,
		QueueSize: 100,
	}
}

// NewHTTPClient returns a client that refuses to connect to private and
// loopback addresses.
func NewHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	return &http.Client{
		Timeout: RequestTimeout,
		Transport: &http.Transport{
			DialContext:         util.SSRFSafeDialContext(dialer),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// NewDispatcher creates a new webhook dispatcher.
func NewDispatcher(db *sql.DB, logger *slog.Logger, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.Client == nil {
		cfg.Client = NewHTTPClient()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		queries: store.New(db),
		logger:  logger,
		client:  cfg.Client,
		queue:   make(chan *QueuedDelivery, cfg.QueueSize),
		workers: cfg.Workers,
		done:    make(chan struct{}),
		now:     time.Now,
	}
}

// Start starts the dispatcher workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.logger.Info("starting webhook dispatcher", "workers", d.workers)

	for i := range d.workers {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Stop stops the dispatcher and waits for workers to finish. Deliveries
// still queued are left pending and picked up by RetryDue.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	d.logger.Info("stopping webhook dispatcher")
	close(d.done)
	d.wg.Wait()
	d.logger.Info("webhook dispatcher stopped")
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	d.logger.Debug("webhook worker started", "worker_id", id)

	for {
		select {
		case <-d.done:
			d.logger.Debug("webhook worker stopping", "worker_id", id)
			return
		case <-ctx.Done():
			d.logger.Debug("webhook worker context cancelled", "worker_id", id)
			return
		case delivery := <-d.queue:
			d.processDelivery(ctx, delivery)
		}
	}
}

// Dispatch records a delivery for every active webhook of the event's
// business that subscribes to its type, and queues them.
func (d *Dispatcher) Dispatch(ctx context.Context, event *Event) error {
	webhooks, err := d.queries.ListWebhooksForEvent(ctx, event.OrgID, event.Type)
	if err != nil {
		return fmt.Errorf("listing webhooks for %s: %w", event.Type, err)
	}
	if len(webhooks) == 0 {
		d.logger.Debug("no webhooks subscribed to event", "event_type", event.Type, "org_id", event.OrgID)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling %s payload: %w", event.Type, err)
	}

	now := d.timestamp()
	for _, wh := range webhooks {
		// The SQL match is a LIKE; confirm against the decoded list.
		if !model.SubscribedTo(wh.Events, event.Type) {
			continue
		}

		delivery, err := d.queries.CreateWebhookDelivery(ctx, store.CreateWebhookDeliveryParams{
			WebhookID: wh.ID,
			Event:     event.Type,
			Payload:   string(payload),
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			d.logger.Error("failed to create delivery record",
				"error", err,
				"webhook_id", wh.ID,
				"event_type", event.Type)
			continue
		}

		d.enqueue(ctx, &QueuedDelivery{
			DeliveryID: delivery.ID,
			WebhookID:  wh.ID,
			Event:      event.Type,
			Payload:    payload,
			URL:        wh.Url,
			Secret:     wh.Secret,
		}, now)
	}

	return nil
}

// DispatchEvent builds an event and dispatches it.
func (d *Dispatcher) DispatchEvent(ctx context.Context, orgID int64, eventType string, data any) error {
	return d.Dispatch(ctx, NewEvent(orgID, eventType, data))
}

// enqueue hands a delivery to the workers, or schedules it for the retry
// job when the dispatcher is stopped or its queue is full.
func (d *Dispatcher) enqueue(ctx context.Context, qd *QueuedDelivery, now time.Time) {
	d.mu.RLock()
	running := d.running
	d.mu.RUnlock()

	if running {
		select {
		case d.queue <- qd:
			d.logger.Debug("delivery queued", "delivery_id", qd.DeliveryID)
			return
		default:
			d.logger.Warn("delivery queue full, delivery will be retried later", "delivery_id", qd.DeliveryID)
		}
	}

	if err := d.queries.ScheduleDelivery(ctx, qd.DeliveryID, now); err != nil {
		d.logger.Error("failed to schedule delivery", "error", err, "delivery_id", qd.DeliveryID)
	}
}

func (d *Dispatcher) timestamp() time.Time {
	return d.now().UTC().Truncate(time.Second)
}

// GenerateSignature generates an HMAC-SHA256 signature for the payload.
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature verifies an HMAC-SHA256 signature.
func VerifySignature(payload []byte, signature, secret string) bool {
	expectedSig := GenerateSignature(payload, secret)
	return hmac.Equal([]byte(signature), []byte(expectedSig))
}
