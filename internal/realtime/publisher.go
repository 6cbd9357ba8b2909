package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/slingventas/sales-tracker-backend/internal/platform/database"
	"github.com/slingventas/sales-tracker-backend/internal/platform/logging"
	"github.com/slingventas/sales-tracker-backend/internal/platform/metrics"
	"github.com/slingventas/sales-tracker-backend/pkg/lifecycle"
)

const (
	moduleName  = "realtime"
	queueSize   = 256
	publishWait = 2 * time.Second
	resubscribe = 5 * time.Second
)

// Publisher delivers change events to the local hub at once and, when Redis
// is configured, relays them to the other instances through Channel.
type Publisher struct {
	hub    *Hub
	rdb    *redis.Client
	log    *logrus.Logger
	origin string
	queue  chan Event
	now    func() time.Time

	shutdownMu sync.Mutex
	isShutdown bool
}

// NewPublisher builds a publisher. rdb may be nil for a single instance.
func NewPublisher(hub *Hub, rdb *redis.Client, log *logrus.Logger) *Publisher {
	if log == nil {
		log = logging.GetLogger()
	}
	origin := uuid.NewString()
	if id, err := uuid.NewV7(); err == nil {
		origin = id.String()
	}
	p := &Publisher{
		hub:    hub,
		rdb:    rdb,
		log:    log,
		origin: origin,
		now:    time.Now,
	}
	if rdb != nil {
		p.queue = make(chan Event, queueSize)
	}
	return p
}

// Hub returns the local hub.
func (p *Publisher) Hub() *Hub {
	return p.hub
}

// Notify implements the notifier used by the record and cycle services.
func (p *Publisher) Notify(_ context.Context, table, action string) {
	ev := Event{Table: table, Action: action, At: p.now().UTC(), Origin: p.origin}
	p.hub.Broadcast(ev)
	metrics.RealtimeEvents.WithLabelValues(table).Inc()

	if p.queue == nil {
		return
	}
	p.shutdownMu.Lock()
	defer p.shutdownMu.Unlock()
	if p.isShutdown {
		return
	}
	select {
	case p.queue <- ev:
	default:
		p.log.WithField("table", table).Warn("realtime: relay queue full, event not relayed")
	}
}

// RunRelay publishes queued events to Redis until graceful shuts down,
// then drains what is left until the queue is empty or force shuts down.
// Events queued while Redis is unhealthy are dropped; other instances
// catch up on their next refresh.
func (p *Publisher) RunRelay(graceful, force *lifecycle.Handle) {
	if p.queue == nil {
		<-graceful.Done()
		return
	}
	for {
		select {
		case <-graceful.Done():
			p.shutdownMu.Lock()
			p.isShutdown = true
			p.shutdownMu.Unlock()
			p.drain(force)
			return
		case ev := <-p.queue:
			if !database.IsRedisHealthy() {
				continue
			}
			p.publish(ev)
		}
	}
}

func (p *Publisher) drain(force *lifecycle.Handle) {
	for {
		select {
		case <-force.Done():
			p.log.WithField("pending", len(p.queue)).Warn("realtime: relay stopped before queue was empty")
			return
		case ev := <-p.queue:
			if database.IsRedisHealthy() {
				p.publish(ev)
			}
		default:
			return
		}
	}
}

func (p *Publisher) publish(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logging.LogError(p.log, moduleName, "publish", "encode event", ev, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishWait)
	defer cancel()
	if err := p.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		logging.LogError(p.log, moduleName, "publish", "publish to redis", ev.Table, err)
	}
}

// RunSubscriber forwards events from other instances to the local hub
// until h shuts down, resubscribing after connection loss.
func (p *Publisher) RunSubscriber(h *lifecycle.Handle) {
	if p.rdb == nil {
		<-h.Done()
		return
	}
	for {
		if err := p.subscribeOnce(h); err != nil && h.Err() == nil {
			p.log.WithError(err).Warn("realtime: subscription lost, retrying")
		}
		if err := h.Sleep(resubscribe); err != nil {
			return
		}
	}
}

func (p *Publisher) subscribeOnce(h *lifecycle.Handle) error {
	sub := p.rdb.Subscribe(h.Ctx(), Channel)
	defer sub.Close()

	if _, err := sub.Receive(h.Ctx()); err != nil {
		return err
	}
	p.log.WithField("channel", Channel).Info("realtime: subscribed")

	msgs := sub.Channel()
	for {
		select {
		case <-h.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			p.forward(msg.Payload)
		}
	}
}

func (p *Publisher) forward(payload string) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		p.log.WithError(err).Warn("realtime: dropping malformed event")
		return
	}
	if ev.Origin == p.origin {
		return
	}
	p.hub.Broadcast(ev)
}
