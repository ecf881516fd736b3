package service

import (
    "context"
    "encoding/json"
    "errors"
    "log"
    "sync"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/event-registration/internal/config"
    q "github.com/iliyamo/event-registration/internal/queue"
)

// ErrBrokerUnavailable is returned while a recent connection failure is
// still cooling down; no dial is attempted.
var ErrBrokerUnavailable = errors.New("rabbitmq: broker unavailable")

// RegistrationPublisher publishes registration domain events to RabbitMQ
// over one long-lived connection and channel.  The connection is opened
// lazily and reopened after a failure; after a failed dial, publishes fail
// fast with ErrBrokerUnavailable for retryAfter so an unreachable broker
// never adds a dial timeout to every request.  Errors are logged and
// returned so the caller can choose to ignore them.
type RegistrationPublisher struct {
    url         string
    queue       string
    dialTimeout time.Duration
    retryAfter  time.Duration
    now         func() time.Time

    mu        sync.Mutex
    conn      *amqp.Connection
    ch        *amqp.Channel
    downUntil time.Time
}

func NewRegistrationPublisher(cfg config.QueueConfig) *RegistrationPublisher {
    name := cfg.Queue
    if name == "" {
        name = q.RegistrationQueue
    }
    return &RegistrationPublisher{
        url:         cfg.URL,
        queue:       name,
        dialTimeout: 3 * time.Second,
        retryAfter:  10 * time.Second,
        now:         time.Now,
    }
}

// Publish sends ev as a persistent JSON message on the registration queue.
func (p *RegistrationPublisher) Publish(ctx context.Context, ev q.RegistrationEvent) error {
    pub, err := newPublishing(ev)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    p.mu.Lock()
    defer p.mu.Unlock()

    ch, err := p.channelLocked()
    if err != nil {
        return err
    }
    if err := ch.PublishWithContext(ctx,
        "",      // default exchange
        p.queue, // routing key = queue name
        false,   // mandatory
        false,   // immediate
        pub,
    ); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        p.closeLocked()
        return err
    }
    return nil
}

// channelLocked returns the open channel, dialing when there is none.
// Callers hold p.mu.
func (p *RegistrationPublisher) channelLocked() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    if p.now().Before(p.downUntil) {
        return nil, ErrBrokerUnavailable
    }
    p.closeLocked()

    conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.dialTimeout)})
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        p.downUntil = p.now().Add(p.retryAfter)
        return nil, err
    }
    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        _ = conn.Close()
        p.downUntil = p.now().Add(p.retryAfter)
        return nil, err
    }
    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        _ = conn.Close()
        p.downUntil = p.now().Add(p.retryAfter)
        return nil, err
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

func (p *RegistrationPublisher) closeLocked() {
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        _ = p.conn.Close()
        p.conn = nil
    }
}

// Close releases the broker connection.
func (p *RegistrationPublisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.closeLocked()
    return nil
}

func newPublishing(ev q.RegistrationEvent) (amqp.Publishing, error) {
    body, err := json.Marshal(ev)
    if err != nil {
        return amqp.Publishing{}, err
    }
    return amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    uuid.NewString(),
        Type:         ev.Type,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }, nil
}

// NopPublisher discards events.  Used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, q.RegistrationEvent) error { return nil }
