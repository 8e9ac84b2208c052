package notify

import (
    "context"
    "encoding/json"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

const dispatchQueueName = "notification.dispatch"

// Publisher sends notification events to RabbitMQ.  The connection is
// shared and re-dialed lazily when it drops.  Every Publish error is
// logged at warn and returned for completeness, but callers are
// expected to ignore it: notification delivery is a side effect, not
// correctness-critical, and must never fail the triggering operation.
type Publisher struct {
    url string
    log *zap.Logger

    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

// NewPublisher constructs a Publisher for the given broker URL.  The
// broker is dialed on first publish, not here, so a missing broker
// does not block startup.
func NewPublisher(url string, log *zap.Logger) *Publisher {
    if log == nil {
        log = zap.NewNop()
    }
    return &Publisher{url: url, log: log}
}

// channel returns a usable channel, dialing the broker if necessary.
func (p *Publisher) channel() (*amqp.Channel, error) {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.ch != nil && p.conn != nil && !p.conn.IsClosed() {
        return p.ch, nil
    }
    conn, err := amqp.Dial(p.url)
    if err != nil {
        return nil, err
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, err
    }
    // Durable queue so events survive broker restarts.
    if _, err := ch.QueueDeclare(dispatchQueueName, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, err
    }
    p.conn = conn
    p.ch = ch
    return ch, nil
}

// Publish marshals the event and sends it as a persistent message.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
    if ev.SentAt == "" {
        ev.SentAt = time.Now().UTC().Format(time.RFC3339)
    }
    ch, err := p.channel()
    if err != nil {
        p.log.Warn("notify: broker unavailable", zap.String("kind", ev.Kind), zap.Error(err))
        return err
    }
    body, err := json.Marshal(ev)
    if err != nil {
        p.log.Warn("notify: marshal event failed", zap.Error(err))
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", dispatchQueueName, false, false, pub); err != nil {
        p.log.Warn("notify: publish failed", zap.String("kind", ev.Kind), zap.Error(err))
        // Drop the channel so the next publish re-dials.
        p.mu.Lock()
        p.ch = nil
        p.mu.Unlock()
        return err
    }
    return nil
}

// Close releases the broker connection.
func (p *Publisher) Close() {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        _ = p.conn.Close()
        p.conn = nil
    }
}
