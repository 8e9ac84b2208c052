package notify

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// StartConsumer connects to RabbitMQ, declares the durable
// notification.dispatch queue and consumes it, appending each event
// to logs/notify.log.  In a full deployment an email/SMS gateway
// consumes this queue instead; the file sink keeps local development
// observable.  The function runs a reconnect loop with backoff and
// never returns under normal operation; processing errors reject the
// offending message without requeue so the loop cannot spin on a
// poison message.
func StartConsumer(url string, log *zap.Logger) error {
    if log == nil {
        log = zap.NewNop()
    }
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Warn("notify-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn, log); err != nil {
            log.Warn("notify-consumer: consume loop ended", zap.Error(err))
            time.Sleep(2 * time.Second)
        }
    }
}

func consumeLoop(conn *amqp.Connection, log *zap.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warn("notify-consumer: set QoS failed", zap.Error(err))
    }
    if _, err := ch.QueueDeclare(dispatchQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(dispatchQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }
    for d := range msgs {
        if err := handleMessage(d.Body); err != nil {
            log.Warn("notify-consumer: handle message failed", zap.Error(err))
            _ = d.Nack(false, false)
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
    var ev Event
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll("logs", 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join("logs", "notify.log"),
        os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    line := fmt.Sprintf("[%s] %s | reservation_id=%s | guest=%q | email=%s | date=%s %s | party=%d | locale=%s\n",
        ev.SentAt, ev.Kind, ev.ReservationID, ev.GuestName, ev.Email, ev.Date, ev.Time, ev.PartySize, ev.Locale)
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
