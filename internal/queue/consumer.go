package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

const registrationLogFile = "registrations.log"

// StartRegistrationConsumer connects to RabbitMQ, declares the queue
// (durable), and appends every delivered RegistrationEvent as one line to
// <logDir>/registrations.log.  It reconnects with exponential backoff and
// returns only when ctx is cancelled.  Malformed messages are rejected
// without requeue so the loop keeps moving.
func StartRegistrationConsumer(ctx context.Context, url, queueName, logDir string) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("registration-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleepCtx(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, queueName, logDir)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Printf("registration-consumer: consume loop ended: %v; reconnecting", err)
        if !sleepCtx(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queueName, logDir string) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("registration-consumer: set QoS failed: %v", err)
    }

    if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.ConsumeWithContext(ctx, queueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := handleMessage(logDir, d.Body); err != nil {
            log.Printf("registration-consumer: handle message failed: %v", err)
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func handleMessage(logDir string, body []byte) error {
    var ev RegistrationEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" || ev.RegistrationID == 0 {
        return fmt.Errorf("incomplete event: %q", body)
    }
    if err := os.MkdirAll(logDir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(logDir, registrationLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatLine(ev RegistrationEvent) string {
    at := ev.OccurredAt.UTC().Format(time.RFC3339)
    switch ev.Type {
    case TypeRegistrationStatusChanged:
        return fmt.Sprintf("[%s] Registration %s | registration_id=%d | event_id=%d | email=%q | %s -> %s\n",
            at, ev.Status, ev.RegistrationID, ev.EventID, ev.Email, ev.PreviousStatus, ev.Status)
    default:
        return fmt.Sprintf("[%s] Registration created | registration_id=%d | event_id=%d | event=%q | name=%q | email=%q | seats=%d/%d\n",
            at, ev.RegistrationID, ev.EventID, ev.EventTitle, ev.Name, ev.Email, ev.OccupiedSeats, ev.TotalSeats)
    }
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
