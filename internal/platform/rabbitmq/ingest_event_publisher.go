package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"pdfchatbot/internal/model"
)

// publishChannel is the subset of *amqp.Channel used for publishing.
type publishChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// IngestEventPublisher sends ingestion outcomes to a durable queue.
// Consumers are outside this service.
type IngestEventPublisher struct {
	conn        *amqp.Connection
	queueName   string
	openChannel func() (publishChannel, error)

	mu       sync.Mutex
	declared bool
}

func NewIngestEventPublisher(conn *amqp.Connection, queueName string) *IngestEventPublisher {
	p := &IngestEventPublisher{
		conn:      conn,
		queueName: queueName,
	}
	p.openChannel = func() (publishChannel, error) {
		return p.conn.Channel()
	}
	return p
}

func (p *IngestEventPublisher) PublishIngestion(ctx context.Context, event model.IngestionEvent) error {
	ch, err := p.openChannel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := p.declareQueue(ch); err != nil {
		return err
	}

	body, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Type:         "ingestion." + event.Stage,
			Timestamp:    event.OccurredAt,
		},
	); err != nil {
		return fmt.Errorf("publish ingestion event failed: %w", err)
	}
	return nil
}

// declareQueue runs until one declare succeeds; failures are retried on the next publish.
func (p *IngestEventPublisher) declareQueue(ch publishChannel) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.declared {
		return nil
	}
	if _, err := ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}
	p.declared = true
	return nil
}

func (p *IngestEventPublisher) Connected() bool {
	return p.conn != nil && !p.conn.IsClosed()
}

func EncodeEvent(event model.IngestionEvent) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal ingestion event failed: %w", err)
	}
	return body, nil
}
