package queue

import (
	"context"
	"fmt"

	"github.com/phambaophuc/face-detection/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// JobAnalyzer is the detection pipeline a worker runs for each job.
type JobAnalyzer interface {
	Analyze(ctx context.Context, imageURL, requestID string) (*models.DetectionResult, error)
}

// Channel is the part of *amqp.Channel the service publishes and consumes through.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	QueueInspect(name string) (amqp.Queue, error)
	Close() error
}

type QueueService struct {
	conn      *amqp.Connection
	channel   Channel
	logger    *zap.Logger
	queueName string
	analyzer  JobAnalyzer
	jobs      *JobStore
}

func NewQueueService(
	rabbitmqURL string,
	queueName string,
	analyzer JobAnalyzer,
	jobs *JobStore,
	logger *zap.Logger,
) (*QueueService, error) {
	if rabbitmqURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is not set")
	}
	if jobs == nil {
		return nil, fmt.Errorf("job store is required for async detection")
	}

	conn, err := amqp.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return newQueueService(conn, channel, queueName, analyzer, jobs, logger), nil
}

func newQueueService(conn *amqp.Connection, channel Channel, queueName string, analyzer JobAnalyzer, jobs *JobStore, logger *zap.Logger) *QueueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueService{
		conn:      conn,
		channel:   channel,
		logger:    logger,
		queueName: queueName,
		analyzer:  analyzer,
		jobs:      jobs,
	}
}

// StartWorkers launches n consumers that stop when ctx is cancelled.
func (q *QueueService) StartWorkers(ctx context.Context, n int) error {
	for i := 1; i <= n; i++ {
		if err := q.StartWorker(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

func (q *QueueService) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
	return nil
}

func (q *QueueService) Job(ctx context.Context, id string) (*models.DetectionJob, error) {
	return q.jobs.Get(ctx, id)
}
