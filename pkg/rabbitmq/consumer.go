package rabbitmq

import (
	"context"
	"errors"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"tutorial-service/config"
)

// ErrDiscard tells the consumer to acknowledge a message whose handler failed
// because retrying can never succeed.
var ErrDiscard = errors.New("discard message")

type Consumer[T any] interface {
	Consume(ctx context.Context, dependencies T) error
}

type consumer[T any] struct {
	conn       *amqp.Connection
	cfg        *config.RabbitMQ
	handler    func(ctx context.Context, msg amqp.Delivery, dependencies T) error
	numWorkers int
}

func (c consumer[T]) Consume(ctx context.Context, dependencies T) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	exchangeName := c.cfg.ExchangeName
	queueName := c.cfg.QueueName
	routingKey := c.cfg.RoutingKey

	err = ch.ExchangeDeclare(exchangeName, c.cfg.Kind, true, false, false, false, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("exchange", exchangeName).Msg("failed to declare exchange")
		return err
	}

	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("queue", queueName).Msg("failed to declare queue")
		return err
	}

	err = ch.QueueBind(q.Name, routingKey, exchangeName, false, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("queue", queueName).Msg("failed to bind queue")
		return err
	}

	err = ch.Qos(c.numWorkers, 0, false)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("queue", queueName).Msg("failed to set QoS")
		return err
	}

	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("queue", queueName).Msg("failed to consume queue")
		return err
	}

	zerolog.Ctx(ctx).Info().Str("queue", queueName).Int("workers", c.numWorkers).Msg("consuming")
	return dispatch(ctx, deliveries, c.numWorkers, func(msg amqp.Delivery) {
		settle(ctx, msg, c.handler(ctx, msg, dependencies))
	})
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// settle acks handled and discarded messages and requeues the rest.
func settle(ctx context.Context, msg acknowledger, handleErr error) {
	switch {
	case handleErr == nil:
		if err := msg.Ack(false); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to acknowledge message")
		}
	case errors.Is(handleErr, ErrDiscard):
		zerolog.Ctx(ctx).Warn().Err(handleErr).Msg("discarding message")
		if err := msg.Ack(false); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to acknowledge message")
		}
	default:
		zerolog.Ctx(ctx).Error().Err(handleErr).Msg("failed to handle message")
		if err := msg.Nack(false, true); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to requeue message")
		}
	}
}

// dispatch fans deliveries out to numWorkers goroutines until deliveries closes
// or ctx is done, then waits for in-flight work.
func dispatch(ctx context.Context, deliveries <-chan amqp.Delivery, numWorkers int, handle func(amqp.Delivery)) error {
	jobs := make(chan amqp.Delivery, numWorkers)
	var wg sync.WaitGroup
	for i := 1; i <= numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range jobs {
				handle(msg)
			}
		}()
	}

	for {
		select {
		case delivery, ok := <-deliveries:
			if !ok {
				close(jobs)
				wg.Wait()
				return nil
			}

			jobs <- delivery
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		}
	}
}

func NewConsumer[T any](
	conn *amqp.Connection,
	cfg *config.RabbitMQ,
	numWorkers int,
	handler func(ctx context.Context, msg amqp.Delivery, dependencies T) error,
) Consumer[T] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &consumer[T]{
		conn:       conn,
		cfg:        cfg,
		handler:    handler,
		numWorkers: numWorkers,
	}
}
