package handler

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"tutorial-service/dto"
	"tutorial-service/pkg/rabbitmq"
	"tutorial-service/service"
)

type ServiceDependencies struct {
	ArchiveService service.ArchiveService
}

// ArchiveHandler applies one tutorial event to the archive. Undecodable bodies and
// events the archive rejects as non-retryable are discarded.
func ArchiveHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var event dto.TutorialEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("message_id", msg.MessageId).Msg("failed to unmarshal tutorial event")
		return errors.Join(rabbitmq.ErrDiscard, err)
	}

	err := deps.ArchiveService.Apply(ctx, event)
	if err != nil {
		if errors.Is(err, service.ErrNonRetryable) {
			return errors.Join(rabbitmq.ErrDiscard, err)
		}
		return err
	}

	return nil
}
