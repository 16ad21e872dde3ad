package handler_test

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tutorial-service/constant"
	"tutorial-service/dto"
	"tutorial-service/handler"
	"tutorial-service/pkg/rabbitmq"
	"tutorial-service/service"
)

type archiveStub struct {
	applied []dto.TutorialEvent
	err     error
}

func (a *archiveStub) Apply(_ context.Context, event dto.TutorialEvent) error {
	a.applied = append(a.applied, event)
	return a.err
}

func TestArchiveHandler(t *testing.T) {
	archive := &archiveStub{}
	deps := handler.ServiceDependencies{ArchiveService: archive}

	msg := amqp.Delivery{Body: []byte(`{"type":"deleted","tutorialId":8}`)}
	require.NoError(t, handler.ArchiveHandler(context.Background(), msg, deps))
	require.Len(t, archive.applied, 1)
	assert.Equal(t, constant.EventTypeDeleted, archive.applied[0].Type)
	assert.Equal(t, int64(8), archive.applied[0].TutorialId)
}

func TestArchiveHandlerDiscardsGarbage(t *testing.T) {
	archive := &archiveStub{}
	deps := handler.ServiceDependencies{ArchiveService: archive}

	err := handler.ArchiveHandler(context.Background(), amqp.Delivery{Body: []byte("not json")}, deps)
	assert.ErrorIs(t, err, rabbitmq.ErrDiscard)
	assert.Empty(t, archive.applied)
}

func TestArchiveHandlerErrorClassification(t *testing.T) {
	msg := amqp.Delivery{Body: []byte(`{"type":"created","tutorialId":1}`)}

	nonRetryable := &archiveStub{err: errors.Join(service.ErrNonRetryable, errors.New("no tutorial"))}
	err := handler.ArchiveHandler(context.Background(), msg, handler.ServiceDependencies{ArchiveService: nonRetryable})
	assert.ErrorIs(t, err, rabbitmq.ErrDiscard)

	transient := &archiveStub{err: errors.New("minio unavailable")}
	err = handler.ArchiveHandler(context.Background(), msg, handler.ServiceDependencies{ArchiveService: transient})
	require.Error(t, err)
	assert.NotErrorIs(t, err, rabbitmq.ErrDiscard)
}
