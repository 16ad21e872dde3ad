package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
	"tutorial-service/constant"
	"tutorial-service/dto"
)

// ErrNonRetryable marks events that can never be archived, e.g. an upsert event
// without a tutorial payload.
var ErrNonRetryable = errors.New("non-retryable error")

// ObjectStorage is the subset of *minio.Client the archive needs.
type ObjectStorage interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// ArchiveService mirrors tutorials into object storage as one JSON document per
// tutorial under constant.ArchivePrefix.
type ArchiveService interface {
	Apply(ctx context.Context, event dto.TutorialEvent) error
}

type archiveService struct {
	storage ObjectStorage
	bucket  string
}

func ObjectName(id int64) string {
	return constant.ArchivePrefix + strconv.FormatInt(id, 10) + ".json"
}

func (s *archiveService) Apply(ctx context.Context, event dto.TutorialEvent) error {
	zerolog.Ctx(ctx).Info().
		Str("event_id", event.EventId.String()).
		Str("event_type", event.Type.String()).
		Int64("tutorial_id", event.TutorialId).
		Msg("archiving tutorial event")

	switch event.Type {
	case constant.EventTypeCreated, constant.EventTypeUpdated:
		return s.put(ctx, event)
	case constant.EventTypeDeleted:
		return s.remove(ctx, event.TutorialId)
	case constant.EventTypePurged:
		return s.purge(ctx)
	default:
		return errors.Join(ErrNonRetryable, fmt.Errorf("unknown event type %q", event.Type))
	}
}

func (s *archiveService) put(ctx context.Context, event dto.TutorialEvent) error {
	if event.Tutorial == nil {
		return errors.Join(ErrNonRetryable, fmt.Errorf("%s event %s has no tutorial", event.Type, event.EventId))
	}

	body, err := json.Marshal(event.Tutorial)
	if err != nil {
		return errors.Join(ErrNonRetryable, err)
	}

	objectName := ObjectName(event.Tutorial.ID)
	_, err = s.storage.PutObject(ctx, s.bucket, objectName, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("object", objectName).Msg("failed to upload tutorial")
		return err
	}
	return nil
}

func (s *archiveService) remove(ctx context.Context, id int64) error {
	objectName := ObjectName(id)
	err := s.storage.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		zerolog.Ctx(ctx).Error().Err(err).Str("object", objectName).Msg("failed to remove tutorial")
		return err
	}
	return nil
}

func (s *archiveService) purge(ctx context.Context) error {
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := s.storage.ListObjects(listCtx, s.bucket, minio.ListObjectsOptions{
		Prefix:    constant.ArchivePrefix,
		Recursive: true,
	})

	removed := 0
	for object := range objects {
		if object.Err != nil {
			return object.Err
		}
		if err := s.storage.RemoveObject(ctx, s.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("object", object.Key).Msg("failed to remove tutorial")
			return err
		}
		removed++
	}

	zerolog.Ctx(ctx).Info().Int("removed", removed).Msg("tutorial archive purged")
	return nil
}

func NewArchiveService(storage ObjectStorage, bucket string) ArchiveService {
	return &archiveService{
		storage: storage,
		bucket:  bucket,
	}
}
