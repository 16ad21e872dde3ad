package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tutorial-service/constant"
	"tutorial-service/dto"
	"tutorial-service/entities"
	"tutorial-service/service"
)

type memStorage struct {
	objects map[string][]byte
	putErr  error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (m *memStorage) PutObject(_ context.Context, _, objectName string, reader io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if m.putErr != nil {
		return minio.UploadInfo{}, m.putErr
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	m.objects[objectName] = body
	return minio.UploadInfo{Key: objectName, Size: int64(len(body))}, nil
}

func (m *memStorage) RemoveObject(_ context.Context, _, objectName string, _ minio.RemoveObjectOptions) error {
	delete(m.objects, objectName)
	return nil
}

func (m *memStorage) ListObjects(_ context.Context, _ string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, opts.Prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		out <- minio.ObjectInfo{Key: key}
	}
	close(out)
	return out
}

func event(eventType constant.EventType, id int64, tutorial *entities.Tutorial) dto.TutorialEvent {
	return dto.TutorialEvent{EventId: uuid.New(), Type: eventType, TutorialId: id, Tutorial: tutorial}
}

func TestArchiveLifecycle(t *testing.T) {
	storage := newMemStorage()
	storage.objects["other/keep.json"] = []byte("{}")
	archive := service.NewArchiveService(storage, "tutorials")
	ctx := context.Background()

	tutorial := &entities.Tutorial{ID: 3, Title: "Go", Description: "intro"}
	require.NoError(t, archive.Apply(ctx, event(constant.EventTypeCreated, 3, tutorial)))
	require.Contains(t, storage.objects, "tutorials/3.json")

	tutorial.Title = "Go2"
	require.NoError(t, archive.Apply(ctx, event(constant.EventTypeUpdated, 3, tutorial)))
	var stored entities.Tutorial
	require.NoError(t, json.Unmarshal(storage.objects[service.ObjectName(3)], &stored))
	assert.Equal(t, *tutorial, stored)

	require.NoError(t, archive.Apply(ctx, event(constant.EventTypeCreated, 4, &entities.Tutorial{ID: 4})))
	require.NoError(t, archive.Apply(ctx, event(constant.EventTypeDeleted, 3, nil)))
	assert.NotContains(t, storage.objects, "tutorials/3.json")
	assert.Contains(t, storage.objects, "tutorials/4.json")

	require.NoError(t, archive.Apply(ctx, event(constant.EventTypePurged, 0, nil)))
	assert.Equal(t, map[string][]byte{"other/keep.json": []byte("{}")}, storage.objects)
}

func TestArchiveRejectsMalformedEvents(t *testing.T) {
	archive := service.NewArchiveService(newMemStorage(), "tutorials")

	err := archive.Apply(context.Background(), event(constant.EventTypeCreated, 1, nil))
	assert.ErrorIs(t, err, service.ErrNonRetryable)

	err = archive.Apply(context.Background(), event(constant.EventType("renamed"), 1, nil))
	assert.ErrorIs(t, err, service.ErrNonRetryable)
}

func TestArchiveStorageFailureIsRetryable(t *testing.T) {
	storage := newMemStorage()
	storage.putErr = errors.New("minio unavailable")
	archive := service.NewArchiveService(storage, "tutorials")

	err := archive.Apply(context.Background(), event(constant.EventTypeCreated, 1, &entities.Tutorial{ID: 1}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrNonRetryable)
}
