package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"dome-admin-go/internal/model"
	"dome-admin-go/internal/repository"
	"dome-admin-go/pkg/pagination"
	"dome-admin-go/pkg/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeIndex struct {
	indexed []string
	err     error
	// failures > 0 时只有前 failures 次调用返回 err
	failures int
}

func (f *fakeIndex) Index(_ context.Context, file *model.StoredFile) error {
	f.indexed = append(f.indexed, file.StoragePath)
	if f.failures > 0 && len(f.indexed) > f.failures {
		return nil
	}
	return f.err
}

func (f *fakeIndex) FindMany(context.Context, pagination.FindQuery[repository.FileFilter]) ([]model.StoredFile, error) {
	return nil, nil
}

func (f *fakeIndex) Count(context.Context, repository.FileFilter) (int64, error) { return 0, nil }

type fakeStats struct {
	recorded []string
	err      error
}

func (f *fakeStats) Record(_ context.Context, file *model.StoredFile) error {
	f.recorded = append(f.recorded, file.StoragePath)
	return f.err
}

func (f *fakeStats) Daily(context.Context, string) ([]model.UploadDailyStat, error) { return nil, nil }

type fakePublisher struct {
	events []tasks.FileStoredTask
}

func (f *fakePublisher) Publish(_ context.Context, events ...tasks.FileStoredTask) error {
	f.events = append(f.events, events...)
	return nil
}

func TestProcessorProcess(t *testing.T) {
	index, stats := &fakeIndex{}, &fakeStats{}
	p := NewProcessor(index, stats, zaptest.NewLogger(t).Sugar())

	task := tasks.NewFileStoredTask(model.StoredFile{StoragePath: "/upload/a"}, "")
	require.NoError(t, p.Process(context.Background(), task))

	assert.Equal(t, []string{"/upload/a"}, index.indexed)
	assert.Equal(t, []string{"/upload/a"}, stats.recorded)
}

func TestProcessorContinuesAfterFailure(t *testing.T) {
	indexErr := errors.New("es down")
	index, stats := &fakeIndex{err: indexErr}, &fakeStats{}
	p := NewProcessor(index, stats, zaptest.NewLogger(t).Sugar())

	err := p.Process(context.Background(), tasks.NewFileStoredTask(model.StoredFile{StoragePath: "/upload/a"}, ""))
	assert.ErrorIs(t, err, indexErr)
	assert.Len(t, stats.recorded, 1, "stats still recorded")
}

func TestProcessorRetriesOnlyFailedStep(t *testing.T) {
	tests := []struct {
		name        string
		index       *fakeIndex
		wantIndexed int
		wantErr     bool
	}{
		{name: "recovers on second attempt", index: &fakeIndex{err: errors.New("es down"), failures: 1}, wantIndexed: 2},
		{name: "gives up after all attempts", index: &fakeIndex{err: errors.New("es down")}, wantIndexed: 3, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := &fakeStats{}
			p := NewProcessor(tt.index, stats, zaptest.NewLogger(t).Sugar(), WithRetry(3, time.Millisecond))

			err := p.Process(context.Background(), tasks.NewFileStoredTask(model.StoredFile{StoragePath: "/upload/a"}, ""))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, tt.index.indexed, tt.wantIndexed)
			assert.Equal(t, []string{"/upload/a"}, stats.recorded, "stats recorded exactly once")
		})
	}
}

func TestProcessorRetryStopsOnCancel(t *testing.T) {
	index := &fakeIndex{err: errors.New("es down")}
	p := NewProcessor(index, nil, zaptest.NewLogger(t).Sugar(), WithRetry(5, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Process(ctx, tasks.NewFileStoredTask(model.StoredFile{StoragePath: "/upload/a"}, ""))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, index.indexed, 1)
}

func TestProcessorWithoutBackends(t *testing.T) {
	p := NewProcessor(nil, nil, zaptest.NewLogger(t).Sugar())
	assert.NoError(t, p.Process(context.Background(), tasks.FileStoredTask{}))
}

func TestDispatcher(t *testing.T) {
	files := []*model.StoredFile{{StoragePath: "/upload/a"}, {StoragePath: "/upload/b"}}

	t.Run("publishes when a publisher is configured", func(t *testing.T) {
		pub := &fakePublisher{}
		index := &fakeIndex{}
		d := NewDispatcher(pub, NewProcessor(index, nil, zaptest.NewLogger(t).Sugar()))

		require.NoError(t, d.FilesStored(context.Background(), "req", files))
		require.Len(t, pub.events, 2)
		assert.Equal(t, "req", pub.events[0].RequestID)
		assert.NotEqual(t, pub.events[0].EventID, pub.events[1].EventID)
		assert.Empty(t, index.indexed)
	})

	t.Run("processes inline otherwise", func(t *testing.T) {
		index := &fakeIndex{}
		d := NewDispatcher(nil, NewProcessor(index, nil, zaptest.NewLogger(t).Sugar()))

		require.NoError(t, d.FilesStored(context.Background(), "req", files))
		assert.Equal(t, []string{"/upload/a", "/upload/b"}, index.indexed)
	})
}
