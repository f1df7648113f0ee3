package updater

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogdb/gogdb/internal/model"
	"github.com/gogdb/gogdb/internal/storage"
)

// recordingProcessor captures the lifecycle calls it receives.
type recordingProcessor struct {
	name  string
	wants []string

	prepared bool
	finished bool
	aborted  bool
	bundles  []*Bundle

	prepareErr error
	processErr error
}

func (p *recordingProcessor) Name() string    { return p.name }
func (p *recordingProcessor) Wants() []string { return p.wants }

func (p *recordingProcessor) Prepare(ctx context.Context) error {
	p.prepared = true
	return p.prepareErr
}

func (p *recordingProcessor) Process(ctx context.Context, bundle *Bundle) error {
	p.bundles = append(p.bundles, bundle)
	return p.processErr
}

func (p *recordingProcessor) Finish(ctx context.Context) error {
	p.finished = true
	return nil
}

func (p *recordingProcessor) Abort() { p.aborted = true }

func seedProducts(t *testing.T, store *storage.Storage, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, store.SaveProduct(&model.Product{ID: id, Title: "product"}))
	}
}

func TestRunner_Run(t *testing.T) {
	store := storage.New(t.TempDir())
	seedProducts(t, store, 2, 1, 3)

	proc := &recordingProcessor{name: "recorder", wants: []string{WantProduct}}
	require.NoError(t, NewRunner(store, proc).Run(context.Background()))

	assert.True(t, proc.prepared)
	assert.True(t, proc.finished)
	assert.False(t, proc.aborted)

	require.Len(t, proc.bundles, 3)
	// Bundles arrive in ascending id order.
	assert.Equal(t, int64(1), proc.bundles[0].ID)
	assert.Equal(t, int64(2), proc.bundles[1].ID)
	assert.Equal(t, int64(3), proc.bundles[2].ID)
	require.NotNil(t, proc.bundles[0].Product)
	assert.Nil(t, proc.bundles[0].Changelog)
}

func TestRunner_EmptyStorage(t *testing.T) {
	store := storage.New(t.TempDir())

	proc := &recordingProcessor{name: "recorder", wants: []string{WantProduct}}
	require.NoError(t, NewRunner(store, proc).Run(context.Background()))

	assert.True(t, proc.prepared)
	assert.True(t, proc.finished)
	assert.Empty(t, proc.bundles)
}

func TestRunner_WantsFilterSkipsLoads(t *testing.T) {
	store := storage.New(t.TempDir())
	seedProducts(t, store, 1)
	// Invalid changelog JSON would fail the load if it were read. A
	// processor that never asks for changelogs must not trigger it.
	require.NoError(t, os.WriteFile(store.ChangelogPath(1), []byte("{broken"), 0o644))

	proc := &recordingProcessor{name: "recorder", wants: []string{WantProduct}}
	require.NoError(t, NewRunner(store, proc).Run(context.Background()))

	require.Len(t, proc.bundles, 1)
	assert.Nil(t, proc.bundles[0].Changelog)
}

func TestRunner_ProcessFailureAborts(t *testing.T) {
	store := storage.New(t.TempDir())
	seedProducts(t, store, 1)

	failing := &recordingProcessor{
		name:       "failing",
		wants:      []string{WantProduct},
		processErr: errors.New("boom"),
	}
	other := &recordingProcessor{name: "other", wants: []string{WantProduct}}

	err := NewRunner(store, failing, other).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing")

	assert.True(t, failing.aborted)
	assert.True(t, other.aborted)
	assert.False(t, other.finished)
}

func TestRunner_PrepareFailureAborts(t *testing.T) {
	store := storage.New(t.TempDir())

	failing := &recordingProcessor{
		name:       "failing",
		wants:      []string{WantProduct},
		prepareErr: errors.New("boom"),
	}

	err := NewRunner(store, failing).Run(context.Background())
	require.Error(t, err)
	assert.True(t, failing.aborted)
}

func TestRunner_ConcurrentRunsExcluded(t *testing.T) {
	store := storage.New(t.TempDir())
	seedProducts(t, store, 1)

	blocker := make(chan struct{})
	started := make(chan struct{})
	slow := &blockingProcessor{started: started, release: blocker}

	done := make(chan error, 1)
	go func() {
		done <- NewRunner(store, slow).Run(context.Background())
	}()
	<-started

	err := NewRunner(store, &recordingProcessor{name: "second"}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	close(blocker)
	require.NoError(t, <-done)
}

func TestRunner_CanceledContext(t *testing.T) {
	store := storage.New(t.TempDir())
	seedProducts(t, store, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	proc := &recordingProcessor{name: "recorder", wants: []string{WantProduct}}
	err := NewRunner(store, proc).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, proc.bundles)
	assert.True(t, proc.aborted)
}

// blockingProcessor parks in Prepare until released, to hold the update
// lock across a second Run attempt.
type blockingProcessor struct {
	started chan struct{}
	release chan struct{}
}

func (p *blockingProcessor) Name() string    { return "blocking" }
func (p *blockingProcessor) Wants() []string { return nil }

func (p *blockingProcessor) Prepare(ctx context.Context) error {
	close(p.started)
	<-p.release
	return nil
}

func (p *blockingProcessor) Process(ctx context.Context, bundle *Bundle) error { return nil }
func (p *blockingProcessor) Finish(ctx context.Context) error                  { return nil }
