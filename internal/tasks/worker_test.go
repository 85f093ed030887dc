package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/shared"
)

func TestWorker(t *testing.T) {
	t.Run("Applies Commands", func(t *testing.T) {
		engine := &mockEngine{}
		worker := NewWorker(engine, nil)
		ctx, cancel := context.WithCancel(context.Background())
		worker.Start(ctx)

		if err := worker.Submit(ctx, CommandArchive, 1, 10); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if err := worker.Submit(ctx, CommandDelete, 1, 11); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if err := worker.Submit(ctx, CommandFavorite, 1, 12); err != nil {
			t.Errorf("expected no error, got %v", err)
		}

		cancel()
		worker.Wait()

		if len(engine.archived) != 1 || engine.archived[0] != "1/10" {
			t.Errorf("unexpected archives %v", engine.archived)
		}
		if len(engine.deleted) != 1 || engine.deleted[0] != "1/11" {
			t.Errorf("unexpected deletes %v", engine.deleted)
		}
		if len(engine.favorited) != 1 || engine.favorited[0] != 12 {
			t.Errorf("unexpected favorites %v", engine.favorited)
		}
	})

	t.Run("Serves Relevant Queries", func(t *testing.T) {
		trend := models.Trend{Name: "rust language", Geo: "US"}
		engine := &mockEngine{relevant: map[string][]RelevantItem{
			"rust language": {{Item: models.SavedItem{ID: 10, Title: "rust language"}, Trend: trend}},
		}}
		worker := NewWorker(engine, nil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		worker.Start(ctx)

		items, err := worker.Relevant(ctx, 1, trend)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 1 || items[0].Item.ID != 10 {
			t.Errorf("unexpected items %v", items)
		}
		if items[0].Trend.Name != "rust language" {
			t.Errorf("expected trend carried on item, got %s", items[0].Trend.Name)
		}

		missing, err := worker.Relevant(ctx, 1, models.Trend{Name: "unmatched"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(missing) != 0 {
			t.Errorf("expected no items, got %v", missing)
		}
	})

	t.Run("Propagates Engine Failure", func(t *testing.T) {
		engine := &mockEngine{err: shared.ErrRemoteAuth}
		worker := NewWorker(engine, nil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		worker.Start(ctx)

		if err := worker.Submit(ctx, CommandArchive, 1, 10); !errors.Is(err, shared.ErrRemoteAuth) {
			t.Errorf("expected auth error, got %v", err)
		}
	})

	t.Run("Rejects Unknown Command", func(t *testing.T) {
		worker := NewWorker(&mockEngine{}, nil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		worker.Start(ctx)

		if err := worker.Submit(ctx, CommandKind(99), 1, 10); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected invalid argument, got %v", err)
		}
	})

	t.Run("Rejects After Stop", func(t *testing.T) {
		worker := NewWorker(&mockEngine{}, nil)
		ctx, cancel := context.WithCancel(context.Background())
		worker.Start(ctx)
		cancel()
		worker.Wait()

		if err := worker.Submit(context.Background(), CommandArchive, 1, 10); !errors.Is(err, ErrWorkerStopped) {
			t.Errorf("expected stopped error, got %v", err)
		}
	})

	t.Run("Honors Submit Context", func(t *testing.T) {
		worker := NewWorker(&mockEngine{}, nil)
		// never started: the submit context is the only way out
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := worker.Submit(ctx, CommandArchive, 1, 10); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context error, got %v", err)
		}
	})

	t.Run("Serializes Commands", func(t *testing.T) {
		engine := &mockEngine{}
		worker := NewWorker(engine, nil)
		ctx, cancel := context.WithCancel(context.Background())
		worker.Start(ctx)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(item int64) {
				defer wg.Done()
				if err := worker.Submit(ctx, CommandArchive, 1, item); err != nil {
					t.Errorf("expected no error, got %v", err)
				}
			}(int64(i))
		}
		wg.Wait()
		cancel()
		worker.Wait()

		if engine.overlap.Load() {
			t.Error("engine saw overlapping commands")
		}
		if len(engine.archived) != 10 {
			t.Errorf("expected 10 archives, got %d", len(engine.archived))
		}
	})
}

type mockEngine struct {
	mu        sync.Mutex
	archived  []string
	deleted   []string
	favorited []int64
	relevant  map[string][]RelevantItem
	err       error
	busy      int32
	overlap   atomic.Bool
}

func (m *mockEngine) enter() {
	if !atomic.CompareAndSwapInt32(&m.busy, 0, 1) {
		m.overlap.Store(true)
	}
}

func (m *mockEngine) exit() {
	atomic.StoreInt32(&m.busy, 0)
}

func (m *mockEngine) Sync(ctx context.Context, progress chan<- ProgressUpdate, userID int64) (*SyncResult, error) {
	return &SyncResult{UserID: userID}, m.err
}

func (m *mockEngine) SyncFull(ctx context.Context, progress chan<- ProgressUpdate, userID int64) (*SyncResult, error) {
	return &SyncResult{UserID: userID, Full: true}, m.err
}

func (m *mockEngine) Archive(ctx context.Context, userID, itemID int64) error {
	m.enter()
	defer m.exit()
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archived = append(m.archived, fmt.Sprintf("%d/%d", userID, itemID))
	return nil
}

func (m *mockEngine) Delete(ctx context.Context, userID, itemID int64) error {
	m.enter()
	defer m.exit()
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, fmt.Sprintf("%d/%d", userID, itemID))
	return nil
}

func (m *mockEngine) Favorite(ctx context.Context, itemID int64) error {
	m.enter()
	defer m.exit()
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favorited = append(m.favorited, itemID)
	return nil
}

func (m *mockEngine) RelevantForTrend(ctx context.Context, userID int64, trend models.Trend) ([]RelevantItem, error) {
	m.enter()
	defer m.exit()
	if m.err != nil {
		return nil, m.err
	}
	return m.relevant[trend.Name], nil
}
