package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/shared"
)

// CommandKind identifies one reviewer command.
type CommandKind int

const (
	CommandArchive CommandKind = iota
	CommandDelete
	CommandFavorite
	CommandRelevant
)

func (k CommandKind) String() string {
	switch k {
	case CommandArchive:
		return "archive"
	case CommandDelete:
		return "delete"
	case CommandFavorite:
		return "favorite"
	case CommandRelevant:
		return "relevant"
	default:
		return ""
	}
}

// ReviewEngine is the engine surface the worker drives: item mutations plus
// per-trend relevance queries.
type ReviewEngine interface {
	SyncEngine
	RelevantForTrend(ctx context.Context, userID int64, trend models.Trend) ([]RelevantItem, error)
}

type commandReply struct {
	items []RelevantItem
	err   error
}

type workerCommand struct {
	kind   CommandKind
	userID int64
	itemID int64
	trend  models.Trend
	reply  chan commandReply
}

// Worker serializes reviewer commands onto a sync engine. The engine performs
// no internal locking, so every mutation and storage read for a user must
// flow through one worker; the review UI submits commands here instead of
// calling the engine directly.
type Worker struct {
	engine   ReviewEngine
	commands chan workerCommand
	done     chan struct{}
	logger   *log.Logger
}

// NewWorker creates a worker around the engine. Call Start before Submit.
func NewWorker(engine ReviewEngine, logger *log.Logger) *Worker {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Worker{
		engine:   engine,
		commands: make(chan workerCommand),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Start launches the command loop. The loop runs until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Wait blocks until the command loop has exited.
func (w *Worker) Wait() {
	<-w.done
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-w.commands:
			cmd.reply <- w.dispatch(ctx, cmd)
		}
	}
}

func (w *Worker) dispatch(ctx context.Context, cmd workerCommand) commandReply {
	w.logger.Debug("applying command", "kind", cmd.kind.String(), "user_id", cmd.userID, "item_id", cmd.itemID)

	switch cmd.kind {
	case CommandArchive:
		return commandReply{err: w.engine.Archive(ctx, cmd.userID, cmd.itemID)}
	case CommandDelete:
		return commandReply{err: w.engine.Delete(ctx, cmd.userID, cmd.itemID)}
	case CommandFavorite:
		return commandReply{err: w.engine.Favorite(ctx, cmd.itemID)}
	case CommandRelevant:
		items, err := w.engine.RelevantForTrend(ctx, cmd.userID, cmd.trend)
		return commandReply{items: items, err: err}
	default:
		return commandReply{err: fmt.Errorf("%w: unknown command kind %d", shared.ErrInvalidArgument, int(cmd.kind))}
	}
}

// Submit queues an item mutation and blocks until the engine has applied it,
// returning the engine's error. Returns ctx.Err() when the context ends
// first and ErrWorkerStopped when the worker's loop has exited.
func (w *Worker) Submit(ctx context.Context, kind CommandKind, userID, itemID int64) error {
	reply, err := w.send(ctx, workerCommand{kind: kind, userID: userID, itemID: itemID})
	if err != nil {
		return err
	}
	return reply.err
}

// Relevant asks the worker for the ranked saved items matching one trend,
// under the same queueing rules as Submit.
func (w *Worker) Relevant(ctx context.Context, userID int64, trend models.Trend) ([]RelevantItem, error) {
	reply, err := w.send(ctx, workerCommand{kind: CommandRelevant, userID: userID, trend: trend})
	if err != nil {
		return nil, err
	}
	return reply.items, reply.err
}

func (w *Worker) send(ctx context.Context, cmd workerCommand) (commandReply, error) {
	cmd.reply = make(chan commandReply, 1)

	select {
	case w.commands <- cmd:
	case <-w.done:
		return commandReply{}, ErrWorkerStopped
	case <-ctx.Done():
		return commandReply{}, ctx.Err()
	}

	select {
	case reply := <-cmd.reply:
		return reply, nil
	case <-ctx.Done():
		return commandReply{}, ctx.Err()
	}
}

// ErrWorkerStopped reports a Submit after the worker's loop exited.
var ErrWorkerStopped = fmt.Errorf("worker is not running")
