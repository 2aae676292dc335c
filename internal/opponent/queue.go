package opponent

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"chessmind/internal/board"
	"chessmind/internal/core"
)

// Decisions may spend up to the relay timeout per attempt, three attempts,
// plus local search.
const taskDeadline = 2 * time.Minute

// Task is one queued decision request. Epoch tags the game state the request
// was built against; consumers discard results whose epoch is stale.
type Task struct {
	GameID     string
	Epoch      uint64
	FEN        string
	Difficulty core.Difficulty
	Remote     bool
	Response   chan<- TaskResult
}

type TaskResult struct {
	GameID   string
	Epoch    uint64
	Decision *Decision
	Err      error
}

// Queue runs decision tasks on a bounded worker pool. One decision is
// expected in flight per game; the epoch check is what keeps overlapping
// requests safe rather than any queue-level ordering.
type Queue struct {
	selector *Selector
	tasks    chan Task
	workers  int
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewQueue(selector *Selector, workerCount int) *Queue {
	if workerCount < 1 {
		workerCount = 2
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &Queue{
		selector: selector,
		tasks:    make(chan Task, 100),
		workers:  workerCount,
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for {
		select {
		case task, ok := <-q.tasks:
			if !ok {
				return
			}

			result := q.process(task)

			select {
			case task.Response <- result:
			case <-time.After(100 * time.Millisecond):
				// Receiver abandoned, discard result
			}

		case <-q.ctx.Done():
			return
		}
	}
}

func (q *Queue) process(task Task) TaskResult {
	result := TaskResult{GameID: task.GameID, Epoch: task.Epoch}

	pos, err := board.ParseFEN(task.FEN)
	if err != nil {
		// Undecodable position is a configuration error, never retried.
		result.Err = err
		return result
	}

	ctx, cancel := context.WithTimeout(q.ctx, taskDeadline)
	defer cancel()

	decision, err := q.selector.SelectMove(ctx, pos, task.Difficulty, task.Remote)
	if err != nil {
		result.Err = err
		return result
	}
	result.Decision = decision
	return result
}

// Submit adds a task without blocking; a full queue is an error.
func (q *Queue) Submit(task Task) error {
	if q.ctx.Err() != nil {
		return fmt.Errorf("queue is shutting down")
	}
	select {
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("queue is full")
	}
}

// SubmitAsync queues a decision and runs callback with the result in the
// background. The callback is responsible for the epoch staleness check.
func (q *Queue) SubmitAsync(gameID string, epoch uint64, fen string, difficulty core.Difficulty, remoteEnabled bool, callback func(TaskResult)) error {
	respChan := make(chan TaskResult, 1)

	task := Task{
		GameID:     gameID,
		Epoch:      epoch,
		FEN:        fen,
		Difficulty: difficulty,
		Remote:     remoteEnabled,
		Response:   respChan,
	}

	if err := q.Submit(task); err != nil {
		return err
	}

	go func() {
		select {
		case result := <-respChan:
			callback(result)
		case <-time.After(taskDeadline + 5*time.Second):
			callback(TaskResult{
				GameID: gameID,
				Epoch:  epoch,
				Err:    fmt.Errorf("decision timeout"),
			})
		}
	}()

	return nil
}

// Shutdown stops the workers, waiting up to timeout. The tasks channel is
// never closed so late Submit calls fail cleanly instead of panicking.
func (q *Queue) Shutdown(timeout time.Duration) error {
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		log.Printf("Warning: decision queue shutdown timeout exceeded")
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
