package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// WriteFunc performs database writes inside a transaction. tx is nil when
// the writer has no database.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

type batch struct {
	writes []WriteFunc
	// done is closed once the batch has been committed or rolled back.
	done chan struct{}
}

// BatchWriter buffers writes and commits them in batches, one transaction
// per batch, on a single committer goroutine.
type BatchWriter struct {
	mu     sync.Mutex
	buf    []WriteFunc
	size   int
	ticker *time.Ticker
	closed bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	commitCh chan batch
	db       *sql.DB
	OnError  func(error)

	errMu   sync.Mutex
	lastErr error
}

// NewBatchWriter creates a writer that commits once size writes are buffered
// and, when flushInterval is positive, on every tick.
func NewBatchWriter(db *sql.DB, size int, flushInterval time.Duration) *BatchWriter {
	if size <= 0 {
		size = 10
	}
	ctx, cancel := context.WithCancel(context.Background())
	bw := &BatchWriter{
		buf:      make([]WriteFunc, 0, size),
		size:     size,
		ctx:      ctx,
		cancel:   cancel,
		commitCh: make(chan batch, 2),
		db:       db,
	}

	bw.wg.Add(1)
	go bw.committer()

	if flushInterval > 0 {
		bw.ticker = time.NewTicker(flushInterval)
		bw.wg.Add(1)
		go bw.tick()
	}
	return bw
}

// Submit enqueues a write.
func (bw *BatchWriter) Submit(w WriteFunc) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.buf = append(bw.buf, w)
	if len(bw.buf) >= bw.size {
		bw.flushLocked(nil)
	}
	return nil
}

// Flush commits everything submitted so far and waits for it. It returns
// the first error the writer has seen.
func (bw *BatchWriter) Flush() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	done := make(chan struct{})
	if !bw.flushLocked(done) {
		close(done)
	}
	bw.mu.Unlock()

	<-done
	return bw.Err()
}

// flushLocked hands the buffer to the committer. bw.mu must be held. It
// reports whether a batch was handed over; done is closed by the committer
// only in that case.
func (bw *BatchWriter) flushLocked(done chan struct{}) bool {
	if len(bw.buf) == 0 {
		return false
	}
	b := batch{writes: bw.buf, done: done}
	bw.buf = make([]WriteFunc, 0, bw.size)

	// Blocking here while holding the lock is the backpressure on Submit.
	select {
	case bw.commitCh <- b:
		return true
	case <-bw.ctx.Done():
		bw.fail(fmt.Errorf("batch writer: dropping batch of %d writes due to context cancellation", len(b.writes)))
		return false
	}
}

func (bw *BatchWriter) fail(err error) {
	bw.errMu.Lock()
	if bw.lastErr == nil {
		bw.lastErr = err
	}
	bw.errMu.Unlock()
	if bw.OnError != nil {
		bw.OnError(err)
	}
}

// Err returns the first asynchronous error, if any.
func (bw *BatchWriter) Err() error {
	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.lastErr
}

func (bw *BatchWriter) committer() {
	defer bw.wg.Done()
	for b := range bw.commitCh {
		if err := bw.execute(b.writes); err != nil {
			bw.fail(err)
		}
		if b.done != nil {
			close(b.done)
		}
	}
}

func (bw *BatchWriter) execute(writes []WriteFunc) error {
	if bw.db == nil {
		for _, w := range writes {
			if err := w(bw.ctx, nil); err != nil {
				return err
			}
		}
		return nil
	}

	// Background context: a closing writer still commits what it accepted.
	ctx := context.Background()
	tx, err := bw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, w := range writes {
		if err := w(ctx, tx); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch (%d writes): %w", len(writes), err)
	}
	return nil
}

func (bw *BatchWriter) tick() {
	defer bw.wg.Done()
	for {
		select {
		case <-bw.ctx.Done():
			return
		case <-bw.ticker.C:
			bw.mu.Lock()
			bw.flushLocked(nil)
			bw.mu.Unlock()
		}
	}
}

// Close stops accepting writes, commits what is buffered and waits for the
// committer. It returns the first error seen during the writer's lifetime.
func (bw *BatchWriter) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	if bw.ticker != nil {
		bw.ticker.Stop()
	}
	bw.flushLocked(nil)
	bw.mu.Unlock()

	bw.cancel()
	close(bw.commitCh)
	bw.wg.Wait()
	return bw.Err()
}

// ErrBatchWriterClosed is returned by Submit, Flush and Close after Close.
var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
