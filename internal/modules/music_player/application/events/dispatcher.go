package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// DefaultMailboxSize is the default number of jobs that may wait for one guild.
const DefaultMailboxSize = 32

// ErrDispatcherClosed is returned when a job is submitted after Close.
var ErrDispatcherClosed = errors.New("guild dispatcher closed")

// job is one unit of work for a guild mailbox.
type job struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// mailbox queues one guild's jobs. pending counts the Do calls holding it; the mailbox
// and its worker go away when it drops to zero.
type mailbox struct {
	jobs    chan job
	pending int
}

// GuildDispatcher runs jobs for the same guild one at a time, in submission order.
// Jobs for different guilds run concurrently on separate goroutines. A guild's worker
// only lives while it has jobs, so guilds without activity cost nothing.
type GuildDispatcher struct {
	mailboxSize int

	mu        sync.Mutex
	mailboxes map[snowflake.ID]*mailbox
	closed    bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewGuildDispatcher creates a dispatcher whose per-guild mailboxes hold mailboxSize jobs.
func NewGuildDispatcher(mailboxSize int) *GuildDispatcher {
	if mailboxSize <= 0 {
		mailboxSize = DefaultMailboxSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &GuildDispatcher{
		mailboxSize: mailboxSize,
		mailboxes:   make(map[snowflake.ID]*mailbox),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Do runs fn on the guild's mailbox and waits for it to return.
// If ctx ends before fn starts, fn is never run and ctx.Err() is returned.
// If ctx ends while fn is running, Do still waits for fn so callers never race with it.
func (d *GuildDispatcher) Do(
	ctx context.Context,
	guildID snowflake.ID,
	fn func(context.Context) error,
) error {
	mb, err := d.acquire(guildID)
	if err != nil {
		return err
	}
	defer d.release(guildID, mb)

	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}

	select {
	case mb.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.ctx.Done():
		return ErrDispatcherClosed
	}

	select {
	case err := <-j.done:
		return err
	case <-d.ctx.Done():
		// The worker may have exited before picking the job up.
		d.wg.Wait()
		select {
		case err := <-j.done:
			return err
		default:
			return ErrDispatcherClosed
		}
	}
}

// acquire returns the guild's mailbox, starting its worker on first use.
func (d *GuildDispatcher) acquire(guildID snowflake.ID) (*mailbox, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrDispatcherClosed
	}

	mb, ok := d.mailboxes[guildID]
	if !ok {
		mb = &mailbox{jobs: make(chan job, d.mailboxSize)}
		d.mailboxes[guildID] = mb

		d.wg.Add(1)
		go d.run(guildID, mb.jobs)
	}
	mb.pending++
	return mb, nil
}

// release drops a Do call's hold on mb. The last holder closes the mailbox, which stops
// its worker; every job it accepted has finished by then.
func (d *GuildDispatcher) release(guildID snowflake.ID, mb *mailbox) {
	d.mu.Lock()
	defer d.mu.Unlock()

	mb.pending--
	if mb.pending > 0 || d.closed {
		return
	}
	delete(d.mailboxes, guildID)
	close(mb.jobs)
}

// activeGuilds returns the number of guilds with a live worker.
func (d *GuildDispatcher) activeGuilds() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.mailboxes)
}

func (d *GuildDispatcher) run(guildID snowflake.ID, jobs chan job) {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			d.drain(jobs)
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			d.execute(guildID, j)
		}
	}
}

func (d *GuildDispatcher) execute(guildID snowflake.ID, j job) {
	if err := j.ctx.Err(); err != nil {
		slog.Debug("skipping abandoned job", "guild", guildID, "error", err)
		j.done <- err
		return
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("recovered from panic in guild job", "guild", guildID, "panic", r)
			j.done <- errors.New("guild job panicked")
		}
	}()

	j.done <- j.fn(j.ctx)
}

// drain fails the jobs still waiting in a mailbox after Close.
func (d *GuildDispatcher) drain(jobs chan job) {
	for {
		select {
		case j, ok := <-jobs:
			if !ok {
				return
			}
			j.done <- ErrDispatcherClosed
		default:
			return
		}
	}
}

// Close stops every worker. Jobs already running finish; queued jobs fail with
// ErrDispatcherClosed. Close is idempotent.
func (d *GuildDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()

	slog.Debug("guild dispatcher closed")
}
