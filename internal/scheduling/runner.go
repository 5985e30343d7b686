// internal/scheduling/runner.go
package scheduling

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	defaultPollInterval = time.Second
	fetchBatchSize      = 32
	// maxExecuteAttempts bounds in-process retries per claimed firing.
	maxExecuteAttempts = 5
	// claimLease is how far a claim pushes the deadline out. A runner
	// that dies mid-execution loses its claim when the lease expires
	// and the task refires; executors tolerate the duplicate.
	claimLease = 30 * time.Second
)

// claimScript bumps a task's deadline into the future iff the task is
// still due, admitting exactly one winner per firing without removing
// anything from the schedule.
var claimScript = redis.NewScript(`
local score = redis.call('ZSCORE', KEYS[1], ARGV[1])
if score and tonumber(score) <= tonumber(ARGV[2]) then
	redis.call('ZADD', KEYS[1], ARGV[3], ARGV[1])
	return 1
end
return 0
`)

// Handler executes a fired task. Implementations swallow benign domain
// errors; anything returned from here is treated as transient and
// retried with backoff.
type Handler interface {
	HandleTask(ctx context.Context, task Task) error
}

// Runner polls the schedule and fires due tasks. Multiple runners may
// share the schedule: a lease-based claim admits one winner per firing,
// and the schedule entry and payload are removed only after a
// successful execution, so a crashed or exhausted runner leaves the
// task to refire when its lease expires. Delivery is at-least-once.
type Runner struct {
	rdb      redis.Cmdable
	handler  Handler
	log      *logrus.Logger
	interval time.Duration
}

func NewRunner(rdb redis.Cmdable, handler Handler, log *logrus.Logger) *Runner {
	return &Runner{
		rdb:      rdb,
		handler:  handler,
		log:      log,
		interval: defaultPollInterval,
	}
}

// Run blocks until ctx is done, firing due tasks every poll interval.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.fireDue(ctx); err != nil {
				r.log.WithError(err).Error("scheduler poll failed")
			}
		}
	}
}

func (r *Runner) fireDue(ctx context.Context) error {
	now := time.Now()
	due, err := r.rdb.ZRangeByScore(ctx, scheduleKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: fetchBatchSize,
	}).Result()
	if err != nil {
		return err
	}

	for _, taskID := range due {
		claimed, err := r.claim(ctx, taskID, now)
		if err != nil {
			return err
		}
		if !claimed {
			// A concurrent runner won the firing.
			continue
		}

		raw, err := r.rdb.Get(ctx, payloadKey(taskID)).Result()
		if err == redis.Nil {
			// Unscheduled between the range read and the claim; drop
			// the leased entry.
			if err := r.complete(ctx, taskID); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		task, err := DecodeTask([]byte(raw))
		if err != nil {
			r.log.WithError(err).WithField("task_id", taskID).
				Error("dropping undecodable task")
			if err := r.complete(ctx, taskID); err != nil {
				return err
			}
			continue
		}

		if r.execute(ctx, taskID, task) {
			if err := r.complete(ctx, taskID); err != nil {
				return err
			}
		}
		// On failure the lease stays: the task refires once it expires,
		// here or on another runner.
	}
	return nil
}

// claim leases one firing of a still-due task.
func (r *Runner) claim(ctx context.Context, taskID string, now time.Time) (bool, error) {
	won, err := claimScript.Run(ctx, r.rdb, []string{scheduleKey},
		taskID,
		now.UnixMilli(),
		now.Add(claimLease).UnixMilli(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("claim %q: %w", taskID, err)
	}
	return won == 1, nil
}

// complete removes a finished task's schedule entry and payload.
func (r *Runner) complete(ctx context.Context, taskID string) error {
	if err := r.rdb.ZRem(ctx, scheduleKey, taskID).Err(); err != nil {
		return fmt.Errorf("complete %q: %w", taskID, err)
	}
	if err := r.rdb.Del(ctx, payloadKey(taskID)).Err(); err != nil {
		return fmt.Errorf("complete %q: %w", taskID, err)
	}
	return nil
}

func (r *Runner) execute(ctx context.Context, taskID string, task Task) bool {
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxExecuteAttempts-1),
		ctx,
	)
	err := backoff.Retry(func() error {
		return r.handler.HandleTask(ctx, task)
	}, bo)
	if err != nil {
		r.log.WithError(err).WithField("task_id", taskID).
			Error("task execution exhausted retries, leaving for redelivery")
		return false
	}
	r.log.WithField("task_id", taskID).Debug("task executed")
	return true
}
