// internal/scheduling/scheduler.go
package scheduling

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const (
	// scheduleKey is the ZSET mapping task id -> deadline (unix ms).
	scheduleKey = "tasks:schedule"
	// payloadKeyPrefix prefixes the per-task payload keys.
	payloadKeyPrefix = "tasks:payloads:"
)

func payloadKey(taskID string) string {
	return payloadKeyPrefix + taskID
}

// Scheduler persists deferred tasks. All writes go through the request
// pipeline, so scheduling commits or aborts together with the state it
// belongs to. ZADD on an existing member overwrites the score, which
// gives the replace-on-reschedule contract for free.
type Scheduler struct {
	pipe redis.Pipeliner
}

func NewScheduler(pipe redis.Pipeliner) *Scheduler {
	return &Scheduler{pipe: pipe}
}

// Schedule upserts the task by id, overwriting any previous deadline.
func (s *Scheduler) Schedule(ctx context.Context, task Task) error {
	raw, err := EncodeTask(task)
	if err != nil {
		return err
	}
	s.pipe.ZAdd(ctx, scheduleKey, redis.Z{
		Score:  float64(task.Deadline().UnixMilli()),
		Member: task.TaskID(),
	})
	s.pipe.Set(ctx, payloadKey(task.TaskID()), raw, 0)
	return nil
}

// ScheduleMany upserts each task.
func (s *Scheduler) ScheduleMany(ctx context.Context, tasks []Task) error {
	for _, task := range tasks {
		if err := s.Schedule(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

// Unschedule removes the task. A missing id is a no-op.
func (s *Scheduler) Unschedule(ctx context.Context, taskID string) error {
	s.pipe.ZRem(ctx, scheduleKey, taskID)
	s.pipe.Del(ctx, payloadKey(taskID))
	return nil
}

// UnscheduleMany removes each id.
func (s *Scheduler) UnscheduleMany(ctx context.Context, taskIDs []string) error {
	for _, id := range taskIDs {
		if err := s.Unschedule(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
