package statistics

import (
	"context"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/cache"
)

const phaseCompletionsKey = "phase:counters:completions"

// PhaseCount is the number of recorded completions for one phase.
type PhaseCount struct {
	Phase       string `json:"phase"`
	Completions int64  `json:"completions"`
}

// Recorder counts phase completions in a Redis hash.
type Recorder struct {
	client redis.Cmdable
}

// NewRecorder creates a recorder on the given client.
func NewRecorder(client redis.Cmdable) *Recorder {
	return &Recorder{client: client}
}

// NewCacheRecorder creates a recorder on the shared cache client.
func NewCacheRecorder() *Recorder {
	return NewRecorder(cache.GetClient())
}

// RecordCompletion increments the completion counter of a phase.
func (r *Recorder) RecordCompletion(ctx context.Context, phaseID string) error {
	return r.client.HIncrBy(ctx, phaseCompletionsKey, phaseID, 1).Err()
}

// Completions returns all counters, highest first and by phase id for ties.
func (r *Recorder) Completions(ctx context.Context) ([]PhaseCount, error) {
	raw, err := r.client.HGetAll(ctx, phaseCompletionsKey).Result()
	if err != nil {
		return nil, err
	}

	out := make([]PhaseCount, 0, len(raw))
	for phase, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, PhaseCount{Phase: phase, Completions: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Completions != out[j].Completions {
			return out[i].Completions > out[j].Completions
		}
		return out[i].Phase < out[j].Phase
	})
	return out, nil
}

// Reset removes all counters.
func (r *Recorder) Reset(ctx context.Context) error {
	return r.client.Del(ctx, phaseCompletionsKey).Err()
}
