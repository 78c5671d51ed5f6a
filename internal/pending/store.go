package pending

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MacTheAnon/DriverPro/internal/geo"

	"github.com/redis/go-redis/v9"
)

// Store is the durable queue for location samples delivered outside the
// foreground watch path (OS background batches, possibly after the process
// that started the trip is gone). Appends are acknowledged only after the
// write is accepted by Redis. While a trip is tracking, nothing reads this
// queue; it is drained exactly once at stop time.
type Store struct {
	redis *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{redis: client}
}

func key(userID string) string {
	return "pending:" + userID + ":samples"
}

// Append pushes background-delivered samples onto the user's queue in
// delivery order.
func (s *Store) Append(ctx context.Context, userID string, points []geo.Point) error {
	if len(points) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(points))
	for _, p := range points {
		b, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode sample: %w", err)
		}
		values = append(values, b)
	}
	if err := s.redis.RPush(ctx, key(userID), values...).Err(); err != nil {
		return fmt.Errorf("append samples: %w", err)
	}
	return nil
}

// Drain atomically reads and clears the queue. The LRANGE and DEL run inside
// a single MULTI/EXEC, so an append can land before or after the drain but
// never inside it — nothing is silently dropped between snapshot and clear.
func (s *Store) Drain(ctx context.Context, userID string) ([]geo.Point, error) {
	pipe := s.redis.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key(userID), 0, -1)
	pipe.Del(ctx, key(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("drain samples: %w", err)
	}

	raw := rangeCmd.Val()
	points := make([]geo.Point, 0, len(raw))
	for _, item := range raw {
		var p geo.Point
		if err := json.Unmarshal([]byte(item), &p); err != nil {
			return nil, fmt.Errorf("decode sample: %w", err)
		}
		points = append(points, p)
	}
	return points, nil
}

// Clear discards any queued samples without reading them. Used at trip start
// to drop orphans left by a previous abnormal termination.
func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("clear samples: %w", err)
	}
	return nil
}

// Len reports the number of queued samples.
func (s *Store) Len(ctx context.Context, userID string) (int64, error) {
	n, err := s.redis.LLen(ctx, key(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("count samples: %w", err)
	}
	return n, nil
}
