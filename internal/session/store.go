package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rentapply/internal/utils"
	"rentapply/internal/workflow"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "rentapply:session:"
	lockTTL   = 5 * time.Minute
)

var (
	ErrNotFound = errors.New("session not found")
	ErrLocked   = errors.New("another request is already working on this session")
)

// compare-and-delete so a lock that expired and was taken by another
// request is left alone
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// Store keeps workflow state between requests, one JSON document per
// session, and hands out the per-session lock that serialises requests.
type Store struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewStore(rdb redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func NewID() string {
	return utils.NanoID()
}

func stateKey(id string) string {
	return keyPrefix + id
}

func lockKey(id string) string {
	return keyPrefix + id + ":lock"
}

func (s *Store) Load(ctx context.Context, id string) (*workflow.State, error) {
	raw, err := s.rdb.Get(ctx, stateKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	var state = new(workflow.State)
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}

	return state, nil
}

// Save writes the state and refreshes the session TTL.
func (s *Store) Save(ctx context.Context, id string, state *workflow.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", id, err)
	}

	if err := s.rdb.Set(ctx, stateKey(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", id, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, stateKey(id)).Err()
}

// Lock takes the session lock. Callers hold it from before Load until after
// Save. It returns ErrLocked when another request holds it. The returned
// func releases it.
func (s *Store) Lock(ctx context.Context, id string) (func(), error) {
	token := utils.NanoIDSize(16)
	key := lockKey(id)

	ok, err := s.rdb.SetNX(ctx, key, token, lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire session lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		// the request context may already be done here
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = unlockScript.Run(ctx, s.rdb, []string{key}, token).Err()
	}, nil
}
