package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fluxgate/fluxgate/observability"
	"github.com/fluxgate/fluxgate/registry"
)

// redisKeyPrefix namespaces redis hashes written by RedisStore.
const redisKeyPrefix = "fluxgate:store:"

// RedisStore is a Store whose state lives in a single redis hash. Snapshots
// are map[string]string copies of the hash.
//
// ReadFromState and the snapshot operations are synchronous in the dispatch
// contract sense (no caller context is plumbed through); they issue their
// redis calls with a background context.
type RedisStore struct {
	id       string
	route    string
	keyParam string
	client   *redis.Client
	hashKey  string
	logger   observability.Logger
}

// RedisOption is a functional option for configuring a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisLogger sets the store logger.
func WithRedisLogger(logger observability.Logger) RedisOption {
	return func(s *RedisStore) {
		s.logger = logger
	}
}

// WithRedisHashKey overrides the redis hash key holding the state.
func WithRedisHashKey(hashKey string) RedisOption {
	return func(s *RedisStore) {
		s.hashKey = hashKey
	}
}

// NewRedisStore creates a redis-backed store registered under route,
// answering queries by the named route parameter keyParam. State lives in
// the hash "fluxgate:store:<route>" unless WithRedisHashKey overrides it.
func NewRedisStore(route, keyParam string, client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		id:       uuid.NewString(),
		route:    route,
		keyParam: keyParam,
		client:   client,
		hashKey:  redisKeyPrefix + route,
		logger:   observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ID returns the store's unique identity.
func (s *RedisStore) ID() string {
	return s.id
}

// Route returns the store's route pattern.
func (s *RedisStore) Route() string {
	return s.route
}

// Fetch reads the query's key parameter from the redis hash. A missing
// field yields (nil, nil); connectivity failures surface as errors.
func (s *RedisStore) Fetch(ctx context.Context, query registry.Query) (any, error) {
	ctx, span := observability.Tracer().Start(ctx, "store.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("fluxgate.route", s.route),
			attribute.String("db.system", "redis"),
		),
	)
	defer span.End()

	field := query.Get(s.keyParam)
	val, err := s.client.HGet(ctx, s.hashKey, field).Result()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("fluxgate.hit", false))
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("redis fetch failed",
			observability.String("route", s.route),
			observability.String("field", field),
			observability.Error(err),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Bool("fluxgate.hit", true))
	return val, nil
}

// ReadFromState returns the hash field for the query's key parameter, or
// nil when the field is absent or redis is unreachable.
func (s *RedisStore) ReadFromState(query registry.Query) any {
	val, err := s.client.HGet(context.Background(), s.hashKey, query.Get(s.keyParam)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Error("redis read failed",
				observability.String("route", s.route),
				observability.Error(err),
			)
		}
		return nil
	}
	return val
}

// Set stores a value under key.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.HSet(ctx, s.hashKey, key, value).Err()
}

// LoadState replaces the redis hash with a snapshot produced by DumpState.
// A nil snapshot clears the store.
func (s *RedisStore) LoadState(snapshot any) error {
	ctx := context.Background()

	var m map[string]string
	switch v := snapshot.(type) {
	case nil:
	case map[string]string:
		m = v
	case map[string]any:
		// The shape a YAML round trip produces; values must still be strings.
		m = make(map[string]string, len(v))
		for key, value := range v {
			str, ok := value.(string)
			if !ok {
				return fmt.Errorf("redis store %s: unexpected snapshot value type %T for key %s", s.route, value, key)
			}
			m[key] = str
		}
	default:
		return fmt.Errorf("redis store %s: unexpected snapshot type %T", s.route, snapshot)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.hashKey)
	if len(m) > 0 {
		flat := make([]any, 0, len(m)*2)
		for k, v := range m {
			flat = append(flat, k, v)
		}
		pipe.HSet(ctx, s.hashKey, flat...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis store %s: loading state: %w", s.route, err)
	}

	s.logger.Debug("state loaded",
		observability.String("route", s.route),
		observability.Int("entries", len(m)),
	)
	return nil
}

// DumpState returns the redis hash as a map[string]string. An unreachable
// redis dumps as an empty snapshot; the failure is logged.
func (s *RedisStore) DumpState() any {
	state, err := s.client.HGetAll(context.Background(), s.hashKey).Result()
	if err != nil {
		s.logger.Error("redis dump failed",
			observability.String("route", s.route),
			observability.Error(err),
		)
		return map[string]string{}
	}
	return state
}
