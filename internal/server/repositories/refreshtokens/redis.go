package refreshtokens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "gophauth:"
	// DefaultRetention keeps a record around after its expiry so that late
	// refresh attempts still see an expired record rather than a missing one.
	DefaultRetention = 30 * 24 * time.Hour
)

var errTokenExists = errors.New("refresh token already exists")

// KEYS[1] = record key, KEYS[2] = user index key
// ARGV[1] = token, ARGV[2] = expire-at unix ms, ARGV[3..] = field/value pairs
var createLua = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
local fields = {}
for i = 3, #ARGV do
  fields[#fields + 1] = ARGV[i]
end
redis.call("HSET", KEYS[1], unpack(fields))
redis.call("PEXPIREAT", KEYS[1], ARGV[2])
redis.call("SADD", KEYS[2], ARGV[1])
return 1
`)

// KEYS[1] = record key
var markUsedLua = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
local v = redis.call("HMGET", KEYS[1], "used", "invalidated")
if v[1] == "1" or v[2] == "1" then
  return 0
end
redis.call("HSET", KEYS[1], "used", "1")
return 1
`)

// KEYS[1] = user index key, ARGV[1] = record key prefix
var invalidateUserLua = redis.NewScript(`
local n = 0
for _, tok in ipairs(redis.call("SMEMBERS", KEYS[1])) do
  local key = ARGV[1] .. tok
  if redis.call("EXISTS", key) == 0 then
    redis.call("SREM", KEYS[1], tok)
  else
    local v = redis.call("HMGET", key, "used", "invalidated")
    if v[1] ~= "1" and v[2] ~= "1" then
      redis.call("HSET", key, "invalidated", "1")
      n = n + 1
    end
  end
end
return n
`)

// RedisRepository keeps each record in a hash and indexes tokens per user in a
// set. Index members whose record has expired are pruned lazily by
// InvalidateByUser. All state transitions run as Lua scripts, so they are atomic on a single
// Redis node.
type RedisRepository struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

type RedisOption func(*RedisRepository)

func WithKeyPrefix(prefix string) RedisOption {
	return func(r *RedisRepository) { r.prefix = prefix }
}

func WithRetention(d time.Duration) RedisOption {
	return func(r *RedisRepository) { r.retention = d }
}

func NewRedisRepository(client redis.UniversalClient, opts ...RedisOption) *RedisRepository {
	r := &RedisRepository{client: client, prefix: defaultKeyPrefix, retention: DefaultRetention}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *RedisRepository) tokenPrefix() string { return r.prefix + "rt:" }

func (r *RedisRepository) tokenKey(token string) string { return r.tokenPrefix() + token }

func (r *RedisRepository) userKey(userID string) string { return r.prefix + "rt-user:" + userID }

func (r *RedisRepository) Create(ctx context.Context, t *models.RefreshToken) error {
	id := t.ID
	if id == "" {
		id = uuid.NewString()
	}
	expireAt := t.ExpiryTime.Add(r.retention).UnixMilli()

	res, err := createLua.Run(ctx, r.client,
		[]string{r.tokenKey(t.Token), r.userKey(t.UserID)},
		t.Token, expireAt,
		"id", id,
		"jwt_id", t.JwtID,
		"used", boolField(t.Used),
		"invalidated", boolField(t.Invalidated),
		"creation_time", t.CreationTime.UnixNano(),
		"expiry_time", t.ExpiryTime.UnixNano(),
		"user_id", t.UserID,
	).Int64()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if res == 0 {
		return errTokenExists
	}
	t.ID = id
	return nil
}

func (r *RedisRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	m, err := r.client.HGetAll(ctx, r.tokenKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(m) == 0 {
		return nil, common.ErrorNotFound
	}

	created, err := strconv.ParseInt(m["creation_time"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt refresh token record: %w", err)
	}
	expires, err := strconv.ParseInt(m["expiry_time"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt refresh token record: %w", err)
	}

	return &models.RefreshToken{
		ID:           m["id"],
		JwtID:        m["jwt_id"],
		Token:        token,
		Used:         m["used"] == "1",
		Invalidated:  m["invalidated"] == "1",
		CreationTime: time.Unix(0, created).UTC(),
		ExpiryTime:   time.Unix(0, expires).UTC(),
		UserID:       m["user_id"],
	}, nil
}

func (r *RedisRepository) MarkUsed(ctx context.Context, token string) (bool, error) {
	n, err := markUsedLua.Run(ctx, r.client, []string{r.tokenKey(token)}).Int64()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return n == 1, nil
}

func (r *RedisRepository) InvalidateByUser(ctx context.Context, userID string) (int64, error) {
	n, err := invalidateUserLua.Run(ctx, r.client, []string{r.userKey(userID)}, r.tokenPrefix()).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	return n, nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
