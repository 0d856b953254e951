package holds

import (
	"context"
	"strconv"

	pkgredis "github.com/hninyuwai/boutiquepos-backend/pkg/redis"
)

// RedisStore shares hold counts between terminals through one redis hash per
// location plus one per owner. Totals and owner entries are written in that
// order; a crashed terminal leaks at most its own holds, which ReleaseOwner
// cleans up on the next session.
type RedisStore struct {
	client *pkgredis.Client
}

// NewRedisStore wraps the shared redis client.
func NewRedisStore(client *pkgredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func totalsKey(location string) string {
	return pkgredis.Key("holds", location)
}

func ownerKey(owner, location string) string {
	return pkgredis.Key("holds", "owner", owner, location)
}

func (s *RedisStore) Add(ctx context.Context, location, variantCode, owner string, qty int) error {
	if _, err := s.client.HIncrBy(ctx, totalsKey(location), variantCode, int64(qty)); err != nil {
		return err
	}
	if _, err := s.client.HIncrBy(ctx, ownerKey(owner, location), variantCode, int64(qty)); err != nil {
		return err
	}
	return nil
}

func (s *RedisStore) Held(ctx context.Context, location, variantCode string) (int, error) {
	raw, err := s.client.HGet(ctx, totalsKey(location), variantCode)
	if pkgredis.IsNil(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	held, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if held < 0 {
		return 0, nil
	}
	return held, nil
}

func (s *RedisStore) ReleaseOwner(ctx context.Context, owner string) error {
	for _, location := range []string{"store", "warehouse"} {
		key := ownerKey(owner, location)
		byCode, err := s.client.HGetAll(ctx, key)
		if err != nil {
			return err
		}
		for code, raw := range byCode {
			qty, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				continue
			}
			if _, err := s.client.HIncrBy(ctx, totalsKey(location), code, -qty); err != nil {
				return err
			}
		}
		if err := s.client.Del(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
