package stores

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/oarkflow/secured"
)

// RedisAuthorityStore keeps each principal's granted permissions in a Redis
// set (key: authority:{principal}). It backs identity suppliers for processes
// that share granted-permission state across instances.
type RedisAuthorityStore struct {
	client *redis.Client
	keyFmt string // format string, e.g. "authority:%s"
}

func NewRedisAuthorityStore(client *redis.Client) *RedisAuthorityStore {
	return &RedisAuthorityStore{client: client, keyFmt: "authority:%s"}
}

func (r *RedisAuthorityStore) key(principal string) string {
	return fmt.Sprintf(r.keyFmt, principal)
}

func (r *RedisAuthorityStore) Grant(ctx context.Context, principal string, permissions ...string) error {
	if len(permissions) == 0 {
		return nil
	}
	members := make([]any, len(permissions))
	for i, p := range permissions {
		members[i] = p
	}
	return r.client.SAdd(ctx, r.key(principal), members...).Err()
}

func (r *RedisAuthorityStore) Revoke(ctx context.Context, principal string, permissions ...string) error {
	if len(permissions) == 0 {
		return nil
	}
	members := make([]any, len(permissions))
	for i, p := range permissions {
		members[i] = p
	}
	return r.client.SRem(ctx, r.key(principal), members...).Err()
}

func (r *RedisAuthorityStore) Permissions(ctx context.Context, principal string) ([]string, error) {
	return r.client.SMembers(ctx, r.key(principal)).Result()
}

// Supplier returns a lazy IdentitySupplier for the principal. The Redis
// round-trip happens only if the supplier is actually invoked, preserving the
// no-lookup-on-ungoverned-calls contract.
func (r *RedisAuthorityStore) Supplier(ctx context.Context, principal string) secured.IdentitySupplier {
	return func() (*secured.Identity, error) {
		perms, err := r.Permissions(ctx, principal)
		if err != nil {
			return nil, err
		}
		return &secured.Identity{Principal: principal, Permissions: perms}, nil
	}
}
