// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"todo_backend/internal/feature/auth/domain/entity"
	"todo_backend/internal/feature/auth/usecase"
)

const (
	// DefaultUserTTL bounds how long a deleted or edited user can be served from a stale entry
	// when an invalidation is lost.
	DefaultUserTTL = 5 * time.Minute

	// tombstone replaces the entry on every write. Fills use SET NX, so a lookup that read the
	// row before the write cannot put the old user back while the tombstone lives.
	tombstone = "-"
	// tombstoneTTL must outlast any in-flight FindByID.
	tombstoneTTL = 30 * time.Second
)

// CachingUserRepository decorates a UserRepository with Redis caching of FindByID,
// the lookup the authorization gate performs on every protected request.
// Writes go straight to the inner repository and leave a short-lived tombstone afterwards.
type CachingUserRepository struct {
	inner     usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// cachedUser is the Redis representation of a user.
// entity.User hides the digest from JSON, so it is carried explicitly here.
type cachedUser struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Digest    string    `json:"digest"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCached(u *entity.User) cachedUser {
	return cachedUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Digest:    u.Password,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (c cachedUser) toEntity() *entity.User {
	return &entity.User{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Password:  c.Digest,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If rdb is nil every call goes to inner. If ttl is 0, it defaults to DefaultUserTTL.
// If namespace is empty, it uses "users".
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = DefaultUserTTL
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create persists a new user. Nothing is cached until the first FindByID.
func (c *CachingUserRepository) Create(ctx context.Context, user *entity.User) error {
	return c.inner.Create(ctx, user)
}

// FindByEmail is not cached: login must always see the current digest and email.
func (c *CachingUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return c.inner.FindByEmail(ctx, email)
}

// FindByID retrieves a user, checking cache first then falling back to the database.
// Misses are not cached, so a deleted user is never resurrected.
func (c *CachingUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.cacheKey(id)

	// 1) Check cache
	fill := true
	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil && string(b) == tombstone:
		// recently written: read through without caching until the tombstone expires
		fill = false
	case err == nil && len(b) > 0:
		var cu cachedUser
		if err := json.Unmarshal(b, &cu); err == nil {
			return cu.toEntity(), nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	case err != nil && !errors.Is(err, redis.Nil):
		slog.Warn("user cache read failed", "key", key, "error", err)
	}

	// 2) Fallback to database
	user, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort); NX keeps a concurrent write's tombstone in place
	if fill {
		if b, err := json.Marshal(toCached(user)); err == nil {
			_ = c.rdb.SetNX(ctx, key, b, c.ttl).Err()
		}
	}
	return user, nil
}

// UpdateProfile updates name and email, then invalidates the cached entry.
func (c *CachingUserRepository) UpdateProfile(ctx context.Context, id uint, name, email string) (*entity.User, error) {
	user, err := c.inner.UpdateProfile(ctx, id, name, email)
	c.invalidate(ctx, id)
	return user, err
}

// UpdatePassword overwrites the digest, then invalidates the cached entry.
func (c *CachingUserRepository) UpdatePassword(ctx context.Context, id uint, digest string) error {
	err := c.inner.UpdatePassword(ctx, id, digest)
	c.invalidate(ctx, id)
	return err
}

// Delete removes the user, then invalidates the cached entry so the gate rejects
// tokens of the deleted account immediately.
func (c *CachingUserRepository) Delete(ctx context.Context, id uint) error {
	err := c.inner.Delete(ctx, id)
	c.invalidate(ctx, id)
	return err
}

// invalidate replaces the entry with a tombstone regardless of the write's outcome.
func (c *CachingUserRepository) invalidate(ctx context.Context, id uint) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, c.cacheKey(id), tombstone, tombstoneTTL).Err(); err != nil {
		slog.Warn("user cache invalidation failed", "user_id", id, "error", err)
	}
}

// cacheKey generates a cache key for a user id.
func (c *CachingUserRepository) cacheKey(id uint) string {
	return c.namespace + ":" + strconv.FormatUint(uint64(id), 10)
}
