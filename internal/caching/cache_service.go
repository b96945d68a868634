package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"campuseats/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Canteen caching
	GetCanteen(ctx context.Context, canteenID uuid.UUID) (*models.Canteen, error)
	SetCanteen(ctx context.Context, canteen *models.Canteen, ttl time.Duration) error
	DeleteCanteen(ctx context.Context, canteenID uuid.UUID) error

	// Category caching, keyed per canteen
	GetCategories(ctx context.Context, canteenID uuid.UUID) ([]*models.Category, error)
	SetCategories(ctx context.Context, canteenID uuid.UUID, categories []*models.Category, ttl time.Duration) error
	DeleteCategories(ctx context.Context, canteenID uuid.UUID) error

	// Menu item caching, keyed per category
	GetMenuItems(ctx context.Context, categoryID uuid.UUID) ([]*models.MenuItem, error)
	SetMenuItems(ctx context.Context, categoryID uuid.UUID, items []*models.MenuItem, ttl time.Duration) error
	DeleteMenuItems(ctx context.Context, categoryID uuid.UUID) error

	// Cache invalidation
	InvalidateCanteenCache(ctx context.Context, canteenID uuid.UUID) error
	InvalidateAllCache(ctx context.Context) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewClient dials Redis and returns a client shared by the cache, the
// cart store and the order event bus.
func NewClient(addr, password string, db int) *redis.Client {
	// Accept redis://host:port URLs as well as bare host:port
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return client
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetCanteen(ctx context.Context, canteenID uuid.UUID) (*models.Canteen, error) {
	key := fmt.Sprintf("campuseats:canteen:%s", canteenID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var canteen models.Canteen
	if err := json.Unmarshal(data, &canteen); err != nil {
		return nil, err
	}
	return &canteen, nil
}

func (r *redisCacheService) SetCanteen(ctx context.Context, canteen *models.Canteen, ttl time.Duration) error {
	key := fmt.Sprintf("campuseats:canteen:%s", canteen.ID.String())
	data, err := json.Marshal(canteen)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteCanteen(ctx context.Context, canteenID uuid.UUID) error {
	key := fmt.Sprintf("campuseats:canteen:%s", canteenID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetCategories(ctx context.Context, canteenID uuid.UUID) ([]*models.Category, error) {
	key := fmt.Sprintf("campuseats:categories:%s", canteenID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var categories []*models.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *redisCacheService) SetCategories(ctx context.Context, canteenID uuid.UUID, categories []*models.Category, ttl time.Duration) error {
	key := fmt.Sprintf("campuseats:categories:%s", canteenID.String())
	data, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteCategories(ctx context.Context, canteenID uuid.UUID) error {
	key := fmt.Sprintf("campuseats:categories:%s", canteenID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetMenuItems(ctx context.Context, categoryID uuid.UUID) ([]*models.MenuItem, error) {
	key := fmt.Sprintf("campuseats:menuitems:%s", categoryID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var items []*models.MenuItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *redisCacheService) SetMenuItems(ctx context.Context, categoryID uuid.UUID, items []*models.MenuItem, ttl time.Duration) error {
	key := fmt.Sprintf("campuseats:menuitems:%s", categoryID.String())
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteMenuItems(ctx context.Context, categoryID uuid.UUID) error {
	key := fmt.Sprintf("campuseats:menuitems:%s", categoryID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) InvalidateCanteenCache(ctx context.Context, canteenID uuid.UUID) error {
	keys := []string{
		fmt.Sprintf("campuseats:canteen:%s", canteenID.String()),
		fmt.Sprintf("campuseats:categories:%s", canteenID.String()),
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCacheService) InvalidateAllCache(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, "campuseats:canteen:*").Result()
	if err != nil {
		return err
	}
	more, err := r.client.Keys(ctx, "campuseats:categories:*").Result()
	if err != nil {
		return err
	}
	keys = append(keys, more...)
	more, err = r.client.Keys(ctx, "campuseats:menuitems:*").Result()
	if err != nil {
		return err
	}
	keys = append(keys, more...)

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("campuseats:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
