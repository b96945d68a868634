package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store persists one cart per (student, canteen) pair. Writes overwrite
// the whole value; last write wins.
type Store interface {
	Load(ctx context.Context, studentID, canteenID uuid.UUID) (*Cart, error)
	Save(ctx context.Context, studentID, canteenID uuid.UUID, c *Cart) error
	Delete(ctx context.Context, studentID, canteenID uuid.UUID) error
}

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func cartKey(studentID, canteenID uuid.UUID) string {
	return fmt.Sprintf("campuseats:cart:%s:%s", studentID.String(), canteenID.String())
}

func (s *redisStore) Load(ctx context.Context, studentID, canteenID uuid.UUID) (*Cart, error) {
	data, err := s.client.Get(ctx, cartKey(studentID, canteenID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return &Cart{}, nil // no stored cart yet
		}
		return nil, err
	}

	c := &Cart{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *redisStore) Save(ctx context.Context, studentID, canteenID uuid.UUID, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cartKey(studentID, canteenID), data, 0).Err()
}

func (s *redisStore) Delete(ctx context.Context, studentID, canteenID uuid.UUID) error {
	return s.client.Del(ctx, cartKey(studentID, canteenID)).Err()
}
