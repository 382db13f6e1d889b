package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/a-novel/service-authentication/internal/app/shortcode"
	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
	"github.com/redis/go-redis/v9"
)

var ErrShortCodeNotFound = apperr.New("short code not found",
	shortcode.CodeInvalidShortCode, apperr.ClassNotFound, apperr.LogLevelWarn)

type shortCodeValue struct {
	CodeHash string `json:"codeHash"`
	Data     string `json:"data,omitempty"`
}

type redisRepo struct {
	client redis.UniversalClient
}

func NewRepository(client redis.UniversalClient) *redisRepo {
	if client == nil {
		panic("shortcode.redisRepo: nil client")
	}
	return &redisRepo{client: client}
}

func key(usage shortcode.Usage, target string) string {
	return fmt.Sprintf("short-code:%s:%s", usage, target)
}

// Save relies on SET semantics to replace any previous code for the same
// pair, and on the key TTL for expiry.
func (r *redisRepo) Save(ctx context.Context, usage shortcode.Usage, target string, codeHash string, data string, ttl time.Duration) error {
	value, err := json.Marshal(shortCodeValue{CodeHash: codeHash, Data: data})
	if err != nil {
		return fmt.Errorf("shortcode.redisRepo.Save: %w", err)
	}

	if err = r.client.Set(ctx, key(usage, target), value, ttl).Err(); err != nil {
		return fmt.Errorf("shortcode.redisRepo.Save: %w", err)
	}

	return nil
}

func (r *redisRepo) Get(ctx context.Context, usage shortcode.Usage, target string) (string, string, error) {
	raw, err := r.client.Get(ctx, key(usage, target)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = ErrShortCodeNotFound
		}
		return "", "", fmt.Errorf("shortcode.redisRepo.Get: %w", err)
	}

	var value shortCodeValue
	if err = json.Unmarshal(raw, &value); err != nil {
		return "", "", fmt.Errorf("shortcode.redisRepo.Get: %w", err)
	}

	return value.CodeHash, value.Data, nil
}

func (r *redisRepo) Delete(ctx context.Context, usage shortcode.Usage, target string) error {
	if err := r.client.Del(ctx, key(usage, target)).Err(); err != nil {
		return fmt.Errorf("shortcode.redisRepo.Delete: %w", err)
	}

	return nil
}
