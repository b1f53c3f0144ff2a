package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"skybook/config"
	"skybook/internal/domain"
)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
	}
}

func (c *RedisCache) GetFlights(ctx context.Context, key string) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, key string, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(key), payload, c.flightsTTL).Err()
}

// SaveWizardSession stores a wizard session as JSON under its id. Every save
// restarts the expiry; the success-state save passes the short auto-reset
// window as its ttl.
func (c *RedisCache) SaveWizardSession(ctx context.Context, id string, payload []byte, ttl time.Duration) error {
	return c.client.Set(ctx, wizardKey(id), payload, ttl).Err()
}

func (c *RedisCache) GetWizardSession(ctx context.Context, id string) ([]byte, error) {
	data, err := c.client.Get(ctx, wizardKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (c *RedisCache) DeleteWizardSession(ctx context.Context, id string) error {
	return c.client.Del(ctx, wizardKey(id)).Err()
}

// Auth sessions back the process-wide session store. The value is the email
// the token was issued to.
func (c *RedisCache) SaveAuthSession(ctx context.Context, token, email string, ttl time.Duration) error {
	return c.client.Set(ctx, authSessionKey(token), email, ttl).Err()
}

func (c *RedisCache) GetAuthSession(ctx context.Context, token string) (string, error) {
	email, err := c.client.Get(ctx, authSessionKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return email, nil
}

func (c *RedisCache) DeleteAuthSession(ctx context.Context, token string) error {
	return c.client.Del(ctx, authSessionKey(token)).Err()
}

func (c *RedisCache) SaveVerificationCode(ctx context.Context, email, code string, ttl time.Duration) error {
	return c.client.Set(ctx, verificationKey(email), code, ttl).Err()
}

func (c *RedisCache) GetVerificationCode(ctx context.Context, email string) (string, error) {
	code, err := c.client.Get(ctx, verificationKey(email)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return code, nil
}

func (c *RedisCache) DeleteVerificationCode(ctx context.Context, email string) error {
	return c.client.Del(ctx, verificationKey(email)).Err()
}

func flightsKey(key string) string {
	return "cache:flights:" + key
}

func wizardKey(id string) string {
	return "wizard:session:" + id
}

func authSessionKey(token string) string {
	return "auth:session:" + token
}

func verificationKey(email string) string {
	return fmt.Sprintf("auth:verify:%s", email)
}
