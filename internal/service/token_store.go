package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenKind separates access and refresh token keys.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access_token"
	TokenKindRefresh TokenKind = "refresh_token"
)

// TokenStore tracks issued tokens so they can be revoked before expiry.
type TokenStore interface {
	Store(ctx context.Context, kind TokenKind, userID uuid.UUID, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, kind TokenKind, userID uuid.UUID, tokenID string) (bool, error)
	Revoke(ctx context.Context, userID uuid.UUID, tokens map[TokenKind]string) error
}

type redisTokenStore struct {
	client redis.Cmdable
}

func NewRedisTokenStore(client redis.Cmdable) TokenStore {
	return &redisTokenStore{client: client}
}

func tokenKey(kind TokenKind, userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s:%s:%s", kind, userID.String(), tokenID)
}

func (s *redisTokenStore) Store(ctx context.Context, kind TokenKind, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, tokenKey(kind, userID, tokenID), "valid", ttl).Err()
}

func (s *redisTokenStore) Exists(ctx context.Context, kind TokenKind, userID uuid.UUID, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, tokenKey(kind, userID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Revoke deletes the given tokens in one transaction.
func (s *redisTokenStore) Revoke(ctx context.Context, userID uuid.UUID, tokens map[TokenKind]string) error {
	pipe := s.client.TxPipeline()
	for kind, tokenID := range tokens {
		if tokenID == "" {
			continue
		}
		pipe.Del(ctx, tokenKey(kind, userID, tokenID))
	}
	_, err := pipe.Exec(ctx)
	return err
}
