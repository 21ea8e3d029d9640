// Package redistokens keeps the per user token registration in Redis.
package redistokens

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"

	auth "github.com/tokengate/go-auth"
)

const (
	fieldTokenID = "token_id"
	fieldModTime = "mod_time"
)

// Store is a Redis backed auth.TokenStore. Each user maps to one hash
// holding the current token id and the last modification time, so writes
// replace the previous registration in place.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// New creates a Store with the default "authtoken:" key prefix.
func New(client redis.UniversalClient) *Store {
	return NewWithPrefix(client, "authtoken:")
}

// NewWithPrefix creates a Store with a custom key prefix.
func NewWithPrefix(client redis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(userID string) string {
	return s.prefix + userID
}

// Current returns the registration for userID, or (nil, nil) when the
// user never logged in.
func (s *Store) Current(ctx context.Context, userID string) (*auth.SessionToken, error) {
	fields, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to read token registration").
			WithMetadata(map[string]any{"user_id": userID})
	}

	// HGetAll returns an empty map for missing keys instead of redis.Nil.
	if len(fields) == 0 {
		return nil, nil
	}

	modTime, err := time.Parse(time.RFC3339Nano, fields[fieldModTime])
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "corrupt token registration").
			WithMetadata(map[string]any{"user_id": userID})
	}

	return &auth.SessionToken{
		UserID:  userID,
		TokenID: fields[fieldTokenID],
		ModTime: modTime,
	}, nil
}

// Save upserts the registration for record.UserID, replacing any prior
// token id in one round trip.
func (s *Store) Save(ctx context.Context, record *auth.SessionToken) error {
	err := s.client.HSet(ctx, s.key(record.UserID),
		fieldTokenID, record.TokenID,
		fieldModTime, record.ModTime.UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to save token registration").
			WithMetadata(map[string]any{"user_id": record.UserID})
	}
	return nil
}

var _ auth.TokenStore = (*Store)(nil)
