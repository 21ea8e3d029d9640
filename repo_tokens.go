package auth

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SessionTokens is the bun backed TokenStore. One row per user; Save relies
// on the user_id unique constraint so the upsert is atomic per user.
type SessionTokens struct {
	db *bun.DB
}

var _ TokenStore = (*SessionTokens)(nil)

func NewSessionTokens(db *bun.DB) *SessionTokens {
	return &SessionTokens{db: db}
}

func (s *SessionTokens) Current(ctx context.Context, userID string) (*SessionToken, error) {
	record := &SessionToken{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to read session token")
	}

	return record, nil
}

func (s *SessionTokens) Save(ctx context.Context, record *SessionToken) error {
	if record == nil {
		return errors.New("session token record must not be nil", errors.CategoryInternal)
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (user_id) DO UPDATE").
		Set("token_id = EXCLUDED.token_id").
		Set("mod_time = EXCLUDED.mod_time").
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist session token")
	}

	return nil
}

// MethodGrants is the bun backed permission oracle.
type MethodGrants struct {
	db *bun.DB
}

var _ Authorizer = (*MethodGrants)(nil)

func NewMethodGrants(db *bun.DB) *MethodGrants {
	return &MethodGrants{db: db}
}

// Allowed reports whether the user holds a grant for the operation identified
// by (appCode, methodCode).
func (g *MethodGrants) Allowed(ctx context.Context, userID, appCode, methodCode string) (bool, error) {
	count, err := g.db.NewSelect().
		Model((*MethodGrant)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.app_code = ?", appCode).
		Where("?TableAlias.method_code = ?", methodCode).
		Count(ctx)

	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check method grant")
	}

	return count > 0, nil
}

// ListForUser returns every operation the user may perform, for client menus.
func (g *MethodGrants) ListForUser(ctx context.Context, userID string) ([]MethodGrant, error) {
	var grants []MethodGrant
	err := g.db.NewSelect().
		Model(&grants).
		Where("?TableAlias.user_id = ?", userID).
		Order("app_code", "method_code").
		Scan(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list method grants")
	}

	return grants, nil
}
