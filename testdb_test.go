package auth_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/tokengate/go-auth"
)

// newTestDB opens an isolated in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	for _, model := range []any{
		(*auth.User)(nil),
		(*auth.SessionToken)(nil),
		(*auth.MethodGrant)(nil),
	} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	return db
}

func seedUser(t *testing.T, db *bun.DB, userID, email string) *auth.User {
	t.Helper()

	user := &auth.User{
		ID:        uuid.New(),
		UserID:    userID,
		FirstName: "Ana",
		LastName:  "Pop",
		Email:     email,
	}

	_, err := db.NewInsert().Model(user).Exec(context.Background())
	require.NoError(t, err)

	return user
}

func seedGrant(t *testing.T, db *bun.DB, userID, appCode, methodCode string) {
	t.Helper()

	grant := &auth.MethodGrant{
		ID:         uuid.New(),
		UserID:     userID,
		AppCode:    appCode,
		MethodCode: methodCode,
	}

	_, err := db.NewInsert().Model(grant).Exec(context.Background())
	require.NoError(t, err)
}
