package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model. Accounts are provisioned out-of-band; the auth core
// only reads them during login.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        string     `bun:"user_id,notnull,unique" json:"user_id,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email         string     `bun:"email,notnull" json:"email,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// FullName is used when addressing login link emails.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// SessionToken records the one token considered current for a user. Exactly
// one row per user is authoritative; writes supersede the previous row.
type SessionToken struct {
	bun.BaseModel `bun:"table:session_tokens,alias:stk"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        string    `bun:"user_id,notnull,unique" json:"user_id,omitempty"`
	TokenID       string    `bun:"token_id,notnull" json:"token_id,omitempty"`
	ModTime       time.Time `bun:"mod_time,notnull" json:"mod_time,omitempty"`
}

// MethodGrant allows a user to invoke one protected operation, identified by
// an (application code, method code) pair.
type MethodGrant struct {
	bun.BaseModel `bun:"table:method_grants,alias:mgr"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        string    `bun:"user_id,notnull" json:"user_id,omitempty"`
	AppCode       string    `bun:"app_code,notnull" json:"app_code,omitempty"`
	MethodCode    string    `bun:"method_code,notnull" json:"method_code,omitempty"`
}
