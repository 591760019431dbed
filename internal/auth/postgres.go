package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var _ IdentityStore = (*PGStore)(nil)

// PGStore implements IdentityStore using PostgreSQL. Session updates are
// single-row writes, so the database's row-level atomicity is what upholds
// the single-session invariant under concurrent logins.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const identityColumns = `id, email, role, is_active,
	coalesce(created_by, ''), coalesce(current_session_token, ''),
	session_expires_at, last_seen, created_at, updated_at`

func (s *PGStore) FindByID(ctx context.Context, id string) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+identityColumns+` from identities where id=$1`, id)
	return scanIdentity(row)
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+identityColumns+` from identities where email=$1`, email)
	return scanIdentity(row)
}

func (s *PGStore) PasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		`select password_hash from identities where id=$1`, id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrIdentityNotFound
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (s *PGStore) UpdateSession(ctx context.Context, id, sessionToken string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update identities
		set current_session_token=$2, session_expires_at=$3, updated_at=now()
		where id=$1`,
		id, sessionToken, expiresAt.UTC(),
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) ClearSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		update identities
		set current_session_token=null, session_expires_at=null, updated_at=now()
		where id=$1`,
		id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`update identities set last_seen=$2 where id=$1`, id, at.UTC())
	return err
}

func scanIdentity(row *sql.Row) (*Identity, error) {
	var (
		identity  Identity
		role      string
		expiresAt sql.NullTime
		lastSeen  sql.NullTime
	)
	err := row.Scan(
		&identity.ID, &identity.Email, &role, &identity.IsActive,
		&identity.CreatedBy, &identity.CurrentSessionToken,
		&expiresAt, &lastSeen, &identity.CreatedAt, &identity.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIdentityNotFound
	}
	if err != nil {
		return nil, err
	}
	identity.Role, err = ParseRole(role)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		identity.SessionExpiresAt = &t
	}
	if lastSeen.Valid {
		t := lastSeen.Time
		identity.LastSeen = &t
	}
	return &identity, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrIdentityNotFound
	}
	return nil
}
