package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func identityRows(mock sqlmock.Sqlmock) *sqlmock.Rows {
	return mock.NewRows([]string{
		"id", "email", "role", "is_active",
		"created_by", "current_session_token",
		"session_expires_at", "last_seen", "created_at", "updated_at",
	})
}

func TestPGStoreFindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	expires := now.Add(time.Hour)
	rows := identityRows(mock).AddRow(
		"u1", "agent@fieldops.org", "fieldAgent", true,
		"a1", "sess-1", expires, nil, now, now,
	)
	mock.ExpectQuery("select .+ from identities where id=\\$1").
		WithArgs("u1").
		WillReturnRows(rows)

	store := NewPGStore(db)
	identity, err := store.FindByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if identity.Role != RoleFieldAgent || identity.CreatedBy != "a1" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.SessionExpiresAt == nil || !identity.SessionExpiresAt.Equal(expires) {
		t.Fatalf("unexpected expiry: %v", identity.SessionExpiresAt)
	}
	if identity.LastSeen != nil {
		t.Fatalf("expected nil last seen, got %v", identity.LastSeen)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPGStoreFindByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select .+ from identities where id=\\$1").
		WithArgs("ghost").
		WillReturnRows(identityRows(mock))

	store := NewPGStore(db)
	if _, err := store.FindByID(context.Background(), "ghost"); !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPGStoreFindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	rows := identityRows(mock).AddRow(
		"u1", "agent@fieldops.org", "auditor", true,
		"", "", nil, nil, now, now,
	)
	mock.ExpectQuery("select .+ from identities where email=\\$1").
		WithArgs("agent@fieldops.org").
		WillReturnRows(rows)

	store := NewPGStore(db)
	identity, err := store.FindByEmail(context.Background(), "agent@fieldops.org")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if identity.Role != RoleAuditor || identity.SessionExpiresAt != nil {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPGStorePasswordHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select password_hash from identities").
		WithArgs("u1").
		WillReturnRows(mock.NewRows([]string{"password_hash"}).AddRow("$2a$10$hash"))

	store := NewPGStore(db)
	hash, err := store.PasswordHash(context.Background(), "u1")
	if err != nil {
		t.Fatalf("PasswordHash: %v", err)
	}
	if hash != "$2a$10$hash" {
		t.Fatalf("unexpected hash: %s", hash)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPGStoreUpdateSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	expires := time.Now().UTC().Add(time.Hour)
	mock.ExpectExec("update identities").
		WithArgs("u1", "sess-2", expires).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPGStore(db)
	if err := store.UpdateSession(context.Background(), "u1", "sess-2", expires); err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPGStoreClearSessionUnknownIdentity(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("update identities").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewPGStore(db)
	if err := store.ClearSession(context.Background(), "ghost"); !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPGStoreUpdateLastSeen(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec("update identities set last_seen").
		WithArgs("u1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPGStore(db)
	if err := store.UpdateLastSeen(context.Background(), "u1", at); err != nil {
		t.Fatalf("UpdateLastSeen: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
