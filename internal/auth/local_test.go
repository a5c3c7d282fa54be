package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/yourusername/secret-share/internal/store"
)

func TestRegisterAndVerify(t *testing.T) {
	users := newFakeUserStore()
	local := NewLocalAuthenticator(users)

	user, err := local.Register(context.Background(), "alice", "pw123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected username: %q", user.Username)
	}
	if user.PasswordHash == "" || user.PasswordHash == "pw123" {
		t.Fatalf("password was not hashed: %q", user.PasswordHash)
	}

	verified, err := local.Verify(context.Background(), "alice", "pw123")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if verified.ID != user.ID {
		t.Fatalf("Verify resolved wrong user: %s != %s", verified.ID.Hex(), user.ID.Hex())
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	users := newFakeUserStore()
	local := NewLocalAuthenticator(users)

	if _, err := local.Register(context.Background(), "alice", "pw123"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, err := local.Verify(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyUnknownUsername(t *testing.T) {
	local := NewLocalAuthenticator(newFakeUserStore())

	if _, err := local.Verify(context.Background(), "nobody", "pw123"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	users := newFakeUserStore()
	local := NewLocalAuthenticator(users)

	first, err := local.Register(context.Background(), "alice", "pw123")
	if err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}

	if _, err := local.Register(context.Background(), "alice", "other"); !errors.Is(err, store.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	// 最初のレコードは変更されない
	stored, err := users.FindByID(context.Background(), first.HexID())
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if stored.PasswordHash != first.PasswordHash {
		t.Fatal("first record was altered by duplicate registration")
	}
	if users.count() != 1 {
		t.Fatalf("unexpected user count: %d", users.count())
	}
}

func TestVerifyFederationOnlyAccount(t *testing.T) {
	users := newFakeUserStore()
	local := NewLocalAuthenticator(users)

	if _, err := users.FindOrCreateByGoogleID(context.Background(), "subject-1"); err != nil {
		t.Fatalf("FindOrCreateByGoogleID returned error: %v", err)
	}

	// パスワードを持たないアカウントはローカル認証に成功しない
	if _, err := local.Verify(context.Background(), "", "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for federation-only account, got %v", err)
	}
}

func TestRegisterRejectsEmptyInput(t *testing.T) {
	local := NewLocalAuthenticator(newFakeUserStore())

	if _, err := local.Register(context.Background(), "", "pw123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty username, got %v", err)
	}
	if _, err := local.Register(context.Background(), "alice", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty password, got %v", err)
	}
}
