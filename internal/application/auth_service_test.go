package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/gotree-agenda/internal/application"
	"github.com/example/gotree-agenda/internal/testfixtures"
)

func newAuthService(store *testfixtures.Store, clock *testfixtures.Clock) *application.AuthService {
	ids := testfixtures.NewIDGenerator("auth")
	return application.NewAuthService(store, store, ids.NextFunc(), clock.NowFunc(), time.Hour)
}

func seedCredentials(t *testing.T, store *testfixtures.Store, password string) testfixtures.UserFixture {
	t.Helper()
	hash, err := application.CreatePasswordHash(password, application.DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("CreatePasswordHash failed: %v", err)
	}
	user := testfixtures.NewUserFixture(testfixtures.WithUserPasswordHash(hash))
	store.SeedUser(user.Persistence())
	return user
}

func TestAuthServiceAuthenticate(t *testing.T) {
	t.Parallel()

	t.Run("issues a session for valid credentials", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		clock := testfixtures.NewClock(time.Time{})
		user := seedCredentials(t, store, "s3nha-forte")
		svc := newAuthService(store, clock)

		result, err := svc.Authenticate(context.Background(), application.AuthenticateParams{
			Email:    user.Email,
			Password: "s3nha-forte",
		})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if result.User.ID != user.ID {
			t.Fatalf("unexpected user: %+v", result.User)
		}
		if result.Session.Token == "" {
			t.Fatal("expected a session token")
		}
		if !result.Session.ExpiresAt.Equal(clock.Now().Add(time.Hour)) {
			t.Fatalf("unexpected expiry: %v", result.Session.ExpiresAt)
		}
	})

	t.Run("wrong password and unknown email look identical", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		clock := testfixtures.NewClock(time.Time{})
		user := seedCredentials(t, store, "s3nha-forte")
		svc := newAuthService(store, clock)

		_, err := svc.Authenticate(context.Background(), application.AuthenticateParams{
			Email:    user.Email,
			Password: "errada",
		})
		if !errors.Is(err, application.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}

		_, err = svc.Authenticate(context.Background(), application.AuthenticateParams{
			Email:    "ninguem@gotree.com.br",
			Password: "s3nha-forte",
		})
		if !errors.Is(err, application.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthServiceValidateSession(t *testing.T) {
	t.Parallel()

	t.Run("resolves a live token into a principal", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		clock := testfixtures.NewClock(time.Time{})
		user := testfixtures.NewUserFixture(testfixtures.WithUserAdmin(true))
		store.SeedUser(user.Persistence())
		session := testfixtures.NewSessionFixture(
			testfixtures.WithSessionUserID(user.ID),
			testfixtures.WithSessionExpiresAt(clock.Now().Add(time.Hour)),
		)
		store.SeedSession(session.Persistence())
		svc := newAuthService(store, clock)

		principal, err := svc.ValidateSession(context.Background(), session.Token)
		if err != nil {
			t.Fatalf("ValidateSession failed: %v", err)
		}
		if principal.UserID != user.ID || !principal.IsAdmin {
			t.Fatalf("unexpected principal: %+v", principal)
		}
	})

	t.Run("rejects expired sessions", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		clock := testfixtures.NewClock(time.Time{})
		user := testfixtures.NewUserFixture()
		store.SeedUser(user.Persistence())
		session := testfixtures.NewSessionFixture(
			testfixtures.WithSessionUserID(user.ID),
			testfixtures.WithSessionExpiresAt(clock.Now().Add(time.Minute)),
		)
		store.SeedSession(session.Persistence())
		svc := newAuthService(store, clock)

		clock.Advance(2 * time.Minute)
		if _, err := svc.ValidateSession(context.Background(), session.Token); !errors.Is(err, application.ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects revoked sessions", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		clock := testfixtures.NewClock(time.Time{})
		user := testfixtures.NewUserFixture()
		store.SeedUser(user.Persistence())
		session := testfixtures.NewSessionFixture(
			testfixtures.WithSessionUserID(user.ID),
			testfixtures.WithSessionExpiresAt(clock.Now().Add(time.Hour)),
			testfixtures.WithSessionRevokedAt(clock.Now()),
		)
		store.SeedSession(session.Persistence())
		svc := newAuthService(store, clock)

		if _, err := svc.ValidateSession(context.Background(), session.Token); !errors.Is(err, application.ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("unknown tokens are invalid credentials", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewStore()
		clock := testfixtures.NewClock(time.Time{})
		svc := newAuthService(store, clock)

		if _, err := svc.ValidateSession(context.Background(), "no-such-token"); !errors.Is(err, application.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthServiceLogout(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewStore()
	clock := testfixtures.NewClock(time.Time{})
	user := testfixtures.NewUserFixture()
	store.SeedUser(user.Persistence())
	session := testfixtures.NewSessionFixture(
		testfixtures.WithSessionUserID(user.ID),
		testfixtures.WithSessionExpiresAt(clock.Now().Add(time.Hour)),
	)
	store.SeedSession(session.Persistence())
	svc := newAuthService(store, clock)

	if err := svc.Logout(context.Background(), session.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.ValidateSession(context.Background(), session.Token); !errors.Is(err, application.ErrSessionRevoked) {
		t.Fatalf("expected revoked session after logout, got %v", err)
	}

	// Revoking twice or revoking an unknown token stays silent.
	if err := svc.Logout(context.Background(), session.Token); err != nil {
		t.Fatalf("second Logout failed: %v", err)
	}
	if err := svc.Logout(context.Background(), "no-such-token"); err != nil {
		t.Fatalf("unknown token Logout failed: %v", err)
	}
}
