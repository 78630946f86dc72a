package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finverse/accessgate/models"
)

func signedToken(t *testing.T, sub, role string, issuedAt, expiresAt time.Time) string {
	t.Helper()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestRecoverSession(t *testing.T) {
	userID := uuid.New()
	issued := time.Now().Truncate(time.Second)
	expires := issued.Add(time.Hour)

	t.Run("valid token yields an authenticated session", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/session", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"token":"` + signedToken(t, userID.String(), "compliance_officer", issued, expires) + `"}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		sess, err := client.RecoverSession(context.Background())

		require.NoError(t, err)
		assert.Equal(t, models.SessionAuthenticated, sess.Status)
		assert.Equal(t, userID, sess.UserID)
		assert.Equal(t, models.RoleComplianceOfficer, sess.Role)
		assert.Equal(t, issued.Unix(), sess.IssuedAt.Unix())
		assert.Equal(t, expires.Unix(), sess.ExpiresAt.Unix())
	})

	t.Run("404 means no recoverable session", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		_, err := client.RecoverSession(context.Background())

		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("unknown role fails closed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"token":"` + signedToken(t, userID.String(), "root", issued, expires) + `"}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		_, err := client.RecoverSession(context.Background())

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed token is rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"token":"not-a-jwt"}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		_, err := client.RecoverSession(context.Background())

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("server error is surfaced", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		_, err := client.RecoverSession(context.Background())

		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoSession)
	})
}

func TestSignIn(t *testing.T) {
	userID := uuid.New()
	now := time.Now()

	t.Run("valid credentials return a session", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/session", r.URL.Path)
			_, _ = w.Write([]byte(`{"token":"` + signedToken(t, userID.String(), "user", now, now.Add(time.Hour)) + `"}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		sess, err := client.SignIn(context.Background(), Credentials{Email: "ada@example.com", Password: "pw"})

		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, sess.Role)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		_, err := client.SignIn(context.Background(), Credentials{Email: "ada@example.com", Password: "wrong"})

		assert.ErrorIs(t, err, ErrSessionRejected)
	})
}

func TestRefreshSession(t *testing.T) {
	userID := uuid.New()
	now := time.Now()

	t.Run("refresh carries the session token", func(t *testing.T) {
		token := signedToken(t, userID.String(), "admin", now, now.Add(time.Hour))
		var gotAuth string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/session":
				_, _ = w.Write([]byte(`{"token":"` + token + `"}`))
			case "/session/refresh":
				gotAuth = r.Header.Get("Authorization")
				_, _ = w.Write([]byte(`{"token":"` + signedToken(t, userID.String(), "admin", now, now.Add(2*time.Hour)) + `"}`))
			}
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		sess, err := client.RecoverSession(context.Background())
		require.NoError(t, err)

		refreshed, err := client.RefreshSession(context.Background(), sess)
		require.NoError(t, err)
		assert.Equal(t, "Bearer "+token, gotAuth)
		assert.True(t, refreshed.ExpiresAt.After(sess.ExpiresAt))
	})

	t.Run("rejection clears the held token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		_, err := client.RefreshSession(context.Background(), models.Session{})

		assert.ErrorIs(t, err, ErrSessionRejected)
	})
}

func TestSignOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	assert.NoError(t, client.SignOut(context.Background(), models.Session{}))
}
