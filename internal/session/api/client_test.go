package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carddemo/pkg/apierrors"
)

func loginPayload() map[string]any {
	return map[string]any{
		"accessToken":  "at-1",
		"refreshToken": "rt-1",
		"tokenType":    "Bearer",
		"userId":       "ADMIN001",
		"fullName":     "Admin User",
		"userType":     "A",
		"expiresIn":    900,
	}
}

func TestLoginRawEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ADMIN001", req["userId"])
		assert.Equal(t, "PASSWORD", req["password"])
		json.NewEncoder(w).Encode(loginPayload())
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	res, err := client.Login(context.Background(), "ADMIN001", "PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "at-1", res.AccessToken)
	assert.Equal(t, "rt-1", res.RefreshToken)
	assert.Equal(t, "A", res.UserType)
	assert.Equal(t, "Admin User", res.FullName)
}

func TestLoginWrappedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    loginPayload(),
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	res, err := client.Login(context.Background(), "ADMIN001", "PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "at-1", res.AccessToken)
	assert.Equal(t, "ADMIN001", res.UserID)
}

func TestLoginErrorTaxonomy(t *testing.T) {
	t.Run("401 maps to credentials class", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "bad credentials"})
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Login(context.Background(), "NOBODY01", "WRONG")
		assert.True(t, apierrors.HasCode(err, apierrors.CodeCredentials))
		assert.EqualError(t, err, "invalid credentials")
	})

	t.Run("400 maps to bad request class", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Login(context.Background(), "ADMIN001", "PASSWORD")
		assert.True(t, apierrors.HasCode(err, apierrors.CodeBadRequest))
	})

	t.Run("connection failure maps to network class", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // nothing listening

		_, err := NewClient(srv.URL).Login(context.Background(), "ADMIN001", "PASSWORD")
		assert.True(t, apierrors.HasCode(err, apierrors.CodeNetwork))
	})
}

func TestRefresh(t *testing.T) {
	t.Run("success returns new access token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/refresh", r.URL.Path)
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "rt-1", req["refreshToken"])
			json.NewEncoder(w).Encode(map[string]string{"accessToken": "at-2"})
		}))
		defer srv.Close()

		token, err := NewClient(srv.URL).Refresh(context.Background(), "rt-1")
		require.NoError(t, err)
		assert.Equal(t, "at-2", token)
	})

	t.Run("any non-2xx is a token failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Refresh(context.Background(), "rt-1")
		assert.True(t, apierrors.HasCode(err, apierrors.CodeToken))
	})

	t.Run("empty access token is a token failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Refresh(context.Background(), "rt-1")
		assert.True(t, apierrors.HasCode(err, apierrors.CodeToken))
	})
}

func TestValidate(t *testing.T) {
	t.Run("valid verdict", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/validate", r.URL.Path)
			assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]any{"valid": true, "userId": "USER001"})
		}))
		defer srv.Close()

		res, err := NewClient(srv.URL).Validate(context.Background(), "at-1")
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Equal(t, "USER001", res.UserID)
	})

	t.Run("non-2xx is an invalid verdict, not an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		res, err := NewClient(srv.URL).Validate(context.Background(), "at-1")
		require.NoError(t, err)
		assert.False(t, res.Valid)
	})

	t.Run("wrapped envelope verdict", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    map[string]any{"valid": true, "userId": "ADMIN001"},
			})
		}))
		defer srv.Close()

		res, err := NewClient(srv.URL).Validate(context.Background(), "at-1")
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Equal(t, "ADMIN001", res.UserID)
	})
}

func TestDecodeEnvelopeFailureWrapper(t *testing.T) {
	var target map[string]any
	err := decodeEnvelope([]byte(`{"success":false,"error":"boom"}`), &target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
