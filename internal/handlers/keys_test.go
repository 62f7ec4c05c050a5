package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCreator struct {
	calls int
	key   string
	owner string
	fail  bool
}

func (m *mockCreator) Create(_ context.Context, key string, active bool, owner string) error {
	m.calls++
	m.key = key
	m.owner = owner
	if m.fail {
		return errors.New("create failed")
	}
	return nil
}

func TestAdminHandler_CreateKey(t *testing.T) {
	mc := &mockCreator{}
	h := NewAdminHandler(mc, "secret")

	body, _ := json.Marshal(createKeyRequest{Owner: "ops"})
	req := httptest.NewRequest(http.MethodPost, "/admin/create-key", bytes.NewReader(body))
	req.Header.Set("X-Admin-Token", "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out createKeyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.Key, "random key generated when none supplied")
	assert.True(t, out.Active)
	assert.Equal(t, "ops", mc.owner)
	assert.Equal(t, 1, mc.calls)
}

func TestAdminHandler_RejectsBadToken(t *testing.T) {
	h := NewAdminHandler(&mockCreator{}, "secret")

	req := httptest.NewRequest(http.MethodPost, "/admin/create-key", bytes.NewReader([]byte("{}")))
	req.Header.Set("X-Admin-Token", "wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// An empty configured token disables the endpoint outright.
	h2 := NewAdminHandler(&mockCreator{}, "")
	req2 := httptest.NewRequest(http.MethodPost, "/admin/create-key", bytes.NewReader([]byte("{}")))
	rec2 := httptest.NewRecorder()
	h2.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusUnauthorized, rec2.Code)
}

func TestAdminHandler_MethodNotAllowed(t *testing.T) {
	h := NewAdminHandler(&mockCreator{}, "secret")
	req := httptest.NewRequest(http.MethodGet, "/admin/create-key", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSignupHandler_IssuesKey(t *testing.T) {
	mc := &mockCreator{}
	h := NewSignupHandler(mc)

	body, _ := json.Marshal(signupRequest{Owner: "user1", Email: "u@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/public/signup", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, mc.calls)
	assert.NotEmpty(t, mc.key)
	assert.Equal(t, "user1", mc.owner)
}

func TestSignupHandler_Errors(t *testing.T) {
	h := NewSignupHandler(&mockCreator{})
	req := httptest.NewRequest(http.MethodGet, "/public/signup", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	req2 := httptest.NewRequest(http.MethodPost, "/public/signup", bytes.NewReader([]byte("{bad")))
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)

	hFail := NewSignupHandler(&mockCreator{fail: true})
	req3 := httptest.NewRequest(http.MethodPost, "/public/signup", bytes.NewReader([]byte("{}")))
	rec3 := httptest.NewRecorder()
	hFail.ServeHTTP(rec3, req3)
	assert.Equal(t, http.StatusInternalServerError, rec3.Code)
}
