package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/group-mailer/internal/config"
	"github.com/ignite/group-mailer/internal/groups"
)

func newAuthedRouter(directory *fakeDirectory) http.Handler {
	h := NewHandlers(directory, &fakeScheduler{})
	return SetupRoutes(h, config.AuthConfig{
		Enabled: true,
		Tokens:  map[string]string{"tok-serverless": "serverless"},
	})
}

func TestRequireGroupValidToken(t *testing.T) {
	directory := &fakeDirectory{subscribers: map[string][]groups.Subscriber{
		"serverless": {{Email: "a@x.com"}},
	}}
	router := newAuthedRouter(directory)
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodGet, "/api/groups/serverless/subscribers", nil)
	req.Header.Set("Authorization", "Bearer tok-serverless")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireGroupMissingToken(t *testing.T) {
	router := newAuthedRouter(&fakeDirectory{})
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/groups/serverless/subscribers", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireGroupUnknownToken(t *testing.T) {
	router := newAuthedRouter(&fakeDirectory{})
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodGet, "/api/groups/serverless/subscribers", nil)
	req.Header.Set("Authorization", "Bearer tok-bogus")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireGroupTokenForDifferentGroup(t *testing.T) {
	// A valid capability for one group must not open another group's routes.
	router := newAuthedRouter(&fakeDirectory{})
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodGet, "/api/groups/gophers/subscribers", nil)
	req.Header.Set("Authorization", "Bearer tok-serverless")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireGroupRejectsBeforeBusinessLogic(t *testing.T) {
	directory := &fakeDirectory{}
	router := newAuthedRouter(directory)
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/api/groups/serverless/subscribers", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, directory.joined)
}

func TestGroupFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := GroupFromContext(req.Context())
	assert.False(t, ok)

	group, ok := GroupFromContext(withGroup(req, "serverless").Context())
	assert.True(t, ok)
	assert.Equal(t, "serverless", group)
}
