package pushover

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken = "po-token"
	testUser  = "po-user"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, testToken, testUser, 5*time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Dispatch_Warning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/1/messages.json", r.URL.Path)
		assert.Equal(t, testToken, r.PostFormValue("token"))
		assert.Equal(t, testUser, r.PostFormValue("user"))
		assert.Equal(t, "<b>quake</b>", r.PostFormValue("message"))
		assert.Equal(t, "1", r.PostFormValue("priority"))
		assert.Equal(t, "1", r.PostFormValue("html"))
		assert.Empty(t, r.PostFormValue("expire"))
		assert.Empty(t, r.PostFormValue("retry"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":1,"request":"req-1"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	err := c.Dispatch(context.Background(), domain.NewNotification("<b>quake</b>", domain.PriorityWarning))
	require.NoError(t, err)
}

func TestClient_Dispatch_CriticalCarriesExpireAndRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "2", r.PostFormValue("priority"))
		assert.Equal(t, "3600", r.PostFormValue("expire"))
		assert.Equal(t, "180", r.PostFormValue("retry"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":1,"request":"req-2"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	err := c.Dispatch(context.Background(), domain.NewNotification("big one", domain.PriorityCritical))
	require.NoError(t, err)
}

func TestClient_Dispatch_APIRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":0,"errors":["user identifier is invalid"]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	err := c.Dispatch(context.Background(), domain.NewNotification("quake", domain.PriorityAdvisory))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user identifier is invalid")
}

func TestClient_Dispatch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	err := c.Dispatch(context.Background(), domain.NewNotification("quake", domain.PriorityAdvisory))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
