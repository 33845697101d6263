package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/tekir/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"name":"tekir"}`))
	}))
	defer server.Close()

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, New().GetJSON(context.Background(), "search", server.URL, &out))
	assert.Equal(t, "tekir", out.Name)
}

func TestGetJSON_Malformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	var out map[string]any
	err := New().GetJSON(context.Background(), "search", server.URL, &out)
	assert.ErrorIs(t, err, core.ErrMalformedResponse)
}

func TestGetJSON_HTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broken", http.StatusInternalServerError)
	}))
	defer server.Close()

	var out map[string]any
	err := New().GetJSON(context.Background(), "search", server.URL, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrHTTPStatus)

	var fe *core.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
	assert.Equal(t, "search", fe.Source)
	assert.Equal(t, "broken", fe.Message)
}

func TestGetJSON_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	var out map[string]any
	err := New().GetJSON(context.Background(), "wikipedia", server.URL, &out, AllowNotFound())
	assert.ErrorIs(t, err, ErrNotFound)

	err = New().GetJSON(context.Background(), "wikipedia", server.URL, &out)
	assert.ErrorIs(t, err, core.ErrHTTPStatus)
}

func TestPostJSON_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"slow down"}`))
	}))
	defer server.Close()

	var out map[string]any
	err := New().PostJSON(context.Background(), "ai", server.URL, map[string]string{"message": "q"}, &out)
	require.Error(t, err)
	assert.True(t, core.IsRateLimited(err))

	var fe *core.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "slow down", fe.Message)
}

func TestPostJSON_Network(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	var out map[string]any
	err := New().PostJSON(context.Background(), "ai", url, map[string]string{}, &out)
	assert.ErrorIs(t, err, core.ErrNetwork)
}

func TestPostStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte("streamed text"))
	}))
	defer server.Close()

	body, err := New().PostStream(context.Background(), "chat", server.URL, map[string]string{})
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "streamed text", string(data))
}

func TestWithTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var out map[string]any
	err := New(WithTimeout(20*time.Millisecond)).GetJSON(context.Background(), "search", server.URL, &out)
	assert.ErrorIs(t, err, core.ErrNetwork)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "a", errorMessage(strings.NewReader(`{"message":"a"}`)))
	assert.Equal(t, "b", errorMessage(strings.NewReader(`{"error":"b"}`)))
	assert.Equal(t, "plain", errorMessage(strings.NewReader("  plain \n")))
	assert.Equal(t, "", errorMessage(strings.NewReader("<html>oops</html>")))
	assert.Equal(t, "", errorMessage(strings.NewReader("")))
}
