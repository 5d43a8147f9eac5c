package restaurants

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/restoproxy/internal/upstream"
)

// newProxy wires the handler to a real upstream client pointed at a fake
// upstream API.
func newProxy(t *testing.T, api http.HandlerFunc) http.Handler {
	t.Helper()

	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	client, err := upstream.NewClient(server.URL + "/v3")
	require.NoError(t, err)

	return newTestRouter(client, nil)
}

func TestProxy_SearchScenario(t *testing.T) {
	t.Parallel()

	proxy := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/businesses/search" ||
			r.URL.Query().Get("location") != "Stockholm" ||
			r.URL.Query().Get("term") != "restaurants" ||
			r.Header.Get("Authorization") != "Bearer valid-token" {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"businesses":[{"id":"test-restaurant-id","name":"Test Restaurant"}]}`))
	})

	rec := doRequest(proxy, "/api/yelp/restaurants/search?location=Stockholm", "Bearer valid-token")

	require.Equal(t, http.StatusOK, rec.Code)

	var result SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Businesses, 1)
	assert.Equal(t, "test-restaurant-id", result.Businesses[0].ID)
	assert.Equal(t, "Test Restaurant", result.Businesses[0].Name)
}

func TestProxy_DetailNotFoundScenario(t *testing.T) {
	t.Parallel()

	const upstreamError = `{"code":"BUSINESS_NOT_FOUND","description":"The requested business could not be found."}`

	proxy := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/businesses/invalid-id" {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":` + upstreamError + `}`))
	})

	rec := doRequest(proxy, "/api/yelp/restaurants/invalid-id", "Bearer valid-token")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":`+upstreamError+`}`, rec.Body.String())
}

func TestProxy_DetailSuccessVerbatim(t *testing.T) {
	t.Parallel()

	const payload = `{"id":"abc","name":"Cafe","rating":4.5,"unknown_field":{"kept":true}}`

	proxy := newProxy(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(payload))
	})

	rec := doRequest(proxy, "/api/yelp/restaurants/abc", "Bearer valid-token")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, rec.Body.String())

	var business Business
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &business))
	assert.Equal(t, 4.5, business.Rating)
}

func TestProxy_ValidationMakesNoUpstreamCall(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	proxy := newProxy(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{}`))
	})

	rec := doRequest(proxy, "/api/yelp/restaurants/search?location=Stockholm", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(proxy, "/api/yelp/restaurants/search", "Bearer valid-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(proxy, "/api/yelp/restaurants/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, int32(0), hits.Load())
}

func TestProxy_UpstreamUnreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client, err := upstream.NewClient(baseURL)
	require.NoError(t, err)
	proxy := newTestRouter(client, nil)

	rec := doRequest(proxy, "/api/yelp/restaurants/abc", "Bearer valid-token")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error.Message)
	assert.NotEqual(t, "Internal Server Error", body.Error.Message)
}
