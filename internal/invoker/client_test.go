package invoker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadlane/delegator/internal/cryptogram"
	apperrors "github.com/threadlane/delegator/pkg/errors"
	"github.com/threadlane/delegator/pkg/logger"
)

func newTestClient() *LiveClient {
	return NewLiveClient("delegator-test/1.0", 2*time.Second, logger.NewTestLogger())
}

func TestIssueRequestSuccess(t *testing.T) {
	var gotUA, gotContentType, gotFeature string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotContentType = r.Header.Get("Content-Type")
		gotFeature = r.Header.Get("X-Features")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [1, 2]}`))
	}))
	defer server.Close()

	value, err := newTestClient().IssueRequest(
		context.Background(),
		http.MethodPost,
		server.URL+"/search/",
		map[string]interface{}{"q": "boots"},
		[]cryptogram.Header{{Name: "X-Features", Value: "recommendations"}},
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"results": []interface{}{float64(1), float64(2)}}, value)
	assert.Equal(t, "delegator-test/1.0", gotUA)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "recommendations", gotFeature)
}

func TestIssueRequestNon2xxJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"reason": "backend down"}`))
	}))
	defer server.Close()

	_, err := newTestClient().IssueRequest(context.Background(), http.MethodPost, server.URL, nil, nil)
	var upstream *apperrors.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, map[string]interface{}{"reason": "backend down"}, upstream.Context)
}

func TestIssueRequestNon2xxTextBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("upstream offline"))
	}))
	defer server.Close()

	_, err := newTestClient().IssueRequest(context.Background(), http.MethodPost, server.URL, nil, nil)
	var upstream *apperrors.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "upstream offline", upstream.Context)
}

func TestIssueRequestNon2xxInvalidUTF8(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte{0xff, 0xfe, 0xfd})
	}))
	defer server.Close()

	_, err := newTestClient().IssueRequest(context.Background(), http.MethodPost, server.URL, nil, nil)
	var utf8Err *apperrors.UTF8Error
	require.ErrorAs(t, err, &utf8Err)
}

func TestIssueRequestInvalidJSONOn2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := newTestClient().IssueRequest(context.Background(), http.MethodPost, server.URL, nil, nil)
	var jsonErr *apperrors.InvalidJSONError
	require.ErrorAs(t, err, &jsonErr)
	assert.Equal(t, "protocol", apperrors.Kind(err))
}

func TestIssueRequestSendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := newTestClient().IssueRequest(context.Background(), http.MethodPost, server.URL, nil, nil)
	var sendErr *apperrors.SendError
	require.ErrorAs(t, err, &sendErr)
	assert.True(t, apperrors.IsNetworkError(sendErr.Err))
}

func TestMockClientEchoesAndRecords(t *testing.T) {
	mock := NewMockClient()
	body := map[string]interface{}{"q": "boots"}

	value, err := mock.IssueRequest(context.Background(), http.MethodPost, "http://catalog/search/", body, nil)
	require.NoError(t, err)
	assert.Equal(t, body, value)
	assert.Equal(t, 1, mock.CallCount())

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "http://catalog/search/", reqs[0].URI)
	assert.Equal(t, body, reqs[0].Body)
}

func TestMockClientScriptedResponse(t *testing.T) {
	mock := NewMockClient()
	mock.ResponseFn = func(method, uri string, body interface{}) (interface{}, error) {
		return map[string]interface{}{"scripted": true}, nil
	}

	value, err := mock.IssueRequest(context.Background(), http.MethodPost, "http://x", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"scripted": true}, value)
}
