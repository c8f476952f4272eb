package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"beatstar/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func newTestClient(url string) *DatasetClient {
	return NewDatasetClient(&config.Config{
		DatasetURL:   url,
		FetchTimeout: 5 * time.Second,
	}, zerolog.Nop())
}

func TestFetchArchive_OK(t *testing.T) {
	payload := []byte("PK\x03\x04 archive bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.Write(payload)
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/combinedScrappedData.zip")
	assert.Equal(t, server.URL+"/combinedScrappedData.zip", client.URL())

	body, err := client.FetchArchive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, payload, body)
}

func TestFetchArchive_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Upstream", "github")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("try later"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchArchive(context.Background())

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr), "got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, []byte("try later"), statusErr.Body)
	assert.Equal(t, "github", statusErr.Header["X-Upstream"])
	assert.Equal(t, "API error: 503", statusErr.Error())
}

func TestFetchArchive_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := newTestClient(url).FetchArchive(ctx)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestCheckResponse(t *testing.T) {
	t.Run("ok with length", func(t *testing.T) {
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseResponse(resp)
		resp.SetStatusCode(fasthttp.StatusOK)
		resp.Header.SetContentLength(3)

		assert.NoError(t, checkResponse(resp))
	})

	t.Run("chunked has no length", func(t *testing.T) {
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseResponse(resp)
		resp.SetStatusCode(fasthttp.StatusOK)
		resp.Header.SetContentLength(-1)

		assert.ErrorIs(t, checkResponse(resp), ErrMissingContentLength)
	})

	t.Run("identity has no length", func(t *testing.T) {
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseResponse(resp)
		resp.SetStatusCode(fasthttp.StatusOK)
		resp.Header.SetContentLength(-2)

		assert.ErrorIs(t, checkResponse(resp), ErrMissingContentLength)
	})

	t.Run("status wins over length", func(t *testing.T) {
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseResponse(resp)
		resp.SetStatusCode(fasthttp.StatusNotFound)
		resp.Header.SetContentLength(-1)

		var statusErr *StatusError
		assert.ErrorAs(t, checkResponse(resp), &statusErr)
	})
}
