package main

import (
	"net/http"
	"testing"

	"beatstar/internal/config"
	"beatstar/internal/constants"

	"github.com/stretchr/testify/assert"
)

func TestNewHTTPServer_Timeouts(t *testing.T) {
	srv := newHTTPServer(&config.Config{ServerPort: "9090"}, http.NotFoundHandler())

	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, constants.RequestTimeout, srv.ReadTimeout)
	assert.Equal(t, constants.RequestTimeout, srv.ReadHeaderTimeout)
	assert.Greater(t, srv.WriteTimeout, constants.FetchTimeout)
}
