package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beatstar/internal/config"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

var (
	ErrTransport            = errors.New("transport error")
	ErrMissingContentLength = errors.New("response has no Content-Length header")
)

// StatusError carries a non-200 response back to the caller untouched.
type StatusError struct {
	StatusCode int
	Header     map[string]string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %d", e.StatusCode)
}

type DatasetClient struct {
	url    string
	client *fasthttp.Client
	logger zerolog.Logger
}

func NewDatasetClient(cfg *config.Config, logger zerolog.Logger) *DatasetClient {
	return &DatasetClient{
		url: cfg.DatasetURL,
		client: &fasthttp.Client{
			ReadTimeout:         cfg.FetchTimeout,
			WriteTimeout:        cfg.FetchTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

func (c *DatasetClient) URL() string {
	return c.url
}

// FetchArchive downloads the dataset archive and returns its raw bytes.
func (c *DatasetClient) FetchArchive(ctx context.Context) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodGet)

	c.logger.Info().Str("url", c.url).Msg("fetching dataset archive")
	start := time.Now()

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.Do(req, resp)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	c.logger.Info().
		Int("status", resp.StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("received dataset response")

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	// resp is released on return
	body := append([]byte(nil), resp.Body()...)
	return body, nil
}

func checkResponse(resp *fasthttp.Response) error {
	if resp.StatusCode() != fasthttp.StatusOK {
		header := make(map[string]string)
		resp.Header.VisitAll(func(k, v []byte) {
			header[string(k)] = string(v)
		})
		return &StatusError{
			StatusCode: resp.StatusCode(),
			Header:     header,
			Body:       append([]byte(nil), resp.Body()...),
		}
	}
	if resp.Header.ContentLength() < 0 {
		return ErrMissingContentLength
	}
	return nil
}
