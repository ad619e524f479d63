// Package client invokes channels on a remote storaged over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"phonecleaner/pkg/channel"
	"phonecleaner/pkg/storage"

	"github.com/hashicorp/go-retryablehttp"
)

const maxResponseBytes = 1 << 20

// ErrUnexpectedResponse is returned for a response the client cannot interpret.
var ErrUnexpectedResponse = errors.New("unexpected response from channel server")

// RemoteError carries a non-success response that is not one of the channel sentinels.
type RemoteError struct {
	Status int
	Code   string
	Msg    string
}

func (e RemoteError) Error() string {
	return fmt.Sprintf("channel server returned %d %s: %s", e.Status, e.Code, e.Msg)
}

// Options tunes retries and timeouts.
type Options struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
}

// Client talks to the /channels endpoints of a storaged instance.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
	Code   string          `json:"code"`
}

// New returns a client for the server at baseURL.
func New(baseURL string, opts Options) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		httpClient.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		httpClient.RetryWaitMax = opts.RetryWaitMax
	}
	if opts.Timeout > 0 {
		httpClient.HTTPClient.Timeout = opts.Timeout
	}
	httpClient.Logger = nil
	httpClient.CheckRetry = retryPolicy
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// retryPolicy retries only when no response was received. Any HTTP status,
// including 5xx, is returned to the caller as-is.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if resp != nil {
		return false, nil
	}
	if err != nil {
		return true, nil //nolint:nilerr // retryablehttp reports the final error
	}
	return false, nil
}

// Invoke sends call to channelName and returns the raw JSON result.
func (c *Client) Invoke(ctx context.Context, channelName string, call channel.MethodCall) (json.RawMessage, error) {
	body, err := json.Marshal(call)
	if err != nil {
		return nil, fmt.Errorf("encode method call: %w", err)
	}

	url := c.baseURL + "/channels/" + strings.TrimLeft(channelName, "/")
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: status %d: %v", ErrUnexpectedResponse, resp.StatusCode, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return env.Result, nil
	case http.StatusNotImplemented:
		return nil, channel.ErrNotImplemented
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", channel.ErrChannelNotFound, channelName)
	default:
		return nil, RemoteError{Status: resp.StatusCode, Code: env.Code, Msg: env.Error}
	}
}

// TotalDiskSpace calls getTotalDiskSpace on the storage channel.
func (c *Client) TotalDiskSpace(ctx context.Context) (int64, error) {
	raw, err := c.Invoke(ctx, storage.ChannelName, channel.MethodCall{Method: storage.MethodGetTotalDiskSpace})
	if err != nil {
		return 0, err
	}

	var total int64
	if err := json.Unmarshal(raw, &total); err != nil {
		return 0, fmt.Errorf("%w: result %s is not an integer", ErrUnexpectedResponse, string(raw))
	}
	return total, nil
}
