package reduct

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/reductstore/ros-reductstore-demo/internal/logging"
)

const (
	// DefaultTimeout is the default HTTP request timeout. Record payloads
	// can be multi-megabyte pointclouds, so this is generous.
	DefaultTimeout = 60 * time.Second

	// apiBase is the ReductStore API prefix
	apiBase = "/api/v1"
)

// Client talks to one ReductStore server.
type Client struct {
	// BaseURL is the server base URL, including any ingress base path
	// (e.g. "http://192.168.178.94/cos-robotics-model-reductstore")
	BaseURL string

	http *resty.Client
}

// NewClient creates a client for the server at baseURL. The API token may
// be empty for servers running with anonymous access.
func NewClient(baseURL, apiToken string) *Client {
	base := strings.TrimRight(baseURL, "/")

	httpClient := resty.New().
		SetBaseURL(base + apiBase).
		SetTimeout(DefaultTimeout)
	if apiToken != "" {
		httpClient.SetAuthToken(apiToken)
	}

	return &Client{
		BaseURL: base,
		http:    httpClient,
	}
}

// SetTimeout overrides the HTTP request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.http.SetTimeout(timeout)
}

// ServerInfo probes the server and returns its info block. This doubles as
// the connectivity/auth check during setup.
func (c *Client) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	var info ServerInfo
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&info).
		Get("/info")
	if err != nil {
		return nil, fmt.Errorf("server info: %w", err)
	}
	logging.LogStoreRequest("GET", c.BaseURL+apiBase+"/info", resp.StatusCode())

	if resp.IsError() {
		return nil, apiError("server info", resp)
	}
	return &info, nil
}

// EnsureBucket creates the bucket if it does not exist. An existing bucket
// (HTTP 409) is not an error.
func (c *Client) EnsureBucket(ctx context.Context, bucket string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Post("/b/" + bucket)
	if err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	logging.LogStoreRequest("POST", c.BaseURL+apiBase+"/b/"+bucket, resp.StatusCode())

	if resp.IsError() {
		apiErr := apiError("create bucket "+bucket, resp)
		if apiErr.IsConflict() {
			return nil
		}
		return apiErr
	}
	return nil
}

// Entries lists the entries of a bucket.
func (c *Client) Entries(ctx context.Context, bucket string) ([]EntryInfo, error) {
	var parsed bucketResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&parsed).
		Get("/b/" + bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket info %s: %w", bucket, err)
	}
	if resp.IsError() {
		return nil, apiError("bucket info "+bucket, resp)
	}
	return parsed.Entries, nil
}

// RemoveEntry deletes an entry and all its records from a bucket.
func (c *Client) RemoveEntry(ctx context.Context, bucket, entry string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/b/" + bucket + "/" + entry)
	if err != nil {
		return fmt.Errorf("remove entry %s/%s: %w", bucket, entry, err)
	}
	if resp.IsError() {
		return apiError("remove entry "+bucket+"/"+entry, resp)
	}
	return nil
}

// ClearBucket removes every entry of the bucket.
func (c *Client) ClearBucket(ctx context.Context, bucket string) error {
	entries, err := c.Entries(ctx, bucket)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := c.RemoveEntry(ctx, bucket, entry.Name); err != nil {
			return err
		}
	}
	return nil
}

// WriteRecord writes one record into bucket. A duplicate timestamp
// (HTTP 409) is tolerated and reported via the returned bool: true when
// the record was stored, false when the store already had one at that
// timestamp.
func (c *Client) WriteRecord(ctx context.Context, bucket string, rec Record) (bool, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("ts", strconv.FormatInt(rec.Timestamp, 10)).
		SetBody(rec.Payload)
	if rec.ContentType != "" {
		req.SetHeader("Content-Type", rec.ContentType)
	}
	for name, value := range rec.Labels {
		req.SetHeader("x-reduct-label-"+name, value)
	}

	resp, err := req.Post("/b/" + bucket + "/" + rec.Entry)
	if err != nil {
		return false, fmt.Errorf("write %s/%s: %w", bucket, rec.Entry, err)
	}

	if resp.IsError() {
		apiErr := apiError("write "+bucket+"/"+rec.Entry, resp)
		if apiErr.IsConflict() {
			logging.Debug("Duplicate record timestamp, skipping")
			return false, nil
		}
		return false, apiErr
	}
	return true, nil
}
