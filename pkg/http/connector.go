package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"
)

// Connector is a thin JSON/multipart request helper bound to a single
// base URL. Every call returns either a *NetworkError, an *HTTPError or
// a wrapped encode/decode error; it never retries.
type Connector struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type ConnectorConfig struct {
	BaseURL string
	Logger  *zap.Logger
}

func NewConnector(config *ConnectorConfig, options ...HttpOpts) *Connector {
	return &Connector{
		baseURL:    config.BaseURL,
		httpClient: newClient(options...),
		logger:     config.Logger,
	}
}

type RequestOpt func(*requestConfig)

type requestConfig struct {
	headers   map[string]string
	basicUser string
	basicPass string
	hasBasic  bool
}

func WithHeader(key, value string) RequestOpt {
	return func(c *requestConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

// WithBasicAuth attaches HTTP Basic credentials to this request only.
// The connector keeps no copy of the password.
func WithBasicAuth(username, password string) RequestOpt {
	return func(c *requestConfig) {
		c.basicUser = username
		c.basicPass = password
		c.hasBasic = true
	}
}

// DoRequest performs a JSON request. A nil reqBody sends no payload, a
// nil respBody discards the response body.
func (c *Connector) DoRequest(ctx context.Context, method, endpoint string, reqBody, respBody any, opts ...RequestOpt) error {
	cfg := applyRequestOpts(opts)

	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
		ctx = context.WithValue(ctx, payloadContextKey{}, jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.execute(req, cfg, respBody)
}

// DoMultipartRequest performs a multipart/form-data request with the
// body assembled by prepareBody.
func (c *Connector) DoMultipartRequest(ctx context.Context, method, endpoint string, prepareBody func(*multipart.Writer) error, respBody any, opts ...RequestOpt) error {
	return c.doMultipart(ctx, method, endpoint, prepareBody, respBody, nil, opts)
}

// DoMultipartRequestWithProgress is DoMultipartRequest with a
// bytes-written callback reporting integer percent in [0,100]. The
// multipart body is buffered first so the total size is known up front.
func (c *Connector) DoMultipartRequestWithProgress(ctx context.Context, method, endpoint string, prepareBody func(*multipart.Writer) error, respBody any, onProgress func(percent int), opts ...RequestOpt) error {
	return c.doMultipart(ctx, method, endpoint, prepareBody, respBody, onProgress, opts)
}

func (c *Connector) doMultipart(ctx context.Context, method, endpoint string, prepareBody func(*multipart.Writer) error, respBody any, onProgress func(int), opts []RequestOpt) error {
	cfg := applyRequestOpts(opts)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := prepareBody(writer); err != nil {
		return fmt.Errorf("prepare multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	total := int64(body.Len())
	var bodyReader io.Reader = body
	if onProgress != nil {
		bodyReader = newProgressReader(body, total, onProgress)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.execute(req, cfg, respBody)
}

func applyRequestOpts(opts []RequestOpt) *requestConfig {
	cfg := &requestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *Connector) execute(req *http.Request, cfg *requestConfig, respBody any) error {
	req.Header.Set("Accept", "application/json")
	for key, value := range cfg.headers {
		req.Header.Set(key, value)
	}
	if cfg.hasBasic {
		req.SetBasicAuth(cfg.basicUser, cfg.basicPass)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := string(bodyBytes)
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}

	if respBody != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}
