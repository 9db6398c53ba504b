package xano

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/slighter12/xano-mcp-go/config"
	"github.com/slighter12/xano-mcp-go/logger"
)

// DefaultMaxResponseBytes caps how much of a response body is read.
const DefaultMaxResponseBytes = 64 << 20

// Client calls the Xano Metadata API with a bearer token.
type Client struct {
	httpClient       *http.Client
	token            string
	globalAPI        string
	instanceTemplate string
	maxResponseBytes int64
	debug            bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxResponseBytes sets the largest response body the client accepts.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) { c.maxResponseBytes = n }
}

// New creates a client from the resolved configuration.
func New(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		httpClient:       &http.Client{Timeout: time.Duration(cfg.Xano.TimeoutSeconds) * time.Second},
		token:            cfg.Xano.APIToken,
		globalAPI:        cfg.Xano.GlobalAPI,
		instanceTemplate: cfg.Xano.InstanceURLTemplate,
		maxResponseBytes: DefaultMaxResponseBytes,
		debug:            cfg.Server.Debug,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// instanceLabel is a single DNS label; anything else could move the request
// to another host.
var instanceLabel = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

const hostMarker = "instance-host-marker"

// MetaAPI returns the Metadata API base URL of an instance. The name must be
// a host label and the resulting URL must keep the template's host.
func (c *Client) MetaAPI(instance string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(instance))
	if !instanceLabel.MatchString(name) {
		return "", &InputError{
			Parameter: "instance_name",
			Reason:    "must be a single host label of letters, digits and hyphens",
		}
	}

	base := strings.ReplaceAll(c.instanceTemplate, config.InstancePlaceholder, name)
	tmpl, err := url.Parse(strings.ReplaceAll(c.instanceTemplate, config.InstancePlaceholder, hostMarker))
	if err != nil {
		return "", &config.Error{Field: "xano.instance_url_template", Message: err.Error()}
	}
	got, err := url.Parse(base)
	if err != nil || got.Scheme != tmpl.Scheme || got.Host != strings.ReplaceAll(tmpl.Host, hostMarker, name) {
		return "", &InputError{Parameter: "instance_name", Reason: "does not resolve to an instance host"}
	}
	return base, nil
}

// Request describes one Metadata API call.
type Request struct {
	Method string
	// Instance selects the per-instance API; empty targets the global API.
	Instance string
	Path     string
	Query    url.Values
	Body     any
	Form     *Form
}

// Form is a multipart/form-data body with one file part.
type Form struct {
	Fields    map[string]string
	FileField string
	Filename  string
	Content   []byte
}

// Path joins escaped path segments into "/a/b/c".
func Path(segments ...string) string {
	var b strings.Builder
	for _, segment := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(segment))
	}
	return b.String()
}

// Do sends req and returns the decoded response payload.
func (c *Client) Do(ctx context.Context, req Request) (any, error) {
	base := c.globalAPI
	if req.Instance != "" {
		var err error
		if base, err = c.MetaAPI(req.Instance); err != nil {
			return nil, err
		}
	}
	endpoint := base + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, fmt.Errorf("xano: encode %s %s: %w", req.Method, req.Path, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("xano: create request: %w", err)
	}
	requestID := uuid.NewString()
	c.applyHeaders(httpReq, contentType, requestID)

	start := time.Now()
	if c.debug {
		logger.DebugContext(ctx, "Xano request", "method", req.Method, "url", endpoint, "request_id", requestID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.WarnContext(ctx, "Xano request failed", "method", req.Method, "url", endpoint, "error", err)
		return nil, &TransportError{Op: req.Method, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return nil, &TransportError{Op: req.Method, URL: endpoint, Err: fmt.Errorf("read response: %w", err)}
	}
	if int64(len(respBody)) > c.maxResponseBytes {
		return nil, &TransportError{Op: req.Method, URL: endpoint, Err: fmt.Errorf("response exceeds %d bytes", c.maxResponseBytes)}
	}

	if c.debug {
		logger.DebugContext(ctx, "Xano response", "method", req.Method, "url", endpoint, "status", resp.StatusCode,
			"duration", time.Since(start), "request_id", requestID)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := newRemoteError(req.Method, endpoint, resp.StatusCode, respBody)
		logger.DebugContext(ctx, "Xano error response", "status", resp.StatusCode, "code", remoteErr.Code, "message", remoteErr.Message)
		return nil, remoteErr
	}

	payload, err := decodeBody(resp.Header, respBody)
	if err != nil {
		return nil, &TransportError{Op: req.Method, URL: endpoint, Err: err}
	}
	return payload, nil
}

func (c *Client) applyHeaders(req *http.Request, contentType, requestID string) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
}

func encodeBody(req Request) (io.Reader, string, error) {
	if req.Form != nil {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for key, value := range req.Form.Fields {
			if err := writer.WriteField(key, value); err != nil {
				return nil, "", err
			}
		}
		part, err := writer.CreateFormFile(req.Form.FileField, req.Form.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(req.Form.Content); err != nil {
			return nil, "", err
		}
		if err := writer.Close(); err != nil {
			return nil, "", err
		}
		return &buf, writer.FormDataContentType(), nil
	}
	if req.Body == nil {
		return nil, "", nil
	}
	payload, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(payload), "application/json", nil
}

func decodeBody(header http.Header, body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{"success": true}, nil
	}

	mediaType, _, _ := mime.ParseMediaType(header.Get("Content-Type"))
	if isJSON(mediaType) || (mediaType == "" && json.Valid(body)) {
		var out any
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return out, nil
	}

	return Binary{
		ContentType: header.Get("Content-Type"),
		Filename:    attachmentName(header.Get("Content-Disposition")),
		Size:        len(body),
		DataBase64:  base64.StdEncoding.EncodeToString(body),
	}, nil
}

func isJSON(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// Binary is the payload of a non-JSON response such as an export archive.
type Binary struct {
	ContentType string `json:"content_type"`
	Filename    string `json:"filename,omitempty"`
	Size        int    `json:"size"`
	DataBase64  string `json:"data_base64"`
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// truncate cuts s to at most limit bytes without splitting a UTF-8 sequence.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
