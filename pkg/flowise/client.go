// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package flowise

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/httpclient"
)

const chatflowsPath = "/api/v1/chatflows"

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4096

// Client calls the Flowise chatflow API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.http = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(cl *Client) { cl.logger = l }
}

// NewClient creates a client for the Flowise instance at baseURL. The
// default HTTP client comes from httpclient.New with cfg.
func NewClient(baseURL, apiKey string, cfg httpclient.Config, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, &errors.ConfigError{Key: "flowise.base_url", Reason: "base URL is required"}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		if cfg.Logger == nil {
			cfg.Logger = c.logger
		}
		hc, err := httpclient.New(cfg)
		if err != nil {
			return nil, &errors.ConfigError{Key: "flowise", Reason: err.Error(), Cause: err}
		}
		c.http = hc
	}
	return c, nil
}

// CreateChatflow stores a new chatflow and returns it with its server id.
func (c *Client) CreateChatflow(ctx context.Context, flow *Chatflow) (*Chatflow, error) {
	var out Chatflow
	if err := c.do(ctx, "create chatflow", http.MethodPost, chatflowsPath, flow, &out); err != nil {
		return nil, err
	}
	c.logger.Info("created chatflow", "chatflow_id", out.ID, "name", out.Name)
	return &out, nil
}

// UpdateChatflow replaces the chatflow with the given id.
func (c *Client) UpdateChatflow(ctx context.Context, id string, flow *Chatflow) (*Chatflow, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	var out Chatflow
	if err := c.do(ctx, "update chatflow", http.MethodPut, chatflowsPath+"/"+id, flow, &out); err != nil {
		return nil, err
	}
	c.logger.Info("updated chatflow", "chatflow_id", id, "name", out.Name)
	return &out, nil
}

// GetChatflow fetches a chatflow by id.
func (c *Client) GetChatflow(ctx context.Context, id string) (*Chatflow, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	var out Chatflow
	if err := c.do(ctx, "get chatflow", http.MethodGet, chatflowsPath+"/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateID checks that id is a chatflow UUID.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &errors.ValidationError{
			Field:      "id",
			Message:    fmt.Sprintf("%q is not a chatflow id", id),
			Suggestion: "chatflow ids are UUIDs as shown in the Flowise UI",
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "encode %s request", op)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "build %s request", op)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &errors.RemoteError{Operation: op, Message: err.Error(), Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &errors.RemoteError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &errors.RemoteError{Operation: op, StatusCode: resp.StatusCode, Message: "invalid response body", Cause: err}
	}
	return nil
}
