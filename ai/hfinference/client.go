package hfinference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 120 * time.Second

// client issues JSON requests against one model endpoint.
type client struct {
	http  *http.Client
	url   string
	token string
}

func newClient(host, model, task, token string) *client {
	url := strings.TrimSuffix(host, "/") + "/models/" + model
	if task != "" {
		url += "/pipeline/" + task
	}
	return &client{
		http:  &http.Client{Timeout: defaultTimeout},
		url:   url,
		token: token,
	}
}

// apiError is the error body returned by the Inference API.
type apiError struct {
	Error string `json:"error"`
}

// post sends body as JSON and decodes the response into out.
func (c *client) post(ctx context.Context, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return fmt.Errorf("%w: %s: status %d: %s", ErrRequestFailed, c.url, resp.StatusCode, msg)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrEmptyResponse, err)
	}
	return nil
}
