package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const createAdminPath = "/api/v1/notifications/create-admin"

// HTTPNotifier posts to a remote instance's privileged create endpoint.
type HTTPNotifier struct {
	client     *http.Client
	endpoint   string
	serviceKey string
}

func NewHTTPNotifier(client *http.Client, baseURL, serviceKey string) *HTTPNotifier {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPNotifier{
		client:     client,
		endpoint:   strings.TrimRight(baseURL, "/") + createAdminPath,
		serviceKey: serviceKey,
	}
}

func (n *HTTPNotifier) Notify(ctx context.Context, msg Message) error {
	body, err := json.Marshal(privilegedRequest(msg))
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Key", n.serviceKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post notification: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
