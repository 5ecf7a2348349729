package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pharmacy_backend/internal/app"
	"pharmacy_backend/internal/config"
	"pharmacy_backend/test/helpers"

	"gorm.io/gorm"
)

const (
	TestJWTSecret  = "test-secret"
	TestJWTIssuer  = "pharmacy-auth"
	TestServiceKey = "test-service-key"
)

type TestServer struct {
	Server *httptest.Server
	DB     *gorm.DB
	App    *app.App
}

// TestConfig is Default() with secrets set and storage in a temp dir.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Env = "test"
	cfg.JWT.Secret = TestJWTSecret
	cfg.JWT.Issuer = TestJWTIssuer
	cfg.Notifications.ServiceKey = TestServiceKey
	cfg.Storage.BasePath = t.TempDir()
	return cfg
}

// NewTestServer runs the real router over an in-memory SQLite database.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWithConfig(t, TestConfig(t))
}

func NewTestServerWithConfig(t *testing.T, cfg *config.Config) *TestServer {
	t.Helper()
	db := helpers.NewTestDB(t)

	application, err := app.New(cfg, db)
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	server := httptest.NewServer(application.Handler())

	ts := &TestServer{Server: server, DB: db, App: application}
	t.Cleanup(ts.Close)
	return ts
}

// Close stops the server and waits for background deliveries.
func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.App.Dispatcher.Wait()
}

// Token mints a session token for userID with the given role.
func (ts *TestServer) Token(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := ts.App.Tokens.Generate(userID, role, userID+"@example.com", userID, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()
	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return ts.SendRequestWithHeaders(t, method, path, headers, body)
}

func (ts *TestServer) SendRequestWithHeaders(t *testing.T, method, path string, headers map[string]string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return ts.do(t, req)
}

// SendMultipart posts form fields and an optional file under fileField.
func (ts *TestServer) SendMultipart(t *testing.T, path, token string, fields map[string]string, fileField, fileName string, content []byte) (*http.Response, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return ts.do(t, req)
}

func (ts *TestServer) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	res, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return res, string(resBody)
}
