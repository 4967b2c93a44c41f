package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHuggingFaceGenerateListResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing bearer header, got %q", got)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Inputs != "analyze this" {
			t.Errorf("unexpected prompt: %q", req.Inputs)
		}
		if req.Parameters.ReturnFullText {
			t.Error("return_full_text should be false")
		}
		if req.Parameters.MaxNewTokens != 400 {
			t.Errorf("unexpected max_new_tokens: %d", req.Parameters.MaxNewTokens)
		}
		w.Write([]byte(`[{"generated_text": "model output"}]`))
	}))
	defer srv.Close()

	c, err := NewHuggingFace(srv.URL, "test-token", time.Second)
	if err != nil {
		t.Fatalf("NewHuggingFace: %v", err)
	}
	out, err := c.Generate(context.Background(), "analyze this", Params{MaxNewTokens: 400})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "model output" {
		t.Errorf("expected normalized text, got %q", out)
	}
}

func TestHuggingFaceGenerateObjectResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"generated_text": "single object"}`))
	}))
	defer srv.Close()

	c, _ := NewHuggingFace(srv.URL, "tok", time.Second)
	out, err := c.Generate(context.Background(), "p", Params{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "single object" {
		t.Errorf("expected normalized text, got %q", out)
	}
}

func TestHuggingFaceGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("server error"))
	}))
	defer srv.Close()

	c, _ := NewHuggingFace(srv.URL, "tok", time.Second)
	_, err := c.Generate(context.Background(), "p", Params{})

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T (%v)", err, err)
	}
	if httpErr.Status != 500 {
		t.Errorf("expected status 500, got %d", httpErr.Status)
	}
	if httpErr.Body != "server error" {
		t.Errorf("expected raw body preserved, got %q", httpErr.Body)
	}
	if httpErr.Error() != "HTTP 500" {
		t.Errorf("expected error string \"HTTP 500\", got %q", httpErr.Error())
	}
}

func TestHuggingFaceGenerateTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c, _ := NewHuggingFace(srv.URL, "tok", time.Second)
	_, err := c.Generate(context.Background(), "p", Params{})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T (%v)", err, err)
	}
}

func TestHuggingFaceGenerateMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	c, _ := NewHuggingFace(srv.URL, "tok", time.Second)
	_, err := c.Generate(context.Background(), "p", Params{})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError for malformed body, got %T (%v)", err, err)
	}
}

func TestNewHuggingFaceRequiresToken(t *testing.T) {
	if _, err := NewHuggingFace("http://example.com", "", 0); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := NewHuggingFace("", "tok", 0); err == nil {
		t.Error("expected error for missing url")
	}
}
