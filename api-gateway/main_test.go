package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"overcooked-orders/api-gateway/internal/gateway"
)

func TestParseOptions(t *testing.T) {
	t.Setenv("ORDER_SVC_URL", "http://orders:8081")

	opts, err := parseOptions([]string{"--addr", ":9000"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if opts.addr != ":9000" || opts.config.OrderSvcURL != "http://orders:8081" {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

// TestHealthCheck verifies the basic JSON payload and status through the CORS wrapper.
func TestHealthCheck(t *testing.T) {
	handler := newHandler(gatewayConfigForTest(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected CORS headers")
	}

	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "healthy" || body["service"] != "api-gateway" {
		t.Fatalf("unexpected body: %#v", body)
	}
}

// TestProxyToOrderService checks that order API routes reach the backend unchanged.
func TestProxyToOrderService(t *testing.T) {
	backendPath := ""
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendPath = r.URL.Path + "?" + r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	cfg := gatewayConfigForTest()
	cfg.OrderSvcURL = ts.URL
	handler := newHandler(cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/menu?category=pizza", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if backendPath != "/api/menu?category=pizza" {
		t.Fatalf("unexpected backend path: %s", backendPath)
	}
}

func gatewayConfigForTest() gateway.Config {
	return gateway.Config{FrontendDir: "testdata"}
}
