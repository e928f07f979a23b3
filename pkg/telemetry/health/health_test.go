package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		timeout         time.Duration
		expectedTimeout time.Duration
	}{
		{"default timeout", 0, 5 * time.Second},
		{"custom timeout", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)
			if checker.checkTimeout != tt.expectedTimeout {
				t.Errorf("expected timeout %v, got %v", tt.expectedTimeout, checker.checkTimeout)
			}
			if len(checker.ListChecks()) != 0 {
				t.Errorf("expected no checks, got %v", checker.ListChecks())
			}
		})
	}
}

func TestRegisterAndUnregister(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("engine2", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("engine1", func(ctx context.Context) error { return nil })

	names := checker.ListChecks()
	if len(names) != 2 || names[0] != "engine1" || names[1] != "engine2" {
		t.Errorf("ListChecks() = %v", names)
	}

	checker.UnregisterCheck("engine1")
	if names := checker.ListChecks(); len(names) != 1 || names[0] != "engine2" {
		t.Errorf("ListChecks() after unregister = %v", names)
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: StatusReady,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"engine1": func(ctx context.Context) error { return nil },
				"engine2": func(ctx context.Context) error { return nil },
			},
			wantStatus: StatusReady,
		},
		{
			name: "engine down",
			checks: map[string]CheckFunc{
				"engine1": func(ctx context.Context) error { return nil },
				"engine2": func(ctx context.Context) error { return errors.New("engine2 exited") },
			},
			wantStatus: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status.Status, tt.wantStatus)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("got %d results, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestCheckTimeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		time.Sleep(time.Second)
		return nil
	})

	status := checker.CheckReadiness(context.Background())
	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy || result.Message != "health check timeout" {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestHandlers(t *testing.T) {
	checker := New(time.Second)
	failing := errors.New("engine1 exited")
	checker.RegisterCheck("engine1", func(ctx context.Context) error { return failing })

	mux := http.NewServeMux()
	checker.Mount(mux, "1.0.0", "abc123", "2026-10-01")

	tests := []struct {
		method   string
		path     string
		wantCode int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodHead, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusServiceUnavailable},
		{http.MethodGet, "/version", http.StatusOK},
		{http.MethodPost, "/health", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.wantCode {
				t.Errorf("status code = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.method == http.MethodHead && rec.Body.Len() != 0 {
				t.Error("HEAD response should have no body")
			}
		})
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	var status Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("invalid readiness body: %v", err)
	}
	if status.Checks["engine1"].Message != failing.Error() {
		t.Errorf("unexpected check result %+v", status.Checks["engine1"])
	}

	checker.RegisterCheck("engine1", func(ctx context.Context) error { return nil })
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready after recovery = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("invalid version body: %v", err)
	}
	if info.Version != "1.0.0" || info.Commit != "abc123" || info.GoVersion == "" {
		t.Errorf("unexpected version info %+v", info)
	}
}
