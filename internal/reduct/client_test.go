package reduct

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestServerInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/info" {
			t.Errorf("path = %s, want /api/v1/info", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q, want Bearer secret", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"1.12.0","bucket_count":"2","usage":"1024","uptime":"3600"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")
	info, err := client.ServerInfo(context.Background())
	if err != nil {
		t.Fatalf("ServerInfo() error = %v", err)
	}
	if info.Version != "1.12.0" {
		t.Errorf("Version = %q, want 1.12.0", info.Version)
	}
	if info.BucketCount != 2 {
		t.Errorf("BucketCount = %d, want 2", info.BucketCount)
	}
}

func TestServerInfoWithIngressBasePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cos-robotics-model-reductstore/api/v1/info" {
			t.Errorf("path = %s, ingress base path should be preserved", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"version":"1.12.0"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/cos-robotics-model-reductstore/", "")
	if _, err := client.ServerInfo(context.Background()); err != nil {
		t.Fatalf("ServerInfo() error = %v", err)
	}
}

func TestServerInfoAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-reduct-error", "Invalid token")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "wrong")
	_, err := client.ServerInfo(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ServerInfo() error = %T, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", apiErr.Status)
	}
	if apiErr.Message != "Invalid token" {
		t.Errorf("Message = %q, want server header message", apiErr.Message)
	}
}

func TestEnsureBucketToleratesConflict(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/v1/b/orion" {
			t.Errorf("path = %s, want /api/v1/b/orion", r.URL.Path)
		}
		if calls == 1 {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("x-reduct-error", "Bucket 'orion' already exists")
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	if err := client.EnsureBucket(context.Background(), "orion"); err != nil {
		t.Errorf("EnsureBucket() first call error = %v", err)
	}
	if err := client.EnsureBucket(context.Background(), "orion"); err != nil {
		t.Errorf("EnsureBucket() on existing bucket error = %v, want nil", err)
	}
}

func TestWriteRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/b/orion/image" {
			t.Errorf("path = %s, want /api/v1/b/orion/image", r.URL.Path)
		}
		if got := r.URL.Query().Get("ts"); got != "1700000000000001" {
			t.Errorf("ts = %q, want 1700000000000001", got)
		}
		if got := r.Header.Get("Content-Type"); got != "image/jpeg" {
			t.Errorf("Content-Type = %q, want image/jpeg", got)
		}
		if got := r.Header.Get("x-reduct-label-robot"); got != "orion" {
			t.Errorf("label header robot = %q, want orion", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "payload" {
			t.Errorf("body = %q, want payload", body)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	written, err := client.WriteRecord(context.Background(), "orion", Record{
		Entry:       "image",
		Timestamp:   1700000000000001,
		ContentType: "image/jpeg",
		Labels:      map[string]string{"robot": "orion"},
		Payload:     []byte("payload"),
	})
	if err != nil {
		t.Fatalf("WriteRecord() error = %v", err)
	}
	if !written {
		t.Error("WriteRecord() = false, want true")
	}
}

func TestWriteRecordDuplicateTimestamp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-reduct-error", "A record with timestamp 1 already exists")
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	written, err := client.WriteRecord(context.Background(), "orion", Record{
		Entry: "image", Timestamp: 1, Payload: []byte("x"),
	})
	if err != nil {
		t.Errorf("WriteRecord() duplicate error = %v, want nil", err)
	}
	if written {
		t.Error("WriteRecord() duplicate = true, want false")
	}
}

func TestClearBucket(t *testing.T) {
	var deleted []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"entries":[{"name":"image"},{"name":"point_cloud"}]}`))
		case r.Method == http.MethodDelete:
			deleted = append(deleted, r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	if err := client.ClearBucket(context.Background(), "orion"); err != nil {
		t.Fatalf("ClearBucket() error = %v", err)
	}
	if len(deleted) != 2 {
		t.Errorf("ClearBucket() deleted %d entries, want 2: %v", len(deleted), deleted)
	}
}
