// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package snapshot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/clubzones/internal/config"
)

func TestParseLocator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in         string
		wantKind   Kind
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{"/data/locations.parquet", KindLocal, "", "", false},
		{"locations.parquet", KindLocal, "", "", false},
		{"https://cdn.example.org/berlin.parquet", KindHTTP, "", "", false},
		{"http://localhost:8080/a.parquet", KindHTTP, "", "", false},
		{"s3://snapshots/berlin/locations.parquet", KindS3, "snapshots", "berlin/locations.parquet", false},
		{"s3://snapshots", "", "", "", true},
		{"s3:///key", "", "", "", true},
		{"ftp://example.org/a.parquet", "", "", "", true},
		{"https://", "", "", "", true},
		{"  ", "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocator(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLocator() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.Kind != tt.wantKind || got.Bucket != tt.wantBucket || got.Key != tt.wantKey {
				t.Errorf("ParseLocator() = %+v", got)
			}
		})
	}
}

func TestFetch_Local(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "locations.parquet")
	if err := os.WriteFile(path, []byte("PAR1"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	f := NewFetcher(config.DataConfig{CacheDir: dir})
	got, err := f.Fetch(context.Background(), path)
	if err != nil || got != path {
		t.Errorf("Fetch() = %q, %v; want %q", got, err, path)
	}

	if _, err := f.Fetch(context.Background(), filepath.Join(dir, "missing.parquet")); err == nil {
		t.Error("missing local snapshot accepted")
	}
	if _, err := f.Fetch(context.Background(), dir); err == nil {
		t.Error("directory accepted as snapshot")
	}
}

func TestFetch_HTTPDownloadAndRevalidate(t *testing.T) {
	t.Parallel()

	modified := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var requests, notModified atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if ims, err := http.ParseTime(r.Header.Get("If-Modified-Since")); err == nil && !modified.After(ims) {
			notModified.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Last-Modified", modified.Format(http.TimeFormat))
		_, _ = w.Write([]byte("PAR1 snapshot bytes"))
	}))
	defer srv.Close()

	f := NewFetcher(config.DataConfig{CacheDir: t.TempDir(), HTTPTimeout: 5 * time.Second})
	ctx := context.Background()
	url := srv.URL + "/locations.parquet"

	path, err := f.Fetch(ctx, url)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "PAR1 snapshot bytes" {
		t.Fatalf("cached file = %q, %v", data, err)
	}

	again, err := f.Fetch(ctx, url)
	if err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}
	if again != path {
		t.Errorf("second Fetch() path = %q, want %q", again, path)
	}
	if requests.Load() != 2 || notModified.Load() != 1 {
		t.Errorf("requests=%d notModified=%d, want 2/1", requests.Load(), notModified.Load())
	}
}

func TestFetch_HTTPBreakerOpens(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewFetcher(config.DataConfig{CacheDir: t.TempDir(), HTTPTimeout: 5 * time.Second})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(ctx, srv.URL); err == nil {
			t.Fatalf("attempt %d: Fetch() succeeded against a failing server", i)
		}
	}
	_, err := f.Fetch(ctx, srv.URL)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Fetch() after three failures error = %v, want ErrOpenState", err)
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

type fakeObjectStore struct {
	bucket, key string
	err error
}

func (s *fakeObjectStore) FGetObject(_ context.Context, bucket, key, path string, _ minio.GetObjectOptions) error {
	s.bucket, s.key = bucket, key
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(path, []byte("PAR1"), 0o600)
}

func TestFetch_S3(t *testing.T) {
	t.Parallel()

	store := &fakeObjectStore{}
	f := NewFetcher(config.DataConfig{CacheDir: t.TempDir()})
	f.s3 = store

	path, err := f.Fetch(context.Background(), "s3://snapshots/berlin/locations.parquet")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if store.bucket != "snapshots" || store.key != "berlin/locations.parquet" {
		t.Errorf("FGetObject(%q, %q)", store.bucket, store.key)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("fetched file missing: %v", err)
	}

	store.err = errors.New("NoSuchKey")
	if _, err := f.Fetch(context.Background(), "s3://snapshots/missing.parquet"); err == nil {
		t.Error("missing object accepted")
	}
}

func TestFetch_S3RequiresEndpoint(t *testing.T) {
	t.Parallel()

	f := NewFetcher(config.DataConfig{CacheDir: t.TempDir()})
	if _, err := f.Fetch(context.Background(), "s3://snapshots/locations.parquet"); err == nil {
		t.Error("s3 fetch without endpoint accepted")
	}
}
