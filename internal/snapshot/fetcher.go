// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/clubzones/internal/config"
	"github.com/tomtom215/clubzones/internal/logging"
	"github.com/tomtom215/clubzones/internal/metrics"
)

const breakerName = "snapshot-http"

// objectStore is the part of *minio.Client the fetcher uses.
type objectStore interface {
	FGetObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.GetObjectOptions) error
}

// Fetcher downloads remote snapshots into a cache directory.
type Fetcher struct {
	cfg    config.DataConfig
	client *http.Client
	cb     *gobreaker.CircuitBreaker[string]

	s3Once sync.Once
	s3     objectStore
	s3Err  error
}

// NewFetcher creates a fetcher for cfg.
func NewFetcher(cfg config.DataConfig) *Fetcher {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(os.TempDir(), "clubzones")
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		cb:     newBreaker(),
	}
}

// newBreaker opens after three consecutive failed downloads and probes
// again after a minute.
func newBreaker() *gobreaker.CircuitBreaker[string] {
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			// A cancelled download says nothing about the remote.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

// Fetch returns a local path holding the snapshot named by locator.
func (f *Fetcher) Fetch(ctx context.Context, locator string) (string, error) {
	loc, err := ParseLocator(locator)
	if err != nil {
		return "", err
	}

	switch loc.Kind {
	case KindHTTP:
		return f.fetchHTTP(ctx, loc)
	case KindS3:
		return f.fetchS3(ctx, loc)
	}

	info, err := os.Stat(loc.Raw)
	if err != nil {
		return "", fmt.Errorf("snapshot unavailable: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("snapshot path %s is a directory", loc.Raw)
	}
	return loc.Raw, nil
}

// cachePath maps a locator to a stable file name in the cache dir.
func (f *Fetcher) cachePath(loc Locator) string {
	sum := sha256.Sum256([]byte(loc.Raw))
	return filepath.Join(f.cfg.CacheDir, hex.EncodeToString(sum[:8])+".parquet")
}

func (f *Fetcher) fetchHTTP(ctx context.Context, loc Locator) (string, error) {
	path, err := f.cb.Execute(func() (string, error) {
		return f.download(ctx, loc)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			logging.Warn().Err(err).Str("url", loc.Raw).Msg("[CIRCUIT BREAKER] Snapshot download rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		}
		return "", err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	return path, nil
}

// download fetches loc into the cache. A cached copy is revalidated with
// If-Modified-Since and reused on 304.
func (f *Fetcher) download(ctx context.Context, loc Locator) (string, error) {
	dest := f.cachePath(loc)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.Raw, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build snapshot request: %w", err)
	}
	if info, statErr := os.Stat(dest); statErr == nil {
		req.Header.Set("If-Modified-Since", info.ModTime().UTC().Format(http.TimeFormat))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download snapshot: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.Debug().Err(cerr).Msg("Failed to close snapshot response body")
		}
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotModified:
		logging.Debug().Str("url", loc.Raw).Str("path", dest).Msg("Cached snapshot is current")
		return dest, nil
	default:
		return "", fmt.Errorf("snapshot download %s: unexpected status %d", loc.Raw, resp.StatusCode)
	}

	start := time.Now()
	n, err := writeAtomic(dest, resp.Body)
	if err != nil {
		return "", err
	}
	if lm, perr := http.ParseTime(resp.Header.Get("Last-Modified")); perr == nil {
		_ = os.Chtimes(dest, lm, lm)
	}

	logging.Info().
		Str("url", loc.Raw).
		Str("path", dest).
		Int64("bytes", n).
		Dur("duration", time.Since(start)).
		Msg("Snapshot downloaded")
	return dest, nil
}

func (f *Fetcher) fetchS3(ctx context.Context, loc Locator) (string, error) {
	store, err := f.objectStore()
	if err != nil {
		return "", err
	}

	dest := f.cachePath(loc)
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return "", fmt.Errorf("failed to create snapshot cache dir: %w", err)
	}
	if err := store.FGetObject(ctx, loc.Bucket, loc.Key, dest, minio.GetObjectOptions{}); err != nil {
		return "", fmt.Errorf("failed to fetch s3://%s/%s: %w", loc.Bucket, loc.Key, err)
	}

	logging.Info().Str("bucket", loc.Bucket).Str("key", loc.Key).Str("path", dest).Msg("Snapshot fetched from object storage")
	return dest, nil
}

// objectStore creates the MinIO client on first use.
func (f *Fetcher) objectStore() (objectStore, error) {
	f.s3Once.Do(func() {
		if f.s3 != nil {
			return
		}
		if f.cfg.S3Endpoint == "" {
			f.s3Err = errors.New("s3 snapshot locator requires S3_ENDPOINT")
			return
		}
		client, err := minio.New(f.cfg.S3Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(f.cfg.S3AccessKey, f.cfg.S3SecretKey, ""),
			Secure: f.cfg.S3UseSSL,
			Region: f.cfg.S3Region,
		})
		if err != nil {
			f.s3Err = fmt.Errorf("failed to create minio client: %w", err)
			return
		}
		f.s3 = client
	})
	return f.s3, f.s3Err
}

// writeAtomic streams r into a temp file next to dest and renames it.
func writeAtomic(dest string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return 0, fmt.Errorf("failed to create snapshot cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".snapshot-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("failed to move snapshot into cache: %w", err)
	}
	return n, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
