// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package snapshot

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind is the transport a locator needs.
type Kind string

const (
	KindLocal Kind = "local"
	KindHTTP  Kind = "http"
	KindS3    Kind = "s3"
)

// Locator is a parsed snapshot location.
type Locator struct {
	Kind   Kind
	Raw    string
	Bucket string // s3 only
	Key    string // s3 only
}

// ParseLocator classifies s. Anything without a known scheme is a local path.
func ParseLocator(s string) (Locator, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Locator{}, fmt.Errorf("snapshot locator is empty")
	}

	switch {
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		u, err := url.Parse(s)
		if err != nil || u.Host == "" {
			return Locator{}, fmt.Errorf("invalid snapshot URL %q", s)
		}
		return Locator{Kind: KindHTTP, Raw: s}, nil

	case strings.HasPrefix(s, "s3://"):
		rest := strings.TrimPrefix(s, "s3://")
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || key == "" {
			return Locator{}, fmt.Errorf("invalid s3 locator %q: want s3://bucket/key", s)
		}
		return Locator{Kind: KindS3, Raw: s, Bucket: bucket, Key: key}, nil

	case strings.Contains(s, "://"):
		return Locator{}, fmt.Errorf("unsupported snapshot scheme in %q", s)
	}

	return Locator{Kind: KindLocal, Raw: s}, nil
}
