// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// validateLocator accepts a local path, an http(s) URL with a host, or an
// s3://bucket/key locator.
func validateLocator(raw string) error {
	if !strings.Contains(raw, "://") {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to parse locator: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("host is required")
		}
	case "s3":
		if u.Host == "" {
			return fmt.Errorf("bucket is required")
		}
		if strings.Trim(u.Path, "/") == "" {
			return fmt.Errorf("object key is required")
		}
	default:
		return fmt.Errorf("scheme must be http, https or s3, got: %s", u.Scheme)
	}
	return nil
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
