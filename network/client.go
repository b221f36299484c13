// Package network provides a pre-configured, optimized HTTP client for fetching page assets and bootstrap resources.
package network

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/deferview/deferview/constant"
	"github.com/deferview/deferview/key"
	"github.com/spf13/viper"
)

// Client is the singleton HTTP client shared across the application for efficient resource utilization.
// It is configured with increased concurrency limits and reasonable timeouts tailored for asset fetching.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

// newTransport initializes a tuned http.Transport with optimized pool and timeout parameters.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}

// Fetch retrieves the resource at url and returns its body.
// When network.tls_spoof is enabled, the request is sent with a browser TLS fingerprint
// so that asset CDNs rejecting default Go clients still serve the resource.
func Fetch(url string) ([]byte, error) {
	if viper.GetBool(key.NetworkTLSSpoof) {
		body, status, err := SpoofedGet(url, nil)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: status %d", url, status)
		}
		return []byte(body), nil
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", constant.UserAgent)

	resp, err := Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
