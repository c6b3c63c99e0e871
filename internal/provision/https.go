package provision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the NCBI FTP site served over HTTPS.
const DefaultBaseURL = "https://ftp.ncbi.nlm.nih.gov/"

// HTTPSource fetches archives from an HTTP(S) server whose layout mirrors
// the NCBI FTP site.
type HTTPSource struct {
	baseURL *url.URL
	client  *http.Client
}

// NewHTTPSource creates a source rooted at baseURL. An empty baseURL means
// DefaultBaseURL; a nil client means http.DefaultClient.
func NewHTTPSource(baseURL string, client *http.Client) (*HTTPSource, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}

	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{baseURL: u, client: client}, nil
}

func (s *HTTPSource) Name() string {
	return s.baseURL.String()
}

// URL returns the address key is fetched from.
func (s *HTTPSource) URL(key string) string {
	return s.baseURL.JoinPath(key).String()
}

func (s *HTTPSource) Fetch(ctx context.Context, key string, w io.WriterAt) (int64, error) {
	target := s.URL(key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching %s: %w", target, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, fmt.Errorf("%w: %s", ErrNotFound, target)
	case resp.StatusCode != http.StatusOK:
		return 0, fmt.Errorf("fetching %s: %s", target, resp.Status)
	}

	n, err := io.Copy(io.NewOffsetWriter(w, 0), resp.Body)
	if err != nil {
		return n, fmt.Errorf("downloading %s: %w", target, err)
	}
	return n, nil
}

var _ Source = (*HTTPSource)(nil)
