package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/AngelCh415/funnel_go/internal/utils"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// Fetcher opens input files given as local paths or http(s) URLs.
type Fetcher struct {
	c       HTTPClient
	backoff utils.Backoff
}

func NewFetcher(c HTTPClient, retries int) *Fetcher {
	return &Fetcher{c: c, backoff: utils.NewBackoff(100*time.Millisecond, retries)}
}

// Open returns the contents of loc and the file name to dispatch on.
func (f *Fetcher) Open(ctx context.Context, loc string) ([]byte, string, error) {
	if !strings.HasPrefix(loc, "http://") && !strings.HasPrefix(loc, "https://") {
		b, err := os.ReadFile(loc)
		return b, loc, err
	}
	var body []byte
	err := f.backoff.Do(ctx, func(int) error {
		b, err := f.get(ctx, loc)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	name := loc
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	return body, path.Base(name), nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrPermanent, err)
	}
	resp, err := f.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("GET %s: non-2xx: %d body=%s", url, resp.StatusCode, string(b))
		if resp.StatusCode < 500 {
			err = fmt.Errorf("%w: %v", utils.ErrPermanent, err)
		}
		return nil, err
	}
	return io.ReadAll(resp.Body)
}
