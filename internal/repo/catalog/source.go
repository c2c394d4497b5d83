package catalog

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nguyentranbao-ct/storefront/internal/repository"
	"github.com/nguyentranbao-ct/storefront/pkg/util"
)

// NewSource picks an HTTP source for http(s) URLs and a file source otherwise.
func NewSource(location string, timeout time.Duration, retries int) repository.CatalogSource {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, util.NewRestyClient(timeout, retries))
	}
	return NewFileSource(location)
}

type httpSource struct {
	url    string
	client *resty.Client
}

func NewHTTPSource(url string, client *resty.Client) repository.CatalogSource {
	return &httpSource{
		url:    url,
		client: client,
	}
}

func (s *httpSource) Name() string {
	return s.url
}

func (s *httpSource) Fetch(ctx context.Context) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("HTTP error! status: %d", resp.StatusCode())
	}

	return resp.Body(), nil
}

type fileSource struct {
	path string
}

func NewFileSource(path string) repository.CatalogSource {
	return &fileSource{path: path}
}

func (s *fileSource) Name() string {
	return s.path
}

func (s *fileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return data, nil
}
