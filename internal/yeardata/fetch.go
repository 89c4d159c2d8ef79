package yeardata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Fetcher retrieves the raw GeoJSON document for a single year.
type Fetcher interface {
	Fetch(ctx context.Context, year int) ([]byte, error)
}

// yearTemplate expands a year-templated location such as "geojson/eu_{{ .Year }}.geojson".
type yearTemplate struct {
	tmpl *template.Template
}

func newYearTemplate(name, text string) (*yearTemplate, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", name, err)
	}
	return &yearTemplate{tmpl: tmpl}, nil
}

func (t *yearTemplate) expand(year int) (string, error) {
	var buf bytes.Buffer
	err := t.tmpl.Execute(&buf, struct{ Year int }{Year: year})
	if err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// FileFetcher reads year documents from the local filesystem.
type FileFetcher struct {
	path *yearTemplate
}

func NewFileFetcher(pathTemplate string) (*FileFetcher, error) {
	t, err := newYearTemplate("path", pathTemplate)
	if err != nil {
		return nil, err
	}
	return &FileFetcher{path: t}, nil
}

func (f *FileFetcher) Fetch(ctx context.Context, year int) ([]byte, error) {
	path, err := f.path.expand(year)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %d data: %w", year, err)
	}
	return data, nil
}

// HTTPFetcher downloads year documents from a year-templated URL.
type HTTPFetcher struct {
	url    *yearTemplate
	client *http.Client
}

func NewHTTPFetcher(urlTemplate string, client *http.Client) (*HTTPFetcher, error) {
	t, err := newYearTemplate("url", urlTemplate)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{url: t, client: client}, nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, year int) ([]byte, error) {
	url, err := f.url.expand(year)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load %d data: %w", year, err)
	}
	// Ignoring close error - body is fully read or abandoned
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to load %d data: %d", year, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %d data: %w", year, err)
	}
	return data, nil
}
