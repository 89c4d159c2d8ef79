package yeardata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pixil98/go-testutil"
)

type mapFetcher struct {
	mu    sync.Mutex
	docs  map[int]string
	errs  map[int]error
	calls map[int]int
}

func (f *mapFetcher) Fetch(ctx context.Context, year int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[int]int{}
	}
	f.calls[year]++

	if err, ok := f.errs[year]; ok {
		return nil, err
	}
	doc, ok := f.docs[year]
	if !ok {
		return nil, fmt.Errorf("failed to load %d data: 404", year)
	}
	return []byte(doc), nil
}

func TestLoader_Load(t *testing.T) {
	france := testCountry{name: "France", value: 40.5, lon: 2, lat: 46}

	tests := map[string]struct {
		docs     map[int]string
		errs     map[int]error
		minYear  int
		maxYear  int
		expYears []int
		expErr   error
	}{
		"all years load": {
			docs: map[int]string{
				1990: featureCollectionJSON(france),
				1991: featureCollectionJSON(france),
				1992: featureCollectionJSON(france),
			},
			minYear:  1990,
			maxYear:  1992,
			expYears: []int{1990, 1991, 1992},
		},
		"failures are omitted": {
			docs: map[int]string{
				1990: featureCollectionJSON(france),
				1992: featureCollectionJSON(france),
			},
			errs: map[int]error{
				1991: errors.New("connection reset"),
			},
			minYear:  1990,
			maxYear:  1993,
			expYears: []int{1990, 1992},
		},
		"empty and invalid documents are omitted": {
			docs: map[int]string{
				1990: `{"type":"FeatureCollection","features":[]}`,
				1991: `{invalid json`,
				1992: `null`,
				1993: featureCollectionJSON(france),
				1994: `{"type":"Feature","properties":{}}`,
			},
			minYear:  1990,
			maxYear:  1994,
			expYears: []int{1993},
		},
		"nothing loads": {
			docs:    map[int]string{1990: `{"type":"FeatureCollection","features":[]}`},
			errs:    map[int]error{1991: errors.New("boom")},
			minYear: 1990,
			maxYear: 1991,
			expErr:  ErrNoData,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			fetcher := &mapFetcher{docs: tt.docs, errs: tt.errs}
			loader := NewLoader(fetcher, WithYearRange(tt.minYear, tt.maxYear), WithMaxConcurrent(2))

			store, err := loader.Load(context.Background())
			if tt.expErr != nil {
				if !errors.Is(err, tt.expErr) {
					t.Fatalf("expected error %v, got %v", tt.expErr, err)
				}
				if store != nil {
					t.Error("expected nil store on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if diff := cmp.Diff(tt.expYears, store.Years()); diff != "" {
				t.Errorf("years mismatch (-want +got):\n%s", diff)
			}

			// Every year is attempted exactly once, regardless of sibling failures.
			for year := tt.minYear; year <= tt.maxYear; year++ {
				testutil.AssertEqual(t, fmt.Sprintf("calls for %d", year), fetcher.calls[year], 1)
			}
		})
	}
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	doc := featureCollectionJSON(testCountry{name: "Spain", value: 38, lon: -4, lat: 40})
	err := os.WriteFile(filepath.Join(dir, "eu_1995.geojson"), []byte(doc), 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	f, err := NewFileFetcher(filepath.Join(dir, "eu_{{ .Year }}.geojson"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := f.Fetch(context.Background(), 1995)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "data", string(data), doc)

	_, err = f.Fetch(context.Background(), 1996)
	if err == nil {
		t.Error("expected error for missing year file")
	}
}

func TestNewFileFetcher_BadTemplate(t *testing.T) {
	_, err := NewFileFetcher("eu_{{ .Year ")
	if err == nil {
		t.Error("expected template parse error")
	}
}

func TestHTTPFetcher(t *testing.T) {
	doc := featureCollectionJSON(testCountry{name: "Italy", value: 41, lon: 12, lat: 42})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geojson/eu_2001.geojson" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(doc))
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(srv.URL+"/geojson/eu_{{ .Year }}.geojson", srv.Client())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := f.Fetch(context.Background(), 2001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "data", string(data), doc)

	_, err = f.Fetch(context.Background(), 2002)
	if err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestLoader_LoadOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/eu_1990.geojson", "/eu_1992.geojson":
			_, _ = w.Write([]byte(featureCollectionJSON(testCountry{name: "France", value: 40, lon: 2, lat: 46})))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(srv.URL+"/eu_{{ .Year }}.geojson", srv.Client())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store, err := NewLoader(f, WithYearRange(1990, 1993)).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int{1990, 1992}, store.Years()); diff != "" {
		t.Errorf("years mismatch (-want +got):\n%s", diff)
	}
}
