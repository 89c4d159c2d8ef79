package yeardata

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/pixil98/go-atlas/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMinYear       = 1990
	DefaultMaxYear       = 2019
	DefaultMaxConcurrent = 8
)

// Loader fetches and parses one document per year.
type Loader struct {
	fetcher       Fetcher
	schema        Schema
	minYear       int
	maxYear       int
	maxConcurrent int
}

func NewLoader(fetcher Fetcher, opts ...LoaderOpt) *Loader {
	l := &Loader{
		fetcher:       fetcher,
		schema:        DefaultSchema,
		minYear:       DefaultMinYear,
		maxYear:       DefaultMaxYear,
		maxConcurrent: DefaultMaxConcurrent,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load attempts every year in range independently. A year that fails to load, fails
// to parse or has no features is logged and omitted; no attempt cancels another.
// ErrNoData is returned when no year survives.
func (l *Loader) Load(ctx context.Context) (*Store, error) {
	var mu sync.Mutex
	loaded := map[int]*geojson.FeatureCollection{}

	var eg errgroup.Group
	if l.maxConcurrent > 0 {
		eg.SetLimit(l.maxConcurrent)
	}

	for year := l.minYear; year <= l.maxYear; year++ {
		eg.Go(func() error {
			fc, err := l.loadYear(ctx, year)
			if err != nil {
				metrics.YearLoadFailuresTotal.Inc()
				slog.WarnContext(ctx, "omitting year", "year", year, "error", err)
				return nil
			}

			mu.Lock()
			loaded[year] = fc
			mu.Unlock()
			return nil
		})
	}

	// Every goroutine reports success; failures are folded into the omitted set.
	_ = eg.Wait()

	store := NewStore(l.schema, loaded)
	metrics.YearsLoaded.Set(float64(store.Len()))
	if store.Len() == 0 {
		return nil, fmt.Errorf("loading years %d-%d: %w", l.minYear, l.maxYear, ErrNoData)
	}

	slog.InfoContext(ctx, "data loaded", "years", store.Years())
	return store, nil
}

func (l *Loader) loadYear(ctx context.Context, year int) (*geojson.FeatureCollection, error) {
	start := time.Now()
	defer func() {
		metrics.YearLoadDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	}()

	data, err := l.fetcher.Fetch(ctx, year)
	if err != nil {
		return nil, err
	}

	return parseYear(year, data)
}

// parseYear decodes one year document. A document without features is rejected.
func parseYear(year int, data []byte) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %d data: %w", year, err)
	}

	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("%d: %w", year, ErrEmptyYear)
	}

	return fc, nil
}
