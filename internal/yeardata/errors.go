package yeardata

import "errors"

var (
	ErrNoData    = errors.New("no year data could be loaded")
	ErrEmptyYear = errors.New("data is empty or invalid")
	ErrNotLoaded = errors.New("year not loaded")
	ErrCacheMiss = errors.New("cache miss")
	ErrNoFeature = errors.New("no matching feature")
)
