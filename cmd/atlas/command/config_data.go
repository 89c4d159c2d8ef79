package command

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/redis/go-redis/v9"

	"github.com/pixil98/go-atlas/internal/yeardata"
)

type SourceType int

const (
	SourceTypeFile SourceType = iota
	SourceTypeHTTP
)

func (st *SourceType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "file":
		*st = SourceTypeFile
	case "http":
		*st = SourceTypeHTTP
	default:
		return fmt.Errorf("unknown data source: %s", text)
	}
	return nil
}

// DataConfig describes where the per-year documents live. Location is a
// template over .Year, e.g. "geojson/eu_anxiety_{{ .Year }}.geojson".
type DataConfig struct {
	Source        SourceType   `json:"source"`
	Location      string       `json:"location"`
	MinYear       int          `json:"min_year"`
	MaxYear       int          `json:"max_year"`
	MaxConcurrent int          `json:"max_concurrent"`
	Timeout       string       `json:"timeout,omitempty"`
	Schema        SchemaConfig `json:"schema"`
	Cache         *CacheConfig `json:"cache,omitempty"`
}

type SchemaConfig struct {
	IDProperty        string `json:"id_property"`
	NameProperty      string `json:"name_property"`
	IndicatorProperty string `json:"indicator_property"`
}

// CacheConfig puts a redis read-through cache in front of the source. The
// password is read from REDIS_PASS.
type CacheConfig struct {
	Addr   string `json:"addr"`
	DB     int    `json:"db"`
	Prefix string `json:"prefix"`
	TTL    string `json:"ttl"`
}

func (c *DataConfig) validate() error {
	el := errors.NewErrorList()

	if c.Location == "" {
		el.Add(fmt.Errorf("data location is required"))
	}
	if c.MinYear != 0 || c.MaxYear != 0 {
		if c.MinYear > c.MaxYear {
			el.Add(fmt.Errorf("min_year %d is after max_year %d", c.MinYear, c.MaxYear))
		}
	}
	if c.MaxConcurrent < 0 {
		el.Add(fmt.Errorf("max_concurrent cannot be negative"))
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			el.Add(fmt.Errorf("parsing timeout: %w", err))
		}
	}
	if c.Cache != nil {
		el.Add(c.Cache.validate())
	}

	return el.Err()
}

func (c *CacheConfig) validate() error {
	el := errors.NewErrorList()

	if c.Addr == "" {
		el.Add(fmt.Errorf("cache addr is required"))
	}
	if c.TTL != "" {
		if ttl, err := time.ParseDuration(c.TTL); err != nil {
			el.Add(fmt.Errorf("parsing cache ttl: %w", err))
		} else if ttl <= 0 {
			el.Add(fmt.Errorf("cache ttl must be positive"))
		}
	}

	return el.Err()
}

func (c *DataConfig) schema() yeardata.Schema {
	s := yeardata.DefaultSchema
	if c.Schema.IDProperty != "" {
		s.IDProperty = c.Schema.IDProperty
	}
	if c.Schema.NameProperty != "" {
		s.NameProperty = c.Schema.NameProperty
	}
	if c.Schema.IndicatorProperty != "" {
		s.IndicatorProperty = c.Schema.IndicatorProperty
	}
	return s
}

func (c *DataConfig) buildFetcher() (yeardata.Fetcher, error) {
	var (
		fetcher yeardata.Fetcher
		err     error
	)
	switch c.Source {
	case SourceTypeFile:
		fetcher, err = yeardata.NewFileFetcher(c.Location)
	case SourceTypeHTTP:
		client := &http.Client{}
		if c.Timeout != "" {
			client.Timeout, err = time.ParseDuration(c.Timeout)
			if err != nil {
				return nil, fmt.Errorf("parsing timeout: %w", err)
			}
		}
		fetcher, err = yeardata.NewHTTPFetcher(c.Location, client)
	default:
		return nil, fmt.Errorf("unknown data source: %v", c.Source)
	}
	if err != nil {
		return nil, err
	}

	if c.Cache == nil {
		return fetcher, nil
	}

	var ttl time.Duration
	if c.Cache.TTL != "" {
		ttl, err = time.ParseDuration(c.Cache.TTL)
		if err != nil {
			return nil, fmt.Errorf("parsing cache ttl: %w", err)
		}
	}
	prefix := c.Cache.Prefix
	if prefix == "" {
		prefix = "atlas:year:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.Cache.Addr,
		Password: os.Getenv("REDIS_PASS"),
		DB:       c.Cache.DB,
	})
	return yeardata.NewCachingFetcher(fetcher, yeardata.NewRedisCache(client), prefix, ttl), nil
}

// BuildLoader creates the year loader described by the config.
func (c *DataConfig) BuildLoader() (*yeardata.Loader, error) {
	fetcher, err := c.buildFetcher()
	if err != nil {
		return nil, fmt.Errorf("creating fetcher: %w", err)
	}

	opts := []yeardata.LoaderOpt{yeardata.WithSchema(c.schema())}
	if c.MinYear != 0 || c.MaxYear != 0 {
		opts = append(opts, yeardata.WithYearRange(c.MinYear, c.MaxYear))
	}
	if c.MaxConcurrent != 0 {
		opts = append(opts, yeardata.WithMaxConcurrent(c.MaxConcurrent))
	}

	return yeardata.NewLoader(fetcher, opts...), nil
}
