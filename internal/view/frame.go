package view

import (
	"github.com/paulmach/orb/geojson"
	"github.com/pixil98/go-atlas/internal/playback"
)

// State is everything a sync needs to know besides the loaded data.
type State struct {
	Playback     playback.Snapshot
	Selected     string
	HasSelection bool
	Touched      bool
	Extruded     []string
	Show3D       bool
	ShowStats    bool
}

// Frame is one synchronized view pushed to every target.
type Frame struct {
	Seq      uint64                     `json:"seq"`
	Year     int                        `json:"year"`
	Data     *geojson.FeatureCollection `json:"-"`
	Chart    Chart                      `json:"chart"`
	Playback playback.Snapshot          `json:"playback"`

	Selected  string   `json:"selected,omitempty"`
	Touched   bool     `json:"touched"`
	Extruded  []string `json:"extruded"`
	Show3D    bool     `json:"show3d"`
	ShowStats bool     `json:"showStats"`
}
