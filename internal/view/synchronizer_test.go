package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb/geojson"
	"github.com/pixil98/go-atlas/internal/playback"
	"github.com/pixil98/go-atlas/internal/selection"
	"github.com/pixil98/go-atlas/internal/series"
	"github.com/pixil98/go-atlas/internal/yeardata"
	"github.com/pixil98/go-testutil"
)

type recordingTarget struct {
	name   string
	err    error
	frames []*Frame
	closed bool
}

func (t *recordingTarget) Update(_ context.Context, f *Frame) error {
	t.frames = append(t.frames, f)
	return t.err
}

func (t *recordingTarget) Close() error {
	t.closed = true
	return nil
}

func (t *recordingTarget) Name() string {
	return t.name
}

func collection(t *testing.T, values map[string]float64) *geojson.FeatureCollection {
	t.Helper()
	var features []string
	for name, v := range values {
		features = append(features, fmt.Sprintf(
			`{"type":"Feature","properties":{"NAME_ENGL":%q,"Anxiety":%v},"geometry":null}`, name, v))
	}
	fc, err := geojson.UnmarshalFeatureCollection([]byte(
		fmt.Sprintf(`{"type":"FeatureCollection","features":[%s]}`, strings.Join(features, ","))))
	if err != nil {
		t.Fatalf("failed to parse test collection: %v", err)
	}
	return fc
}

func newTestStore(t *testing.T) *yeardata.Store {
	t.Helper()
	return yeardata.NewStore(yeardata.DefaultSchema, map[int]*geojson.FeatureCollection{
		1990: collection(t, map[string]float64{"France": 40, "Spain": 30}),
		1991: collection(t, map[string]float64{"France": 42, "Spain": 32}),
		1992: collection(t, map[string]float64{"Spain": 34}),
	})
}

func stateAt(store *yeardata.Store, index int, sel *selection.State) State {
	years := store.Years()
	name, ok := sel.Selected()
	return State{
		Playback:     playback.Snapshot{Year: years[index], Index: index, Years: years, Speed: playback.DefaultSpeed},
		Selected:     name,
		HasSelection: ok,
		Touched:      sel.Touched(),
		Extruded:     sel.ExtrudedIDs(),
		Show3D:       true,
	}
}

func TestSynchronizer_Sync(t *testing.T) {
	store := newTestStore(t)

	tests := map[string]struct {
		index         int
		selected      string
		expMeanHidden bool
		expCountry    []series.Sample
		expLabel      string
	}{
		"no selection shows mean": {
			index:         0,
			expMeanHidden: false,
			expCountry:    []series.Sample{},
			expLabel:      CountryPlaceholder,
		},
		"selection shows country": {
			index:         1,
			selected:      "France",
			expMeanHidden: true,
			expCountry:    []series.Sample{series.Some(40), series.Some(42), {}},
			expLabel:      "France",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			target := &recordingTarget{name: "rec"}
			s := NewSynchronizer(store, NewBanner(), target)

			sel := selection.New()
			if tt.selected != "" {
				sel.Toggle(tt.selected, tt.selected)
			}

			if err := s.Sync(context.Background(), stateAt(store, tt.index, sel)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testutil.AssertEqual(t, "frames", len(target.frames), 1)
			frame := target.frames[0]
			years := store.Years()
			testutil.AssertEqual(t, "year", frame.Year, years[tt.index])

			fc, _ := store.Get(years[tt.index])
			testutil.AssertEqual(t, "data pushed", frame.Data == fc, true)

			chart := frame.Chart
			testutil.AssertEqual(t, "mean hidden", chart.Mean().Hidden, tt.expMeanHidden)
			testutil.AssertEqual(t, "country hidden", chart.Country().Hidden, !tt.expMeanHidden)
			testutil.AssertEqual(t, "country label", chart.Country().Label, tt.expLabel)
			if diff := cmp.Diff(tt.expCountry, chart.Country().Data); diff != "" {
				t.Errorf("country series mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(years, chart.Labels); diff != "" {
				t.Errorf("labels mismatch (-want +got):\n%s", diff)
			}

			testutil.AssertEqual(t, "country tooltips", len(chart.Country().Tooltips), len(tt.expCountry))
			for i, sample := range tt.expCountry {
				exp := ""
				if sample.Valid {
					exp = Tooltip(tt.expLabel, sample.Value)
				}
				testutil.AssertEqual(t, fmt.Sprintf("country tooltip %d", i), chart.Country().Tooltips[i], exp)
			}

			for _, ds := range chart.Datasets {
				testutil.AssertEqual(t, ds.Label+" point count", len(ds.PointColors), len(years))
				for i, c := range ds.PointColors {
					exp := MutedPointColor
					if i == tt.index {
						exp = ds.BorderColor
					}
					testutil.AssertEqual(t, fmt.Sprintf("%s point %d", ds.Label, i), c, exp)
				}
			}
		})
	}
}

func TestTooltip(t *testing.T) {
	testutil.AssertEqual(t, "tooltip", Tooltip("France", 41.23456), "France: 41.23 cases per 1000 people")
}

func TestSynchronizer_SelectThenClear(t *testing.T) {
	store := newTestStore(t)
	target := &recordingTarget{name: "rec"}
	s := NewSynchronizer(store, NewBanner(), target)
	sel := selection.New()

	sel.Toggle("France", "France")
	if err := s.Sync(context.Background(), stateAt(store, 0, sel)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sel.Clear()
	if err := s.Sync(context.Background(), stateAt(store, 0, sel)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chart := target.frames[1].Chart
	testutil.AssertEqual(t, "mean hidden", chart.Mean().Hidden, false)
	testutil.AssertEqual(t, "country hidden", chart.Country().Hidden, true)
	testutil.AssertEqual(t, "france extruded", sel.Extruded("France"), true)
	if diff := cmp.Diff([]string{"France"}, target.frames[1].Extruded); diff != "" {
		t.Errorf("extruded mismatch (-want +got):\n%s", diff)
	}
	testutil.AssertEqual(t, "selected", target.frames[1].Selected, "")
}

func TestSynchronizer_SyncMeanValues(t *testing.T) {
	store := newTestStore(t)
	target := &recordingTarget{name: "rec"}
	s := NewSynchronizer(store, nil, target)

	if err := s.Sync(context.Background(), stateAt(store, 2, selection.New())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := []series.Sample{series.Some(35), series.Some(37), series.Some(34)}
	if diff := cmp.Diff(exp, target.frames[0].Chart.Mean().Data); diff != "" {
		t.Errorf("mean series mismatch (-want +got):\n%s", diff)
	}
}

func TestSynchronizer_SyncUnloadedYear(t *testing.T) {
	store := newTestStore(t)
	target := &recordingTarget{name: "rec"}
	s := NewSynchronizer(store, NewBanner(), target)

	state := State{Playback: playback.Snapshot{Year: 2000, Years: store.Years()}}
	if err := s.Sync(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "frames", len(target.frames), 0)
}

func TestSynchronizer_TargetFailure(t *testing.T) {
	store := newTestStore(t)
	failing := &recordingTarget{name: "map", err: errors.New("webgl context lost")}
	healthy := &recordingTarget{name: "chart"}
	banner := NewBanner()
	s := NewSynchronizer(store, banner, failing, healthy)

	err := s.Sync(context.Background(), stateAt(store, 0, selection.New()))
	testutil.AssertErrorContains(t, err, "map: webgl context lost")

	testutil.AssertEqual(t, "healthy frames", len(healthy.frames), 1)

	status := banner.Status()
	testutil.AssertEqual(t, "loading", status.Loading, false)
	testutil.AssertEqual(t, "banner shows error", strings.Contains(status.Error, "webgl context lost"), true)
	testutil.AssertEqual(t, "healthy seq", healthy.frames[0].Seq, uint64(1))
}

func TestSynchronizer_Close(t *testing.T) {
	a := &recordingTarget{name: "a"}
	b := &recordingTarget{name: "b"}
	s := NewSynchronizer(newTestStore(t), nil, a, b)

	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "a closed", a.closed, true)
	testutil.AssertEqual(t, "b closed", b.closed, true)
}

func TestBanner(t *testing.T) {
	b := NewBanner()
	testutil.AssertEqual(t, "initial loading", b.Status().Loading, true)

	b.Ready()
	testutil.AssertEqual(t, "ready loading", b.Status().Loading, false)
	testutil.AssertEqual(t, "ready error", b.Status().Error, "")

	b = NewBanner()
	b.ShowError("No data")
	testutil.AssertEqual(t, "error loading", b.Status().Loading, false)
	testutil.AssertEqual(t, "error message", b.Status().Error, "No data")
}
