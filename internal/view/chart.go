package view

import (
	"fmt"

	"github.com/pixil98/go-atlas/internal/series"
	"github.com/pixil98/go-atlas/internal/yeardata"
)

const (
	MeanLabel          = "Mean Anxiety Disorders"
	CountryPlaceholder = "Selected Country"

	MeanColor       = "#7a0177"
	MeanFill        = "rgba(122, 1, 119, 0.1)"
	CountryColor    = "#ff7f00"
	CountryFill     = "rgba(255, 127, 0, 0.1)"
	MutedPointColor = "rgba(0, 0, 0, 0.1)"

	YAxisTitle = "Cases per 1000 people"
	XAxisTitle = "Year"
)

// Dataset is one line of the trend chart.
type Dataset struct {
	Label           string          `json:"label"`
	Data            []series.Sample `json:"data"`
	BorderColor     string          `json:"borderColor"`
	BackgroundColor string          `json:"backgroundColor"`
	Fill            bool            `json:"fill"`
	Hidden          bool            `json:"hidden"`
	PointColors     []string        `json:"pointBackgroundColor"`
	// Tooltips holds the hover text for each point, "" where the sample is null.
	Tooltips []string `json:"tooltips"`
}

// Tooltip formats the hover text for one point.
func Tooltip(label string, v float64) string {
	return fmt.Sprintf("%s: %.2f cases per 1000 people", label, v)
}

// Chart is the trend chart model: the mean dataset followed by the selected
// country dataset, one label per loaded year.
type Chart struct {
	Labels       []int     `json:"labels"`
	Datasets     []Dataset `json:"datasets"`
	CurrentIndex int       `json:"currentIndex"`
}

func (c Chart) Mean() Dataset {
	return c.Datasets[0]
}

func (c Chart) Country() Dataset {
	return c.Datasets[1]
}

// BuildChart recomputes both series. The mean is hidden while a country is
// selected and the country series is hidden otherwise.
func BuildChart(store *yeardata.Store, years []int, currentIndex int, country string, selected bool) Chart {
	mean := Dataset{
		Label:           MeanLabel,
		Data:            series.FromValues(series.Mean(store, years)),
		BorderColor:     MeanColor,
		BackgroundColor: MeanFill,
		Fill:            true,
		Hidden:          selected,
	}

	countryData := []series.Sample{}
	if selected {
		countryData = series.Country(store, years, country)
	}
	label := CountryPlaceholder
	if selected {
		label = series.Label(country)
	}
	countrySet := Dataset{
		Label:           label,
		Data:            countryData,
		BorderColor:     CountryColor,
		BackgroundColor: CountryFill,
		Hidden:          !selected,
	}

	datasets := []Dataset{mean, countrySet}
	for i := range datasets {
		datasets[i].PointColors = pointColors(len(years), currentIndex, datasets[i].BorderColor)
		datasets[i].Tooltips = tooltips(datasets[i])
	}

	return Chart{
		Labels:       years,
		Datasets:     datasets,
		CurrentIndex: currentIndex,
	}
}

// pointColors emphasises the point at current with the dataset's own color.
func pointColors(n, current int, color string) []string {
	colors := make([]string, n)
	for i := range colors {
		if i == current {
			colors[i] = color
			continue
		}
		colors[i] = MutedPointColor
	}
	return colors
}

func tooltips(ds Dataset) []string {
	out := make([]string, len(ds.Data))
	for i, sample := range ds.Data {
		if sample.Valid {
			out[i] = Tooltip(ds.Label, sample.Value)
		}
	}
	return out
}
