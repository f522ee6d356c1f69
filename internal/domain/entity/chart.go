package entity

// Series is one currency's values, index-aligned with the chart labels
type Series []NullRate

// Append adds the next value, repeating the last entry when v is unknown. An unknown value on an
// empty series becomes the "no value" marker so alignment is preserved.
func (s Series) Append(v NullRate) Series {
	if v.Valid || len(s) == 0 {
		return append(s, v)
	}
	return append(s, s[len(s)-1])
}

// Color is the display style for one series
type Color struct {
	Border     string `json:"borderColor"`
	Background string `json:"backgroundColor"`
}

// palette is assigned by series position, one entry per charted currency
var palette = []Color{
	{"rgba(75, 192, 192, 1)", "rgba(75, 192, 192, 0.1)"},
	{"rgba(255, 99, 132, 1)", "rgba(255, 99, 132, 0.1)"},
	{"rgba(75, 192, 192, 1)", "rgba(75, 192, 192, 0.1)"},
	{"rgba(255, 159, 64, 1)", "rgba(255, 159, 64, 0.1)"},
	{"rgba(153, 102, 255, 1)", "rgba(153, 102, 255, 0.1)"},
	{"rgba(255, 205, 86, 1)", "rgba(255, 205, 86, 0.1)"},
	{"rgba(54, 162, 235, 1)", "rgba(54, 162, 235, 0.1)"},
	{"rgba(201, 203, 207, 1)", "rgba(201, 203, 207, 0.1)"},
	{"rgba(255, 99, 132, 1)", "rgba(255, 99, 132, 0.2)"},
	{"#36a2eb", "#36a2eb20"},
	{"#ff6384", "#ff638420"},
	{"#ff9f40", "#ff9f4020"},
	{"#4bc0c0", "#4bc0c020"},
	{"#9966ff", "#9966ff20"},
	{"#c9cbcf", "#c9cbcf20"},
	{"#ffcd56", "#ffcd5620"},
	{"#4bc0c0", "#4bc0c020"},
	{"#9966ff", "#9966ff20"},
	{"#ff6384", "#ff638420"},
	{"#36a2eb", "#36a2eb20"},
	{"#ff9f40", "#ff9f4020"},
	{"#c9cbcf", "#c9cbcf20"},
}

// ColorAt returns the palette entry for a series position, wrapping around
func ColorAt(i int) Color {
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

// Dataset is one line of the chart
type Dataset struct {
	Color
	Label   CurrencyCode `json:"label"`
	Data    Series       `json:"data"`
	Fill    bool         `json:"fill"`
	Tension float64      `json:"tension"`
}

// ChartDataset is a complete, aligned multi-currency chart. It is built once per cycle and
// never mutated afterwards.
type ChartDataset struct {
	Granularity Granularity `json:"range"`
	Labels      []string    `json:"labels"`
	Datasets    []Dataset   `json:"datasets"`
}

// Series returns the dataset for code, or nil
func (c *ChartDataset) Series(code CurrencyCode) Series {
	for _, ds := range c.Datasets {
		if ds.Label == code {
			return ds.Data
		}
	}
	return nil
}
