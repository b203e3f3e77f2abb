package saver

const (
	// UnitMegabytes labels chart values expressed in megabytes.
	UnitMegabytes = "Mbytes"
	// UnitKilobytes labels chart values expressed in kilobytes.
	UnitKilobytes = "Kbytes"
)

// Point is one plotted value.
type Point struct {
	X int     `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Series is a named line of points.
type Series struct {
	Title  string  `yaml:"title"`
	Points []Point `yaml:"points"`
}

// Comparison is the data behind the original vs compressed size chart.
type Comparison struct {
	Title      string  `yaml:"title"`
	XTitle     string  `yaml:"x_title"`
	YTitle     string  `yaml:"y_title"`
	Unit       string  `yaml:"unit"`
	YMax       float64 `yaml:"y_max"`
	Original   Series  `yaml:"original"`
	Compressed Series  `yaml:"compressed"`
}

// BuildComparison reads the current sizes of each pair's files and builds the chart data.
// Pairs without a compressed copy are left out.
func BuildComparison(pairs []Pair) Comparison {
	var sizes []SizePair
	for _, pair := range pairs {
		if pair.Compressed == "" {
			continue
		}
		sizes = append(sizes, SizePair{
			Original:   fileLength(pair.Source),
			Compressed: fileLength(pair.Compressed),
		})
	}
	return BuildComparisonFromSizes(sizes)
}

// BuildComparisonFromSizes builds the chart data for known sizes.
//
// Values are in megabytes with two megabytes of headroom above the largest
// original. When every original is under a megabyte the values and the axis
// switch to kilobytes without headroom.
func BuildComparisonFromSizes(sizes []SizePair) Comparison {
	c := Comparison{
		Title:      "Original image vs Compressed image comparison",
		XTitle:     "Images",
		Unit:       UnitMegabytes,
		Original:   Series{Title: "Original image size", Points: make([]Point, 0, len(sizes))},
		Compressed: Series{Title: "Compressed image size", Points: make([]Point, 0, len(sizes))},
	}

	maxSize := 0.0
	for _, size := range sizes {
		maxSize = max(maxSize, SizeInMegabytes(size.Original))
	}

	scale := 1.0
	if maxSize < 1 {
		scale = Kilobyte
		c.Unit = UnitKilobytes
		c.YMax = maxSize * Kilobyte
	} else {
		c.YMax = maxSize + 2
	}

	for i, size := range sizes {
		c.Original.Points = append(c.Original.Points, Point{X: i, Y: SizeInMegabytes(size.Original) * scale})
		c.Compressed.Points = append(c.Compressed.Points, Point{X: i, Y: SizeInMegabytes(size.Compressed) * scale})
	}
	c.YTitle = "Image size in " + c.Unit
	return c
}
