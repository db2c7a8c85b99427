// Package disks holds predefined storage geometries for creating images without
// having to remember block counts.
package disks

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/dargueta/inodefs"
	"github.com/gocarina/gocsv"
)

// Geometry describes the size and shape of a block device.
type Geometry struct {
	Slug          string `csv:"slug"`
	Name          string `csv:"name"`
	BytesPerBlock uint   `csv:"bytes_per_block"`
	TotalBlocks   uint   `csv:"total_blocks"`
	Notes         string `csv:"notes"`
}

// TotalSizeBytes gives the size of an image with this geometry. This is the
// minimum size of the image file.
func (g Geometry) TotalSizeBytes() int64 {
	return int64(g.BytesPerBlock) * int64(g.TotalBlocks)
}

// https://en.wikipedia.org/wiki/List_of_floppy_disk_formats
//
//go:embed geometries.csv
var geometriesRawCSV string
var geometries map[string]Geometry

// GetPredefinedGeometry looks up a geometry by its slug, e.g. "floppy-1440k".
func GetPredefinedGeometry(slug string) (Geometry, error) {
	geometry, ok := geometries[slug]
	if ok {
		return geometry, nil
	}

	return Geometry{}, inodefs.ErrInvalidArgument.WithMessage(
		fmt.Sprintf("no predefined geometry exists with slug %q", slug),
	)
}

// Geometries returns all predefined geometries sorted by slug.
func Geometries() []Geometry {
	result := make([]Geometry, 0, len(geometries))
	for _, geometry := range geometries {
		result = append(result, geometry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slug < result[j].Slug })
	return result
}

func parseGeometries(rawCSV string) (map[string]Geometry, error) {
	csvReader := csv.NewReader(strings.NewReader(rawCSV))
	csvReader.Comma = '|'
	// Floppy sizes are given in inches, e.g. 3.5".
	csvReader.LazyQuotes = true

	var rows []Geometry
	err := gocsv.UnmarshalCSV(csvReader, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to decode geometry table: %w", err)
	}

	result := make(map[string]Geometry, len(rows))
	for i, row := range rows {
		_, exists := result[row.Slug]
		if exists {
			return nil, fmt.Errorf(
				"duplicate definition for geometry %q found on row %d", row.Slug, i+1)
		}
		if row.BytesPerBlock == 0 || row.TotalBlocks == 0 {
			return nil, fmt.Errorf("geometry %q on row %d has no size", row.Slug, i+1)
		}
		result[row.Slug] = row
	}
	return result, nil
}

func init() {
	var err error
	geometries, err = parseGeometries(geometriesRawCSV)
	if err != nil {
		panic(err)
	}
}
