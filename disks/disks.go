// Package disks is a host-side catalog of the MITS floppy media the Altair
// shipped with. The controller core emulates the 88-DCDD and nothing else;
// the catalog exists for tooling, so an image file can be matched against the
// medium it claims to be.
package disks

import (
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
)

// MediaGeometry describes one floppy medium.
type MediaGeometry struct {
	Name               string `csv:"name"`
	Slug               string `csv:"slug"`
	FirstYearAvailable uint   `csv:"first_year_available"`
	FormFactor         string `csv:"form_factor"`

	BytesPerSector  uint   `csv:"bytes_per_sector"`
	SectorsPerTrack uint   `csv:"sectors_per_track"`
	TotalTracks     uint   `csv:"total_tracks"`
	Notes           string `csv:"notes"`
}

// TotalSizeBytes gives the size of a full image of this medium.
func (g *MediaGeometry) TotalSizeBytes() int64 {
	return int64(g.BytesPerSector * g.SectorsPerTrack * g.TotalTracks)
}

//go:embed media-geometries.csv
var mediaGeometriesRawCSV string
var mediaGeometries = make(map[string]MediaGeometry)

// GetMediaGeometry looks a medium up by slug (e.g. "88-dcdd").
func GetMediaGeometry(slug string) (MediaGeometry, error) {
	geometry, ok := mediaGeometries[slug]
	if ok {
		return geometry, nil
	}

	err := fmt.Errorf("no predefined media geometry exists with slug %q", slug)
	return MediaGeometry{}, err
}

// ListMediaGeometries returns every catalog entry, ordered by slug.
func ListMediaGeometries() []MediaGeometry {
	out := make([]MediaGeometry, 0, len(mediaGeometries))
	for _, geometry := range mediaGeometries {
		out = append(out, geometry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// IdentifyBySize returns the catalog entries whose full-image size matches
// `size` exactly. An empty result means the image is either truncated or not
// a known Altair medium.
func IdentifyBySize(size int64) []MediaGeometry {
	var matches []MediaGeometry
	for _, geometry := range ListMediaGeometries() {
		if geometry.TotalSizeBytes() == size {
			matches = append(matches, geometry)
		}
	}
	return matches
}

func init() {
	reader := strings.NewReader(mediaGeometriesRawCSV)
	err := gocsv.UnmarshalToCallback(
		reader,
		func(row MediaGeometry) error {
			_, exists := mediaGeometries[row.Slug]
			if exists {
				return fmt.Errorf(
					"duplicate definition for medium %q found on row %d",
					row.Slug,
					len(mediaGeometries)+1,
				)
			}
			mediaGeometries[row.Slug] = row
			return nil
		},
	)
	if err != nil && err != io.EOF {
		panic(err)
	}
}
