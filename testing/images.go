// Package testing provides image-building helpers shared by the test suites.
// Import it with an alias (conventionally `dcddtest`) to avoid clashing with
// the standard library.
package testing

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/altairemu/dcdd"
)

// CreateRandomImage returns `sectors` sectors of random bytes. It is
// guaranteed to either return a valid slice or fail the test and abort.
func CreateRandomImage(sectors uint, t *testing.T) []byte {
	backingData := make([]byte, sectors*dcdd.SectorSize)

	_, err := rand.Read(backingData)
	require.NoErrorf(
		t,
		err,
		"failed to initialize %d sectors with random bytes",
		sectors,
	)
	return backingData
}

// CreatePatternImage returns a full-size 88-DCDD image where byte `i` of the
// sector at (track, sector) is track ^ sector ^ i. Sectors with different
// track ^ sector values differ in content, so most misdirected reads show up
// as content mismatches; sectors with equal track ^ sector values (track 0
// sector 1 and track 1 sector 0, for example) hold identical bytes.
func CreatePatternImage() []byte {
	data := make([]byte, dcdd.TotalDiskSize)
	for track := 0; track < dcdd.TotalTracks; track++ {
		for sector := 0; sector < dcdd.SectorsPerTrack; sector++ {
			base := track*dcdd.TrackSize + sector*dcdd.SectorSize
			for i := 0; i < dcdd.SectorSize; i++ {
				data[base+i] = byte(track ^ sector ^ i)
			}
		}
	}
	return data
}

// PatternSector returns the expected contents of one sector of a pattern
// image.
func PatternSector(track, sector int) []byte {
	out := make([]byte, dcdd.SectorSize)
	for i := range out {
		out[i] = byte(track ^ sector ^ i)
	}
	return out
}

// CreateBootImage returns a full-size image whose first sector holds
// `program` (padded with zeros) and whose remaining sectors are zero. It
// fails the test if the program doesn't fit in one sector.
func CreateBootImage(program []byte, t *testing.T) []byte {
	require.LessOrEqual(
		t,
		len(program),
		dcdd.SectorSize,
		"boot sector program doesn't fit in one sector",
	)

	data := make([]byte, dcdd.TotalDiskSize)
	copy(data, program)
	return data
}
