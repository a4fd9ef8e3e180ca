package disks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altairemu/dcdd"
	"github.com/altairemu/dcdd/disks"
)

func TestGetMediaGeometry(t *testing.T) {
	geometry, err := disks.GetMediaGeometry("88-dcdd")
	require.NoError(t, err)

	assert.EqualValues(t, dcdd.SectorSize, geometry.BytesPerSector)
	assert.EqualValues(t, dcdd.SectorsPerTrack, geometry.SectorsPerTrack)
	assert.EqualValues(t, dcdd.TotalTracks, geometry.TotalTracks)
	assert.EqualValues(t, dcdd.TotalDiskSize, geometry.TotalSizeBytes())
}

func TestGetMediaGeometryUnknownSlug(t *testing.T) {
	_, err := disks.GetMediaGeometry("9-track-tape")
	assert.Error(t, err)
}

func TestListMediaGeometriesOrdered(t *testing.T) {
	all := disks.ListMediaGeometries()
	require.NotEmpty(t, all)

	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Slug, all[i].Slug, "catalog must be ordered by slug")
	}
}

func TestIdentifyBySize(t *testing.T) {
	matches := disks.IdentifyBySize(dcdd.TotalDiskSize)
	require.Len(t, matches, 1)
	assert.Equal(t, "88-dcdd", matches[0].Slug)

	assert.Empty(t, disks.IdentifyBySize(12345), "nothing should match a junk size")
}
