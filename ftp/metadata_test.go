package ftp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePermissions(t *testing.T) {
	p, err := ParsePermissions("drwxr-xr-x")
	require.NoError(t, err)
	assert.True(t, p.Directory)
	assert.True(t, p.Readable)
	assert.False(t, p.Writable) // group/other triads lack 'w'
	assert.True(t, p.Executable)
	assert.Equal(t, 0o555, p.ToOctal())

	p, err = ParsePermissions("-r--r--r--")
	require.NoError(t, err)
	assert.False(t, p.Directory)
	assert.True(t, p.Readable)
	assert.False(t, p.Writable)
	assert.False(t, p.Executable)
	assert.Equal(t, 0o444, p.ToOctal())

	_, err = ParsePermissions("short")
	assert.Error(t, err)
}

func TestParsePermissionsRequiresAllThreeTriads(t *testing.T) {
	// Owner has every bit set but group/other are read-only: the
	// permission must be false unless all three triads agree.
	p, err := ParsePermissions("-rwxr--r--")
	require.NoError(t, err)
	assert.True(t, p.Readable)
	assert.False(t, p.Writable)
	assert.False(t, p.Executable)
}

func TestParseFileMetadataWithTimeOfDay(t *testing.T) {
	now := time.Date(2026, time.July, 30, 12, 0, 0, 0, time.UTC)
	meta, err := ParseFileMetadata("-rw-r--r-- 1 root root 1234 Jan 23 01:27 plate_1.gcode", now)
	require.NoError(t, err)
	assert.Equal(t, "root", meta.User)
	assert.Equal(t, "root", meta.Group)
	assert.Equal(t, uint64(1234), meta.Size)
	assert.Equal(t, "plate_1.gcode", meta.Name)
	assert.Equal(t, 2026, meta.ModTime.Year())
	assert.Equal(t, time.January, meta.ModTime.Month())
	assert.Equal(t, 23, meta.ModTime.Day())
	assert.Equal(t, 1, meta.ModTime.Hour())
	assert.Equal(t, 27, meta.ModTime.Minute())
}

func TestParseFileMetadataWithYear(t *testing.T) {
	now := time.Date(2026, time.July, 30, 12, 0, 0, 0, time.UTC)
	meta, err := ParseFileMetadata("drwxr-xr-x 2 bblp bblp 4096 Mar 5 2023 timelapse", now)
	require.NoError(t, err)
	assert.True(t, meta.Permissions.Directory)
	assert.Equal(t, "timelapse", meta.Name)
	assert.Equal(t, 2023, meta.ModTime.Year())
	assert.Equal(t, 0, meta.ModTime.Hour())
	assert.Equal(t, 0, meta.ModTime.Minute())
}

func TestParseFileMetadataWithSpacesInFilename(t *testing.T) {
	now := time.Date(2026, time.July, 30, 12, 0, 0, 0, time.UTC)
	meta, err := ParseFileMetadata("-rw-r--r-- 1 bblp bblp 55 Jun 1 2024 my cool plate.3mf", now)
	require.NoError(t, err)
	assert.Equal(t, "my cool plate.3mf", meta.Name)
}

func TestParseFileMetadataTooFewFields(t *testing.T) {
	_, err := ParseFileMetadata("-rw-r--r-- 1 bblp bblp 55", time.Now())
	assert.Error(t, err)
}
