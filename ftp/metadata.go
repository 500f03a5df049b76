package ftp

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Permissions decodes the 10-character chmod string ("drwxr-xr-x" style)
// prefixing each LIST line. Readable/Writable/Executable is true only when
// the corresponding character is set in all three triads (owner, group,
// other) — positions 1/4/7 for r, 2/5/8 for w, 3/6/9 for x.
type Permissions struct {
	Directory  bool
	Readable   bool
	Writable   bool
	Executable bool
}

// ParsePermissions decodes a 10-character chmod string.
func ParsePermissions(chmod string) (Permissions, error) {
	if len(chmod) != 10 {
		return Permissions{}, fmt.Errorf("ftp: chmod string must be 10 characters, got %d: %q", len(chmod), chmod)
	}
	return Permissions{
		Directory:  chmod[0] == 'd',
		Readable:   chmod[1] == 'r' && chmod[4] == 'r' && chmod[7] == 'r',
		Writable:   chmod[2] == 'w' && chmod[5] == 'w' && chmod[8] == 'w',
		Executable: chmod[3] == 'x' && chmod[6] == 'x' && chmod[9] == 'x',
	}, nil
}

// ToOctal projects Permissions onto the closest octal mode bits: 0444 if
// readable, 0222 if writable, 0111 if executable, OR'd together.
func (p Permissions) ToOctal() int {
	var mode int
	if p.Readable {
		mode |= 0o444
	}
	if p.Writable {
		mode |= 0o222
	}
	if p.Executable {
		mode |= 0o111
	}
	return mode
}

// FileMetadata is one parsed LIST line.
type FileMetadata struct {
	Permissions Permissions
	User        string
	Group       string
	Size        uint64
	ModTime     time.Time
	Name        string
}

// ParseFileMetadata parses one Unix-style LIST line. now supplies the
// current year for entries whose timestamp field is "HH:MM" rather than a
// year, matching the convention ls uses for recent files.
func ParseFileMetadata(line string, now time.Time) (FileMetadata, error) {
	parts := strings.Fields(line)
	if len(parts) < 9 {
		return FileMetadata{}, fmt.Errorf("ftp: LIST line has %d fields, need at least 9: %q", len(parts), line)
	}

	perms, err := ParsePermissions(parts[0])
	if err != nil {
		return FileMetadata{}, err
	}

	size, err := strconv.ParseUint(parts[4], 10, 64)
	if err != nil {
		return FileMetadata{}, fmt.Errorf("ftp: invalid size %q: %w", parts[4], err)
	}

	month, day, yearOrTime := parts[5], parts[6], parts[7]

	var modTime time.Time
	if strings.Contains(yearOrTime, ":") {
		layout := "2006 Jan 2 15:04"
		text := fmt.Sprintf("%d %s %s %s", now.Year(), month, day, yearOrTime)
		modTime, err = time.Parse(layout, text)
	} else {
		layout := "2006 Jan 2 15:04"
		text := fmt.Sprintf("%s %s %s 00:00", yearOrTime, month, day)
		modTime, err = time.Parse(layout, text)
	}
	if err != nil {
		return FileMetadata{}, fmt.Errorf("ftp: invalid date %q %q %q: %w", month, day, yearOrTime, err)
	}

	return FileMetadata{
		Permissions: perms,
		User:        parts[2],
		Group:       parts[3],
		Size:        size,
		ModTime:     modTime,
		Name:        strings.Join(parts[8:], " "),
	}, nil
}
