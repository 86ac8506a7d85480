package cache

import (
	"io/fs"
	"os"
	"strings"
)

// Snapshot is the read-only static tier. Names are slash-separated paths
// relative to the snapshot root, such as "example.com/Widget/object.jsonld".
type Snapshot interface {
	// Read returns the content stored under name, or (nil, false).
	Read(name string) ([]byte, bool)
}

// FSSnapshot serves snapshot entries from an fs.FS.
type FSSnapshot struct {
	fsys fs.FS
}

// NewFSSnapshot wraps fsys.
func NewFSSnapshot(fsys fs.FS) *FSSnapshot {
	return &FSSnapshot{fsys: fsys}
}

// NewDirSnapshot serves entries from a directory on disk. An empty dir
// yields nil so callers can pass unset configuration straight through.
func NewDirSnapshot(dir string) Snapshot {
	if dir == "" {
		return nil
	}
	return NewFSSnapshot(os.DirFS(dir))
}

// Read implements Snapshot. Names that are not valid fs paths (for example
// containing "..") never match.
func (s *FSSnapshot) Read(name string) ([]byte, bool) {
	name = strings.TrimPrefix(name, "/")
	if !fs.ValidPath(name) {
		return nil, false
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, false
	}
	return data, true
}

// SnapshotPath concatenates an authority, an identifier path ("" or
// "/Name[/Version]") and a file name into a snapshot entry name. The
// result is not cleaned, so dot segments stay invalid for Read.
func SnapshotPath(authority, idPath, file string) string {
	return authority + idPath + "/" + file
}
