package tzconvert

import (
	"archive/zip"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // fallback for hosts without zoneinfo

	"github.com/maypok86/otter/v2"
)

// Zones resolves timezone names against the IANA database bundled with the
// Go runtime. Resolved locations are immutable, so they are kept in a
// process-wide cache after the first load.
//
// Names match case-insensitively: "europe/moscow" resolves to Europe/Moscow.
type Zones struct {
	cache *otter.Cache[string, *time.Location]

	// sources lists the zoneinfo trees the case-insensitive index is built from.
	sources   func() []fs.FS
	indexOnce sync.Once
	index     map[string]string
}

// NewZones returns a resolver holding up to capacity resolved locations.
func NewZones(capacity int) *Zones {
	return &Zones{
		cache: otter.Must(&otter.Options[string, *time.Location]{
			MaximumSize:     capacity,
			InitialCapacity: 64,
		}),
		sources: zoneinfoSources,
	}
}

// Resolve maps name to its location. field names the request field the
// name came from and is only used in the returned error.
func (z *Zones) Resolve(field, name string) (*time.Location, error) {
	if loc, ok := z.cache.GetIfPresent(name); ok {
		return loc, nil
	}

	// LoadLocation treats "" as UTC and "Local" as the host zone; neither
	// is a database entry.
	if name == "" || name == "Local" {
		return nil, &Error{Kind: KindUnknownTimezone, Field: field, Value: name}
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		canonical, ok := z.canonical(name)
		if !ok {
			return nil, &Error{Kind: KindUnknownTimezone, Field: field, Value: name}
		}
		if loc, err = time.LoadLocation(canonical); err != nil {
			return nil, &Error{Kind: KindUnknownTimezone, Field: field, Value: name}
		}
	}

	z.cache.Set(name, loc)
	return loc, nil
}

// Size reports how many locations are cached.
func (z *Zones) Size() int {
	return z.cache.EstimatedSize()
}

// canonical returns the database spelling of name, ignoring case.
func (z *Zones) canonical(name string) (string, bool) {
	z.indexOnce.Do(func() {
		z.index = make(map[string]string)
		for _, fsys := range z.sources() {
			indexZones(fsys, z.index)
		}
	})
	canonical, ok := z.index[strings.ToLower(name)]
	if !ok || canonical == "Local" {
		return "", false
	}
	return canonical, true
}

// indexZones adds every file under fsys to index, keyed by lowercased path.
// Earlier entries win. Non-zone files such as zone.tab are harmless since
// LoadLocation rejects them.
func indexZones(fsys fs.FS, index map[string]string) {
	_ = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if d.IsDir() {
			return nil
		}
		key := strings.ToLower(path)
		if _, ok := index[key]; !ok {
			index[key] = path
		}
		return nil
	})
}

// zoneinfoSources returns the trees time.LoadLocation reads from, in the
// same order: $ZONEINFO, the system directories, then GOROOT's zip.
// The embedded time/tzdata copy cannot be listed, so hosts that rely on it
// alone match names case-sensitively.
func zoneinfoSources() []fs.FS {
	paths := []string{
		os.Getenv("ZONEINFO"),
		"/usr/share/zoneinfo/",
		"/usr/share/lib/zoneinfo/",
		"/usr/lib/locale/TZ/",
		"/etc/zoneinfo/",
	}
	if root := runtime.GOROOT(); root != "" {
		paths = append(paths, filepath.Join(root, "lib", "time", "zoneinfo.zip"))
	}

	var sources []fs.FS
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.IsDir() {
			sources = append(sources, os.DirFS(p))
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			continue
		}
		sources = append(sources, zr)
	}
	return sources
}
