package media

import (
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/clipforge/backend/domain"
)

var (
	// ErrNotFound is returned when the requested name resolves to nothing.
	ErrNotFound = errors.New("media file not found")

	// ErrInvalidTarget is returned when the resolved path exists but is not
	// a regular file, or the name escapes the media root.
	ErrInvalidTarget = errors.New("not a regular file")
)

// ListEntry is one row of a media listing: a descriptor summary plus the
// percent-encoded name that round-trips through the probe and streamer.
type ListEntry struct {
	Name        string
	EncodedName string
	Size        int64
	Type        domain.MediaType
}

// Probe resolves requested names against a root directory without reading
// file contents.
type Probe struct {
	root string
}

// NewProbe creates a probe rooted at dir.
func NewProbe(dir string) *Probe {
	return &Probe{root: dir}
}

// Root returns the configured media root directory.
func (p *Probe) Root() string {
	return p.root
}

// Resolve maps a percent-decoded name (any unicode) to its descriptor and
// absolute path. The name must stay inside the root.
func (p *Probe) Resolve(name string) (domain.MediaDescriptor, string, error) {
	if name == "" || !filepath.IsLocal(name) {
		return domain.MediaDescriptor{}, "", ErrInvalidTarget
	}

	path := filepath.Join(p.root, name)
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.MediaDescriptor{}, "", ErrNotFound
	}
	if err != nil {
		return domain.MediaDescriptor{}, "", err
	}
	if !fi.Mode().IsRegular() {
		return domain.MediaDescriptor{}, "", ErrInvalidTarget
	}

	ext := strings.ToLower(filepath.Ext(fi.Name()))
	desc := domain.MediaDescriptor{
		Name: fi.Name(),
		Size: fi.Size(),
		Type: domain.MediaTypeFor(ext),
		MIME: domain.MIMEFor(ext),
	}
	return desc, path, nil
}

// List enumerates the regular files directly under the root whose extension
// is in the supported set. A missing root is created and yields an empty
// listing rather than an error.
func (p *Probe) List() ([]ListEntry, error) {
	dirEntries, err := os.ReadDir(p.root)
	if errors.Is(err, fs.ErrNotExist) {
		if mkErr := os.MkdirAll(p.root, 0o755); mkErr != nil {
			return nil, mkErr
		}
		return []ListEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	entries := []ListEntry{}
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(de.Name()))
		if !domain.SupportedExtension(ext) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, ListEntry{
			Name:        de.Name(),
			EncodedName: url.PathEscape(de.Name()),
			Size:        info.Size(),
			Type:        domain.MediaTypeFor(ext),
		})
	}
	return entries, nil
}
