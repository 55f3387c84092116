// Package cache is a read-through, on-disk cache for OpenML objects. A
// fetch returns the parsed XML document plus the set of files cached for
// the object; callers never branch on whether the bytes came from disk or
// from the network.
package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strconv"

	"github.com/antchfx/xmlquery"
	"github.com/google/uuid"
	"github.com/viant/afs"

	"github.com/Crozal/openml-go/internal/api"
	"github.com/Crozal/openml-go/internal/db"
	"github.com/Crozal/openml-go/internal/logx"
	"github.com/Crozal/openml-go/internal/paths"
	"github.com/Crozal/openml-go/internal/xmlx"
)

// MetadataFile is the canonical name of an object's XML description within
// its cache directory.
const MetadataFile = "flow.xml"

// ErrNotCached indicates cache-only mode was requested but no local copy
// of the object exists.
var ErrNotCached = errors.New("object not cached")

// File describes one cached file belonging to an object.
type File struct {
	Path   string
	Binary bool
}

// Store is the cache gateway. File IO goes through afs; which files exist
// for an object is tracked in a sqlite index so the binary/text marking
// survives across runs.
type Store struct {
	fs     afs.Service
	api    *api.Client
	idx    *index
	root   string
	logger *slog.Logger
}

// NewStore opens the cache rooted at dir, creating the index database on
// first use. The api client is used for cache misses.
func NewStore(ctx context.Context, dir string, client *api.Client, logger *slog.Logger) (*Store, error) {
	conn, err := db.Connect(ctx, paths.IndexFile(dir))
	if err != nil {
		return nil, fmt.Errorf("open cache index: %w", err)
	}
	return &Store{
		fs:     afs.New(),
		api:    client,
		idx:    &index{db: conn},
		root:   dir,
		logger: logx.WithComponent(logger, "cache"),
	}, nil
}

// Close releases the index database.
func (s *Store) Close() error {
	return s.idx.db.Close()
}

// Fetch returns the parsed XML document for the object and a map of all
// files cached alongside it, keyed by filename. On a miss the object is
// fetched from the server and cached, unless cacheOnly is set, in which
// case ErrNotCached is returned. Artifact files advertised by the document
// (source_url, binary_url) are downloaded next to the metadata.
func (s *Store) Fetch(ctx context.Context, kind string, id int64, cacheOnly bool) (*xmlquery.Node, map[string]File, error) {
	dir := s.objectDir(kind, id)
	metaPath := filepath.Join(dir, MetadataFile)

	data, hit, err := s.readCached(ctx, kind, id, MetadataFile)
	if err != nil {
		return nil, nil, err
	}

	var doc *xmlquery.Node
	switch {
	case hit:
		s.logger.Debug("cache hit", "kind", kind, "id", id)
		if doc, err = parseObject(data, kind); err != nil {
			return nil, nil, err
		}
	case cacheOnly:
		return nil, nil, fmt.Errorf("%s %d: %w", kind, id, ErrNotCached)
	default:
		s.logger.Debug("cache miss, fetching", "kind", kind, "id", id)
		data, err = s.api.GetObjectXML(ctx, kind, id)
		if err != nil {
			return nil, nil, err
		}
		// Validate before persisting so a malformed response is never
		// cached and replayed by later fetches.
		if doc, err = parseObject(data, kind); err != nil {
			return nil, nil, err
		}
		if err := s.writeFile(ctx, metaPath, data); err != nil {
			return nil, nil, err
		}
		if err := s.idx.upsert(ctx, kind, id, MetadataFile, metaPath, false, int64(len(data))); err != nil {
			return nil, nil, err
		}
	}

	if !cacheOnly {
		if err := s.pullArtifacts(ctx, kind, id, doc); err != nil {
			return nil, nil, err
		}
	}

	files, err := s.presentFiles(ctx, kind, id)
	if err != nil {
		return nil, nil, err
	}
	return doc, files, nil
}

// parseObject parses an object's XML bytes and returns the oml-prefixed
// root element for the kind.
func parseObject(data []byte, kind string) (*xmlquery.Node, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xmlx.ErrMalformedDocument, err)
	}
	doc, err := xmlquery.Query(root, "oml:"+kind)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document has no oml:%s root", xmlx.ErrMalformedDocument, kind)
	}
	return doc, nil
}

// pullArtifacts downloads the source or binary file referenced by the
// document when it is not cached yet.
func (s *Store) pullArtifacts(ctx context.Context, kind string, id int64, doc *xmlquery.Node) error {
	for _, a := range []struct {
		field    string
		fallback string
		binary   bool
	}{
		{"oml:source_url", "source", false},
		{"oml:binary_url", "binary", true},
	} {
		rawURL, err := xmlx.OptText(doc, a.field)
		if err != nil {
			return err
		}
		if rawURL == nil || *rawURL == "" {
			continue
		}

		name := artifactName(*rawURL, a.fallback)
		if name == MetadataFile {
			continue
		}
		cached, err := s.hasCached(ctx, kind, id, name)
		if err != nil {
			return err
		}
		if cached {
			continue
		}

		dst := filepath.Join(s.objectDir(kind, id), name)
		s.logger.Debug("downloading artifact", "kind", kind, "id", id, "url", *rawURL, "file", name)

		var buf bytes.Buffer
		if err := s.api.Download(ctx, *rawURL, &buf); err != nil {
			return err
		}
		if err := s.writeFile(ctx, dst, buf.Bytes()); err != nil {
			return err
		}
		if err := s.idx.upsert(ctx, kind, id, name, dst, a.binary, int64(buf.Len())); err != nil {
			return err
		}
	}
	return nil
}

// readCached returns the content of one cached file. An index row whose
// backing file disappeared counts as a miss.
func (s *Store) readCached(ctx context.Context, kind string, id int64, name string) ([]byte, bool, error) {
	row, err := s.idx.file(ctx, kind, id, name)
	if err != nil {
		return nil, false, err
	}
	if row == nil {
		return nil, false, nil
	}
	ok, err := s.fs.Exists(ctx, row.path)
	if err != nil || !ok {
		return nil, false, err
	}
	data, err := s.fs.DownloadWithURL(ctx, row.path)
	if err != nil {
		return nil, false, fmt.Errorf("read cached %s: %w", row.path, err)
	}
	return data, true, nil
}

// hasCached reports whether a file is indexed and still on disk, without
// loading its content; artifacts can be large.
func (s *Store) hasCached(ctx context.Context, kind string, id int64, name string) (bool, error) {
	row, err := s.idx.file(ctx, kind, id, name)
	if err != nil {
		return false, err
	}
	if row == nil {
		return false, nil
	}
	ok, err := s.fs.Exists(ctx, row.path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", row.path, err)
	}
	return ok, nil
}

// writeFile lands content in a uuid-suffixed part file next to the target,
// then renames it into place, so a failed download never leaves a
// truncated cache entry behind.
func (s *Store) writeFile(ctx context.Context, dst string, data []byte) error {
	tmp := dst + "." + uuid.NewString() + ".part"
	if err := s.fs.Upload(ctx, tmp, 0o644, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Move(ctx, tmp, dst); err != nil {
		return fmt.Errorf("move %s to %s: %w", tmp, dst, err)
	}
	return nil
}

// presentFiles builds the filename -> File map from index rows whose
// backing files still exist.
func (s *Store) presentFiles(ctx context.Context, kind string, id int64) (map[string]File, error) {
	rows, err := s.idx.files(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	files := make(map[string]File, len(rows))
	for _, row := range rows {
		ok, err := s.fs.Exists(ctx, row.path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", row.path, err)
		}
		if !ok {
			continue
		}
		files[row.name] = File{Path: row.path, Binary: row.binary}
	}
	return files, nil
}

func (s *Store) objectDir(kind string, id int64) string {
	return filepath.Join(s.root, kind+"s", strconv.FormatInt(id, 10))
}

// artifactName derives a cache filename from an artifact URL, falling back
// to the field name when the URL path has no usable base.
func artifactName(rawURL, fallback string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return fallback
	}
	return name
}
