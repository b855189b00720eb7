// Package staging copies remote source files (s3://, gs://, az://) into a
// local directory so the storage engine can read them as plain files.
package staging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"

	"duck-sheets/internal/domain"
)

// Supported URI schemes.
const (
	SchemeS3    = "s3"
	SchemeGCS   = "gs"
	SchemeAzure = "az"
)

// Location is a parsed remote object reference. For Azure, Bucket holds the
// container name.
type Location struct {
	Scheme string
	Bucket string
	Key    string
}

// String renders the location back into URI form.
func (l Location) String() string {
	return l.Scheme + "://" + l.Bucket + "/" + l.Key
}

// IsRemote reports whether name uses one of the supported remote schemes.
func IsRemote(name string) bool {
	for _, scheme := range []string{SchemeS3, SchemeGCS, SchemeAzure} {
		if strings.HasPrefix(name, scheme+"://") {
			return true
		}
	}
	return false
}

// ParseURI extracts the scheme, bucket and key from "<scheme>://bucket/key".
func ParseURI(uri string) (Location, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, domain.ErrValidation("parse source URI %q: %v", uri, err)
	}
	switch u.Scheme {
	case SchemeS3, SchemeGCS, SchemeAzure:
	default:
		return Location{}, domain.ErrValidation("unsupported source scheme %q in %q", u.Scheme, uri)
	}
	loc := Location{
		Scheme: u.Scheme,
		Bucket: u.Host,
		Key:    strings.TrimPrefix(u.Path, "/"),
	}
	if loc.Bucket == "" {
		return Location{}, domain.ErrValidation("empty bucket in source URI %q", uri)
	}
	if loc.Key == "" || strings.HasSuffix(loc.Key, "/") {
		return Location{}, domain.ErrValidation("empty object key in source URI %q", uri)
	}
	return loc, nil
}

// Fetcher downloads one object from a remote store.
type Fetcher interface {
	Scheme() string
	Fetch(ctx context.Context, bucket, key string, w io.Writer) error
}

// Stager materializes a remote source as a local file. The returned cleanup
// removes the local copy and is safe to call more than once.
type Stager interface {
	Stage(ctx context.Context, uri string) (localPath string, cleanup func(), err error)
}

// Compile-time check.
var _ Stager = (*MultiStager)(nil)

// MultiStager dispatches on URI scheme to the configured fetchers.
type MultiStager struct {
	dir      string
	fetchers map[string]Fetcher
	logger   *slog.Logger
}

// NewMultiStager creates a stager that writes into dir. Nil fetchers are
// ignored, so callers can pass backends that were not configured.
func NewMultiStager(dir string, logger *slog.Logger, fetchers ...Fetcher) *MultiStager {
	m := &MultiStager{
		dir:      dir,
		fetchers: make(map[string]Fetcher),
		logger:   logger.With("component", "staging"),
	}
	for _, f := range fetchers {
		if f != nil {
			m.fetchers[f.Scheme()] = f
		}
	}
	return m
}

// Schemes lists the configured schemes.
func (m *MultiStager) Schemes() []string {
	out := make([]string, 0, len(m.fetchers))
	for _, s := range []string{SchemeS3, SchemeGCS, SchemeAzure} {
		if _, ok := m.fetchers[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Stage downloads uri into the staging directory. The local file keeps the
// object's extension so format detection still applies.
func (m *MultiStager) Stage(ctx context.Context, uri string) (string, func(), error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return "", nil, err
	}
	f, ok := m.fetchers[loc.Scheme]
	if !ok {
		return "", nil, domain.ErrValidation("%s:// sources are not configured", loc.Scheme)
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create staging dir: %w", err)
	}
	out, err := os.CreateTemp(m.dir, "stage-*"+path.Ext(loc.Key))
	if err != nil {
		return "", nil, fmt.Errorf("create staging file: %w", err)
	}
	localPath := out.Name()
	cleanup := func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			m.logger.Warn("remove staged file", "path", localPath, "error", err)
		}
	}

	if err := f.Fetch(ctx, loc.Bucket, loc.Key, out); err != nil {
		_ = out.Close()
		cleanup()
		return "", nil, &domain.SourceUnavailableError{Path: uri, Err: err}
	}
	if err := out.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close staging file: %w", err)
	}

	m.logger.Info("source staged", "uri", uri, "path", localPath)
	return localPath, cleanup, nil
}
