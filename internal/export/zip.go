// Package export packages filtered resume sets into a single zip archive.
package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Signer issues time-limited read URLs for stored objects.
type Signer interface {
	PresignedURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

// Entry names one resume to package: the storage key and the archive entry
// name. Entries with an empty key are skipped.
type Entry struct {
	FileKey  string
	FileName string
}

// Packager streams resumes into a zip archive. A failed fetch does not abort
// the export; failures are listed in a manifest entry inside the archive.
type Packager struct {
	signer     Signer
	httpClient *http.Client
	urlTTL     time.Duration
	logger     *slog.Logger
}

const failureManifestName = "_failed_files.txt"

// NewPackager builds a Packager issuing URLs with the given TTL.
func NewPackager(signer Signer, urlTTL time.Duration, logger *slog.Logger) *Packager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Packager{
		signer:     signer,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		urlTTL:     urlTTL,
		logger:     logger,
	}
}

// Pack fetches every entry with a storage key and writes it to w as a zip
// archive. Duplicate entry names are disambiguated with a numeric suffix.
func (p *Packager) Pack(ctx context.Context, w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)

	seen := map[string]int{}
	var failures []string

	for _, entry := range entries {
		if entry.FileKey == "" {
			continue
		}
		name := uniqueName(seen, entryName(entry))

		data, err := p.fetch(ctx, entry.FileKey)
		if err != nil {
			p.logger.Warn("export entry failed",
				slog.String("fileKey", entry.FileKey),
				slog.String("error", err.Error()),
			)
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}

		f, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("create zip entry %q: %w", name, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("write zip entry %q: %w", name, err)
		}
	}

	if len(failures) > 0 {
		f, err := zw.Create(failureManifestName)
		if err != nil {
			return fmt.Errorf("create failure manifest: %w", err)
		}
		if _, err := io.WriteString(f, strings.Join(failures, "\n")+"\n"); err != nil {
			return fmt.Errorf("write failure manifest: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize zip: %w", err)
	}
	return nil
}

func (p *Packager) fetch(ctx context.Context, fileKey string) ([]byte, error) {
	url, err := p.signer.PresignedURL(ctx, fileKey, p.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("sign url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch object: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

func entryName(entry Entry) string {
	if entry.FileName != "" {
		return entry.FileName
	}
	// Fall back to the key's basename when the original name was lost.
	if idx := strings.LastIndex(entry.FileKey, "/"); idx >= 0 {
		return entry.FileKey[idx+1:]
	}
	return entry.FileKey
}

func uniqueName(seen map[string]int, name string) string {
	count := seen[name]
	seen[name] = count + 1
	if count == 0 {
		return name
	}

	ext := ""
	base := name
	if idx := strings.LastIndex(name, "."); idx > 0 {
		base, ext = name[:idx], name[idx:]
	}
	return fmt.Sprintf("%s (%d)%s", base, count, ext)
}
