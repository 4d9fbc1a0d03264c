package attachments

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Candidate is a file offered for attachment. Open is called for sniffing,
// previews, and upload; it must return a fresh reader each time.
type Candidate struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// FromBytes builds a candidate over an in-memory payload.
func FromBytes(name, contentType string, data []byte) Candidate {
	payload := append([]byte(nil), data...)
	return Candidate{
		Name:        name,
		Size:        int64(len(payload)),
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(payload)), nil
		},
	}
}

// FromPath builds a candidate for a file on disk. The content type is
// sniffed from the first bytes.
func FromPath(path string) (Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("attachments: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Candidate{}, fmt.Errorf("attachments: %s is a directory", path)
	}
	sniffed, err := mimetype.DetectFile(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("attachments: detect %s: %w", path, err)
	}
	return Candidate{
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: NormalizeType(sniffed.String()),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FromFileHeader reads a multipart upload into memory so the candidate
// outlives the request that carried it.
func FromFileHeader(fh *multipart.FileHeader) (Candidate, error) {
	if fh == nil {
		return Candidate{}, errors.New("attachments: nil file header")
	}
	f, err := fh.Open()
	if err != nil {
		return Candidate{}, fmt.Errorf("attachments: open %s: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return Candidate{}, fmt.Errorf("attachments: read %s: %w", fh.Filename, err)
	}
	return FromBytes(filepath.Base(fh.Filename), fh.Header.Get("Content-Type"), data), nil
}

// resolveType trusts a specific declared type and sniffs generic or missing
// ones.
func resolveType(c Candidate) string {
	declared := NormalizeType(c.ContentType)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if c.Open == nil {
		return declared
	}
	r, err := c.Open()
	if err != nil {
		return declared
	}
	defer func() { _ = r.Close() }()

	sniffed, err := mimetype.DetectReader(r)
	if err != nil {
		return declared
	}
	return NormalizeType(sniffed.String())
}

func normalizeName(name string) string {
	return strings.TrimSpace(filepath.Base(filepath.ToSlash(name)))
}
