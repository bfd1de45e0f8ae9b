// Package fetch acquires raw GEDCOM buffers for the parser, from local
// files or HTTP, with transparent decompression of gzip and xz payloads.
// Rejecting unusable input (bad status, empty body) happens here, before
// the parser ever sees the buffer.
package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/lindenrow/rootline/core/errors"
)

// ErrEmptyInput is the message surfaced when an acquired buffer holds no
// data.
const emptyInputMessage = "GEDCOM file is empty or could not be read"

// DefaultTimeout bounds HTTP acquisition.
const DefaultTimeout = 30 * time.Second

// Compression magic prefixes.
var (
	magicGzip = []byte{0x1F, 0x8B}
	magicXZ   = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
)

// FromFile reads a GEDCOM buffer from disk, decompressing if needed.
func FromFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return finish(path, data)
}

// FromURL performs an HTTP GET and returns the body, decompressing if
// needed. A non-200 status or an empty body is rejected here.
func FromURL(ctx context.Context, url string, client *http.Client) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewIO("fetch", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.NewIO("fetch", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewIO("fetch", url,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewIO("fetch", url, err)
	}
	return finish(url, data)
}

// finish decompresses recognized payloads and enforces the non-empty
// contract.
func finish(source string, data []byte) ([]byte, error) {
	data, err := decompress(data)
	if err != nil {
		return nil, errors.NewIO("decompress", source, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewValidation("input", emptyInputMessage)
	}
	return data, nil
}

// decompress expands gzip and xz buffers by magic-prefix detection;
// anything else passes through untouched.
func decompress(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, magicGzip):
		gzr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gzr.Close()
		return io.ReadAll(gzr)
	case bytes.HasPrefix(data, magicXZ):
		xzr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		return io.ReadAll(xzr)
	default:
		return data, nil
	}
}
