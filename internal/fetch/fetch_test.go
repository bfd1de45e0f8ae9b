package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/lindenrow/rootline/core/errors"
)

const sample = "0 HEAD\n0 @I1@ INDI\n0 TRLR\n"

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func xzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := xw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := xw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromFile(t *testing.T) {
	path := writeTemp(t, "a.ged", []byte(sample))
	got, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile() error: %v", err)
	}
	if string(got) != sample {
		t.Errorf("FromFile() = %q", got)
	}
}

func TestFromFileGzip(t *testing.T) {
	path := writeTemp(t, "a.ged.gz", gzipped(t, []byte(sample)))
	got, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile() error: %v", err)
	}
	if string(got) != sample {
		t.Errorf("FromFile() did not decompress gzip: %q", got)
	}
}

func TestFromFileXZ(t *testing.T) {
	path := writeTemp(t, "a.ged.xz", xzipped(t, []byte(sample)))
	got, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile() error: %v", err)
	}
	if string(got) != sample {
		t.Errorf("FromFile() did not decompress xz: %q", got)
	}
}

func TestFromFileMissing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "nope.ged"))
	if err == nil {
		t.Fatal("FromFile() should fail for a missing file")
	}
	var ioErr *errors.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("error type = %T, want *errors.IOError", err)
	}
}

func TestFromFileEmpty(t *testing.T) {
	path := writeTemp(t, "empty.ged", []byte("   \n\t\n"))
	_, err := FromFile(path)
	if err == nil {
		t.Fatal("FromFile() should reject an empty buffer")
	}
	var vErr *errors.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *errors.ValidationError", err)
	}
	if vErr.Message != "GEDCOM file is empty or could not be read" {
		t.Errorf("message = %q", vErr.Message)
	}
}

func TestFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sample))
	}))
	defer srv.Close()

	got, err := FromURL(context.Background(), srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("FromURL() error: %v", err)
	}
	if string(got) != sample {
		t.Errorf("FromURL() = %q", got)
	}
}

func TestFromURLGzipPayload(t *testing.T) {
	payload := gzipped(t, []byte(sample))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(payload)
	}))
	defer srv.Close()

	got, err := FromURL(context.Background(), srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("FromURL() error: %v", err)
	}
	if string(got) != sample {
		t.Errorf("FromURL() did not decompress: %q", got)
	}
}

func TestFromURLBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := FromURL(context.Background(), srv.URL, srv.Client())
	if err == nil {
		t.Fatal("FromURL() should reject a non-200 status")
	}
	var ioErr *errors.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("error type = %T, want *errors.IOError", err)
	}
}

func TestFromURLEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := FromURL(context.Background(), srv.URL, srv.Client())
	if err == nil {
		t.Fatal("FromURL() should reject an empty body")
	}
	var vErr *errors.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *errors.ValidationError", err)
	}
}

func TestFromURLConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := FromURL(context.Background(), url, nil)
	if err == nil {
		t.Fatal("FromURL() should fail when the server is gone")
	}
}

func TestDecompressPassthrough(t *testing.T) {
	in := []byte("plain text, no magic")
	out, err := decompress(in)
	if err != nil {
		t.Fatalf("decompress() error: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Errorf("decompress() altered a plain buffer")
	}
}

func TestDecompressCorruptGzip(t *testing.T) {
	in := append([]byte{0x1F, 0x8B}, []byte("not really gzip")...)
	if _, err := decompress(in); err == nil {
		t.Fatal("decompress() should fail on a corrupt gzip buffer")
	}
}
