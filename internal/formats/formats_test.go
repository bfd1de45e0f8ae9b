package formats

import (
	"bytes"
	"testing"

	"github.com/lindenrow/rootline/core/errors"
	"github.com/lindenrow/rootline/core/gedcom"
)

// fakeHandler accepts buffers starting with its prefix.
type fakeHandler struct {
	name   string
	prefix []byte
}

func (h fakeHandler) Name() string { return h.name }

func (h fakeHandler) Detect(data []byte) bool { return bytes.HasPrefix(data, h.prefix) }

func (h fakeHandler) Parse(data []byte) (*gedcom.ParseResult, error) {
	return &gedcom.ParseResult{}, nil
}

func TestRegisterAndLookup(t *testing.T) {
	Register(fakeHandler{name: "alpha", prefix: []byte("A")})

	h, err := Lookup("alpha")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if h.Name() != "alpha" {
		t.Errorf("Name() = %q", h.Name())
	}

	_, err = Lookup("missing")
	if err == nil {
		t.Fatal("Lookup() should fail for an unregistered format")
	}
	var unsupported *errors.UnsupportedError
	if !errors.As(err, &unsupported) {
		t.Fatalf("error type = %T, want *errors.UnsupportedError", err)
	}
}

func TestDetectHandlerRegistrationOrder(t *testing.T) {
	// Both accept "QQ"; the first registered wins.
	Register(fakeHandler{name: "first", prefix: []byte("QQ")})
	Register(fakeHandler{name: "second", prefix: []byte("Q")})

	h, err := DetectHandler([]byte("QQC"))
	if err != nil {
		t.Fatalf("DetectHandler() error: %v", err)
	}
	if h.Name() == "second" {
		t.Error("DetectHandler() should prefer the earlier registration")
	}
}

func TestDetectHandlerNoMatch(t *testing.T) {
	if _, err := DetectHandler([]byte("\x00\x01\x02")); err == nil {
		t.Fatal("DetectHandler() should fail when nothing matches")
	}
}

func TestRegisterReplaces(t *testing.T) {
	Register(fakeHandler{name: "dup", prefix: []byte("X")})
	Register(fakeHandler{name: "dup", prefix: []byte("Y")})

	h, err := Lookup("dup")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if !h.Detect([]byte("Y")) {
		t.Error("later registration should replace the earlier one")
	}

	count := 0
	for _, name := range Names() {
		if name == "dup" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Names() lists dup %d times", count)
	}
}

func TestNamesSorted(t *testing.T) {
	Register(fakeHandler{name: "zeta", prefix: []byte("\xFEzeta")})
	Register(fakeHandler{name: "beta", prefix: []byte("\xFEbeta")})
	names := Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Names() not sorted: %v", names)
		}
	}
}
