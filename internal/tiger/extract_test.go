package tiger

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestMaterialize_RoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("tiger line boundary data "), 4096)
	data := buildZip(t, entry{"a.shp", payload}, entry{"b.txt", []byte("ignored")})
	zr := openZip(t, data)

	m, err := Materialize(zr, "a.shp")
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if m.Size() != int64(len(payload)) {
		t.Fatalf("size = %d, want %d", m.Size(), len(payload))
	}

	got, err := io.ReadAll(m)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("materialized bytes differ from the member contents")
	}

	// random access after a full read
	if _, err := m.Seek(25, io.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	word := make([]byte, 5)
	if _, err := io.ReadFull(m, word); err != nil || string(word) != "tiger" {
		t.Fatalf("expected %q after seek, got %q (%v)", "tiger", word, err)
	}
}

func TestMaterialize_MatchesDirectDecompression(t *testing.T) {
	payload := []byte("0123456789abcdef")
	zr := openZip(t, buildZip(t, entry{"x.dbf", payload}))

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	direct, _ := io.ReadAll(rc)
	rc.Close()

	m, err := Materialize(zr, "x.dbf")
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	got, _ := io.ReadAll(m)
	if !bytes.Equal(got, direct) {
		t.Errorf("got %q, want %q", got, direct)
	}
}

func TestMaterialize_UnknownMember(t *testing.T) {
	zr := openZip(t, buildZip(t, entry{"a.shp", []byte("x")}))

	_, err := Materialize(zr, "missing.shp")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestMaterialize_CorruptMember(t *testing.T) {
	payload := bytes.Repeat([]byte("abcdefghij"), 1000)
	data := buildZip(t, entry{"a.shp", payload})

	// compressed data starts after the 30 byte local header and the name
	corrupt := append([]byte(nil), data...)
	for i := 30 + len("a.shp") + 2; i < 30+len("a.shp")+12; i++ {
		corrupt[i] ^= 0xff
	}
	zr := openZip(t, corrupt)

	_, err := Materialize(zr, "a.shp")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	var ee *ExtractionError
	if !errors.As(err, &ee) || ee.Unwrap() == nil {
		t.Fatalf("expected the underlying cause to be preserved, got %v", err)
	}
}

func TestMaterialize_DeclaredSizeMismatch(t *testing.T) {
	payload := []byte("hello")

	tests := []struct {
		name     string
		declared uint64
	}{
		{"truncated stream", uint64(len(payload)) + 100},
		{"absurd header", 1 << 60},
		{"longer than declared", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zr := openZip(t, rawZip(t, "a.shp", payload, tt.declared))

			_, err := Materialize(zr, "a.shp")
			if !errors.Is(err, ErrExtractionFailed) {
				t.Fatalf("expected ErrExtractionFailed, got %v", err)
			}
			var ee *ExtractionError
			if !errors.As(err, &ee) || ee.Member != "a.shp" {
				t.Fatalf("expected member a.shp in %v", err)
			}
		})
	}
}

func TestMaterialize_TruncatedStreamCause(t *testing.T) {
	payload := bytes.Repeat([]byte("boundary"), 64)
	zr := openZip(t, rawZip(t, "a.dbf", payload, uint64(len(payload))+1))

	_, err := Materialize(zr, "a.dbf")
	if !errors.Is(err, ErrExtractionFailed) || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected a truncated-stream extraction failure, got %v", err)
	}
}

func TestOpenArchive_NotAZip(t *testing.T) {
	junk := []byte("definitely not a zip archive")
	_, err := OpenArchive(bytes.NewReader(junk), int64(len(junk)))
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractBundle(t *testing.T) {
	zr := openZip(t, buildZip(t,
		entry{"t.shx", []byte("index")},
		entry{"t.cpg", []byte("UTF-8\r\n")},
		entry{"t.shp", []byte("geometry")},
		entry{"t.dbf", []byte("attributes")},
	))
	m, err := ResolveManifest(MemberNames(zr))
	if err != nil {
		t.Fatalf("ResolveManifest: %v", err)
	}

	b, err := ExtractBundle(zr, m)
	if err != nil {
		t.Fatalf("ExtractBundle: %v", err)
	}
	defer b.Close()

	for _, c := range []struct {
		m    *Member
		want string
	}{
		{b.Geometry, "geometry"},
		{b.Attributes, "attributes"},
		{b.Index, "index"},
	} {
		got, _ := io.ReadAll(c.m)
		if string(got) != c.want {
			t.Errorf("%s: got %q, want %q", c.m.Name, got, c.want)
		}
	}
	if b.CodePage != "UTF-8" {
		t.Errorf("code page = %q, want UTF-8", b.CodePage)
	}
}

func TestExtractBundle_UnreadableCodePage(t *testing.T) {
	zr := openZip(t, buildZip(t,
		entry{"t.shp", []byte("geometry")},
		entry{"t.dbf", []byte("attributes")},
		entry{"t.shx", []byte("index")},
	))
	m := Manifest{Geometry: "t.shp", Attributes: "t.dbf", Index: "t.shx", CodePage: "t.cpg"}

	b, err := ExtractBundle(zr, m)
	if b != nil {
		t.Fatal("expected no bundle")
	}
	var ee *ExtractionError
	if !errors.As(err, &ee) || ee.Member != "t.cpg" {
		t.Fatalf("expected an extraction failure for t.cpg, got %v", err)
	}
}

func TestExtractBundle_FailFast(t *testing.T) {
	zr := openZip(t, buildZip(t, entry{"t.shp", []byte("geometry")}))
	m := Manifest{Geometry: "t.shp", Attributes: "t.dbf", Index: "t.shx"}

	b, err := ExtractBundle(zr, m)
	if b != nil {
		t.Error("expected no partial bundle")
	}
	var ee *ExtractionError
	if !errors.As(err, &ee) || ee.Member != "t.dbf" {
		t.Fatalf("expected extraction failure on t.dbf, got %v", err)
	}
}
