package tiger

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var sldl = []string{
	"tl_2019_25_sldl.cpg",
	"tl_2019_25_sldl.dbf",
	"tl_2019_25_sldl.prj",
	"tl_2019_25_sldl.shp",
	"tl_2019_25_sldl.shx",
	"tl_2019_25_sldl.shp.ea.iso.xml",
	"tl_2019_25_sldl.shp.iso.xml",
}

func without(names []string, drop string) []string {
	var out []string
	for _, n := range names {
		if n != drop {
			out = append(out, n)
		}
	}
	return out
}

func shuffled(names []string, seed int64) []string {
	out := append([]string(nil), names...)
	rand.New(rand.NewSource(seed)).Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func TestResolveMember(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		ext     string
		want    string
		wantErr error
	}{
		{"single match", sldl, "shp", "tl_2019_25_sldl.shp", nil},
		{"ignores metadata suffixes", []string{"a.shp.iso.xml", "a.shp"}, "shp", "a.shp", nil},
		{"nested path", []string{"dir/a.dbf", "dir/"}, "dbf", "dir/a.dbf", nil},
		{"case sensitive", []string{"A.SHP"}, "shp", "", ErrMissingMember},
		{"extension only in directory name", []string{"x.shp/readme.txt"}, "shp", "", ErrMissingMember},
		{"missing", []string{"a.dbf"}, "shx", "", ErrMissingMember},
		{"ambiguous", []string{"a.shp", "b.shp"}, "shp", "", ErrAmbiguousMember},
		{"empty listing", nil, "shp", "", ErrMissingMember},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveMember(tt.names, tt.ext)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveMember_ErrorDetail(t *testing.T) {
	_, err := ResolveMember([]string{"a.shp"}, "dbf")
	var missing *MissingMemberError
	if !errors.As(err, &missing) || missing.Extension != "dbf" {
		t.Fatalf("expected MissingMemberError for dbf, got %v", err)
	}

	_, err = ResolveMember([]string{"a.shx", "b.shx"}, "shx")
	var ambiguous *AmbiguousMemberError
	if !errors.As(err, &ambiguous) || ambiguous.Extension != "shx" || len(ambiguous.Candidates) != 2 {
		t.Fatalf("expected AmbiguousMemberError for shx, got %v", err)
	}
}

func TestResolveManifest(t *testing.T) {
	m, err := ResolveManifest(sldl)
	if err != nil {
		t.Fatalf("ResolveManifest failed: %v", err)
	}
	want := Manifest{
		Geometry:   "tl_2019_25_sldl.shp",
		Index:      "tl_2019_25_sldl.shx",
		Attributes: "tl_2019_25_sldl.dbf",
		CodePage:   "tl_2019_25_sldl.cpg",
	}
	if m != want {
		t.Errorf("got %+v, want %+v", m, want)
	}
}

func TestResolveManifest_CodePageOptional(t *testing.T) {
	m, err := ResolveManifest(without(sldl, "tl_2019_25_sldl.cpg"))
	if err != nil {
		t.Fatalf("ResolveManifest failed: %v", err)
	}
	if m.CodePage != "" {
		t.Errorf("expected no code page, got %q", m.CodePage)
	}

	_, err = ResolveManifest(append(append([]string(nil), sldl...), "other.cpg"))
	if !errors.Is(err, ErrAmbiguousMember) {
		t.Errorf("expected ambiguous code page error, got %v", err)
	}
}

func TestProperty_ResolveManifest(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("listing order does not change the manifest", prop.ForAll(
		func(seed int64) bool {
			m, err := ResolveManifest(shuffled(sldl, seed))
			return err == nil &&
				m.Geometry == "tl_2019_25_sldl.shp" &&
				m.Index == "tl_2019_25_sldl.shx" &&
				m.Attributes == "tl_2019_25_sldl.dbf"
		},
		gen.Int64(),
	))

	properties.Property("a missing required member is reported by extension", prop.ForAll(
		func(seed int64, which int) bool {
			ext := []string{ExtGeometry, ExtIndex, ExtAttributes}[which]
			names := shuffled(without(sldl, "tl_2019_25_sldl."+ext), seed)
			_, err := ResolveManifest(names)
			var missing *MissingMemberError
			return errors.As(err, &missing) && missing.Extension == ext
		},
		gen.Int64(),
		gen.IntRange(0, 2),
	))

	properties.Property("a duplicated required member is ambiguous", prop.ForAll(
		func(seed int64, which int) bool {
			ext := []string{ExtGeometry, ExtIndex, ExtAttributes}[which]
			names := shuffled(append(append([]string(nil), sldl...), "copy/tl_2019_25_sldl."+ext), seed)
			_, err := ResolveManifest(names)
			var ambiguous *AmbiguousMemberError
			return errors.As(err, &ambiguous) && ambiguous.Extension == ext
		},
		gen.Int64(),
		gen.IntRange(0, 2),
	))

	properties.TestingRun(t)
}
