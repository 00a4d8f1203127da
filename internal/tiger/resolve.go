// Package tiger reads TIGER/Line shapefile archives.
//
// Census distributes each boundary layer as a .zip holding, among styling
// and metadata files, the three members a shapefile needs:
//
//	tl_2019_25_sldl.zip
//	|- tl_2019_25_sldl.cpg
//	|- tl_2019_25_sldl.dbf   attribute table
//	|- tl_2019_25_sldl.prj
//	|- tl_2019_25_sldl.shp   feature geometry
//	|- tl_2019_25_sldl.shx   geometry index
//	|- tl_2019_25_sldl.shp.ea.iso.xml
//	|- tl_2019_25_sldl.shp.iso.xml
//
// The package finds those members, copies each into memory so the decoder
// can seek in it, and decodes the result into geo features.
package tiger

import (
	"path"
)

// Member extensions, without the leading dot.
const (
	ExtGeometry   = "shp"
	ExtIndex      = "shx"
	ExtAttributes = "dbf"
	ExtCodePage   = "cpg"
)

// Manifest names the archive members that make up one shapefile.
// CodePage is empty when the archive has no .cpg member.
type Manifest struct {
	Geometry   string
	Index      string
	Attributes string
	CodePage   string
}

// memberExt returns the extension of the last path segment of name.
// "a/b.shp.iso.xml" has extension "xml", so metadata never matches "shp".
func memberExt(name string) string {
	ext := path.Ext(path.Base(name))
	if len(ext) < 2 {
		return ""
	}
	return ext[1:]
}

func candidates(names []string, ext string) []string {
	var out []string
	for _, n := range names {
		if n == "" || n[len(n)-1] == '/' {
			continue
		}
		if memberExt(n) == ext {
			out = append(out, n)
		}
	}
	return out
}

// ResolveMember returns the one member whose extension equals ext.
// Matching is case-sensitive. It fails with a MissingMemberError when no
// member matches and an AmbiguousMemberError when more than one does.
func ResolveMember(names []string, ext string) (string, error) {
	found := candidates(names, ext)
	switch len(found) {
	case 0:
		return "", &MissingMemberError{Extension: ext}
	case 1:
		return found[0], nil
	default:
		return "", &AmbiguousMemberError{Extension: ext, Candidates: found}
	}
}

// ResolveManifest resolves the geometry, index and attribute members, in
// that order, and stops at the first failure. The code page member is
// optional but must not be ambiguous.
func ResolveManifest(names []string) (Manifest, error) {
	var m Manifest
	var err error

	if m.Geometry, err = ResolveMember(names, ExtGeometry); err != nil {
		return Manifest{}, err
	}
	if m.Index, err = ResolveMember(names, ExtIndex); err != nil {
		return Manifest{}, err
	}
	if m.Attributes, err = ResolveMember(names, ExtAttributes); err != nil {
		return Manifest{}, err
	}

	cpg := candidates(names, ExtCodePage)
	switch len(cpg) {
	case 0:
	case 1:
		m.CodePage = cpg[0]
	default:
		return Manifest{}, &AmbiguousMemberError{Extension: ExtCodePage, Candidates: cpg}
	}

	return m, nil
}
