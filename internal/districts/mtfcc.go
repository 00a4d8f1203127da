package districts

// districtKinds names the MAF/TIGER feature classes a catalog is expected
// to carry. SLDU and SLDL layers reuse GEOIDs, so the kind is what tells
// two districts with the same number apart.
var districtKinds = map[string]string{
	"G5200": "congressional",
	"G5210": "state_upper", // State Legislative District (Upper)
	"G5220": "state_lower", // State Legislative District (Lower)
	"G4020": "county",
	"G4040": "county_subdivision", // township
	"G4110": "place",              // incorporated city/town
	"G5420": "school_unified",
}

// Kind returns the district kind of a feature class code, or "" when the
// code is unknown.
func Kind(mtfcc string) string {
	return districtKinds[mtfcc]
}
