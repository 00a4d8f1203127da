package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/EmpoweredVote/civicsearch/internal/match"
	"github.com/EmpoweredVote/civicsearch/internal/pointcsv"
)

func TestValidFormat(t *testing.T) {
	for _, f := range []string{"text", "", "CSV", "json"} {
		if !validFormat(f) {
			t.Errorf("validFormat(%q) = false", f)
		}
	}
	for _, f := range []string{"xml", "geojson"} {
		if validFormat(f) {
			t.Errorf("validFormat(%q) = true", f)
		}
	}
}

func TestWrite_AcceptsEveryValidFormat(t *testing.T) {
	rows := []pointcsv.Row{{ID: "a", Lat: 1, Lon: 2}}
	results := []match.Result{{Names: []string{"1st District"}}}

	for _, f := range []string{"text", "csv", "json"} {
		var buf bytes.Buffer
		if err := write(&buf, f, rows, results); err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		if !strings.Contains(buf.String(), "1st District") {
			t.Errorf("%s output lacks the district name: %q", f, buf.String())
		}
	}
	if err := write(&bytes.Buffer{}, "xml", rows, results); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
