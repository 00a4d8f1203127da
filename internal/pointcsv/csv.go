// Package pointcsv reads query points from CSV and renders match results.
package pointcsv

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/EmpoweredVote/civicsearch/internal/match"
	"github.com/paulmach/orb"
)

// Row is one query point as read from the input.
type Row struct {
	ID  string  `json:"id,omitempty"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

// Point returns the row as lon/lat.
func (r Row) Point() orb.Point { return orb.Point{r.Lon, r.Lat} }

var (
	latColumns = []string{"lat", "latitude"}
	lonColumns = []string{"lon", "lng", "long", "longitude"}
)

func findColumn(col map[string]int, names []string) (int, bool) {
	for _, n := range names {
		if i, ok := col[n]; ok {
			return i, true
		}
	}
	return 0, false
}

// ReadPoints parses a CSV with a header row. A latitude and a longitude
// column are required; an "id" column is kept when present.
func ReadPoints(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	// Handle BOM on first header cell
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	latIdx, ok := findColumn(col, latColumns)
	if !ok {
		return nil, errors.New("missing required column: lat")
	}
	lonIdx, ok := findColumn(col, lonColumns)
	if !ok {
		return nil, errors.New("missing required column: lon")
	}
	idIdx, hasID := col["id"]

	var out []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv read: %w", err)
		}
		get := func(i int) string {
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		lat, err := strconv.ParseFloat(get(latIdx), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid latitude %q", line, get(latIdx))
		}
		lon, err := strconv.ParseFloat(get(lonIdx), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid longitude %q", line, get(lonIdx))
		}

		row := Row{Lat: lat, Lon: lon}
		if hasID {
			row.ID = get(idIdx)
		}
		out = append(out, row)
	}

	return out, nil
}

// Points converts rows to lon/lat points, preserving order.
func Points(rows []Row) []orb.Point {
	pts := make([]orb.Point, len(rows))
	for i, r := range rows {
		pts[i] = r.Point()
	}
	return pts
}

// WriteCSV writes one line per point: id,lat,lon,status,districts with the
// district names joined by ";".
func WriteCSV(w io.Writer, rows []Row, results []match.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "lat", "lon", "status", "districts"}); err != nil {
		return err
	}
	for i, r := range results {
		row := rows[i]
		if err := cw.Write([]string{
			row.ID,
			strconv.FormatFloat(row.Lat, 'f', -1, 64),
			strconv.FormatFloat(row.Lon, 'f', -1, 64),
			string(r.Status()),
			strings.Join(r.Names, ";"),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteText prints a human-readable block per point.
func WriteText(w io.Writer, rows []Row, results []match.Result) error {
	bw := bufio.NewWriter(w)
	for i, r := range results {
		row := rows[i]
		label := row.ID
		if label == "" {
			label = fmt.Sprintf("%g,%g", row.Lat, row.Lon)
		}
		if len(results) > 1 {
			fmt.Fprintf(bw, "%s:\n", label)
		}
		if r.Status() == match.NoMatch {
			fmt.Fprintln(bw, "No Matching Districts Found.")
			continue
		}
		fmt.Fprintln(bw, "Matching districts:")
		for _, name := range r.Names {
			fmt.Fprintln(bw, name)
		}
	}
	return bw.Flush()
}

// Output is the JSON shape of one result.
type Output struct {
	Row
	Status    match.Status `json:"status"`
	Districts []string     `json:"districts"`
}

// Outputs pairs rows with their results.
func Outputs(rows []Row, results []match.Result) []Output {
	out := make([]Output, len(results))
	for i, r := range results {
		names := r.Names
		if names == nil {
			names = []string{}
		}
		out[i] = Output{Row: rows[i], Status: r.Status(), Districts: names}
	}
	return out
}

// WriteJSON writes the results as a JSON array.
func WriteJSON(w io.Writer, rows []Row, results []match.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Outputs(rows, results))
}
