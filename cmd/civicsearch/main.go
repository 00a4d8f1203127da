// Command civicsearch reports which districts of a TIGER boundary archive
// contain each query point.
//
//	civicsearch -archive tl_2019_25_sldl.zip -lat 42.389408 -lon -71.119699
//	civicsearch -archive tl_2019_25_sldl.zip -points addresses.csv -format csv -out districts.csv
//	civicsearch -from-db tl_2019_25_sldl -points addresses.csv -save
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/EmpoweredVote/civicsearch/internal/config"
	"github.com/EmpoweredVote/civicsearch/internal/db"
	"github.com/EmpoweredVote/civicsearch/internal/geo"
	"github.com/EmpoweredVote/civicsearch/internal/logging"
	"github.com/EmpoweredVote/civicsearch/internal/match"
	"github.com/EmpoweredVote/civicsearch/internal/pointcsv"
	"github.com/EmpoweredVote/civicsearch/internal/store"
	"github.com/EmpoweredVote/civicsearch/internal/tiger"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")
	env := config.LoadFromEnv()

	var (
		archivePath = flag.String("archive", "", "path to a TIGER boundary zip")
		fromDB      = flag.String("from-db", "", "read boundaries of this dataset from DATABASE_URL instead of an archive")
		pointsPath  = flag.String("points", "", "CSV of query points with lat/lon columns (- for stdin)")
		lat         = flag.Float64("lat", 42.389408, "latitude of a single query point")
		lon         = flag.Float64("lon", -71.119699, "longitude of a single query point")
		format      = flag.String("format", "text", "output format: text, csv or json")
		outPath     = flag.String("out", "", "write results here instead of stdout")
		workers     = flag.Int("workers", env.Workers, "parallel workers for point batches (0 = one per CPU)")
		nameField   = flag.String("name-field", env.NameField, "attribute holding the district name")
		save        = flag.Bool("save", false, "store the run in DATABASE_URL")
		verbose     = flag.Bool("verbose", env.Verbose, "log each step")
	)
	flag.Parse()

	if (*archivePath == "") == (*fromDB == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -archive or -from-db is required")
		flag.Usage()
		os.Exit(2)
	}
	if !validFormat(*format) {
		fmt.Fprintf(os.Stderr, "unknown -format %q: want text, csv or json\n", *format)
		os.Exit(2)
	}
	if *workers < 0 {
		log.Fatalf("-workers must not be negative, got %d", *workers)
	}

	rep := logging.New("civicsearch", *verbose)

	if *fromDB != "" || *save {
		if env.DatabaseURL == "" {
			log.Fatal(db.ErrNoDatabase)
		}
		db.Connect(env.DatabaseURL)
	}

	dataset, districts, err := loadDistricts(*archivePath, *fromDB, rep)
	if err != nil {
		log.Fatalf("Problem reading boundaries: %v", err)
	}

	rows, err := readRows(*pointsPath, *lat, *lon)
	if err != nil {
		log.Fatalf("Problem reading points: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := match.Matcher{NameField: *nameField, Reporter: rep}
	start := time.Now()
	results, err := m.MatchParallel(ctx, pointcsv.Points(rows), districts, *workers)
	if err != nil {
		log.Fatalf("Matching interrupted: %v", err)
	}
	logging.LogDuration(rep, "match", start)

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("Problem creating output: %v", err)
		}
		defer f.Close()
		out = f
	}
	if err := write(out, *format, rows, results); err != nil {
		log.Fatalf("Problem writing results: %v", err)
	}

	if *save {
		if err := store.Init(db.DB); err != nil {
			log.Fatalf("Problem preparing schema: %v", err)
		}
		id, err := store.SaveRun(db.DB, dataset, rows, results)
		if err != nil {
			log.Fatalf("Problem saving run: %v", err)
		}
		rep.Infof("saved run %s (%d points)", id, len(rows))
	}
}

func loadDistricts(archivePath, dataset string, rep logging.Reporter) (string, []geo.Feature, error) {
	if dataset != "" {
		features, err := store.LoadBoundaries(db.DB, dataset)
		if err != nil {
			return "", nil, err
		}
		if len(features) == 0 {
			return "", nil, fmt.Errorf("dataset %q has no stored boundaries", dataset)
		}
		return dataset, features, nil
	}

	ds, err := tiger.Open(archivePath, rep)
	if err != nil {
		return "", nil, err
	}
	return ds.Name, ds.Features, nil
}

func readRows(path string, lat, lon float64) ([]pointcsv.Row, error) {
	switch path {
	case "":
		return []pointcsv.Row{{Lat: lat, Lon: lon}}, nil
	case "-":
		return pointcsv.ReadPoints(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return pointcsv.ReadPoints(f)
}

func validFormat(format string) bool {
	switch strings.ToLower(format) {
	case "text", "", "csv", "json":
		return true
	}
	return false
}

func write(w io.Writer, format string, rows []pointcsv.Row, results []match.Result) error {
	switch strings.ToLower(format) {
	case "text", "":
		return pointcsv.WriteText(w, rows, results)
	case "csv":
		return pointcsv.WriteCSV(w, rows, results)
	case "json":
		return pointcsv.WriteJSON(w, rows, results)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
