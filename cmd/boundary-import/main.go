// Command boundary-import loads a TIGER boundary archive into Postgres so
// lookups can run without the zip (see civicsearch -from-db).
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/EmpoweredVote/civicsearch/internal/geo"
	"github.com/EmpoweredVote/civicsearch/internal/logging"
	"github.com/EmpoweredVote/civicsearch/internal/store"
	"github.com/EmpoweredVote/civicsearch/internal/tiger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// CLI flags
var (
	archivePath = flag.String("archive", "", "Path to the TIGER zip (required)")
	datasetName = flag.String("dataset", "", "Dataset name (default: archive file name without .zip)")
	mtfcc       = flag.String("mtfcc", "", "MAF/TIGER feature class, used when the archive has no MTFCC column")
	nameField   = flag.String("name-field", geo.DefaultNameField, "Attribute holding the district name")
	dsn         = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (default: env DATABASE_URL)")
	dryRun      = flag.Bool("dry-run", false, "Decode + validate only; no DB writes")
	confirm     = flag.Bool("confirm", false, "Required to replace the stored copy of the dataset")
	advisoryKey = flag.Int64("advisory-lock", 0, "Optional Postgres advisory lock key (e.g., 424242). 0 = disabled")
	verbose     = flag.Bool("verbose", false, "Log each step")
)

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	if *archivePath == "" {
		fatalf("--archive is required")
	}

	ds, err := tiger.Open(*archivePath, logging.New("boundary-import", *verbose))
	if err != nil {
		fatalf("archive error: %v", err)
	}
	name := ds.Name
	if *datasetName != "" {
		name = *datasetName
	}
	fmt.Printf("Loaded %d boundaries from %s\n", len(ds.Features), *archivePath)

	if *dryRun {
		printPlan(name, ds.Features)
		fmt.Println("Dry run complete. No changes made.")
		return
	}

	if *dsn == "" {
		fatalf("--dsn not provided and DATABASE_URL not set")
	}
	if !*confirm {
		fatalf("Refusing to run without --confirm. Add --dry-run to preview.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sqlDB, err := sql.Open("pgx", *dsn)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		fatalf("ping: %v", err)
	}

	tx, err := sqlDB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		fatalf("begin tx: %v", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op if already committed
	}()

	// Optional advisory lock to avoid concurrent imports
	if *advisoryKey != 0 {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, *advisoryKey); err != nil {
			fatalf("advisory lock: %v", err)
		}
	}

	// gorm runs inside the same transaction; its own Transaction calls
	// become savepoints.
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: tx}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		fatalf("gorm: %v", err)
	}
	gdb = gdb.WithContext(ctx)

	if err := store.Init(gdb); err != nil {
		fatalf("schema: %v", err)
	}

	before, err := countBoundaries(ctx, tx, name)
	if err != nil {
		fatalf("pre-count: %v", err)
	}
	fmt.Printf("Before: %s has %d boundaries\n", name, before)

	if err := store.SaveBoundaries(gdb, name, *mtfcc, *nameField, ds.Features); err != nil {
		fatalf("save boundaries: %v", err)
	}

	after, err := countBoundaries(ctx, tx, name)
	if err != nil {
		fatalf("post-count: %v", err)
	}
	fmt.Printf("After:  %s has %d boundaries\n", name, after)

	// sanity: one row per archive record
	if after != int64(len(ds.Features)) {
		fatalf("sanity failed: expected %d rows, got %d", len(ds.Features), after)
	}

	if err := tx.Commit(); err != nil {
		fatalf("commit: %v", err)
	}
	fmt.Println("✅ Import complete.")
}

func countBoundaries(ctx context.Context, tx *sql.Tx, dataset string) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx,
		`SELECT count(*) FROM civicsearch.boundaries WHERE dataset = $1`, dataset).Scan(&n)
	return n, err
}

func printPlan(dataset string, features []geo.Feature) {
	named, empty := 0, 0
	for _, f := range features {
		if _, ok := f.Name(*nameField); ok {
			named++
		}
		if f.Region.Empty() {
			empty++
		}
	}
	fmt.Printf("Dataset %s: %d boundaries, %d named by %s, %d without geometry\n",
		dataset, len(features), named, *nameField, empty)
	for i, f := range features {
		if i == 10 {
			fmt.Printf("  ... and %d more\n", len(features)-10)
			break
		}
		n, _ := f.Name(*nameField)
		fmt.Printf("  %4d  %s\n", i, n)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
