// Package match labels query points with the districts that contain them.
package match

import (
	"context"
	"runtime"

	"github.com/EmpoweredVote/civicsearch/internal/geo"
	"github.com/EmpoweredVote/civicsearch/internal/logging"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
)

// Status distinguishes no match, one match and several matches.
type Status string

const (
	NoMatch       Status = "none"
	SingleMatch   Status = "single"
	MultipleMatch Status = "multiple"
)

// Result lists, in scan order, the names of every district containing Point.
type Result struct {
	Point orb.Point
	Names []string
}

// Status classifies the result by how many districts matched.
func (r Result) Status() Status {
	switch len(r.Names) {
	case 0:
		return NoMatch
	case 1:
		return SingleMatch
	default:
		return MultipleMatch
	}
}

// Matcher scans every district for every point. There is no spatial index;
// boundary layers run to a few hundred districts at most.
type Matcher struct {
	// NameField is the attribute holding the district name. Empty means
	// geo.DefaultNameField.
	NameField string
	Reporter  logging.Reporter
}

// MatchAll matches with the default name field.
func MatchAll(points []orb.Point, districts []geo.Feature) []Result {
	return Matcher{}.Match(points, districts)
}

// Lookup returns the names of the districts containing p, in the order the
// districts are given. Districts without a usable name contribute nothing.
func (m Matcher) Lookup(p orb.Point, districts []geo.Feature) []string {
	var names []string
	for _, d := range districts {
		if !d.Region.Contains(p) {
			continue
		}
		name, ok := d.Name(m.NameField)
		if !ok {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Match returns one result per point, in input order.
func (m Matcher) Match(points []orb.Point, districts []geo.Feature) []Result {
	rep := logging.OrDiscard(m.Reporter)
	rep.Debugf("matching %d points against %d districts", len(points), len(districts))

	results := make([]Result, len(points))
	for i, p := range points {
		results[i] = Result{Point: p, Names: m.Lookup(p, districts)}
	}

	rep.Infof("matched %d points, %d with at least one district", len(points), countMatched(results))
	return results
}

// MatchParallel is Match spread over workers goroutines. Results keep input
// order; the only possible error is ctx being done.
func (m Matcher) MatchParallel(ctx context.Context, points []orb.Point, districts []geo.Feature, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rep := logging.OrDiscard(m.Reporter)

	results := make([]Result, len(points))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range points {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Result{Point: points[i], Names: m.Lookup(points[i], districts)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep.Infof("matched %d points on %d workers, %d with at least one district",
		len(points), workers, countMatched(results))
	return results, nil
}

func countMatched(results []Result) int {
	n := 0
	for _, r := range results {
		if len(r.Names) > 0 {
			n++
		}
	}
	return n
}
