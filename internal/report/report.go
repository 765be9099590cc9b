package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	pb "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// Options select which report variant runs.
type Options struct {
	// EnvName is the display label for the table header.
	EnvName string
	// Scan configures document identifier extraction.
	Scan ScanOptions
	// CountDocs adds the unique-document column. When false the scan
	// still runs so the last page size can stand in for a missing
	// point count.
	CountDocs bool
	// ListDocs prints the per-collection document listing after each row.
	ListDocs bool
}

// Reporter renders collection tables to Out using the given Store.
type Reporter struct {
	Store Store
	Out   io.Writer
	Log   *zap.Logger
}

const rule = "--------------------------------------------------------------------------------"

// Run enumerates all collections and prints one table row per
// collection, in the order the service returned them.
func (r *Reporter) Run(ctx context.Context, opts Options) error {
	log := r.logger()

	collections, err := r.Store.ListCollections(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.Out, "Collections in %s environment:\n", opts.EnvName)
	fmt.Fprintln(r.Out, rule)

	if len(collections) == 0 {
		fmt.Fprintln(r.Out, "No collections found")
		return nil
	}

	if opts.CountDocs {
		fmt.Fprintf(r.Out, "%-15s %-30s %-20s %-10s\n", "Username", "Collection Name", "Point Count", "Docs Count")
	} else {
		fmt.Fprintf(r.Out, "%-15s %-30s %-20s\n", "Username", "Collection Name", "Point Count")
	}
	fmt.Fprintln(r.Out, rule)

	for _, name := range collections {
		log.Debug("scanning collection", zap.String("collection", name))
		if err := r.reportCollection(ctx, name, opts); err != nil {
			return err
		}
	}

	fmt.Fprintln(r.Out, rule)
	return nil
}

func (r *Reporter) reportCollection(ctx context.Context, name string, opts Options) error {
	points, err := r.Store.CountPoints(ctx, name)
	if err != nil {
		return err
	}

	agg, err := Scan(ctx, r.Store, name, opts.Scan)
	if err != nil {
		return err
	}

	// A zero server-side count gets replaced by a local best-effort
	// estimate: the unique-document count, or the last page size when
	// documents aren't being tracked.
	if points == 0 {
		if opts.CountDocs {
			points = uint64(len(agg.Documents))
		} else {
			points = uint64(agg.LastPageSize)
		}
	}

	if opts.CountDocs {
		fmt.Fprintf(r.Out, "%-15s %-30s %-20d %-10d\n", Username(name), name, points, len(agg.Documents))
	} else {
		fmt.Fprintf(r.Out, "%-15s %-30s %-20d\n", Username(name), name, points)
	}

	if opts.ListDocs {
		printDocuments(r.Out, name, agg.SortedDocuments())
	}
	return nil
}

// Verify scroll-counts a single collection, printing per-batch
// progress and the total. Useful for spot-checking that pagination
// covers every point.
func (r *Reporter) Verify(ctx context.Context, collection string, batchSize uint32) error {
	var total int
	var offset *pb.PointId

	fmt.Fprintf(r.Out, "Checking collection: %s\n", collection)

	for {
		points, next, err := r.Store.ScrollPage(ctx, collection, batchSize, offset)
		if err != nil {
			return fmt.Errorf("scroll %s: %w", collection, err)
		}

		total += len(points)
		if len(points) > 0 {
			fmt.Fprintf(r.Out, "  Batch: %d points\n", len(points))
		}

		if next == nil || len(points) == 0 {
			break
		}
		offset = next
	}

	fmt.Fprintf(r.Out, "\nTotal points in collection: %d\n", total)
	return nil
}

func (r *Reporter) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func printDocuments(w io.Writer, collection string, docs []string) {
	if len(docs) == 0 {
		return
	}
	fmt.Fprintf(w, "\nUnique documents in collection: %s\n", collection)
	for i, doc := range docs {
		fmt.Fprintf(w, "  %d. %s\n", i+1, doc)
	}
	fmt.Fprintln(w)
}

// Username derives the owning user from a collection name: the text
// before the first hyphen. Names without a hyphen report "unknown".
func Username(collection string) string {
	user, _, found := strings.Cut(collection, "-")
	if !found {
		return "unknown"
	}
	return user
}
