package report

import (
	"context"
	"fmt"
	"sort"

	pb "github.com/qdrant/go-client/qdrant"

	"qlens/internal/qdrant"
)

// ScanOptions control how document identifiers are extracted from
// point payloads.
type ScanOptions struct {
	// BatchSize is the scroll page size.
	BatchSize uint32
	// IncludeSource prefixes identifiers from nested metadata with
	// "[<source>] : " when the source field is present.
	IncludeSource bool
	// FlatFields enables the flat payload field fallback for points
	// without a nested metadata document name.
	FlatFields bool
}

// flatFields is the priority order for payloads that carry a document
// name directly instead of a nested metadata mapping.
var flatFields = []string{
	"document_name",
	"name",
	"filename",
	"file_name",
	"doc_name",
	"title",
	"source",
}

// Aggregate is the outcome of scanning one collection: the set of
// unique document identifiers and the size of the last fetched page.
// Each scan is independent; nothing is cached between invocations.
type Aggregate struct {
	Documents    map[string]struct{}
	LastPageSize int
}

// SortedDocuments returns the identifiers in lexical order for stable
// display. The set itself carries no ordering.
func (a Aggregate) SortedDocuments() []string {
	docs := make([]string, 0, len(a.Documents))
	for doc := range a.Documents {
		docs = append(docs, doc)
	}
	sort.Strings(docs)
	return docs
}

// Scan pages through every point of a collection and accumulates the
// unique document identifiers found in the payloads. Paging errors
// propagate unchanged; only the top-level driver turns them into a
// printed message.
func Scan(ctx context.Context, store Store, collection string, opts ScanOptions) (Aggregate, error) {
	agg := Aggregate{Documents: make(map[string]struct{})}

	var offset *pb.PointId
	for {
		points, next, err := store.ScrollPage(ctx, collection, opts.BatchSize, offset)
		if err != nil {
			return Aggregate{}, fmt.Errorf("scroll %s: %w", collection, err)
		}

		agg.LastPageSize = len(points)
		for _, point := range points {
			payload := qdrant.PayloadToMap(point.GetPayload())
			if id, ok := documentID(payload, opts); ok {
				agg.Documents[id] = struct{}{}
			}
		}

		if next == nil || len(points) == 0 {
			break
		}
		offset = next
	}

	return agg, nil
}

// documentID derives a document identifier from a point payload.
// Points with no usable field contribute nothing to the set.
func documentID(payload map[string]any, opts ScanOptions) (string, bool) {
	if meta, ok := payload["metadata"].(map[string]any); ok {
		if name, ok := stringField(meta, "document_name"); ok {
			if opts.IncludeSource {
				// source is optional; without it the bare name is used.
				if source, ok := stringField(meta, "source"); ok {
					return fmt.Sprintf("[%s] : %s", source, name), true
				}
			}
			return name, true
		}
	}

	if opts.FlatFields {
		for _, field := range flatFields {
			if value, ok := stringField(payload, field); ok {
				return value, true
			}
		}
	}

	return "", false
}

func stringField(m map[string]any, key string) (string, bool) {
	value, ok := m[key]
	if !ok || value == nil {
		return "", false
	}
	if s, ok := value.(string); ok {
		return s, true
	}
	return fmt.Sprint(value), true
}
