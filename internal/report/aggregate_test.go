package report

import (
	"context"
	"errors"
	"reflect"
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
)

var richScan = ScanOptions{BatchSize: 100, IncludeSource: true, FlatFields: true}

func TestScanDeduplicatesAcrossPages(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		pages: map[string][][]*pb.RetrievedPoint{
			"alice-notes": {
				{metaPoint("a.txt", "s3"), metaPoint("b.txt", "s3")},
				{metaPoint("a.txt", "s3")},
			},
		},
	}

	agg, err := Scan(context.Background(), store, "alice-notes", richScan)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	want := []string{"[s3] : a.txt", "[s3] : b.txt"}
	if got := agg.SortedDocuments(); !reflect.DeepEqual(got, want) {
		t.Fatalf("SortedDocuments=%v, want %v", got, want)
	}
	if agg.LastPageSize != 1 {
		t.Fatalf("LastPageSize=%d, want 1", agg.LastPageSize)
	}
	if store.scrollCalls != 2 {
		t.Fatalf("scrollCalls=%d, want 2", store.scrollCalls)
	}
}

func TestScanEmptyCollection(t *testing.T) {
	t.Parallel()

	store := &fakeStore{pages: map[string][][]*pb.RetrievedPoint{}}

	agg, err := Scan(context.Background(), store, "empty", richScan)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(agg.Documents) != 0 {
		t.Fatalf("Documents len=%d, want 0", len(agg.Documents))
	}
	if agg.LastPageSize != 0 {
		t.Fatalf("LastPageSize=%d, want 0", agg.LastPageSize)
	}
}

func TestScanMissingSourceFallsBackToBareName(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		pages: map[string][][]*pb.RetrievedPoint{
			"c": {{metaPoint("orphan.txt", "")}},
		},
	}

	agg, err := Scan(context.Background(), store, "c", richScan)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if _, ok := agg.Documents["orphan.txt"]; !ok {
		t.Fatalf("Documents=%v, want bare name orphan.txt", agg.SortedDocuments())
	}
}

func TestScanWithoutSourcePrefix(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		pages: map[string][][]*pb.RetrievedPoint{
			"c": {{metaPoint("a.txt", "s3")}},
		},
	}

	agg, err := Scan(context.Background(), store, "c", ScanOptions{BatchSize: 100})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if _, ok := agg.Documents["a.txt"]; !ok {
		t.Fatalf("Documents=%v, want a.txt without source prefix", agg.SortedDocuments())
	}
}

func TestScanFlatFieldPriority(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		pages: map[string][][]*pb.RetrievedPoint{
			"c": {{
				point(map[string]any{"title": "low", "filename": "high.pdf"}),
				point(map[string]any{"source": "only-source"}),
				point(map[string]any{"unrelated": "x"}),
				point(map[string]any{}),
			}},
		},
	}

	agg, err := Scan(context.Background(), store, "c", richScan)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	want := []string{"high.pdf", "only-source"}
	if got := agg.SortedDocuments(); !reflect.DeepEqual(got, want) {
		t.Fatalf("SortedDocuments=%v, want %v", got, want)
	}
}

func TestScanFlatFallbackDisabled(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		pages: map[string][][]*pb.RetrievedPoint{
			"c": {{point(map[string]any{"filename": "x.pdf"})}},
		},
	}

	agg, err := Scan(context.Background(), store, "c", ScanOptions{BatchSize: 100})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(agg.Documents) != 0 {
		t.Fatalf("Documents=%v, want empty set with flat fallback off", agg.SortedDocuments())
	}
}

func TestScanPropagatesErrors(t *testing.T) {
	t.Parallel()

	scrollErr := errors.New("page fetch failed")
	store := &fakeStore{scrollErr: scrollErr}

	if _, err := Scan(context.Background(), store, "c", richScan); !errors.Is(err, scrollErr) {
		t.Fatalf("Scan error=%v, want wrapped %v", err, scrollErr)
	}
}
