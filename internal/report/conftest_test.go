package report

import (
	"context"

	pb "github.com/qdrant/go-client/qdrant"

	"qlens/internal/qdrant"
)

// fakeStore serves canned collections and pre-paginated points so the
// aggregation and reporting logic can run without a Qdrant server.
type fakeStore struct {
	collections []string
	counts      map[string]uint64
	pages       map[string][][]*pb.RetrievedPoint

	listErr   error
	countErr  error
	scrollErr error

	scrollCalls int
}

func (f *fakeStore) ListCollections(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.collections, nil
}

func (f *fakeStore) CountPoints(ctx context.Context, collection string) (uint64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.counts[collection], nil
}

func (f *fakeStore) ScrollPage(ctx context.Context, collection string, limit uint32, offset *pb.PointId) ([]*pb.RetrievedPoint, *pb.PointId, error) {
	f.scrollCalls++
	if f.scrollErr != nil {
		return nil, nil, f.scrollErr
	}

	pages := f.pages[collection]
	idx := 0
	if offset != nil {
		idx = int(offset.GetNum())
	}
	if idx >= len(pages) {
		return nil, nil, nil
	}

	var next *pb.PointId
	if idx+1 < len(pages) {
		next = &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: uint64(idx + 1)}}
	}
	return pages[idx], next, nil
}

func point(payload map[string]any) *pb.RetrievedPoint {
	return &pb.RetrievedPoint{Payload: qdrant.MapToPayload(payload)}
}

func metaPoint(docName, source string) *pb.RetrievedPoint {
	meta := map[string]any{"document_name": docName}
	if source != "" {
		meta["source"] = source
	}
	return point(map[string]any{"metadata": meta})
}
