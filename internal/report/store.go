package report

import (
	"context"

	pb "github.com/qdrant/go-client/qdrant"
)

// Store is the narrow slice of the Qdrant client the reporting
// commands rely on: enumerate collections, read a point count, and
// page through payloads with an opaque continuation cursor. A fake
// implementation backs the tests.
type Store interface {
	ListCollections(ctx context.Context) ([]string, error)
	CountPoints(ctx context.Context, collection string) (uint64, error)
	ScrollPage(ctx context.Context, collection string, limit uint32, offset *pb.PointId) ([]*pb.RetrievedPoint, *pb.PointId, error)
}
