package qdrant

import (
	"context"
	"errors"
	"fmt"
	"net"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"qlens/internal/config"
)

const (
	defaultHost = "localhost"
	defaultPort = 6334
)

// ConnectError reports that both the configured URL and its
// scheme-toggled alternate failed verification.
type ConnectError struct {
	Primary  error
	Fallback error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to qdrant server, check your URL and API key. original error: %v; toggled-scheme error: %v", e.Primary, e.Fallback)
}

// Client wraps the Qdrant gRPC clients with the per-call timeout the
// reporting commands expect. All operations are read-only.
type Client struct {
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
	grpcConn    *grpc.ClientConn
	timeout     time.Duration
}

// Connect builds a client for cfg.URL and verifies it with a
// collections round-trip. If that fails, it derives exactly one
// alternate endpoint by toggling the transport scheme (https <-> http)
// and tries again. Both failures together surface as a *ConnectError.
func Connect(ctx context.Context, cfg config.Config, log *zap.Logger) (*Client, error) {
	ep, err := parseEndpoint(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant url %q: %w", cfg.URL, err)
	}

	client, primaryErr := dial(ctx, ep, cfg)
	if primaryErr == nil {
		return client, nil
	}
	log.Warn("failed to connect using configured url",
		zap.String("url", ep.String()),
		zap.Error(primaryErr))

	alt := ep.toggled()
	log.Info("attempting connection with toggled scheme", zap.String("url", alt.String()))
	client, fallbackErr := dial(ctx, alt, cfg)
	if fallbackErr == nil {
		return client, nil
	}

	return nil, &ConnectError{Primary: primaryErr, Fallback: fallbackErr}
}

func dial(ctx context.Context, ep endpoint, cfg config.Config) (*Client, error) {
	grpcClient, err := qdrant.NewGrpcClient(&qdrant.Config{
		Host:   ep.host,
		Port:   ep.port,
		APIKey: cfg.APIKey,
		UseTLS: ep.useTLS,
	})
	if err != nil {
		return nil, err
	}

	client := &Client{
		points:      grpcClient.Points(),
		collections: grpcClient.Collections(),
		grpcConn:    grpcClient.Conn(),
		timeout:     cfg.Timeout,
	}

	// The gRPC connection is lazy; a metadata round-trip proves the
	// endpoint and credentials actually work.
	if _, err := client.ListCollections(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// endpoint is a resolved Qdrant gRPC address. The URL scheme only
// decides whether the transport uses TLS.
type endpoint struct {
	host   string
	port   int
	useTLS bool
}

func (e endpoint) String() string {
	scheme := "http"
	if e.useTLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, e.host, e.port)
}

// toggled returns the single alternate endpoint used for the
// connection retry: same host and port, opposite scheme.
func (e endpoint) toggled() endpoint {
	e.useTLS = !e.useTLS
	return e
}

func parseEndpoint(raw string) (endpoint, error) {
	ep := endpoint{host: defaultHost, port: defaultPort}

	addr := strings.TrimSpace(raw)
	if addr == "" {
		return ep, nil
	}

	if strings.Contains(addr, "://") {
		parsed, err := neturl.Parse(addr)
		if err != nil {
			return endpoint{}, err
		}
		ep.useTLS = parsed.Scheme == "https"
		if parsed.Host == "" {
			return ep, nil
		}
		addr = parsed.Host
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		var addrErr *net.AddrError
		if errors.As(err, &addrErr) && strings.Contains(addrErr.Err, "missing port") {
			ep.host = addr
			return ep, nil
		}
		return endpoint{}, err
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return endpoint{}, err
	}
	if host != "" {
		ep.host = host
	}
	ep.port = port

	return ep, nil
}

func (c *Client) Close() error {
	return c.grpcConn.Close()
}

func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// ListCollections returns the names of all collections on the server,
// in the order the server reports them.
func (c *Client) ListCollections(ctx context.Context) ([]string, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	resp, err := c.collections.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	names := make([]string, 0, len(resp.GetCollections()))
	for _, col := range resp.GetCollections() {
		names = append(names, col.GetName())
	}
	return names, nil
}

// CountPoints returns the server-reported point count for a collection.
func (c *Client) CountPoints(ctx context.Context, collection string) (uint64, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	info, err := c.collections.Get(ctx, &qdrant.GetCollectionInfoRequest{
		CollectionName: collection,
	})
	if err != nil {
		return 0, fmt.Errorf("get collection %s: %w", collection, err)
	}
	return info.GetResult().GetPointsCount(), nil
}

// ScrollPage fetches one page of points with payloads (vectors are
// never needed for reporting) and returns the continuation cursor for
// the next page, or nil when the scan is complete.
func (c *Client) ScrollPage(ctx context.Context, collection string, limit uint32, offset *qdrant.PointId) ([]*qdrant.RetrievedPoint, *qdrant.PointId, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	resp, err := c.points.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: collection,
		Limit:          &limit,
		Offset:         offset,
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
		WithVectors:    &qdrant.WithVectorsSelector{SelectorOptions: &qdrant.WithVectorsSelector_Enable{Enable: false}},
	})
	if err != nil {
		return nil, nil, err
	}
	return resp.Result, resp.NextPageOffset, nil
}
