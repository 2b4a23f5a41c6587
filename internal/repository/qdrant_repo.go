package repository

import (
	"context"
	"crypto/tls"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/timmy/bookrec/internal/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	qdrantUpsertBatchSize = 256
	qdrantScrollPageSize  = 512

	payloadSnapshotSize = "snapshot_size"
	payloadMissing      = "missing"
)

// QdrantConnectionConfig holds configuration for Qdrant connection
type QdrantConnectionConfig struct {
	Host       string
	Port       int
	Collection string
	APIKey     string // Qdrant Cloud API Key (enables TLS automatically)
	UseTLS     bool   // Explicitly enable TLS without API Key
}

// apiKeyInterceptor creates a unary interceptor that adds API key to metadata
func apiKeyInterceptor(apiKey string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// QdrantCacheStore keeps the snapshot in a Qdrant collection, one point per
// catalog position. Books without a vector are stored as zero vectors flagged
// missing in the payload.
type QdrantCacheStore struct {
	conn           *grpc.ClientConn
	pointsClient   pb.PointsClient
	collectClient  pb.CollectionsClient
	collectionName string
}

// NewQdrantCacheStore creates a new QdrantCacheStore.
// Supports both local Qdrant (insecure) and Qdrant Cloud (TLS + API Key)
func NewQdrantCacheStore(cfg *QdrantConnectionConfig) (*QdrantCacheStore, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var opts []grpc.DialOption

	if cfg.UseTLS || cfg.APIKey != "" {
		creds := credentials.NewTLS(&tls.Config{
			MinVersion: tls.VersionTLS13,
		})
		opts = append(opts, grpc.WithTransportCredentials(creds))

		if cfg.APIKey != "" {
			opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
		}
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	return &QdrantCacheStore{
		conn:           conn,
		pointsClient:   pb.NewPointsClient(conn),
		collectClient:  pb.NewCollectionsClient(conn),
		collectionName: cfg.Collection,
	}, nil
}

// Close closes the gRPC connection
func (r *QdrantCacheStore) Close() error {
	return r.conn.Close()
}

// Name implements CacheStore.
func (r *QdrantCacheStore) Name() string {
	return "qdrant"
}

// Load scrolls the whole collection. Every point must agree on the snapshot
// size and the ids must cover 0..size-1, otherwise the snapshot is rejected.
func (r *QdrantCacheStore) Load(ctx context.Context) ([]domain.Vector, error) {
	if _, err := r.collectClient.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collectionName,
	}); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrCacheNotFound
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	var (
		vectors []domain.Vector
		seen    []bool
		found   int
		offset  *pb.PointId
		limit   = uint32(qdrantScrollPageSize)
	)

	for {
		resp, err := r.pointsClient.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: r.collectionName,
			Offset:         offset,
			Limit:          &limit,
			WithPayload: &pb.WithPayloadSelector{
				SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
			},
			WithVectors: &pb.WithVectorsSelector{
				SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scroll collection: %w", err)
		}

		for _, point := range resp.GetResult() {
			payload := point.GetPayload()
			size := int(payload[payloadSnapshotSize].GetIntegerValue())
			if vectors == nil {
				vectors = make([]domain.Vector, size)
				seen = make([]bool, size)
			}
			pos := int(point.GetId().GetNum())
			if size != len(vectors) || pos >= len(vectors) || seen[pos] {
				return nil, fmt.Errorf("inconsistent embedding cache at point %d", pos)
			}
			seen[pos] = true
			found++

			if payload[payloadMissing].GetBoolValue() {
				continue
			}
			data := point.GetVectors().GetVector().GetData()
			vec := make(domain.Vector, len(data))
			copy(vec, data)
			vectors[pos] = vec
		}

		offset = resp.GetNextPageOffset()
		if offset == nil {
			break
		}
	}

	if vectors == nil {
		return nil, ErrCacheNotFound
	}
	if found != len(vectors) {
		return nil, fmt.Errorf("embedding cache incomplete: %d of %d points", found, len(vectors))
	}
	return vectors, nil
}

// Save drops and recreates the collection with the dimension of the first
// non-nil vector, then upserts every position.
func (r *QdrantCacheStore) Save(ctx context.Context, vectors []domain.Vector) error {
	dimension := 1
	for _, vec := range vectors {
		if len(vec) > 0 {
			dimension = len(vec)
			break
		}
	}

	if _, err := r.collectClient.Delete(ctx, &pb.DeleteCollection{
		CollectionName: r.collectionName,
	}); err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to drop collection: %w", err)
	}

	// Dot distance stores vectors as given; Cosine would normalise them.
	if _, err := r.collectClient.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collectionName,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dimension),
					Distance: pb.Distance_Dot,
				},
			},
		},
	}); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	wait := true
	for start := 0; start < len(vectors); start += qdrantUpsertBatchSize {
		end := start + qdrantUpsertBatchSize
		if end > len(vectors) {
			end = len(vectors)
		}

		points := make([]*pb.PointStruct, 0, end-start)
		for pos := start; pos < end; pos++ {
			points = append(points, cachePoint(pos, len(vectors), dimension, vectors[pos]))
		}

		if _, err := r.pointsClient.Upsert(ctx, &pb.UpsertPoints{
			CollectionName: r.collectionName,
			Wait:           &wait,
			Points:         points,
		}); err != nil {
			return fmt.Errorf("failed to upsert points %d-%d: %w", start, end-1, err)
		}
	}

	return nil
}

func cachePoint(pos, size, dimension int, vec domain.Vector) *pb.PointStruct {
	missing := len(vec) == 0
	data := []float32(vec)
	if missing {
		data = make([]float32, dimension)
	}

	return &pb.PointStruct{
		Id: &pb.PointId{
			PointIdOptions: &pb.PointId_Num{Num: uint64(pos)},
		},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: data},
			},
		},
		Payload: map[string]*pb.Value{
			payloadSnapshotSize: {Kind: &pb.Value_IntegerValue{IntegerValue: int64(size)}},
			payloadMissing:      {Kind: &pb.Value_BoolValue{BoolValue: missing}},
		},
	}
}
