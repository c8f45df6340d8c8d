package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/core/ports"
)

const (
	collectionSyncRuns = "sync_runs"
	syncRunRetention   = 90 * 24 * time.Hour
)

// SyncRunRepository stores reconciliation audit records keyed by run id.
type SyncRunRepository struct {
	col *mongo.Collection
}

func NewSyncRunRepository(db *mongo.Database) *SyncRunRepository {
	return &SyncRunRepository{col: db.Collection(collectionSyncRuns)}
}

var _ ports.SyncRunRepository = (*SyncRunRepository)(nil)

type syncRunDoc struct {
	ID          string    `bson:"_id"`
	Directory   string    `bson:"directory"`
	Added       []string  `bson:"added"`
	Removed     []string  `bson:"removed"`
	FetchFailed bool      `bson:"fetch_failed"`
	Error       string    `bson:"error,omitempty"`
	StartedAt   time.Time `bson:"started_at"`
	FinishedAt  time.Time `bson:"finished_at"`
}

func (r *SyncRunRepository) Insert(ctx context.Context, run *domain.SyncRun) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, syncRunDoc(*run))
	if err != nil {
		return fmt.Errorf("insert sync run: %w", err)
	}
	return nil
}

// ListRecent returns the newest runs first. An empty directory matches all.
func (r *SyncRunRepository) ListRecent(ctx context.Context, directory string, limit int) ([]*domain.SyncRun, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if directory != "" {
		filter["directory"] = directory
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	var docs []syncRunDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}

	out := make([]*domain.SyncRun, 0, len(docs))
	for _, d := range docs {
		run := domain.SyncRun(d)
		out = append(out, &run)
	}
	return out, nil
}

// EnsureIndexes creates the lookup index and a TTL index expiring old runs.
func (r *SyncRunRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "directory", Value: 1}, {Key: "started_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "finished_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(syncRunRetention.Seconds())),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
