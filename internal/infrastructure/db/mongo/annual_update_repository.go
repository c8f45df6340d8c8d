package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/core/ports"
)

const collectionAnnualUpdates = "annual_update_requests"

type AnnualUpdateRepository struct {
	col *mongo.Collection
}

func NewAnnualUpdateRepository(db *mongo.Database) *AnnualUpdateRepository {
	return &AnnualUpdateRepository{col: db.Collection(collectionAnnualUpdates)}
}

var _ ports.AnnualUpdateRepository = (*AnnualUpdateRepository)(nil)

type annualUpdateDoc struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Year   int                `bson:"year"`
	SentAt time.Time          `bson:"sent_at"`
}

func (d *annualUpdateDoc) toDomain() *domain.AnnualUpdateRequest {
	return &domain.AnnualUpdateRequest{ID: hexID(d.ID), Year: d.Year, SentAt: d.SentAt}
}

// Create relies on the unique year index to reject a second request.
func (r *AnnualUpdateRepository) Create(ctx context.Context, req *domain.AnnualUpdateRequest) (*domain.AnnualUpdateRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := annualUpdateDoc{Year: req.Year, SentAt: req.SentAt}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAnnualUpdateExists
		}
		return nil, fmt.Errorf("insert annual update request: %w", err)
	}
	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *AnnualUpdateRepository) FindByYear(ctx context.Context, year int) (*domain.AnnualUpdateRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc annualUpdateDoc
	if err := r.col.FindOne(ctx, bson.M{"year": year}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAnnualUpdateNotFound
		}
		return nil, fmt.Errorf("find annual update request: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AnnualUpdateRepository) ListByYear(ctx context.Context, year int) ([]*domain.AnnualUpdateRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"year": year}, options.Find().SetSort(bson.D{{Key: "sent_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list annual update requests: %w", err)
	}
	var docs []annualUpdateDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list annual update requests: %w", err)
	}

	out := make([]*domain.AnnualUpdateRequest, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the annual_update_requests collection.
func (r *AnnualUpdateRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "year", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
