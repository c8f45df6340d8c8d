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

const collectionRegistrations = "registrations"

type RegistrationRepository struct {
	col *mongo.Collection
}

func NewRegistrationRepository(db *mongo.Database) *RegistrationRepository {
	return &RegistrationRepository{col: db.Collection(collectionRegistrations)}
}

var _ ports.RegistrationRepository = (*RegistrationRepository)(nil)

type registrationDoc struct {
	ID                primitive.ObjectID        `bson:"_id,omitempty"`
	Name              string                    `bson:"name"`
	Email             string                    `bson:"email"`
	University        string                    `bson:"university"`
	PreferredUsername string                    `bson:"preferred_username"`
	GitHubID          string                    `bson:"github_id,omitempty"`
	Status            domain.RegistrationStatus `bson:"status"`
	Comments          string                    `bson:"comments,omitempty"`
	ReviewedBy        string                    `bson:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time                `bson:"reviewed_at,omitempty"`
	CreatedAt         time.Time                 `bson:"created_at"`
}

func (d *registrationDoc) toDomain() *domain.Registration {
	return &domain.Registration{
		ID:                hexID(d.ID),
		Name:              d.Name,
		Email:             d.Email,
		University:        d.University,
		PreferredUsername: d.PreferredUsername,
		GitHubID:          d.GitHubID,
		Status:            d.Status,
		Comments:          d.Comments,
		ReviewedBy:        d.ReviewedBy,
		ReviewedAt:        d.ReviewedAt,
		CreatedAt:         d.CreatedAt,
	}
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *domain.Registration) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := registrationDoc{
		Name:              reg.Name,
		Email:             reg.Email,
		University:        reg.University,
		PreferredUsername: reg.PreferredUsername,
		GitHubID:          reg.GitHubID,
		Status:            reg.Status,
		CreatedAt:         reg.CreatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*domain.Registration, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRegistrationNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc registrationDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *RegistrationRepository) List(ctx context.Context, status domain.RegistrationStatus) ([]*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	var docs []registrationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	out := make([]*domain.Registration, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// Review applies the decision atomically; the status filter guarantees a
// registration is decided at most once.
func (r *RegistrationRepository) Review(ctx context.Context, id string, review ports.RegistrationReview) (*domain.Registration, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRegistrationNotFound
	}

	updateCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "status": domain.RegistrationPending}
	update := bson.M{"$set": bson.M{
		"status":      review.Status,
		"comments":    review.Comments,
		"reviewed_by": review.ReviewedBy,
		"reviewed_at": review.ReviewedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc registrationDoc
	err = r.col.FindOneAndUpdate(updateCtx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("review registration: %w", err)
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrRegistrationReviewed
}

// Reopen only matches a registration still in the from status, so a review
// recorded in between is left alone.
func (r *RegistrationRepository) Reopen(ctx context.Context, id string, from domain.RegistrationStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrRegistrationNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "status": from}
	update := bson.M{
		"$set":   bson.M{"status": domain.RegistrationPending},
		"$unset": bson.M{"comments": "", "reviewed_by": "", "reviewed_at": ""},
	}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("reopen registration: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRegistrationReviewed
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the registrations collection.
func (r *RegistrationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
