package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/core/ports"
)

const collectionTeams = "teams"

type TeamRepository struct {
	col *mongo.Collection
}

func NewTeamRepository(db *mongo.Database) *TeamRepository {
	return &TeamRepository{col: db.Collection(collectionTeams)}
}

var _ ports.TeamRepository = (*TeamRepository)(nil)

type teamMemberDoc struct {
	Name       string `bson:"name"`
	Username   string `bson:"username"`
	University string `bson:"university"`
	Role       string `bson:"role"`
}

type teamDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Members     []teamMemberDoc    `bson:"members"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d *teamDoc) toDomain() *domain.Team {
	members := make([]domain.TeamMember, 0, len(d.Members))
	for _, m := range d.Members {
		members = append(members, domain.TeamMember(m))
	}
	return &domain.Team{
		ID:          hexID(d.ID),
		Name:        d.Name,
		Description: d.Description,
		Members:     members,
		CreatedAt:   d.CreatedAt,
	}
}

func (r *TeamRepository) List(ctx context.Context) ([]*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	var docs []teamDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	out := make([]*domain.Team, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *TeamRepository) Create(ctx context.Context, team *domain.Team) (*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := teamDoc{
		Name:        team.Name,
		Description: team.Description,
		Members:     make([]teamMemberDoc, 0, len(team.Members)),
		CreatedAt:   team.CreatedAt,
	}
	for _, m := range team.Members {
		doc.Members = append(doc.Members, teamMemberDoc(m))
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrTeamExists
		}
		return nil, fmt.Errorf("insert team: %w", err)
	}
	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// EnsureIndexes creates necessary indexes on the teams collection.
func (r *TeamRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
