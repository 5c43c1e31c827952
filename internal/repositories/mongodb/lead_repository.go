package mongodb

import (
	"context"
	"fmt"
	"time"

	"voyago/internal/models"
	"voyago/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type leadRepository struct {
	collection *mongo.Collection
}

func NewLeadRepository(db *mongo.Database) interfaces.LeadRepository {
	return &leadRepository{collection: db.Collection("leads")}
}

func (r *leadRepository) Create(ctx context.Context, lead *models.Lead) error {
	if lead.ID.IsZero() {
		lead.ID = primitive.NewObjectID()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, lead); err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}
