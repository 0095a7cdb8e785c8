package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"livequiz/internal/model"
)

// RoundRepo archives revealed rounds in MongoDB
type RoundRepo interface {
	SaveRound(ctx context.Context, round *model.RoundRecord) error
	ListRounds(ctx context.Context, gameID string) ([]*model.RoundRecord, error)
	GetRound(ctx context.Context, gameID string, questionNumber int) (*model.RoundRecord, error)
}

type roundRepo struct {
	collection *mongo.Collection
}

// NewRoundRepo creates a new round repository
func NewRoundRepo(db *mongo.Database) RoundRepo {
	return &roundRepo{
		collection: db.Collection("rounds"),
	}
}

// RoundID is the archive key of a round
func RoundID(gameID string, questionNumber int) string {
	return fmt.Sprintf("%s:%d", gameID, questionNumber)
}

// SaveRound upserts the round so a retried write stays idempotent
func (r *roundRepo) SaveRound(ctx context.Context, round *model.RoundRecord) error {
	round.ID = RoundID(round.GameID, round.QuestionNumber)
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": round.ID}, round, opts)
	if err != nil {
		return fmt.Errorf("failed to save round %s: %w", round.ID, err)
	}
	return nil
}

// ListRounds returns archived rounds in reveal order. An empty gameID lists every game.
func (r *roundRepo) ListRounds(ctx context.Context, gameID string) ([]*model.RoundRecord, error) {
	filter := bson.M{}
	if gameID != "" {
		filter["gameId"] = gameID
	}
	opts := options.Find().SetSort(bson.D{{Key: "revealedAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer cursor.Close(ctx)

	rounds := []*model.RoundRecord{}
	if err := cursor.All(ctx, &rounds); err != nil {
		return nil, fmt.Errorf("failed to decode rounds: %w", err)
	}
	return rounds, nil
}

func (r *roundRepo) GetRound(ctx context.Context, gameID string, questionNumber int) (*model.RoundRecord, error) {
	var round model.RoundRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": RoundID(gameID, questionNumber)}).Decode(&round)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &round, nil
}
