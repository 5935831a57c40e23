package repository

import (
	"context"
	"log"
	"time"

	"feedback-backend/internal/database"
	"feedback-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type FeedbackRepo struct {
	collection *mongo.Collection
}

func NewFeedbackRepo() *FeedbackRepo {
	return &FeedbackRepo{
		collection: database.GetCollection("feedbacks"),
	}
}

// Create inserts the record with a server-assigned creation timestamp. This
// insert is what triggers notification, so callers must only invoke it after
// every attachment blob has been durably written.
func (r *FeedbackRepo) Create(ctx context.Context, feedback *models.Feedback) error {
	feedback.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, feedback)
	if err != nil {
		return err
	}
	feedback.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *FeedbackRepo) FindByFeedbackID(ctx context.Context, feedbackID string) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.collection.FindOne(ctx, bson.M{"feedback_id": feedbackID}).Decode(&feedback)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &feedback, nil
}

// Watch opens a change stream over record inserts and delivers each new
// record on the returned channel. The channel is closed when ctx is canceled
// or the stream fails; delivery is at-least-once from the consumer's point
// of view, since the server may resume a cursor past events it already sent.
func (r *FeedbackRepo) Watch(ctx context.Context) (<-chan models.Feedback, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "operationType", Value: "insert"}}}},
	}
	stream, err := r.collection.Watch(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	ch := make(chan models.Feedback)
	go func() {
		defer close(ch)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var event struct {
				FullDocument models.Feedback `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				log.Printf("Error decoding feedback change event: %v", err)
				continue
			}
			select {
			case ch <- event.FullDocument:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.Printf("Feedback change stream closed: %v", err)
		}
	}()
	return ch, nil
}

// EnsureIndexes creates necessary indexes for the feedbacks collection
func (r *FeedbackRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "feedback_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
