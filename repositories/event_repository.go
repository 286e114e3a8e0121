package repositories

import (
	"context"
	"errors"

	"github.com/josvita0323/devhost-2025-sub000/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrEventIDConflict = errors.New("event id conflict")
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
	SetPosterKey(ctx context.Context, id string, key *string) error
}

type mongoEventRepository struct {
	col *mongo.Collection
}

func NewMongoEventRepository(db *mongo.Database) EventRepository {
	return &mongoEventRepository{col: db.Collection("events")}
}

func (r *mongoEventRepository) Create(ctx context.Context, event *models.Event) error {
	_, err := r.col.InsertOne(ctx, event)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEventIDConflict
		}
		return err
	}
	return nil
}

func (r *mongoEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *mongoEventRepository) List(ctx context.Context) ([]models.Event, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := make([]models.Event, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *mongoEventRepository) Update(ctx context.Context, event *models.Event) error {
	update := bson.M{"$set": bson.M{
		"title":               event.Title,
		"description":         event.Description,
		"min_team_size":       event.MinTeamSize,
		"max_team_size":       event.MaxTeamSize,
		"requires_drive_link": event.RequiresDriveLink,
		"requires_payment":    event.RequiresPayment,
		"fee":                 event.Fee,
	}}

	result, err := r.col.UpdateByID(ctx, event.ID, update)
	if err != nil {
		return err
	}
	return checkMatchedCount(result, ErrEventNotFound)
}

func (r *mongoEventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *mongoEventRepository) SetPosterKey(ctx context.Context, id string, key *string) error {
	var update bson.M
	if key == nil {
		update = bson.M{"$unset": bson.M{"poster_key": ""}}
	} else {
		update = bson.M{"$set": bson.M{"poster_key": *key}}
	}

	result, err := r.col.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	return checkMatchedCount(result, ErrEventNotFound)
}
