package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/josvita0323/devhost-2025-sub000/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email conflict")
)

type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, uid string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetTeamID(ctx context.Context, uid string, teamID string) error
}

type mongoUserRepository struct {
	col *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{col: db.Collection("users")}
}

// Upsert создает документ пользователя при первом входе или обновляет
// профильные поля. team_id и created_at при обновлении не трогаем.
func (r *mongoUserRepository) Upsert(ctx context.Context, user *models.User) error {
	update := bson.M{
		"$set": bson.M{
			"name":    user.Name,
			"email":   user.Email,
			"phone":   user.Phone,
			"college": user.College,
			"branch":  user.Branch,
			"year":    user.Year,
		},
		"$setOnInsert": bson.M{
			"created_at": time.Now().UTC(),
		},
	}

	_, err := r.col.UpdateByID(ctx, user.UID, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserEmailConflict
		}
		return err
	}
	return nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepository) SetTeamID(ctx context.Context, uid string, teamID string) error {
	var update bson.M
	if teamID == "" {
		update = bson.M{"$unset": bson.M{"team_id": ""}}
	} else {
		update = bson.M{"$set": bson.M{"team_id": teamID}}
	}

	result, err := r.col.UpdateByID(ctx, uid, update)
	if err != nil {
		return err
	}
	return checkMatchedCount(result, ErrUserNotFound)
}
