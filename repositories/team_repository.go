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
	ErrTeamNotFound = errors.New("team not found")
	ErrTeamConflict = errors.New("team already exists")

	// ErrTeamUpdateConflict означает, что условный апдейт не прошел:
	// документ изменился между чтением и записью (гонка) либо правило
	// в фильтре больше не выполняется. Сервис перечитывает документ и
	// возвращает точную бизнес-ошибку.
	ErrTeamUpdateConflict = errors.New("team update conflict")

	ErrTeamMemberNotFound = errors.New("team member not found")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, eventID, teamID string) (*models.Team, error)
	GetByLeaderEmail(ctx context.Context, eventID, email string) (*models.Team, error)
	GetByMemberUID(ctx context.Context, eventID, uid string) (*models.Team, error)
	GetByMemberEmail(ctx context.Context, eventID, email string) (*models.Team, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.Team, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)

	AddMember(ctx context.Context, eventID, teamID string, member models.TeamMember, maxSize int) error
	RemoveMemberByUID(ctx context.Context, eventID, teamID, uid string) error
	SetDriveLink(ctx context.Context, eventID, teamID, link string) error
	SetFinalized(ctx context.Context, eventID, teamID string, minSize, maxSize int, requireDriveLink bool) error
	SetPaid(ctx context.Context, eventID, teamID string) error
	Delete(ctx context.Context, eventID, teamID string) error
}

type mongoTeamRepository struct {
	col *mongo.Collection
}

func NewMongoTeamRepository(db *mongo.Database) TeamRepository {
	return &mongoTeamRepository{col: db.Collection("teams")}
}

func (r *mongoTeamRepository) Create(ctx context.Context, team *models.Team) error {
	_, err := r.col.InsertOne(ctx, team)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrTeamConflict
		}
		return err
	}
	return nil
}

func (r *mongoTeamRepository) findOne(ctx context.Context, filter bson.M) (*models.Team, error) {
	var team models.Team
	err := r.col.FindOne(ctx, filter).Decode(&team)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (r *mongoTeamRepository) GetByID(ctx context.Context, eventID, teamID string) (*models.Team, error) {
	return r.findOne(ctx, bson.M{"_id": teamID, "event_id": eventID})
}

func (r *mongoTeamRepository) GetByLeaderEmail(ctx context.Context, eventID, email string) (*models.Team, error) {
	return r.findOne(ctx, bson.M{"event_id": eventID, "leader_email": email})
}

func (r *mongoTeamRepository) GetByMemberUID(ctx context.Context, eventID, uid string) (*models.Team, error) {
	return r.findOne(ctx, bson.M{"event_id": eventID, "members.uid": uid})
}

func (r *mongoTeamRepository) GetByMemberEmail(ctx context.Context, eventID, email string) (*models.Team, error) {
	return r.findOne(ctx, bson.M{"event_id": eventID, "members.email": email})
}

func (r *mongoTeamRepository) ListByEvent(ctx context.Context, eventID string) ([]models.Team, error) {
	cursor, err := r.col.Find(ctx, bson.M{"event_id": eventID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	teams := make([]models.Team, 0)
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *mongoTeamRepository) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"event_id": eventID})
}

// AddMember добавляет участника одним условным апдейтом: команда не
// заблокирована, участника там еще нет, размер строго меньше maxSize.
// Фильтр повторяет бизнес-правило, поэтому параллельные join не могут
// превысить лимит или воскресить заблокированную команду.
func (r *mongoTeamRepository) AddMember(ctx context.Context, eventID, teamID string, member models.TeamMember, maxSize int) error {
	filter := bson.M{
		"_id":         teamID,
		"event_id":    eventID,
		"finalized":   false,
		"members.uid": bson.M{"$ne": member.UID},
		"$expr":       bson.M{"$lt": bson.A{bson.M{"$size": "$members"}, maxSize}},
	}
	update := bson.M{"$push": bson.M{"members": member}}

	result, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	return checkMatchedCount(result, ErrTeamUpdateConflict)
}

// RemoveMemberByUID удаляет участника по uid ($pull). Составной кортеж
// {id, name} не используется намеренно: устаревшее имя на клиенте не
// должно превращать удаление в no-op.
func (r *mongoTeamRepository) RemoveMemberByUID(ctx context.Context, eventID, teamID, uid string) error {
	filter := bson.M{
		"_id":       teamID,
		"event_id":  eventID,
		"finalized": false,
	}
	update := bson.M{"$pull": bson.M{"members": bson.M{"uid": uid}}}

	result, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrTeamUpdateConflict
	}
	if result.ModifiedCount == 0 {
		return ErrTeamMemberNotFound
	}
	return nil
}

func (r *mongoTeamRepository) SetDriveLink(ctx context.Context, eventID, teamID, link string) error {
	filter := bson.M{"_id": teamID, "event_id": eventID, "finalized": false}
	update := bson.M{"$set": bson.M{"drive_link": link}}

	result, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	return checkMatchedCount(result, ErrTeamUpdateConflict)
}

// SetFinalized проставляет флаг только если все условия финализации
// выполняются на момент записи.
func (r *mongoTeamRepository) SetFinalized(ctx context.Context, eventID, teamID string, minSize, maxSize int, requireDriveLink bool) error {
	filter := bson.M{
		"_id":       teamID,
		"event_id":  eventID,
		"finalized": false,
		"$expr": bson.M{"$and": bson.A{
			bson.M{"$gte": bson.A{bson.M{"$size": "$members"}, minSize}},
			bson.M{"$lte": bson.A{bson.M{"$size": "$members"}, maxSize}},
		}},
	}
	if requireDriveLink {
		filter["drive_link"] = bson.M{"$nin": bson.A{nil, ""}}
	}
	update := bson.M{"$set": bson.M{"finalized": true}}

	result, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	return checkMatchedCount(result, ErrTeamUpdateConflict)
}

func (r *mongoTeamRepository) SetPaid(ctx context.Context, eventID, teamID string) error {
	filter := bson.M{"_id": teamID, "event_id": eventID}
	update := bson.M{"$set": bson.M{"payment_done": true, "finalized": true}}

	result, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	return checkMatchedCount(result, ErrTeamNotFound)
}

func (r *mongoTeamRepository) Delete(ctx context.Context, eventID, teamID string) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": teamID, "event_id": eventID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrTeamNotFound
	}
	return nil
}
