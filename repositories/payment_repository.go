package repositories

import (
	"context"
	"errors"

	"github.com/josvita0323/devhost-2025-sub000/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrPaymentIDConflict = errors.New("payment id conflict")
)

type PaymentRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	MarkOrderPaid(ctx context.Context, orderID string) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
}

type mongoPaymentRepository struct {
	orders   *mongo.Collection
	payments *mongo.Collection
}

func NewMongoPaymentRepository(db *mongo.Database) PaymentRepository {
	return &mongoPaymentRepository{
		orders:   db.Collection("orders"),
		payments: db.Collection("payments"),
	}
}

func (r *mongoPaymentRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	_, err := r.orders.InsertOne(ctx, order)
	return err
}

func (r *mongoPaymentRepository) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := r.orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *mongoPaymentRepository) MarkOrderPaid(ctx context.Context, orderID string) error {
	result, err := r.orders.UpdateOne(ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"status": models.OrderStatusPaid}})
	if err != nil {
		return err
	}
	return checkMatchedCount(result, ErrOrderNotFound)
}

func (r *mongoPaymentRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	_, err := r.payments.InsertOne(ctx, payment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrPaymentIDConflict
		}
		return err
	}
	return nil
}

func (r *mongoPaymentRepository) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.payments.FindOne(ctx, bson.M{"_id": paymentID}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}
