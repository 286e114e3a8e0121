package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/josvita0323/devhost-2025-sub000/live"
	"github.com/josvita0323/devhost-2025-sub000/models"
	"github.com/josvita0323/devhost-2025-sub000/repositories"
	"go.uber.org/zap"
)

type CreateOrderInput struct {
	EventID string `json:"event_id"`
	TeamID  string `json:"team_id"`
}

type CreateOrderOutput struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

type VerifyPaymentInput struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

type PaymentService interface {
	CreateOrder(ctx context.Context, caller models.Identity, input CreateOrderInput) (*CreateOrderOutput, error)
	VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*models.Payment, error)
}

type paymentService struct {
	paymentRepo repositories.PaymentRepository
	teamRepo    repositories.TeamRepository
	eventRepo   repositories.EventRepository
	txn         repositories.TxnRunner
	gateway     PaymentGateway
	mailer      Mailer
	feed        RegistrationFeed
	logger      *zap.Logger
	keyID       string
	keySecret   []byte
}

func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	teamRepo repositories.TeamRepository,
	eventRepo repositories.EventRepository,
	txn repositories.TxnRunner,
	gateway PaymentGateway,
	mailer Mailer,
	feed RegistrationFeed,
	logger *zap.Logger,
	keyID string,
	keySecret string,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		teamRepo:    teamRepo,
		eventRepo:   eventRepo,
		txn:         txn,
		gateway:     gateway,
		mailer:      mailer,
		feed:        feed,
		logger:      logger,
		keyID:       keyID,
		keySecret:   []byte(keySecret),
	}
}

func (s *paymentService) CreateOrder(ctx context.Context, caller models.Identity, input CreateOrderInput) (*CreateOrderOutput, error) {
	event, err := s.eventRepo.GetByID(ctx, input.EventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %s: %w", input.EventID, err)
	}
	if !event.RequiresPayment || event.Fee <= 0 {
		return nil, ErrPaymentNotRequired
	}

	team, err := s.teamRepo.GetByID(ctx, input.EventID, input.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", input.TeamID, err)
	}
	if team.LeaderUID != caller.UID {
		return nil, ErrLeaderActionForbidden
	}
	if team.PaymentDone {
		return nil, ErrTeamAlreadyPaid
	}

	receipt := uuid.NewString()
	orderID, err := s.gateway.CreateOrder(event.Fee, "INR", receipt, map[string]interface{}{
		"event_id": event.ID,
		"team_id":  team.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	order := &models.Order{
		ID:        orderID,
		Receipt:   receipt,
		EventID:   event.ID,
		TeamID:    team.ID,
		Amount:    event.Fee,
		Currency:  "INR",
		Status:    models.OrderStatusCreated,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.paymentRepo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to store order %s: %w", orderID, err)
	}

	s.logger.Info("payment order created",
		zap.String("order_id", orderID),
		zap.String("team_id", team.ID),
		zap.Int64("amount", event.Fee))

	return &CreateOrderOutput{
		OrderID:  orderID,
		Amount:   event.Fee,
		Currency: "INR",
		KeyID:    s.keyID,
	}, nil
}

// VerifyPayment пересчитывает HMAC-SHA256 от "orderId|paymentId" на
// серверном секрете и при совпадении атомарно фиксирует платеж, заказ и
// команду. Повторная верификация того же payment id идемпотентна.
func (s *paymentService) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*models.Payment, error) {
	if !s.signatureValid(input.OrderID, input.PaymentID, input.Signature) {
		return nil, ErrPaymentSignatureInvalid
	}

	// Уже записанный платеж: отвечаем успехом, ничего не переписывая.
	if existing, err := s.paymentRepo.GetPayment(ctx, input.PaymentID); err == nil {
		return existing, nil
	} else if !errors.Is(err, repositories.ErrPaymentNotFound) {
		return nil, fmt.Errorf("failed to look up payment %s: %w", input.PaymentID, err)
	}

	order, err := s.paymentRepo.GetOrder(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order %s: %w", input.OrderID, err)
	}

	payment := &models.Payment{
		ID:         input.PaymentID,
		OrderID:    order.ID,
		EventID:    order.EventID,
		TeamID:     order.TeamID,
		Amount:     order.Amount,
		VerifiedAt: time.Now().UTC(),
	}

	err = s.txn.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.paymentRepo.CreatePayment(txCtx, payment); err != nil {
			return err
		}
		if err := s.paymentRepo.MarkOrderPaid(txCtx, order.ID); err != nil {
			return err
		}
		return s.teamRepo.SetPaid(txCtx, order.EventID, order.TeamID)
	})
	if err != nil {
		// Гонка двух верификаций: победившая уже записала платеж.
		if errors.Is(err, repositories.ErrPaymentIDConflict) {
			if existing, getErr := s.paymentRepo.GetPayment(ctx, input.PaymentID); getErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to record payment %s: %w", input.PaymentID, err)
	}

	s.logger.Info("payment verified",
		zap.String("payment_id", payment.ID),
		zap.String("order_id", order.ID),
		zap.String("team_id", order.TeamID))

	team, err := s.teamRepo.GetByID(ctx, order.EventID, order.TeamID)
	if err == nil {
		if s.feed != nil {
			s.feed.BroadcastToRoom(feedRoom(order.EventID), live.FeedMessage{
				Type:    feedTeamPaid,
				Payload: team,
				EventID: order.EventID,
			})
		}
		if s.mailer != nil {
			if mailErr := s.mailer.SendRegistrationConfirmed(team.LeaderEmail, team.Name, order.EventID); mailErr != nil {
				s.logger.Warn("failed to send confirmation email",
					zap.String("team_id", team.ID), zap.Error(mailErr))
			}
		}
	}

	return payment, nil
}

func (s *paymentService) signatureValid(orderID, paymentID, signature string) bool {
	// Пустой секрет означает ненастроенный шлюз. HMAC на пустом ключе
	// вычислим кто угодно, поэтому такую подпись не принимаем никогда.
	if len(s.keySecret) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, s.keySecret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
