package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/josvita0323/devhost-2025-sub000/models"
	"github.com/josvita0323/devhost-2025-sub000/repositories"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testKeySecret = "test_key_secret"

func signPayment(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testKeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func paidEvent() *models.Event {
	return &models.Event{
		ID:              flagshipID,
		Title:           "Hackathon",
		MinTeamSize:     4,
		MaxTeamSize:     5,
		RequiresPayment: true,
		Fee:             50000,
	}
}

func newTestPaymentService(
	paymentRepo *paymentRepoMock,
	teamRepo *teamRepoMock,
	eventRepo *eventRepoMock,
	gateway *gatewayMock,
	mailer *mailerMock,
) (PaymentService, *feedMock) {
	feed := &feedMock{}
	svc := NewPaymentService(
		paymentRepo, teamRepo, eventRepo,
		&txnRunnerMock{}, gateway, mailer, feed,
		zap.NewNop(), "rzp_test_key", testKeySecret,
	)
	return svc, feed
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	leader := leaderIdentity()
	team := teamOf(leader, memberIdentity("m1"), memberIdentity("m2"), memberIdentity("m3"))

	paymentRepo := &paymentRepoMock{}
	teamRepo := &teamRepoMock{}
	eventRepo := &eventRepoMock{}
	gateway := &gatewayMock{}
	svc, _ := newTestPaymentService(paymentRepo, teamRepo, eventRepo, gateway, &mailerMock{})

	eventRepo.On("GetByID", mock.Anything, flagshipID).Return(paidEvent(), nil)
	teamRepo.On("GetByID", mock.Anything, flagshipID, team.ID).Return(team, nil)
	gateway.On("CreateOrder", int64(50000), "INR", mock.AnythingOfType("string"), mock.Anything).
		Return("order_abc123", nil)
	paymentRepo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil)

	out, err := svc.CreateOrder(ctx, leader, CreateOrderInput{EventID: flagshipID, TeamID: team.ID})
	require.NoError(t, err)
	require.Equal(t, "order_abc123", out.OrderID)
	require.Equal(t, int64(50000), out.Amount)
	require.Equal(t, "INR", out.Currency)
	require.Equal(t, "rzp_test_key", out.KeyID)
	paymentRepo.AssertExpectations(t)
}

func TestCreateOrderFreeEvent(t *testing.T) {
	ctx := context.Background()
	leader := leaderIdentity()

	paymentRepo := &paymentRepoMock{}
	teamRepo := &teamRepoMock{}
	eventRepo := &eventRepoMock{}
	svc, _ := newTestPaymentService(paymentRepo, teamRepo, eventRepo, &gatewayMock{}, &mailerMock{})

	eventRepo.On("GetByID", mock.Anything, flagshipID).Return(testEvent(), nil)

	_, err := svc.CreateOrder(ctx, leader, CreateOrderInput{EventID: flagshipID, TeamID: "t1"})
	require.ErrorIs(t, err, ErrPaymentNotRequired)
}

func TestCreateOrderNonLeader(t *testing.T) {
	ctx := context.Background()
	leader := leaderIdentity()
	bob := memberIdentity("bob")
	team := teamOf(leader, bob)

	paymentRepo := &paymentRepoMock{}
	teamRepo := &teamRepoMock{}
	eventRepo := &eventRepoMock{}
	svc, _ := newTestPaymentService(paymentRepo, teamRepo, eventRepo, &gatewayMock{}, &mailerMock{})

	eventRepo.On("GetByID", mock.Anything, flagshipID).Return(paidEvent(), nil)
	teamRepo.On("GetByID", mock.Anything, flagshipID, team.ID).Return(team, nil)

	_, err := svc.CreateOrder(ctx, bob, CreateOrderInput{EventID: flagshipID, TeamID: team.ID})
	require.ErrorIs(t, err, ErrLeaderActionForbidden)
}

func TestCreateOrderAlreadyPaid(t *testing.T) {
	ctx := context.Background()
	leader := leaderIdentity()
	team := teamOf(leader)
	team.PaymentDone = true

	paymentRepo := &paymentRepoMock{}
	teamRepo := &teamRepoMock{}
	eventRepo := &eventRepoMock{}
	svc, _ := newTestPaymentService(paymentRepo, teamRepo, eventRepo, &gatewayMock{}, &mailerMock{})

	eventRepo.On("GetByID", mock.Anything, flagshipID).Return(paidEvent(), nil)
	teamRepo.On("GetByID", mock.Anything, flagshipID, team.ID).Return(team, nil)

	_, err := svc.CreateOrder(ctx, leader, CreateOrderInput{EventID: flagshipID, TeamID: team.ID})
	require.ErrorIs(t, err, ErrTeamAlreadyPaid)
}

func TestVerifyPaymentBadSignature(t *testing.T) {
	ctx := context.Background()

	paymentRepo := &paymentRepoMock{}
	teamRepo := &teamRepoMock{}
	eventRepo := &eventRepoMock{}
	svc, _ := newTestPaymentService(paymentRepo, teamRepo, eventRepo, &gatewayMock{}, &mailerMock{})

	_, err := svc.VerifyPayment(ctx, VerifyPaymentInput{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: "deadbeef",
	})
	require.ErrorIs(t, err, ErrPaymentSignatureInvalid)
	paymentRepo.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
}

func TestVerifyPaymentEmptySecretRejectsAll(t *testing.T) {
	// С пустым секретом HMAC может пересчитать кто угодно, поэтому сервис
	// не должен принимать даже "корректную" подпись на пустом ключе.
	ctx := context.Background()

	paymentRepo := &paymentRepoMock{}
	svc := NewPaymentService(
		paymentRepo, &teamRepoMock{}, &eventRepoMock{},
		&txnRunnerMock{}, &gatewayMock{}, &mailerMock{}, &feedMock{},
		zap.NewNop(), "rzp_test_key", "",
	)

	mac := hmac.New(sha256.New, nil)
	mac.Write([]byte("order_abc|pay_xyz"))
	forged := hex.EncodeToString(mac.Sum(nil))

	_, err := svc.VerifyPayment(ctx, VerifyPaymentInput{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: forged,
	})
	require.ErrorIs(t, err, ErrPaymentSignatureInvalid)
	paymentRepo.AssertNotCalled(t, "GetPayment", mock.Anything, mock.Anything)
}

func TestVerifyPayment(t *testing.T) {
	ctx := context.Background()
	leader := leaderIdentity()
	team := teamOf(leader, memberIdentity("m1"), memberIdentity("m2"), memberIdentity("m3"))
	team.PaymentDone = true
	team.Finalized = true

	order := &models.Order{
		ID:       "order_abc",
		EventID:  flagshipID,
		TeamID:   team.ID,
		Amount:   50000,
		Currency: "INR",
		Status:   models.OrderStatusCreated,
	}

	paymentRepo := &paymentRepoMock{}
	teamRepo := &teamRepoMock{}
	eventRepo := &eventRepoMock{}
	mailer := &mailerMock{}
	svc, feed := newTestPaymentService(paymentRepo, teamRepo, eventRepo, &gatewayMock{}, mailer)

	paymentRepo.On("GetPayment", mock.Anything, "pay_xyz").Return(nil, repositories.ErrPaymentNotFound)
	paymentRepo.On("GetOrder", mock.Anything, "order_abc").Return(order, nil)
	paymentRepo.On("CreatePayment", mock.Anything, mock.AnythingOfType("*models.Payment")).Return(nil)
	paymentRepo.On("MarkOrderPaid", mock.Anything, "order_abc").Return(nil)
	teamRepo.On("SetPaid", mock.Anything, flagshipID, team.ID).Return(nil)
	teamRepo.On("GetByID", mock.Anything, flagshipID, team.ID).Return(team, nil)
	mailer.On("SendRegistrationConfirmed", leader.Email, team.Name, flagshipID).Return(nil)

	payment, err := svc.VerifyPayment(ctx, VerifyPaymentInput{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: signPayment("order_abc", "pay_xyz"),
	})
	require.NoError(t, err)
	require.Equal(t, "pay_xyz", payment.ID)
	require.Equal(t, "order_abc", payment.OrderID)
	require.Equal(t, team.ID, payment.TeamID)
	require.Len(t, feed.messages, 1)
	paymentRepo.AssertExpectations(t)
	teamRepo.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestVerifyPaymentIdempotent(t *testing.T) {
	ctx := context.Background()
	existing := &models.Payment{
		ID:         "pay_xyz",
		OrderID:    "order_abc",
		EventID:    flagshipID,
		TeamID:     "t1",
		Amount:     50000,
		VerifiedAt: time.Now().UTC(),
	}

	paymentRepo := &paymentRepoMock{}
	teamRepo := &teamRepoMock{}
	eventRepo := &eventRepoMock{}
	svc, feed := newTestPaymentService(paymentRepo, teamRepo, eventRepo, &gatewayMock{}, &mailerMock{})

	paymentRepo.On("GetPayment", mock.Anything, "pay_xyz").Return(existing, nil)

	payment, err := svc.VerifyPayment(ctx, VerifyPaymentInput{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: signPayment("order_abc", "pay_xyz"),
	})
	require.NoError(t, err)
	require.Equal(t, existing, payment)
	require.Empty(t, feed.messages, "replayed verification does not rebroadcast")
	paymentRepo.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
	teamRepo.AssertNotCalled(t, "SetPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPaymentRaceReturnsWinner(t *testing.T) {
	ctx := context.Background()
	order := &models.Order{ID: "order_abc", EventID: flagshipID, TeamID: "t1", Amount: 50000}
	winner := &models.Payment{ID: "pay_xyz", OrderID: "order_abc", TeamID: "t1"}

	paymentRepo := &paymentRepoMock{}
	teamRepo := &teamRepoMock{}
	eventRepo := &eventRepoMock{}
	svc, _ := newTestPaymentService(paymentRepo, teamRepo, eventRepo, &gatewayMock{}, &mailerMock{})

	paymentRepo.On("GetPayment", mock.Anything, "pay_xyz").Return(nil, repositories.ErrPaymentNotFound).Once()
	paymentRepo.On("GetOrder", mock.Anything, "order_abc").Return(order, nil)
	paymentRepo.On("CreatePayment", mock.Anything, mock.Anything).Return(repositories.ErrPaymentIDConflict)
	paymentRepo.On("GetPayment", mock.Anything, "pay_xyz").Return(winner, nil)

	payment, err := svc.VerifyPayment(ctx, VerifyPaymentInput{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: signPayment("order_abc", "pay_xyz"),
	})
	require.NoError(t, err)
	require.Equal(t, winner, payment)
}

func TestVerifyPaymentUnknownOrder(t *testing.T) {
	ctx := context.Background()

	paymentRepo := &paymentRepoMock{}
	teamRepo := &teamRepoMock{}
	eventRepo := &eventRepoMock{}
	svc, _ := newTestPaymentService(paymentRepo, teamRepo, eventRepo, &gatewayMock{}, &mailerMock{})

	paymentRepo.On("GetPayment", mock.Anything, "pay_xyz").Return(nil, repositories.ErrPaymentNotFound)
	paymentRepo.On("GetOrder", mock.Anything, "order_missing").Return(nil, repositories.ErrOrderNotFound)

	_, err := svc.VerifyPayment(ctx, VerifyPaymentInput{
		OrderID:   "order_missing",
		PaymentID: "pay_xyz",
		Signature: signPayment("order_missing", "pay_xyz"),
	})
	require.ErrorIs(t, err, ErrOrderNotFound)
}
