package services

import (
	"context"

	"github.com/josvita0323/devhost-2025-sub000/models"
	"github.com/josvita0323/devhost-2025-sub000/repositories"
	"github.com/stretchr/testify/mock"
)

type teamRepoMock struct{ mock.Mock }

var _ repositories.TeamRepository = (*teamRepoMock)(nil)

func (m *teamRepoMock) Create(ctx context.Context, team *models.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *teamRepoMock) GetByID(ctx context.Context, eventID, teamID string) (*models.Team, error) {
	args := m.Called(ctx, eventID, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *teamRepoMock) GetByLeaderEmail(ctx context.Context, eventID, email string) (*models.Team, error) {
	args := m.Called(ctx, eventID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *teamRepoMock) GetByMemberUID(ctx context.Context, eventID, uid string) (*models.Team, error) {
	args := m.Called(ctx, eventID, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *teamRepoMock) GetByMemberEmail(ctx context.Context, eventID, email string) (*models.Team, error) {
	args := m.Called(ctx, eventID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *teamRepoMock) ListByEvent(ctx context.Context, eventID string) ([]models.Team, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Team), args.Error(1)
}

func (m *teamRepoMock) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *teamRepoMock) AddMember(ctx context.Context, eventID, teamID string, member models.TeamMember, maxSize int) error {
	args := m.Called(ctx, eventID, teamID, member, maxSize)
	return args.Error(0)
}

func (m *teamRepoMock) RemoveMemberByUID(ctx context.Context, eventID, teamID, uid string) error {
	args := m.Called(ctx, eventID, teamID, uid)
	return args.Error(0)
}

func (m *teamRepoMock) SetDriveLink(ctx context.Context, eventID, teamID, link string) error {
	args := m.Called(ctx, eventID, teamID, link)
	return args.Error(0)
}

func (m *teamRepoMock) SetFinalized(ctx context.Context, eventID, teamID string, minSize, maxSize int, requireDriveLink bool) error {
	args := m.Called(ctx, eventID, teamID, minSize, maxSize, requireDriveLink)
	return args.Error(0)
}

func (m *teamRepoMock) SetPaid(ctx context.Context, eventID, teamID string) error {
	args := m.Called(ctx, eventID, teamID)
	return args.Error(0)
}

func (m *teamRepoMock) Delete(ctx context.Context, eventID, teamID string) error {
	args := m.Called(ctx, eventID, teamID)
	return args.Error(0)
}

type userRepoMock struct{ mock.Mock }

var _ repositories.UserRepository = (*userRepoMock)(nil)

func (m *userRepoMock) Upsert(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *userRepoMock) GetByID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *userRepoMock) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *userRepoMock) SetTeamID(ctx context.Context, uid string, teamID string) error {
	args := m.Called(ctx, uid, teamID)
	return args.Error(0)
}

type eventRepoMock struct{ mock.Mock }

var _ repositories.EventRepository = (*eventRepoMock)(nil)

func (m *eventRepoMock) Create(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *eventRepoMock) GetByID(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *eventRepoMock) List(ctx context.Context) ([]models.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *eventRepoMock) Update(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *eventRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *eventRepoMock) SetPosterKey(ctx context.Context, id string, key *string) error {
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

type paymentRepoMock struct{ mock.Mock }

var _ repositories.PaymentRepository = (*paymentRepoMock)(nil)

func (m *paymentRepoMock) CreateOrder(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *paymentRepoMock) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *paymentRepoMock) MarkOrderPaid(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *paymentRepoMock) CreatePayment(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *paymentRepoMock) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

// txnRunnerMock исполняет callback напрямую, без сессии.
type txnRunnerMock struct{}

var _ repositories.TxnRunner = (*txnRunnerMock)(nil)

func (m *txnRunnerMock) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type gatewayMock struct{ mock.Mock }

var _ PaymentGateway = (*gatewayMock)(nil)

func (m *gatewayMock) CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	args := m.Called(amountPaise, currency, receipt, notes)
	return args.String(0), args.Error(1)
}

// feedMock записывает отправленные в комнаты сообщения.
type feedMock struct {
	rooms    []string
	messages []interface{}
}

var _ RegistrationFeed = (*feedMock)(nil)

func (m *feedMock) BroadcastToRoom(roomID string, message interface{}) {
	m.rooms = append(m.rooms, roomID)
	m.messages = append(m.messages, message)
}

type mailerMock struct{ mock.Mock }

var _ Mailer = (*mailerMock)(nil)

func (m *mailerMock) SendRegistrationConfirmed(to, teamName, eventID string) error {
	args := m.Called(to, teamName, eventID)
	return args.Error(0)
}
