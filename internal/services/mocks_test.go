package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"bakery/internal/models"
	"bakery/internal/redis"
	"bakery/internal/repository"

	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *MockOrderRepository) GetByUserID(ctx context.Context, userID uint) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]models.Order, int64, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, models.OrderStatus, error) {
	args := m.Called(ctx, id, status)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Get(1).(models.OrderStatus), args.Error(2)
}

func (m *MockOrderRepository) CountByStatusSince(ctx context.Context, since time.Time) (map[models.OrderStatus]int64, error) {
	args := m.Called(ctx, since)
	counts, _ := args.Get(0).(map[models.OrderStatus]int64)
	return counts, args.Error(1)
}

type MockProductRepository struct{ mock.Mock }

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	args := m.Called(ctx, ids)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) UpdateTelegramChatID(ctx context.Context, id uint, chatID string) error {
	return m.Called(ctx, id, chatID).Error(0)
}

type MockSessionStore struct{ mock.Mock }

func (m *MockSessionStore) SetSession(ctx context.Context, token string, data *redis.SessionData, ttl time.Duration) error {
	return m.Called(ctx, token, data, ttl).Error(0)
}

func (m *MockSessionStore) GetSession(ctx context.Context, token string) (*redis.SessionData, error) {
	args := m.Called(ctx, token)
	data, _ := args.Get(0).(*redis.SessionData)
	return data, args.Error(1)
}

func (m *MockSessionStore) DeleteSession(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type MockBroadcaster struct{ mock.Mock }

func (m *MockBroadcaster) BroadcastStatusUpdated(orderID uint, status models.OrderStatus, updatedBy string) int {
	return m.Called(orderID, status, updatedBy).Int(0)
}

func (m *MockBroadcaster) BroadcastNewOrder(orderID uint, orderData any) int {
	return m.Called(orderID, orderData).Int(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) NotifyNewOrder(order *models.Order) {
	m.Called(order)
}

func (m *MockNotifier) NotifyStatusChange(orderID uint, status models.OrderStatus, chatID string) {
	m.Called(orderID, status, chatID)
}

func (m *MockNotifier) NotifyDigest(counts map[models.OrderStatus]int64, since time.Time) {
	m.Called(counts, since)
}

// fakeSender records messages and optionally fails every send.
type fakeSender struct {
	err error

	mu       sync.Mutex
	messages []sentMessage
}

type sentMessage struct {
	chatID string
	text   string
}

func (s *fakeSender) SendTextMessage(_ context.Context, chatID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, sentMessage{chatID: chatID, text: text})
	return s.err
}

func (s *fakeSender) sent() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.messages...)
}

// memNotificationRepo is an in-memory notification log.
type memNotificationRepo struct {
	mu   sync.Mutex
	rows []models.Notification
}

func (r *memNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uint(len(r.rows) + 1)
	r.rows = append(r.rows, *n)
	return nil
}

func (r *memNotificationRepo) GetByOrderID(_ context.Context, orderID uint) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.rows {
		if n.OrderID != nil && *n.OrderID == orderID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNotificationRepo) MarkAsSent(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.rows[id-1].Sent = true
	r.rows[id-1].SentAt = &now
	return nil
}

func (r *memNotificationRepo) MarkAsFailed(_ context.Context, id uint, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[id-1].Error = reason
	return nil
}

func (r *memNotificationRepo) all() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.rows...)
}

// memOrderRepo keeps orders in memory with the same status semantics as the
// gorm repository.
type memOrderRepo struct {
	mu     sync.Mutex
	orders map[uint]*models.Order
}

func newMemOrderRepo(orders ...*models.Order) *memOrderRepo {
	r := &memOrderRepo{orders: make(map[uint]*models.Order)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *memOrderRepo) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order.ID = uint(len(r.orders) + 1)
	r.orders[order.ID] = order
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id uint) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) GetByUserID(_ context.Context, userID uint) ([]models.Order, error) {
	return nil, nil
}

func (r *memOrderRepo) List(_ context.Context, _ repository.OrderFilter) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id uint, status models.OrderStatus) (*models.Order, models.OrderStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, "", repository.ErrNotFound
	}
	old := o.Status
	o.Status = status
	o.UpdatedAt = time.Now()
	cp := *o
	return &cp, old, nil
}

func (r *memOrderRepo) CountByStatusSince(_ context.Context, _ time.Time) (map[models.OrderStatus]int64, error) {
	return nil, nil
}

func (r *memOrderRepo) status(id uint) models.OrderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id].Status
}
