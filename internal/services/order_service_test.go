package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bakery/internal/models"
	"bakery/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderServiceDeps struct {
	orders      *MockOrderRepository
	products    *MockProductRepository
	broadcaster *MockBroadcaster
	notifier    *MockNotifier
}

func newOrderServiceDeps() (*orderServiceDeps, OrderService) {
	d := &orderServiceDeps{
		orders:      new(MockOrderRepository),
		products:    new(MockProductRepository),
		broadcaster: new(MockBroadcaster),
		notifier:    new(MockNotifier),
	}
	return d, NewOrderService(d.orders, d.products, d.broadcaster, d.notifier, testLogger())
}

func validOrderRequest() CreateOrderRequest {
	return CreateOrderRequest{
		DeliveryAddress: "ул. Ленина, 1",
		DeliveryDate:    time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC),
		Items: []CreateOrderItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1, FillingDetails: "вишня"},
		},
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	d, svc := newOrderServiceDeps()

	d.products.On("GetByIDs", mock.Anything, []uint{1, 2}).Return([]models.Product{
		{ID: 1, Name: "Эклер", BasePrice: 120.10, IsAvailable: true},
		{ID: 2, Name: "Торт", BasePrice: 1500, IsAvailable: true},
	}, nil)

	var stored *models.Order
	d.orders.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*models.Order)
			stored.ID = 11
		}).Return(nil)
	d.orders.On("GetByID", mock.Anything, uint(11)).Return(&models.Order{ID: 11, UserID: customer.ID, User: *customer}, nil)
	d.broadcaster.On("BroadcastNewOrder", uint(11), mock.Anything).Return(1)
	d.notifier.On("NotifyNewOrder", mock.AnythingOfType("*models.Order")).Return()

	order, err := svc.CreateOrder(context.Background(), customer, validOrderRequest())
	require.NoError(t, err)

	assert.Equal(t, uint(11), order.ID)
	assert.Equal(t, customer.ID, stored.UserID)
	assert.Equal(t, models.StatusNew, stored.Status)
	assert.Equal(t, models.SourceWebsite, stored.Source)
	assert.InDelta(t, 1740.20, stored.TotalPrice, 0.001)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, 120.10, stored.Items[0].Price)
	assert.Equal(t, "вишня", stored.Items[1].FillingDetails)

	d.broadcaster.AssertExpectations(t)
	d.notifier.AssertExpectations(t)
}

func TestOrderService_CreateOrder_ReloadFailureFallsBack(t *testing.T) {
	d, svc := newOrderServiceDeps()

	d.products.On("GetByIDs", mock.Anything, []uint{1, 2}).Return([]models.Product{
		{ID: 1, Name: "Эклер", BasePrice: 100, IsAvailable: true},
		{ID: 2, Name: "Торт", BasePrice: 1000, IsAvailable: true},
	}, nil)
	d.orders.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Order).ID = 12 }).
		Return(nil)
	d.orders.On("GetByID", mock.Anything, uint(12)).Return(nil, errors.New("timeout"))
	d.broadcaster.On("BroadcastNewOrder", uint(12), mock.Anything).Return(0)
	d.notifier.On("NotifyNewOrder", mock.Anything).Return()

	order, err := svc.CreateOrder(context.Background(), customer, validOrderRequest())
	require.NoError(t, err)

	assert.Equal(t, "ivan", order.User.Username)
	assert.Equal(t, "Эклер", order.Items[0].Product.Name)
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	d, svc := newOrderServiceDeps()

	noItems := validOrderRequest()
	noItems.Items = nil

	badQuantity := validOrderRequest()
	badQuantity.Items[0].Quantity = 0

	noAddress := validOrderRequest()
	noAddress.DeliveryAddress = "   "

	badSource := validOrderRequest()
	badSource.Source = "fax"

	for name, req := range map[string]CreateOrderRequest{
		"no items":     noItems,
		"bad quantity": badQuantity,
		"no address":   noAddress,
		"bad source":   badSource,
	} {
		_, err := svc.CreateOrder(context.Background(), customer, req)
		assert.ErrorIs(t, err, ErrInvalidOrder, name)
	}

	_, err := svc.CreateOrder(context.Background(), nil, validOrderRequest())
	assert.ErrorIs(t, err, ErrPermissionDenied)

	d.products.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
	d.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrder_UnavailableProduct(t *testing.T) {
	d, svc := newOrderServiceDeps()

	d.products.On("GetByIDs", mock.Anything, []uint{1, 2}).Return([]models.Product{
		{ID: 1, BasePrice: 100, IsAvailable: true},
		{ID: 2, BasePrice: 100, IsAvailable: false},
	}, nil)

	_, err := svc.CreateOrder(context.Background(), customer, validOrderRequest())
	assert.ErrorIs(t, err, ErrProductNotFound)

	d.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	d.broadcaster.AssertNotCalled(t, "BroadcastNewOrder", mock.Anything, mock.Anything)
}

func TestOrderService_GetOrder(t *testing.T) {
	d, svc := newOrderServiceDeps()

	order := &models.Order{ID: 4, UserID: customer.ID}
	d.orders.On("GetByID", mock.Anything, uint(4)).Return(order, nil)
	d.orders.On("GetByID", mock.Anything, uint(5)).Return(nil, repository.ErrNotFound)

	got, err := svc.GetOrder(context.Background(), 4, customer)
	require.NoError(t, err)
	assert.Equal(t, order, got)

	_, err = svc.GetOrder(context.Background(), 4, chef)
	assert.NoError(t, err)

	stranger := &models.User{ID: 99, Role: models.RoleCustomer}
	_, err = svc.GetOrder(context.Background(), 4, stranger)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = svc.GetOrder(context.Background(), 5, admin)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_ListOrders(t *testing.T) {
	d, svc := newOrderServiceDeps()

	d.orders.On("List", mock.Anything, repository.OrderFilter{
		Status:  models.StatusReady,
		Sort:    "-created_at",
		Page:    1,
		PerPage: 20,
	}).Return([]models.Order{{ID: 1}, {ID: 2}}, int64(2), nil)

	page, err := svc.ListOrders(context.Background(), repository.OrderFilter{Status: models.StatusReady})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 2)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PerPage)

	_, err = svc.ListOrders(context.Background(), repository.OrderFilter{Status: "shipped"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
