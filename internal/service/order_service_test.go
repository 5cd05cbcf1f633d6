package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"elegance/internal/model"
	"elegance/internal/payment"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreatePending(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByPaymentIntent(ctx context.Context, paymentIntentID string, userID uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, paymentIntentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) TransitionStatus(ctx context.Context, paymentIntentID string, from, to model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, paymentIntentID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) SetStatus(ctx context.Context, paymentIntentID string, status model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, paymentIntentID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockPerfumeRepository is a mock implementation of PerfumeRepository.
type MockPerfumeRepository struct {
	mock.Mock
}

func (m *MockPerfumeRepository) Create(ctx context.Context, perfume *model.Perfume) error {
	args := m.Called(ctx, perfume)
	return args.Error(0)
}

func (m *MockPerfumeRepository) GetAll(ctx context.Context, filter model.PerfumeFilter) ([]model.Perfume, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Perfume), args.Error(1)
}

func (m *MockPerfumeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Perfume, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Perfume), args.Error(1)
}

func (m *MockPerfumeRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Perfume, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Perfume), args.Error(1)
}

func (m *MockPerfumeRepository) Update(ctx context.Context, perfume *model.Perfume) error {
	args := m.Called(ctx, perfume)
	return args.Error(0)
}

func (m *MockPerfumeRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPerfumeRepository) DecrementStockBatch(ctx context.Context, decrements []model.StockDecrement) error {
	args := m.Called(ctx, decrements)
	return args.Error(0)
}

// MockGateway is a mock implementation of payment.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateIntent(ctx context.Context, amount int64, description string, metadata map[string]string) (*payment.Intent, error) {
	args := m.Called(ctx, amount, description, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockGateway) GetIntent(ctx context.Context, id string) (*payment.Intent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockGateway) VerifyEvent(payload []byte, signature, secret string) (*payment.Event, error) {
	args := m.Called(payload, signature, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Event), args.Error(1)
}

func testUser() *model.User {
	return &model.User{
		ID:       uuid.New(),
		Name:     "Salem Hidd",
		Email:    "salem@example.com",
		Role:     model.RoleCustomer,
		IsActive: true,
	}
}

func pendingOrder(userID uuid.UUID, ref string) *model.Order {
	orderID := uuid.New()
	return &model.Order{
		ID:              orderID,
		UserID:          userID,
		OrderNumber:     "ELG-123456",
		Items: []model.OrderItem{
			{ID: uuid.New(), OrderID: orderID, PerfumeID: uuid.New(), Name: "Dior Sauvage", Quantity: 2, Price: 74990},
		},
		Subtotal:        149980,
		Total:           149980,
		Currency:        "clp",
		Status:          model.OrderStatusPending,
		PaymentIntentID: ref,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

func newTestOrderService(orderRepo *MockOrderRepository, perfumeRepo *MockPerfumeRepository, gateway *MockGateway) OrderService {
	return NewOrderService(orderRepo, perfumeRepo, gateway, "clp", testWebhookSecret, zerolog.Nop())
}

func TestOrderService_InitiateCheckout_Success(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := newTestOrderService(orderRepo, perfumeRepo, gateway)

	user := testUser()
	perfumeID := uuid.New()
	req := &model.CheckoutRequest{
		Amount:   149980,
		Subtotal: 149980,
		Items: []model.CheckoutItem{
			{PerfumeID: perfumeID, Name: "Dior Sauvage", Quantity: 2, Price: 74990},
		},
	}

	gateway.On("CreateIntent", ctx, int64(149980), "2x Dior Sauvage", map[string]string{
		"userId":    user.ID.String(),
		"userEmail": user.Email,
	}).Return(&payment.Intent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret_xyz",
		Status:       "requires_payment_method",
		Amount:       149980,
		Currency:     "clp",
	}, nil)

	var created *model.Order
	orderRepo.On("CreatePending", ctx, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.Order)
		}).
		Return(nil)

	resp, err := svc.InitiateCheckout(ctx, user, req)
	require.NoError(t, err)

	assert.Equal(t, "pi_123", resp.PaymentIntentID)
	assert.Equal(t, "pi_123_secret_xyz", resp.ClientSecret)
	assert.Equal(t, int64(149980), resp.Amount)
	assert.Equal(t, "clp", resp.Currency)
	assert.NotEmpty(t, resp.OrderNumber)

	require.NotNil(t, created)
	assert.Equal(t, model.OrderStatusPending, created.Status)
	assert.Equal(t, int64(149980), created.Subtotal)
	assert.Equal(t, int64(149980), created.Total)
	assert.Equal(t, "pi_123", created.PaymentIntentID)
	assert.Equal(t, user.ID, created.UserID)
	require.Len(t, created.Items, 1)
	assert.Equal(t, "Dior Sauvage", created.Items[0].Name)
	assert.Equal(t, 2, created.Items[0].Quantity)
	assert.Equal(t, int64(74990), created.Items[0].Price)

	gateway.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
}

func TestOrderService_InitiateCheckout_InvalidAmount(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := newTestOrderService(orderRepo, perfumeRepo, gateway)

	_, err := svc.InitiateCheckout(ctx, testUser(), &model.CheckoutRequest{
		Amount: 0,
		Items:  []model.CheckoutItem{{Name: "X", Quantity: 1, Price: 100}},
	})

	assert.ErrorIs(t, err, model.ErrInvalidAmount)
	gateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	orderRepo.AssertNotCalled(t, "CreatePending", mock.Anything, mock.Anything)
}

func TestOrderService_InitiateCheckout_EmptyCart(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := newTestOrderService(orderRepo, perfumeRepo, gateway)

	_, err := svc.InitiateCheckout(ctx, testUser(), &model.CheckoutRequest{Amount: 1000})

	assert.ErrorIs(t, err, model.ErrEmptyCart)
	gateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_InitiateCheckout_GatewayError(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := newTestOrderService(orderRepo, perfumeRepo, gateway)

	gateway.On("CreateIntent", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	_, err := svc.InitiateCheckout(ctx, testUser(), &model.CheckoutRequest{
		Amount: 1000,
		Items:  []model.CheckoutItem{{Name: "X", Quantity: 1, Price: 1000}},
	})

	assert.ErrorIs(t, err, model.ErrGateway)
	// No local write may happen when the provider call fails.
	orderRepo.AssertNotCalled(t, "CreatePending", mock.Anything, mock.Anything)
}

func TestOrderService_ConfirmCheckout_FirstConfirmation(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := newTestOrderService(orderRepo, perfumeRepo, gateway)

	user := testUser()
	order := pendingOrder(user.ID, "pi_123")
	paid := *order
	paid.Status = model.OrderStatusPaid
	paid.Items = order.Items

	orderRepo.On("GetByPaymentIntent", ctx, "pi_123", user.ID).Return(order, nil)
	gateway.On("GetIntent", ctx, "pi_123").Return(&payment.Intent{ID: "pi_123", Status: "succeeded"}, nil)
	orderRepo.On("TransitionStatus", ctx, "pi_123", model.OrderStatusPending, model.OrderStatusPaid).Return(&paid, nil)
	perfumeRepo.On("DecrementStockBatch", ctx, []model.StockDecrement{
		{PerfumeID: order.Items[0].PerfumeID, Quantity: 2},
	}).Return(nil)

	view, err := svc.ConfirmCheckout(ctx, user.ID, "pi_123")
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPaid, view.Status)
	perfumeRepo.AssertNumberOfCalls(t, "DecrementStockBatch", 1)
}

func TestOrderService_ConfirmCheckout_IdempotentWhenAlreadyPaid(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := newTestOrderService(orderRepo, perfumeRepo, gateway)

	user := testUser()
	order := pendingOrder(user.ID, "pi_123")
	order.Status = model.OrderStatusPaid

	orderRepo.On("GetByPaymentIntent", ctx, "pi_123", user.ID).Return(order, nil)
	gateway.On("GetIntent", ctx, "pi_123").Return(&payment.Intent{ID: "pi_123", Status: "succeeded"}, nil)

	view, err := svc.ConfirmCheckout(ctx, user.ID, "pi_123")
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPaid, view.Status)
	// The second confirmation must not decrement stock again.
	orderRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	perfumeRepo.AssertNotCalled(t, "DecrementStockBatch", mock.Anything, mock.Anything)
}

func TestOrderService_ConfirmCheckout_WebhookWonTheRace(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := newTestOrderService(orderRepo, perfumeRepo, gateway)

	user := testUser()
	order := pendingOrder(user.ID, "pi_123")
	paid := *order
	paid.Status = model.OrderStatusPaid

	orderRepo.On("GetByPaymentIntent", ctx, "pi_123", user.ID).Return(order, nil).Once()
	gateway.On("GetIntent", ctx, "pi_123").Return(&payment.Intent{ID: "pi_123", Status: "succeeded"}, nil)
	orderRepo.On("TransitionStatus", ctx, "pi_123", model.OrderStatusPending, model.OrderStatusPaid).Return(nil, nil)
	orderRepo.On("GetByPaymentIntent", ctx, "pi_123", user.ID).Return(&paid, nil).Once()

	view, err := svc.ConfirmCheckout(ctx, user.ID, "pi_123")
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPaid, view.Status)
	// The webhook already decremented; the loser must not.
	perfumeRepo.AssertNotCalled(t, "DecrementStockBatch", mock.Anything, mock.Anything)
}

func TestOrderService_ConfirmCheckout_PaymentNotSucceeded(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := newTestOrderService(orderRepo, perfumeRepo, gateway)

	user := testUser()
	order := pendingOrder(user.ID, "pi_123")

	orderRepo.On("GetByPaymentIntent", ctx, "pi_123", user.ID).Return(order, nil)
	gateway.On("GetIntent", ctx, "pi_123").Return(&payment.Intent{ID: "pi_123", Status: "requires_action"}, nil)

	_, err := svc.ConfirmCheckout(ctx, user.ID, "pi_123")
	require.Error(t, err)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodePaymentNotSucceeded, domainErr.Code)
	assert.Contains(t, domainErr.Message, "requires_action")

	// Order must remain untouched.
	orderRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	orderRepo.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_ConfirmCheckout_OrderNotFound(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := newTestOrderService(orderRepo, perfumeRepo, gateway)

	userID := uuid.New()
	orderRepo.On("GetByPaymentIntent", ctx, "pi_unknown", userID).Return(nil, nil)

	_, err := svc.ConfirmCheckout(ctx, userID, "pi_unknown")
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
	gateway.AssertNotCalled(t, "GetIntent", mock.Anything, mock.Anything)
}

func TestOrderService_HandleWebhookEvent_NoSecretConfigured(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := NewOrderService(orderRepo, perfumeRepo, gateway, "clp", "", zerolog.Nop())

	err := svc.HandleWebhookEvent(ctx, []byte(`{}`), "sig")
	require.NoError(t, err)

	gateway.AssertNotCalled(t, "VerifyEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_HandleWebhookEvent_InvalidSignature(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := newTestOrderService(orderRepo, perfumeRepo, gateway)

	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	gateway.On("VerifyEvent", payload, "bad-sig", testWebhookSecret).Return(nil, assert.AnError)

	err := svc.HandleWebhookEvent(ctx, payload, "bad-sig")
	assert.ErrorIs(t, err, model.ErrInvalidSignature)

	// No order may be mutated on a signature failure.
	orderRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	orderRepo.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_HandleWebhookEvent_SucceededWinsTransition(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := newTestOrderService(orderRepo, perfumeRepo, gateway)

	order := pendingOrder(uuid.New(), "pi_123")
	paid := *order
	paid.Status = model.OrderStatusPaid

	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	gateway.On("VerifyEvent", payload, "sig", testWebhookSecret).Return(&payment.Event{
		Type:     payment.EventPaymentSucceeded,
		IntentID: "pi_123",
		Status:   "succeeded",
	}, nil)
	orderRepo.On("TransitionStatus", ctx, "pi_123", model.OrderStatusPending, model.OrderStatusPaid).Return(&paid, nil)
	perfumeRepo.On("DecrementStockBatch", ctx, mock.Anything).Return(nil)

	err := svc.HandleWebhookEvent(ctx, payload, "sig")
	require.NoError(t, err)

	perfumeRepo.AssertNumberOfCalls(t, "DecrementStockBatch", 1)
}

func TestOrderService_HandleWebhookEvent_SucceededNoOpWhenAlreadyPaid(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := newTestOrderService(orderRepo, perfumeRepo, gateway)

	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	gateway.On("VerifyEvent", payload, "sig", testWebhookSecret).Return(&payment.Event{
		Type:     payment.EventPaymentSucceeded,
		IntentID: "pi_123",
		Status:   "succeeded",
	}, nil)
	orderRepo.On("TransitionStatus", ctx, "pi_123", model.OrderStatusPending, model.OrderStatusPaid).Return(nil, nil)

	err := svc.HandleWebhookEvent(ctx, payload, "sig")
	require.NoError(t, err)

	perfumeRepo.AssertNotCalled(t, "DecrementStockBatch", mock.Anything, mock.Anything)
}

func TestOrderService_HandleWebhookEvent_PaymentFailed(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := newTestOrderService(orderRepo, perfumeRepo, gateway)

	order := pendingOrder(uuid.New(), "pi_123")
	failed := *order
	failed.Status = model.OrderStatusFailed

	payload := []byte(`{"type":"payment_intent.payment_failed"}`)
	gateway.On("VerifyEvent", payload, "sig", testWebhookSecret).Return(&payment.Event{
		Type:     payment.EventPaymentFailed,
		IntentID: "pi_123",
		Status:   "requires_payment_method",
	}, nil)
	orderRepo.On("SetStatus", ctx, "pi_123", model.OrderStatusFailed).Return(&failed, nil)

	err := svc.HandleWebhookEvent(ctx, payload, "sig")
	require.NoError(t, err)

	// A failed payment never touches stock.
	perfumeRepo.AssertNotCalled(t, "DecrementStockBatch", mock.Anything, mock.Anything)
	orderRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_HandleWebhookEvent_IgnoredEventType(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := newTestOrderService(orderRepo, perfumeRepo, gateway)

	payload := []byte(`{"type":"charge.refunded"}`)
	gateway.On("VerifyEvent", payload, "sig", testWebhookSecret).Return(&payment.Event{
		Type: "charge.refunded",
	}, nil)

	err := svc.HandleWebhookEvent(ctx, payload, "sig")
	require.NoError(t, err)

	orderRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	orderRepo.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_GetOrder_Repeatable(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := newTestOrderService(orderRepo, perfumeRepo, gateway)

	user := testUser()
	order := pendingOrder(user.ID, "pi_123")
	orderRepo.On("GetByID", ctx, order.ID, user.ID).Return(order, nil)

	first, err := svc.GetOrder(ctx, order.ID, user.ID)
	require.NoError(t, err)
	second, err := svc.GetOrder(ctx, order.ID, user.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestOrderService_GetOrder_NotFound(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	perfumeRepo := new(MockPerfumeRepository)
	gateway := new(MockGateway)
	svc := newTestOrderService(orderRepo, perfumeRepo, gateway)

	id := uuid.New()
	userID := uuid.New()
	orderRepo.On("GetByID", ctx, id, userID).Return(nil, nil)

	_, err := svc.GetOrder(ctx, id, userID)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

// fakeOrderStore is an in-memory OrderRepository whose TransitionStatus is a
// genuine compare-and-swap under a mutex, used to exercise the confirm/webhook
// race the way the real store serializes it.
type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]*model.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[string]*model.Order)}
}

func (f *fakeOrderStore) CreatePending(ctx context.Context, order *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *order
	f.orders[order.PaymentIntentID] = &copied
	return nil
}

func (f *fakeOrderStore) GetByPaymentIntent(ctx context.Context, ref string, userID uuid.UUID) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[ref]
	if !ok || order.UserID != userID {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderStore) TransitionStatus(ctx context.Context, ref string, from, to model.OrderStatus) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[ref]
	if !ok || order.Status != from {
		return nil, nil
	}
	order.Status = to
	copied := *order
	return &copied, nil
}

func (f *fakeOrderStore) SetStatus(ctx context.Context, ref string, status model.OrderStatus) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[ref]
	if !ok {
		return nil, nil
	}
	order.Status = status
	copied := *order
	return &copied, nil
}

func (f *fakeOrderStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) GetByID(ctx context.Context, id, userID uuid.UUID) (*model.Order, error) {
	return nil, nil
}

// countingPerfumeRepo counts stock decrements.
type countingPerfumeRepo struct {
	MockPerfumeRepository
	mu         sync.Mutex
	decrements int
}

func (c *countingPerfumeRepo) DecrementStockBatch(ctx context.Context, decrements []model.StockDecrement) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decrements++
	return nil
}

func TestOrderService_ConfirmAndWebhookRace_DecrementsOnce(t *testing.T) {
	// Whatever the delivery order, the final status is paid and stock is
	// decremented exactly once.
	for i := 0; i < 50; i++ {
		ctx := context.Background()
		store := newFakeOrderStore()
		perfumeRepo := &countingPerfumeRepo{}
		gateway := new(MockGateway)
		svc := NewOrderService(store, perfumeRepo, gateway, "clp", testWebhookSecret, zerolog.Nop())

		user := testUser()
		order := pendingOrder(user.ID, "pi_race")
		require.NoError(t, store.CreatePending(ctx, order))

		gateway.On("GetIntent", mock.Anything, "pi_race").Return(&payment.Intent{ID: "pi_race", Status: "succeeded"}, nil)
		gateway.On("VerifyEvent", mock.Anything, mock.Anything, testWebhookSecret).Return(&payment.Event{
			Type:     payment.EventPaymentSucceeded,
			IntentID: "pi_race",
			Status:   "succeeded",
		}, nil)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.ConfirmCheckout(ctx, user.ID, "pi_race")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.HandleWebhookEvent(ctx, []byte(`{}`), "sig"))
		}()
		wg.Wait()

		final, err := store.GetByPaymentIntent(ctx, "pi_race", user.ID)
		require.NoError(t, err)
		require.NotNil(t, final)
		assert.Equal(t, model.OrderStatusPaid, final.Status)

		perfumeRepo.mu.Lock()
		assert.Equal(t, 1, perfumeRepo.decrements, "stock must be decremented exactly once")
		perfumeRepo.mu.Unlock()
	}
}
