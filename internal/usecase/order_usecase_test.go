package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderform-backend/internal/domain"
	"orderform-backend/internal/form"
	memcache "orderform-backend/internal/infrastructure/cache"
)

type mockTransport struct {
	SubmitFn func(ctx context.Context, order domain.Order) (*domain.EndpointResponse, error)
}

func (m *mockTransport) Submit(ctx context.Context, order domain.Order) (*domain.EndpointResponse, error) {
	return m.SubmitFn(ctx, order)
}

type mockTracker struct {
	mu     sync.Mutex
	orders []domain.Order
	ids    []string
}

func (m *mockTracker) SendLeadEvent(ctx context.Context, order domain.Order, eventID string, meta domain.ClientMeta) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, order)
	m.ids = append(m.ids, eventID)
}

func newTestOrderUsecase(transport form.Transport, tracker LeadTracker) *OrderUsecase {
	return NewOrderUsecase(memcache.NewMemoryCache(time.Hour, 0), transport, tracker, "YN Rice Cooker 1.8L", time.Hour)
}

var validInput = OrderInput{
	Name:    " Rahim Uddin ",
	Mobile:  "+8801712-345678",
	Address: "House 12, Road 5, Dhanmondi, Dhaka",
}

func TestPlaceOrder_SuccessTracksLead(t *testing.T) {
	var sent domain.Order
	transport := &mockTransport{SubmitFn: func(ctx context.Context, order domain.Order) (*domain.EndpointResponse, error) {
		sent = order
		return &domain.EndpointResponse{Status: "success"}, nil
	}}
	tracker := &mockTracker{}
	uc := newTestOrderUsecase(transport, tracker)

	out, err := uc.PlaceOrder(context.Background(), "s1", validInput, domain.ClientMeta{IP: "203.0.113.9"})
	require.NoError(t, err)

	assert.Equal(t, domain.StateSuccess, out.State)
	assert.Equal(t, "Rahim Uddin", sent.Name)
	assert.Equal(t, "88017123456", sent.Mobile)
	assert.Equal(t, "YN Rice Cooker 1.8L", sent.Product)

	require.Len(t, tracker.orders, 1)
	assert.NotEmpty(t, tracker.ids[0])

	view := uc.State("s1")
	assert.Equal(t, "idle", view.State)
	assert.Equal(t, domain.LabelPlaceOrder, view.ButtonLabel)
	assert.False(t, view.ButtonDisabled)
	assert.Contains(t, view.LastMessage, "Order Placed Successfully")
}

func TestPlaceOrder_FailureDoesNotTrack(t *testing.T) {
	transport := &mockTransport{SubmitFn: func(ctx context.Context, order domain.Order) (*domain.EndpointResponse, error) {
		return nil, &domain.NetworkError{Op: "submit order", Err: errors.New("no route to host")}
	}}
	tracker := &mockTracker{}
	uc := newTestOrderUsecase(transport, tracker)

	out, err := uc.PlaceOrder(context.Background(), "s1", validInput, domain.ClientMeta{})
	require.NoError(t, err)

	assert.Equal(t, domain.StateError, out.State)
	assert.Contains(t, out.Message, "no route to host")
	assert.Empty(t, tracker.orders)
	assert.Contains(t, uc.State("s1").LastMessage, "Order Submission Failed")
}

func TestPlaceOrder_NilTracker(t *testing.T) {
	transport := &mockTransport{SubmitFn: func(ctx context.Context, order domain.Order) (*domain.EndpointResponse, error) {
		return &domain.EndpointResponse{Status: "success"}, nil
	}}
	uc := newTestOrderUsecase(transport, nil)

	out, err := uc.PlaceOrder(context.Background(), "s1", validInput, domain.ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, domain.StateSuccess, out.State)
}

func TestPlaceOrder_SameSessionRejectedWhilePending(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	var once sync.Once
	transport := &mockTransport{SubmitFn: func(ctx context.Context, order domain.Order) (*domain.EndpointResponse, error) {
		if order.Name == "Rahim Uddin" {
			once.Do(func() { close(entered) })
			<-unblock
		}
		return &domain.EndpointResponse{Status: "success"}, nil
	}}
	uc := newTestOrderUsecase(transport, nil)

	done := make(chan error)
	go func() {
		_, err := uc.PlaceOrder(context.Background(), "s1", validInput, domain.ClientMeta{})
		done <- err
	}()
	<-entered

	assert.True(t, uc.State("s1").ButtonDisabled)
	assert.Equal(t, domain.LabelSubmitting, uc.State("s1").ButtonLabel)

	_, err := uc.PlaceOrder(context.Background(), "s1", validInput, domain.ClientMeta{})
	assert.ErrorIs(t, err, form.ErrSubmissionInProgress)

	// Another visitor has their own form.
	other := validInput
	other.Name = "Karim"
	out, err := uc.PlaceOrder(context.Background(), "s2", other, domain.ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, domain.StateSuccess, out.State)

	close(unblock)
	require.NoError(t, <-done)
	assert.False(t, uc.State("s1").ButtonDisabled)
}

func TestSession_ReusedAcrossCalls(t *testing.T) {
	uc := newTestOrderUsecase(&mockTransport{}, nil)

	assert.Same(t, uc.Session("abc"), uc.Session("abc"))
	assert.NotSame(t, uc.Session("abc"), uc.Session("def"))
	assert.Equal(t, 2, uc.Sessions())
}

func TestValidate_Feedback(t *testing.T) {
	uc := newTestOrderUsecase(&mockTransport{}, nil)

	fb := uc.Validate("s1", OrderInput{Name: "Al", Mobile: "017-1234-5678", Address: "Dhaka"})

	assert.False(t, fb[domain.FieldName].Valid)
	assert.Equal(t, domain.BorderColorInvalid, fb[domain.FieldName].Color)
	assert.True(t, fb[domain.FieldMobile].Valid)
	assert.Equal(t, "01712345678", fb[domain.FieldMobile].Value)
	assert.False(t, fb[domain.FieldAddress].Valid)
}

func TestPlaceOrder_ConcurrentValidateDoesNotChangeSentOrder(t *testing.T) {
	var mismatched atomic.Int32
	transport := &mockTransport{SubmitFn: func(ctx context.Context, order domain.Order) (*domain.EndpointResponse, error) {
		if order.Name != "Rahim Uddin" || order.Address != validInput.Address {
			mismatched.Add(1)
		}
		return &domain.EndpointResponse{Status: "success"}, nil
	}}
	uc := newTestOrderUsecase(transport, nil)

	other := OrderInput{Name: "Karim", Mobile: "01812345678", Address: "Road 7, Agrabad, Chattogram"}
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					uc.Validate("s1", other)
				}
			}
		}()
	}

	for i := 0; i < 2000; i++ {
		_, err := uc.PlaceOrder(context.Background(), "s1", validInput, domain.ClientMeta{})
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()

	assert.Zero(t, mismatched.Load())
}

func TestPlaceOrder_PendingSessionSurvivesExpiry(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	var once sync.Once
	transport := &mockTransport{SubmitFn: func(ctx context.Context, order domain.Order) (*domain.EndpointResponse, error) {
		once.Do(func() { close(entered) })
		<-unblock
		return &domain.EndpointResponse{Status: "success"}, nil
	}}
	ttl := 20 * time.Millisecond
	uc := NewOrderUsecase(memcache.NewMemoryCache(ttl, 0), transport, nil, "YN Rice Cooker 1.8L", ttl)

	done := make(chan error)
	go func() {
		_, err := uc.PlaceOrder(context.Background(), "s1", validInput, domain.ClientMeta{})
		done <- err
	}()
	<-entered
	time.Sleep(3 * ttl)

	_, err := uc.PlaceOrder(context.Background(), "s1", validInput, domain.ClientMeta{})
	assert.ErrorIs(t, err, form.ErrSubmissionInProgress)
	uc.mu.Lock()
	assert.Len(t, uc.pinned, 1)
	uc.mu.Unlock()

	close(unblock)
	require.NoError(t, <-done)

	uc.mu.Lock()
	assert.Empty(t, uc.pinned)
	uc.mu.Unlock()
}
