package orders

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshikasharma148/restaurant-management-metro/internal/auth"
	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
)

type fakeOrderStore struct {
	latest       func(ctx context.Context, prefix string) (string, error)
	create       func(ctx context.Context, order *domain.Order) error
	getByID      func(ctx context.Context, id string) (*domain.Order, error)
	list         func(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	update       func(ctx context.Context, order *domain.Order) error
	updateStatus func(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	delete       func(ctx context.Context, id string) error
}

func (s *fakeOrderStore) LatestOrderNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	if s.latest == nil {
		return "", nil
	}
	return s.latest(ctx, prefix)
}

func (s *fakeOrderStore) Create(ctx context.Context, order *domain.Order) error {
	return s.create(ctx, order)
}

func (s *fakeOrderStore) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.getByID(ctx, id)
}

func (s *fakeOrderStore) List(ctx context.Context, filter ListFilter) ([]domain.Order, error) {
	return s.list(ctx, filter)
}

func (s *fakeOrderStore) Update(ctx context.Context, order *domain.Order) error {
	return s.update(ctx, order)
}

func (s *fakeOrderStore) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	return s.updateStatus(ctx, id, status)
}

func (s *fakeOrderStore) Delete(ctx context.Context, id string) error {
	return s.delete(ctx, id)
}

type fakeTableStore struct {
	getByNumber func(ctx context.Context, number int) (*domain.Table, error)
	statusSets  []domain.TableStatus
}

func (s *fakeTableStore) GetByNumber(ctx context.Context, number int) (*domain.Table, error) {
	if s.getByNumber == nil {
		return &domain.Table{Number: number, Status: domain.TableStatusAvailable}, nil
	}
	return s.getByNumber(ctx, number)
}

func (s *fakeTableStore) SetStatusByNumber(_ context.Context, _ int, status domain.TableStatus) error {
	s.statusSets = append(s.statusSets, status)
	return nil
}

type fakeSettingsStore struct {
	taxRate float64
}

func (s *fakeSettingsStore) Get(context.Context) (domain.Settings, error) {
	settings := domain.DefaultSettings()
	settings.TaxRate = s.taxRate
	return settings, nil
}

type fakePublisher struct {
	events []any
}

func (p *fakePublisher) Publish(_ context.Context, _ string, event any) error {
	p.events = append(p.events, event)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authedRequest(method, target, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{
		UserID: "user-1",
		Name:   "Test Cashier",
		Role:   domain.RoleCashier,
	}))
}

func TestHandler_HandleCreate(t *testing.T) {
	t.Run("creates a takeaway order with generated number and totals", func(t *testing.T) {
		var stored *domain.Order
		store := &fakeOrderStore{
			create: func(_ context.Context, order *domain.Order) error {
				stored = order
				return nil
			},
		}
		publisher := &fakePublisher{}
		handler := NewHandler(store, &fakeTableStore{}, &fakeSettingsStore{taxRate: 10}, publisher, publisher, testLogger())

		body := `{"type": "takeaway", "items": [{"menu_item_id": "m1", "name": "Classic Burger", "quantity": 2, "price": 11.99}]}`
		rec := httptest.NewRecorder()
		handler.HandleCreate(rec, authedRequest(http.MethodPost, "/orders", body))

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.NotNil(t, stored)

		prefix := time.Now().UTC().Format("20060102")
		assert.Equal(t, prefix+"001", stored.OrderNumber)
		assert.Equal(t, domain.OrderStatusPending, stored.Status)
		assert.Equal(t, "user-1", stored.CreatedBy)
		assert.InDelta(t, 23.98, stored.Subtotal, 1e-9)
		assert.InDelta(t, 2.398, stored.Tax, 1e-9)
		assert.InDelta(t, 26.378, stored.Total, 1e-9)

		require.Len(t, publisher.events, 1)
		event, ok := publisher.events[0].(domain.OrderCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, stored.OrderNumber, event.OrderNumber)
	})

	t.Run("retries on a duplicate number and succeeds", func(t *testing.T) {
		attempts := 0
		store := &fakeOrderStore{
			create: func(context.Context, *domain.Order) error {
				attempts++
				if attempts < 3 {
					return ErrDuplicateOrderNumber
				}
				return nil
			},
		}
		handler := NewHandler(store, &fakeTableStore{}, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		body := `{"type": "takeaway", "items": [{"menu_item_id": "m1", "name": "Coffee", "quantity": 1, "price": 2.49}]}`
		rec := httptest.NewRecorder()
		handler.HandleCreate(rec, authedRequest(http.MethodPost, "/orders", body))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up after the retry budget and returns 503", func(t *testing.T) {
		attempts := 0
		store := &fakeOrderStore{
			create: func(context.Context, *domain.Order) error {
				attempts++
				return ErrDuplicateOrderNumber
			},
		}
		handler := NewHandler(store, &fakeTableStore{}, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		body := `{"type": "takeaway", "items": [{"menu_item_id": "m1", "name": "Coffee", "quantity": 1, "price": 2.49}]}`
		rec := httptest.NewRecorder()
		handler.HandleCreate(rec, authedRequest(http.MethodPost, "/orders", body))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, numberRetryBudget, attempts)
	})

	t.Run("rejects the 1000th order of a day with 409", func(t *testing.T) {
		store := &fakeOrderStore{
			latest: func(_ context.Context, prefix string) (string, error) {
				return prefix + "999", nil
			},
			create: func(context.Context, *domain.Order) error {
				t.Fatal("create should not be reached")
				return nil
			},
		}
		handler := NewHandler(store, &fakeTableStore{}, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		body := `{"type": "takeaway", "items": [{"menu_item_id": "m1", "name": "Coffee", "quantity": 1, "price": 2.49}]}`
		rec := httptest.NewRecorder()
		handler.HandleCreate(rec, authedRequest(http.MethodPost, "/orders", body))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("requires a table number for dine-in orders", func(t *testing.T) {
		handler := NewHandler(&fakeOrderStore{}, &fakeTableStore{}, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		body := `{"type": "dine-in", "items": [{"menu_item_id": "m1", "name": "Coffee", "quantity": 1, "price": 2.49}]}`
		rec := httptest.NewRecorder()
		handler.HandleCreate(rec, authedRequest(http.MethodPost, "/orders", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns 404 for an unknown table", func(t *testing.T) {
		tables := &fakeTableStore{
			getByNumber: func(context.Context, int) (*domain.Table, error) {
				return nil, nil
			},
		}
		handler := NewHandler(&fakeOrderStore{}, tables, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		body := `{"type": "dine-in", "table_number": 42, "items": [{"menu_item_id": "m1", "name": "Coffee", "quantity": 1, "price": 2.49}]}`
		rec := httptest.NewRecorder()
		handler.HandleCreate(rec, authedRequest(http.MethodPost, "/orders", body))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects an occupied table", func(t *testing.T) {
		tables := &fakeTableStore{
			getByNumber: func(_ context.Context, number int) (*domain.Table, error) {
				return &domain.Table{Number: number, Status: domain.TableStatusOccupied}, nil
			},
		}
		handler := NewHandler(&fakeOrderStore{}, tables, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		body := `{"type": "dine-in", "table_number": 3, "items": [{"menu_item_id": "m1", "name": "Coffee", "quantity": 1, "price": 2.49}]}`
		rec := httptest.NewRecorder()
		handler.HandleCreate(rec, authedRequest(http.MethodPost, "/orders", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("occupies the table on a successful dine-in order", func(t *testing.T) {
		store := &fakeOrderStore{
			create: func(context.Context, *domain.Order) error { return nil },
		}
		tables := &fakeTableStore{}
		handler := NewHandler(store, tables, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		body := `{"type": "dine-in", "table_number": 3, "items": [{"menu_item_id": "m1", "name": "Coffee", "quantity": 1, "price": 2.49}]}`
		rec := httptest.NewRecorder()
		handler.HandleCreate(rec, authedRequest(http.MethodPost, "/orders", body))

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, tables.statusSets, 1)
		assert.Equal(t, domain.TableStatusOccupied, tables.statusSets[0])
	})

	t.Run("rejects an order without items", func(t *testing.T) {
		handler := NewHandler(&fakeOrderStore{}, &fakeTableStore{}, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		rec := httptest.NewRecorder()
		handler.HandleCreate(rec, authedRequest(http.MethodPost, "/orders", `{"type": "takeaway", "items": []}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a non-positive quantity", func(t *testing.T) {
		handler := NewHandler(&fakeOrderStore{}, &fakeTableStore{}, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		body := `{"type": "takeaway", "items": [{"menu_item_id": "m1", "name": "Coffee", "quantity": 0, "price": 2.49}]}`
		rec := httptest.NewRecorder()
		handler.HandleCreate(rec, authedRequest(http.MethodPost, "/orders", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_HandleUpdate(t *testing.T) {
	pendingOrder := func() *domain.Order {
		return &domain.Order{
			ID:     "order-1",
			Status: domain.OrderStatusPending,
			Items: []domain.OrderLineItem{
				{MenuItemID: "m1", Name: "Coffee", Quantity: 1, Price: 2.49},
			},
			Subtotal: 2.49,
			Total:    2.739,
		}
	}

	t.Run("recomputes totals when items change", func(t *testing.T) {
		var updated *domain.Order
		store := &fakeOrderStore{
			getByID: func(context.Context, string) (*domain.Order, error) {
				return pendingOrder(), nil
			},
			update: func(_ context.Context, order *domain.Order) error {
				updated = order
				return nil
			},
		}
		handler := NewHandler(store, &fakeTableStore{}, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		body := `{"items": [{"menu_item_id": "m2", "name": "Steak Frites", "quantity": 1, "price": 100}], "discount": 20}`
		req := authedRequest(http.MethodPut, "/orders/order-1", body)
		req.SetPathValue("id", "order-1")
		rec := httptest.NewRecorder()
		handler.HandleUpdate(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NotNil(t, updated)
		assert.InDelta(t, 100, updated.Subtotal, 1e-9)
		assert.InDelta(t, 20, updated.Discount, 1e-9)
		assert.InDelta(t, 8, updated.Tax, 1e-9)
		assert.InDelta(t, 88, updated.Total, 1e-9)
	})

	t.Run("updates notes without touching totals", func(t *testing.T) {
		var updated *domain.Order
		store := &fakeOrderStore{
			getByID: func(context.Context, string) (*domain.Order, error) {
				return pendingOrder(), nil
			},
			update: func(_ context.Context, order *domain.Order) error {
				updated = order
				return nil
			},
		}
		handler := NewHandler(store, &fakeTableStore{}, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		req := authedRequest(http.MethodPut, "/orders/order-1", `{"notes": "no sugar"}`)
		req.SetPathValue("id", "order-1")
		rec := httptest.NewRecorder()
		handler.HandleUpdate(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, updated)
		assert.Equal(t, "no sugar", updated.Notes)
		assert.InDelta(t, 2.49, updated.Subtotal, 1e-9)
	})

	t.Run("refuses to update a non-pending order", func(t *testing.T) {
		store := &fakeOrderStore{
			getByID: func(context.Context, string) (*domain.Order, error) {
				return &domain.Order{ID: "order-1", Status: domain.OrderStatusPreparing}, nil
			},
		}
		handler := NewHandler(store, &fakeTableStore{}, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		req := authedRequest(http.MethodPut, "/orders/order-1", `{"notes": "too late"}`)
		req.SetPathValue("id", "order-1")
		rec := httptest.NewRecorder()
		handler.HandleUpdate(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects an out-of-range discount", func(t *testing.T) {
		handler := NewHandler(&fakeOrderStore{}, &fakeTableStore{}, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		req := authedRequest(http.MethodPut, "/orders/order-1", `{"discount": 120}`)
		req.SetPathValue("id", "order-1")
		rec := httptest.NewRecorder()
		handler.HandleUpdate(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_HandleUpdateStatus(t *testing.T) {
	t.Run("releases the table and publishes an event on completion", func(t *testing.T) {
		tableNumber := 3
		store := &fakeOrderStore{
			updateStatus: func(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
				return &domain.Order{
					ID:          id,
					OrderNumber: "20250114001",
					Type:        domain.OrderTypeDineIn,
					TableNumber: &tableNumber,
					Status:      status,
				}, nil
			},
		}
		tables := &fakeTableStore{}
		publisher := &fakePublisher{}
		handler := NewHandler(store, tables, &fakeSettingsStore{taxRate: 10}, publisher, publisher, testLogger())

		req := authedRequest(http.MethodPatch, "/orders/order-1/status", `{"status": "completed"}`)
		req.SetPathValue("id", "order-1")
		rec := httptest.NewRecorder()
		handler.HandleUpdateStatus(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, tables.statusSets, 1)
		assert.Equal(t, domain.TableStatusAvailable, tables.statusSets[0])

		require.Len(t, publisher.events, 1)
		event, ok := publisher.events[0].(domain.OrderStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, domain.OrderStatusCompleted, event.Status)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		handler := NewHandler(&fakeOrderStore{}, &fakeTableStore{}, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		req := authedRequest(http.MethodPatch, "/orders/order-1/status", `{"status": "cancelled"}`)
		req.SetPathValue("id", "order-1")
		rec := httptest.NewRecorder()
		handler.HandleUpdateStatus(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns 404 for an unknown order", func(t *testing.T) {
		store := &fakeOrderStore{
			updateStatus: func(context.Context, string, domain.OrderStatus) (*domain.Order, error) {
				return nil, nil
			},
		}
		handler := NewHandler(store, &fakeTableStore{}, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		req := authedRequest(http.MethodPatch, "/orders/missing/status", `{"status": "ready"}`)
		req.SetPathValue("id", "missing")
		rec := httptest.NewRecorder()
		handler.HandleUpdateStatus(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_HandleDelete(t *testing.T) {
	t.Run("deletes a dine-in order and releases its table", func(t *testing.T) {
		tableNumber := 5
		deleted := false
		store := &fakeOrderStore{
			getByID: func(context.Context, string) (*domain.Order, error) {
				return &domain.Order{
					ID:          "order-1",
					Type:        domain.OrderTypeDineIn,
					TableNumber: &tableNumber,
				}, nil
			},
			delete: func(context.Context, string) error {
				deleted = true
				return nil
			},
		}
		tables := &fakeTableStore{}
		handler := NewHandler(store, tables, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		req := authedRequest(http.MethodDelete, "/orders/order-1", "")
		req.SetPathValue("id", "order-1")
		rec := httptest.NewRecorder()
		handler.HandleDelete(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, deleted)
		require.Len(t, tables.statusSets, 1)
		assert.Equal(t, domain.TableStatusAvailable, tables.statusSets[0])
	})

	t.Run("refuses to delete a paid order", func(t *testing.T) {
		store := &fakeOrderStore{
			getByID: func(context.Context, string) (*domain.Order, error) {
				return &domain.Order{ID: "order-1", Status: domain.OrderStatusCompleted}, nil
			},
			delete: func(context.Context, string) error {
				return ErrOrderHasPayment
			},
		}
		tables := &fakeTableStore{}
		handler := NewHandler(store, tables, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		req := authedRequest(http.MethodDelete, "/orders/order-1", "")
		req.SetPathValue("id", "order-1")
		rec := httptest.NewRecorder()
		handler.HandleDelete(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Empty(t, tables.statusSets)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "cannot delete a paid order", resp["error"])
	})
}

func TestHandler_HandleList(t *testing.T) {
	t.Run("passes filters through to the store", func(t *testing.T) {
		var got ListFilter
		store := &fakeOrderStore{
			list: func(_ context.Context, filter ListFilter) ([]domain.Order, error) {
				got = filter
				return []domain.Order{}, nil
			},
		}
		handler := NewHandler(store, &fakeTableStore{}, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		req := authedRequest(http.MethodGet, "/orders?status=pending&type=takeaway&startDate=2025-01-14T00:00:00Z", "")
		rec := httptest.NewRecorder()
		handler.HandleList(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.OrderStatusPending, got.Status)
		assert.Equal(t, domain.OrderTypeTakeaway, got.Type)
		assert.False(t, got.StartDate.IsZero())

		var body []domain.Order
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	})

	t.Run("rejects a bad date filter", func(t *testing.T) {
		handler := NewHandler(&fakeOrderStore{}, &fakeTableStore{}, &fakeSettingsStore{taxRate: 10}, nil, nil, testLogger())

		rec := httptest.NewRecorder()
		handler.HandleList(rec, authedRequest(http.MethodGet, "/orders?startDate=yesterday", ""))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
