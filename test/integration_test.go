//go:build integration

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anshikasharma148/restaurant-management-metro/internal/auth"
	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
	"github.com/anshikasharma148/restaurant-management-metro/internal/menu"
	"github.com/anshikasharma148/restaurant-management-metro/internal/orders"
	"github.com/anshikasharma148/restaurant-management-metro/internal/settings"
	"github.com/anshikasharma148/restaurant-management-metro/internal/tables"
	"github.com/anshikasharma148/restaurant-management-metro/internal/users"
)

func seedCashier(ctx context.Context, t *testing.T, userRepo *users.UserRepository) *domain.User {
	t.Helper()

	hash, err := auth.HashPassword("cashier123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		Name:         "Test Cashier",
		Email:        "cashier@test.local",
		PasswordHash: hash,
		Role:         domain.RoleCashier,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestOrderCreationFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	logger := slog.Default()
	userRepo := users.NewUserRepository(db)
	orderRepo := orders.NewOrderRepository(db)
	tableRepo := tables.NewTableRepository(db)
	settingsRepo := settings.NewSettingsRepository(db)

	cashier := seedCashier(ctx, t, userRepo)
	handler := orders.NewHandler(orderRepo, tableRepo, settingsRepo, nil, nil, logger)

	reqBody := `{"type": "takeaway", "items": [{"menu_item_id": "11111111-1111-1111-1111-111111111111", "name": "Classic Burger", "quantity": 2, "price": 11.99}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{
		UserID: cashier.ID,
		Name:   cashier.Name,
		Role:   cashier.Role,
	}))
	rec := httptest.NewRecorder()

	handler.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created domain.Order
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if created.ID == "" {
		t.Fatal("expected order ID to be set")
	}

	wantPrefix := time.Now().UTC().Format("20060102")
	if created.OrderNumber != wantPrefix+"001" {
		t.Fatalf("expected order number %s001, got %s", wantPrefix, created.OrderNumber)
	}
	if created.Status != domain.OrderStatusPending {
		t.Fatalf("expected status '%s', got '%s'", domain.OrderStatusPending, created.Status)
	}

	// Default settings apply 10% tax to the post-discount subtotal.
	if created.Subtotal != 23.98 {
		t.Fatalf("expected subtotal 23.98, got %v", created.Subtotal)
	}
	wantTotal := 23.98 + 23.98*(10.0/100)
	if created.Total != wantTotal {
		t.Fatalf("expected total %v, got %v", wantTotal, created.Total)
	}

	fetched, err := orderRepo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("failed to fetch order from DB: %v", err)
	}
	if fetched == nil {
		t.Fatal("order not found in database")
	}
	if fetched.OrderNumber != created.OrderNumber {
		t.Fatalf("DB order number mismatch: expected '%s', got '%s'", created.OrderNumber, fetched.OrderNumber)
	}
	if len(fetched.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(fetched.Items))
	}
}

func TestOrderNumberSequence(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	userRepo := users.NewUserRepository(db)
	orderRepo := orders.NewOrderRepository(db)

	cashier := seedCashier(ctx, t, userRepo)
	prefix := time.Now().UTC().Format("20060102")

	for i := 1; i <= 3; i++ {
		order := &domain.Order{
			OrderNumber: fmt.Sprintf("%s%03d", prefix, i),
			Type:        domain.OrderTypeTakeaway,
			Status:      domain.OrderStatusPending,
			Items: []domain.OrderLineItem{
				{MenuItemID: "11111111-1111-1111-1111-111111111111", Name: "Coffee", Quantity: 1, Price: 2.49},
			},
			Subtotal:  2.49,
			Tax:       0.249,
			Total:     2.739,
			CreatedBy: cashier.ID,
			CreatedAt: time.Now().UTC(),
		}
		if err := orderRepo.Create(ctx, order); err != nil {
			t.Fatalf("failed to create order %d: %v", i, err)
		}
	}

	latest, err := orderRepo.LatestOrderNumberWithPrefix(ctx, prefix)
	if err != nil {
		t.Fatalf("failed to look up latest order number: %v", err)
	}
	if latest != prefix+"003" {
		t.Fatalf("expected latest number %s003, got %s", prefix, latest)
	}

	// A duplicate number must be rejected by the unique constraint.
	dup := &domain.Order{
		OrderNumber: prefix + "003",
		Type:        domain.OrderTypeTakeaway,
		Status:      domain.OrderStatusPending,
		CreatedBy:   cashier.ID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := orderRepo.Create(ctx, dup); err != orders.ErrDuplicateOrderNumber {
		t.Fatalf("expected ErrDuplicateOrderNumber, got %v", err)
	}
}

func TestMenuItemListing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	menuRepo := menu.NewMenuRepository(db)

	burgers := &domain.MenuCategory{Name: "Burgers", Emoji: "🍔"}
	if err := menuRepo.CreateCategory(ctx, burgers); err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	drinks := &domain.MenuCategory{Name: "Drinks", Emoji: "🥤"}
	if err := menuRepo.CreateCategory(ctx, drinks); err != nil {
		t.Fatalf("failed to create category: %v", err)
	}

	items := []*domain.MenuItem{
		{Name: "Classic Burger", Price: 8.99, CategoryID: burgers.ID, Available: true,
			Variants: []domain.MenuVariant{{Name: "Single"}, {Name: "Double", PriceModifier: 4}}},
		{Name: "Cola", Price: 2.49, CategoryID: drinks.ID, Available: true},
	}
	for _, item := range items {
		if err := menuRepo.CreateItem(ctx, item); err != nil {
			t.Fatalf("failed to create item %q: %v", item.Name, err)
		}
	}

	// Unfiltered listing returns everything.
	all, err := menuRepo.ListItems(ctx, menu.ItemFilter{})
	if err != nil {
		t.Fatalf("failed to list items: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}

	// Category filter narrows to that category's items.
	filtered, err := menuRepo.ListItems(ctx, menu.ItemFilter{CategoryID: burgers.ID})
	if err != nil {
		t.Fatalf("failed to list items by category: %v", err)
	}
	if len(filtered) != 1 {
		t.Fatalf("expected 1 item in category, got %d", len(filtered))
	}
	if filtered[0].Name != "Classic Burger" {
		t.Fatalf("expected 'Classic Burger', got %q", filtered[0].Name)
	}
	if len(filtered[0].Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(filtered[0].Variants))
	}

	available := true
	search, err := menuRepo.ListItems(ctx, menu.ItemFilter{Search: "cola", Available: &available})
	if err != nil {
		t.Fatalf("failed to search items: %v", err)
	}
	if len(search) != 1 || search[0].Name != "Cola" {
		t.Fatalf("expected search to match Cola, got %v", search)
	}
}

func TestSettingsDefaults(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := settings.NewSettingsRepository(db)

	s, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	if s.TaxRate != 10 {
		t.Fatalf("expected default tax rate 10, got %v", s.TaxRate)
	}
	if len(s.OperatingHours) != 7 {
		t.Fatalf("expected 7 operating hour entries, got %d", len(s.OperatingHours))
	}

	s.TaxRate = 12.5
	if err := repo.Update(ctx, &s); err != nil {
		t.Fatalf("failed to update settings: %v", err)
	}

	updated, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("failed to re-read settings: %v", err)
	}
	if updated.TaxRate != 12.5 {
		t.Fatalf("expected tax rate 12.5, got %v", updated.TaxRate)
	}
}

func TestKafkaConnection(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	brokers, cleanup := SetupKafka(ctx, t)
	defer cleanup()

	if len(brokers) == 0 {
		t.Fatal("expected at least one broker")
	}

	t.Logf("kafka brokers: %v", brokers)
}
