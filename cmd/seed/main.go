package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/lib/pq"

	"github.com/anshikasharma148/restaurant-management-metro/internal/auth"
	"github.com/anshikasharma148/restaurant-management-metro/internal/config"
	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
	"github.com/anshikasharma148/restaurant-management-metro/internal/menu"
	"github.com/anshikasharma148/restaurant-management-metro/internal/settings"
	"github.com/anshikasharma148/restaurant-management-metro/internal/tables"
	"github.com/anshikasharma148/restaurant-management-metro/internal/telemetry"
	"github.com/anshikasharma148/restaurant-management-metro/internal/users"
)

type seedUser struct {
	name     string
	email    string
	password string
	role     domain.Role
}

type seedItem struct {
	name        string
	description string
	price       float64
	category    string
	emoji       string
	variants    []domain.MenuVariant
}

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	userRepo := users.NewUserRepository(db)
	menuRepo := menu.NewMenuRepository(db)
	tableRepo := tables.NewTableRepository(db)
	settingsRepo := settings.NewSettingsRepository(db)

	seedUsers := []seedUser{
		{"Admin User", "admin@metro.com", "admin123", domain.RoleAdmin},
		{"Manager User", "manager@metro.com", "manager123", domain.RoleManager},
		{"Cashier User", "cashier@metro.com", "cashier123", domain.RoleCashier},
		{"Kitchen Staff", "kitchen@metro.com", "kitchen123", domain.RoleKitchen},
	}

	for _, su := range seedUsers {
		hash, err := auth.HashPassword(su.password)
		if err != nil {
			logger.Error("failed to hash password", "error", err, "email", su.email)
			os.Exit(1)
		}
		user := &domain.User{Name: su.name, Email: su.email, PasswordHash: hash, Role: su.role}
		if err := userRepo.Create(ctx, user); err != nil {
			logger.Error("failed to create user", "error", err, "email", su.email)
			os.Exit(1)
		}
	}
	logger.Info("created users", "count", len(seedUsers))

	categories := []domain.MenuCategory{
		{Name: "Starters", Emoji: "🥗"},
		{Name: "Main Course", Emoji: "🍝"},
		{Name: "Burgers", Emoji: "🍔"},
		{Name: "Pizza", Emoji: "🍕"},
		{Name: "Desserts", Emoji: "🍰"},
		{Name: "Beverages", Emoji: "🥤"},
	}
	categoryIDs := make(map[string]string, len(categories))

	for i := range categories {
		if err := menuRepo.CreateCategory(ctx, &categories[i]); err != nil {
			logger.Error("failed to create category", "error", err, "name", categories[i].Name)
			os.Exit(1)
		}
		categoryIDs[categories[i].Name] = categories[i].ID
	}
	logger.Info("created categories", "count", len(categories))

	sizeVariants := []domain.MenuVariant{
		{Name: "Small", PriceModifier: 0},
		{Name: "Medium", PriceModifier: 3},
		{Name: "Large", PriceModifier: 6},
	}
	pattyVariants := []domain.MenuVariant{
		{Name: "Single", PriceModifier: 0},
		{Name: "Double", PriceModifier: 4},
	}

	items := []seedItem{
		{"Caesar Salad", "Fresh romaine, parmesan, croutons", 8.99, "Starters", "🥗", nil},
		{"Garlic Bread", "Toasted with herb butter", 4.99, "Starters", "🍞", nil},
		{"Soup of the Day", "Chef's special", 5.99, "Starters", "🍲", nil},
		{"Bruschetta", "Tomato, basil, olive oil", 6.99, "Starters", "🍅", nil},
		{"Grilled Salmon", "With lemon butter sauce", 18.99, "Main Course", "🐟", nil},
		{"Chicken Parmesan", "Breaded chicken with marinara", 15.99, "Main Course", "🍗", nil},
		{"Pasta Carbonara", "Creamy bacon pasta", 13.99, "Main Course", "🍝", nil},
		{"Steak Frites", "8oz ribeye with fries", 24.99, "Main Course", "🥩", []domain.MenuVariant{
			{Name: "Rare"}, {Name: "Medium"}, {Name: "Well Done"},
		}},
		{"Classic Burger", "Beef patty, lettuce, tomato", 11.99, "Burgers", "🍔", pattyVariants},
		{"Cheese Burger", "With cheddar cheese", 12.99, "Burgers", "🧀", pattyVariants},
		{"Veggie Burger", "Plant-based patty", 10.99, "Burgers", "🌱", nil},
		{"Margherita", "Tomato, mozzarella, basil", 12.99, "Pizza", "🍕", sizeVariants},
		{"Pepperoni", "Classic pepperoni pizza", 14.99, "Pizza", "🍕", sizeVariants},
		{"BBQ Chicken", "BBQ sauce, chicken, onions", 15.99, "Pizza", "🍕", sizeVariants},
		{"Chocolate Cake", "Rich chocolate layer cake", 6.99, "Desserts", "🍫", nil},
		{"Cheesecake", "New York style", 7.99, "Desserts", "🍰", nil},
		{"Ice Cream", "Three scoops", 4.99, "Desserts", "🍨", []domain.MenuVariant{
			{Name: "Vanilla"}, {Name: "Chocolate"}, {Name: "Strawberry"},
		}},
		{"Soft Drink", "Coca-Cola, Sprite, Fanta", 2.99, "Beverages", "🥤", nil},
		{"Fresh Juice", "Orange or Apple", 3.99, "Beverages", "🧃", []domain.MenuVariant{
			{Name: "Orange"}, {Name: "Apple"},
		}},
		{"Coffee", "Freshly brewed", 2.49, "Beverages", "☕", []domain.MenuVariant{
			{Name: "Regular"}, {Name: "Large", PriceModifier: 1},
		}},
		{"Beer", "Draft or bottled", 5.99, "Beverages", "🍺", nil},
	}

	for _, si := range items {
		item := &domain.MenuItem{
			Name:        si.name,
			Description: si.description,
			Price:       si.price,
			CategoryID:  categoryIDs[si.category],
			Emoji:       si.emoji,
			Variants:    si.variants,
			Available:   true,
		}
		if err := menuRepo.CreateItem(ctx, item); err != nil {
			logger.Error("failed to create menu item", "error", err, "name", si.name)
			os.Exit(1)
		}
	}
	logger.Info("created menu items", "count", len(items))

	capacities := []int{2, 2, 4, 4, 4, 6, 6, 8, 8, 10}
	for i, capacity := range capacities {
		table := &domain.Table{Number: i + 1, Capacity: capacity, Status: domain.TableStatusAvailable}
		if err := tableRepo.Create(ctx, table); err != nil {
			logger.Error("failed to create table", "error", err, "number", table.Number)
			os.Exit(1)
		}
	}
	logger.Info("created tables", "count", len(capacities))

	s := domain.DefaultSettings()
	s.Address = "123 Main Street, City"
	s.Phone = "+1 234 567 8900"
	if err := settingsRepo.Update(ctx, &s); err != nil {
		logger.Error("failed to create settings", "error", err)
		os.Exit(1)
	}
	logger.Info("created settings")

	logger.Info("seed data created",
		"admin", "admin@metro.com / admin123",
		"manager", "manager@metro.com / manager123",
		"cashier", "cashier@metro.com / cashier123",
		"kitchen", "kitchen@metro.com / kitchen123",
	)
}
