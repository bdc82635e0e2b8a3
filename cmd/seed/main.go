package main

import (
	"flag"
	"os"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db"
	"storefront/internal/logger"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 開発用のカタログ・ユーザー投入。
// 既にデータがあれば何もしない。-fresh で商品を入れ直す。
func main() {
	fresh := flag.Bool("fresh", false, "wipe products before seeding")
	flag.Parse()

	_ = godotenv.Load()

	logger.Init(os.Getenv("GO_ENV"))
	defer logger.Sync()

	gormDB, err := db.Connect()
	if err != nil {
		logger.Log.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.User{},
		&model.InventoryAdjustment{},
	); err != nil {
		logger.Log.Fatal("auto migrate failed", zap.Error(err))
	}

	if *fresh {
		//ソフトデリート分も含めて消す
		if err := gormDB.Unscoped().Where("1 = 1").Delete(&model.Product{}).Error; err != nil {
			logger.Log.Fatal("wipe products failed", zap.Error(err))
		}
	}

	var count int64
	if err := gormDB.Model(&model.Product{}).Count(&count).Error; err != nil {
		logger.Log.Fatal("count products failed", zap.Error(err))
	}

	if count == 0 {
		products := sampleProducts()
		if err := gormDB.Create(&products).Error; err != nil {
			logger.Log.Fatal("seed products failed", zap.Error(err))
		}
		logger.Log.Info("seeded products", zap.Int("count", len(products)))
	} else {
		logger.Log.Info("products already present, skipping", zap.Int64("count", count))
	}

	seedUser(gormDB, "admin", "admin@example.com", envOr("SEED_ADMIN_PASSWORD", "admin12345"), model.RoleAdmin)
	seedUser(gormDB, "john_doe", "john@example.com", envOr("SEED_USER_PASSWORD", "password123"), model.RoleUser)
}

// 同じemailが居れば何もしない
func seedUser(gormDB *gorm.DB, username, email, password string, role model.Role) {
	var count int64
	if err := gormDB.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		logger.Log.Fatal("count users failed", zap.Error(err))
	}
	if count > 0 {
		logger.Log.Info("user already present, skipping", zap.String("email", email))
		return
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Fatal("hash password failed", zap.Error(err))
	}

	user := model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(pwHash),
		Role:         role,
		IsActive:     true,
	}
	if err := gormDB.Create(&user).Error; err != nil {
		logger.Log.Fatal("seed user failed", zap.Error(err))
	}
	logger.Log.Info("seeded user", zap.String("email", email), zap.String("role", string(role)))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func sampleProducts() []model.Product {
	return []model.Product{
		{
			Name:        "Wireless Bluetooth Headphones",
			Description: "High-quality wireless headphones with noise cancellation and 30-hour battery life.",
			Price:       decimal.RequireFromString("149.99"),
			Stock:       15,
			ImageURL:    "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400&h=300&fit=crop",
			IsActive:    true,
		},
		{
			Name:        "Premium Coffee Maker",
			Description: "Programmable coffee maker with built-in grinder and thermal carafe.",
			Price:       decimal.RequireFromString("89.99"),
			Stock:       8,
			ImageURL:    "https://images.unsplash.com/photo-1495474472287-4d71bcdd2085?w=400&h=300&fit=crop",
			IsActive:    true,
		},
		{
			Name:        "Fitness Tracker Watch",
			Description: "Smart fitness tracker with heart rate monitor, GPS, and sleep tracking.",
			Price:       decimal.RequireFromString("199.99"),
			Stock:       12,
			ImageURL:    "https://images.unsplash.com/photo-1551698618-1dfe5d97d256?w=400&h=300&fit=crop",
			IsActive:    true,
		},
		{
			Name:        "Organic Cotton T-Shirt",
			Description: "Comfortable everyday tee made from 100% organic cotton.",
			Price:       decimal.RequireFromString("29.99"),
			Stock:       50,
			ImageURL:    "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=400&h=300&fit=crop",
			IsActive:    true,
		},
		{
			Name:        "Ceramic Coffee Mug Set",
			Description: "Set of four stoneware mugs, dishwasher and microwave safe.",
			Price:       decimal.RequireFromString("39.99"),
			Stock:       20,
			ImageURL:    "https://images.unsplash.com/photo-1514228742587-6b1558fcf93a?w=400&h=300&fit=crop",
			IsActive:    true,
		},
		{
			Name:        "Ergonomic Office Chair",
			Description: "Adjustable office chair with lumbar support and breathable mesh back.",
			Price:       decimal.RequireFromString("299.99"),
			Stock:       10,
			ImageURL:    "https://images.unsplash.com/photo-1586023492125-27b2c045efd7?w=400&h=300&fit=crop",
			IsActive:    true,
		},
		{
			Name:        "Smartphone Case",
			Description: "Slim shock-absorbing case with raised edges for screen protection.",
			Price:       decimal.RequireFromString("24.99"),
			Stock:       40,
			ImageURL:    "https://images.unsplash.com/photo-1601593346740-925612772716?w=400&h=300&fit=crop",
			IsActive:    true,
		},
	}
}
