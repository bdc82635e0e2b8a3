package main

import (
	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logger"
	"storefront/internal/server"
	"storefront/internal/session"
	"storefront/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// .envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.GoEnv)
	defer logger.Sync()

	//DB接続
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

	//セッションカート用Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	//Repository（GORM/Redis実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	cartStore := infraRepo.NewCartRedisStore(rdb, cfg.SessionTTL)

	//Usecase生成
	cartSvc := usecase.NewCartService(productRepo)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo)
	authUC := usecase.NewAuthUsecase(cfg, userRepo)

	//Handler生成
	locks := session.NewLocker()
	productH := handler.NewProductHandler(productUC)
	cartH := handler.NewCartHandler(cartSvc, cartStore, locks)
	authH := handler.NewAuthHandler(authUC, cfg)
	adminH := handler.NewAdminProductHandler(productUC)

	//Server起動
	addr := ":" + cfg.Port
	logger.Log.Info("starting server", zap.String("addr", addr))
	if err := server.Start(addr, cfg, productH, cartH, authH, adminH); err != nil {
		logger.Log.Fatal("server stopped", zap.Error(err))
	}
}
