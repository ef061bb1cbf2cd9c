package main

import (
	"context"
	"time"

	"cocolytics/internal/alert"
	"cocolytics/internal/config"
	"cocolytics/internal/domain/model"
	"cocolytics/internal/handler"
	"cocolytics/internal/infra/db"
	"cocolytics/internal/infra/paymongo"
	"cocolytics/internal/infra/redisx"
	infraRepo "cocolytics/internal/infra/repository"
	"cocolytics/internal/server"
	"cocolytics/internal/usecase"
	auth "cocolytics/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// usecase.PaymentGateway ← paymongo.Client のアダプタ
type paymongoGateway struct {
	client *paymongo.Client
}

func (g *paymongoGateway) CreateSource(ctx context.Context, method string, amountInCentavos int64, successURL, failedURL string) (usecase.PaymentSource, error) {
	s, err := g.client.CreateSource(ctx, method, amountInCentavos, successURL, failedURL)
	if err != nil {
		return usecase.PaymentSource{}, err
	}
	return usecase.PaymentSource{ID: s.ID, CheckoutURL: s.CheckoutURL}, nil
}

func (g *paymongoGateway) CreatePayment(ctx context.Context, sourceID string, amountInCentavos int64, description string) (usecase.PaymentCharge, error) {
	p, err := g.client.CreatePayment(ctx, sourceID, amountInCentavos, description)
	if err != nil {
		return usecase.PaymentCharge{}, err
	}
	return usecase.PaymentCharge{ID: p.ID, Status: p.Status}, nil
}

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}

	//スキーマは起動時に1回だけ揃える
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.StockTransaction{},
		&model.WarehouseDispatch{},
		&model.Payment{},
		&model.Notification{},
	); err != nil {
		panic(err)
	}

	e := server.New(cfg.FrontendURL)

	//Redis（低在庫アラートの重複排除）。無くても起動する
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = redisx.New(context.Background(), cfg.RedisAddr)
		if err != nil {
			e.Logger.Warnf("redis unavailable, low stock alert dedupe degrades to in-memory: %v", err)
			rdb = nil
		}
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	notificationRepo := infraRepo.NewNotificationGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 24 * time.Hour,
	}

	//PayMongo
	paymongoClient := paymongo.NewClient(cfg.PaymongoSecretKey, cfg.PaymongoWebhookSecret)
	gateway := &paymongoGateway{client: paymongoClient}

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	productUC := usecase.NewProductUsecase(productRepo)
	orderUC := usecase.NewOrderUsecase(txManager, productRepo, gateway, cfg.FrontendURL)
	inventoryUC := usecase.NewInventoryUsecase(txManager)
	paymentUC := usecase.NewPaymentUsecase(txManager, gateway)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo)

	//Handler生成とルート登録
	server.RegisterRoutes(e, cfg, server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC),
		Product:      handler.NewProductHandler(productUC),
		Order:        handler.NewOrderHandler(orderUC),
		Inventory:    handler.NewInventoryHandler(inventoryUC),
		Warehouse:    handler.NewWarehouseHandler(inventoryUC),
		Payment:      handler.NewPaymentHandler(paymentUC, paymongoClient),
		Notification: handler.NewNotificationHandler(notificationUC),
	})

	//低在庫アラートのバックグラウンドスイープ
	sweeper := alert.NewLowStockSweeper(productRepo, notificationRepo, rdb, cfg.LowStockThreshold, cfg.AlertInterval)
	go sweeper.Run(context.Background())

	if err := e.Start(":" + cfg.Port); err != nil {
		e.Logger.Fatal(err)
	}
}
