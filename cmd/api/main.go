package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/worker"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envはローカル用。無くても環境変数があれば動く
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.Location{},
		&model.InventoryRecord{},
		&model.StockMovement{},
		&model.StockReservation{},
		&model.StockAdjustment{},
		&model.Alert{},
		&model.AuditLog{},
	); err != nil {
		logger.Fatal("auto migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	txManager := infraRepo.NewTxManagerGorm(gormDB)
	recordRepo := infraRepo.NewInventoryRecordGormRepository(gormDB)
	movementRepo := infraRepo.NewStockMovementGormRepository(gormDB)
	reservationRepo := infraRepo.NewStockReservationGormRepository(gormDB)
	adjustmentRepo := infraRepo.NewStockAdjustmentGormRepository(gormDB)
	alertRepo := infraRepo.NewAlertGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	locationRepo := infraRepo.NewLocationGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	//usecaseに渡す部品
	clock := &realClock{}

	emitMode := usecase.AlertEmitEveryTime
	if cfg.AlertEmitOnce {
		emitMode = usecase.AlertEmitOnceWhileOpen
	}
	expiryHorizon := time.Duration(cfg.AlertExpiryHorizonDays) * 24 * time.Hour
	alertEngine := usecase.NewAlertEngine(emitMode, expiryHorizon, clock)

	//Usecase生成
	inventoryUC := usecase.NewInventoryUsecase(txManager, recordRepo, alertEngine, clock)
	adjustmentUC := usecase.NewAdjustmentUsecase(txManager, adjustmentRepo, alertEngine, clock)
	transferUC := usecase.NewTransferUsecase(txManager, alertEngine, clock)
	reservationUC := usecase.NewReservationUsecase(txManager, reservationRepo, clock)
	ledgerUC := usecase.NewLedgerUsecase(txManager, movementRepo, recordRepo, alertEngine, clock)
	alertUC := usecase.NewAlertUsecase(alertRepo)
	catalogUC := usecase.NewCatalogUsecase(productRepo, locationRepo)
	auditUC := usecase.NewAuditUsecase(auditRepo)

	//期限切れ予約の回収worker
	reaper := worker.NewReservationReaper(
		reservationUC,
		clock,
		time.Duration(cfg.ReaperIntervalSeconds)*time.Second,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go reaper.Run(ctx)

	//Handler生成 + Server起動
	e := server.New(cfg,
		handler.NewAdminInventoryHandler(inventoryUC, adjustmentUC),
		handler.NewAdminTransferHandler(transferUC),
		handler.NewAdminLedgerHandler(ledgerUC),
		handler.NewAdminAlertHandler(alertUC),
		handler.NewAdminCatalogHandler(catalogUC),
		handler.NewAdminAuditHandler(auditUC),
		handler.NewReservationHandler(reservationUC, ledgerUC),
	)

	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.GoEnv == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
