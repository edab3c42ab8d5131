package cli

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"ledgerbot/internal/config"
	"ledgerbot/internal/logging"
	"ledgerbot/internal/repository"
	"ledgerbot/internal/service"
)

// app общая сборка для всех команд
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	ledger   repository.Ledger
	products *service.ProductService
	clients  *service.ClientService
	orders   *service.OrderService
	payments *service.PaymentService
	close    func() error
}

func loadApp(needToken bool) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(needToken); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	ledger, closeFn, err := openLedger(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:      cfg,
		logger:   logger,
		ledger:   ledger,
		products: service.NewProductService(ledger.Products),
		clients:  service.NewClientService(ledger, cfg.Telegram.Admins),
		orders:   service.NewOrderService(ledger),
		payments: service.NewPaymentService(ledger),
		close:    closeFn,
	}, nil
}

// openLedger хранилище по драйверу; схема мигрируется при открытии
func openLedger(conf config.StorageConfig, logger *log.Logger) (repository.Ledger, func() error, error) {
	if conf.Driver == "memory" {
		logger.Warn("memory storage: data is lost on restart")
		return repository.NewMemoryLedger(repository.NewMemoryStore()), func() error { return nil }, nil
	}
	db, err := repository.OpenGorm(conf.Driver, conf.DSN)
	if err != nil {
		return repository.Ledger{}, nil, err
	}
	if err := repository.Migrate(db); err != nil {
		return repository.Ledger{}, nil, fmt.Errorf("migrate: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return repository.Ledger{}, nil, err
	}
	logger.WithField("driver", conf.Driver).Info("storage opened")
	return repository.NewGormLedger(db), sqlDB.Close, nil
}
