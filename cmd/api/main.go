package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/solterito-inventario/internal/application/auth"
	"github.com/jhoicas/solterito-inventario/internal/application/catalog"
	"github.com/jhoicas/solterito-inventario/internal/application/ledger"
	"github.com/jhoicas/solterito-inventario/internal/application/reports"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
	"github.com/jhoicas/solterito-inventario/internal/infrastructure/cache"
	"github.com/jhoicas/solterito-inventario/internal/infrastructure/memory"
	"github.com/jhoicas/solterito-inventario/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/solterito-inventario/internal/infrastructure/pdf"
	"github.com/jhoicas/solterito-inventario/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/solterito-inventario/internal/interfaces/http"
	"github.com/jhoicas/solterito-inventario/pkg/config"
	"github.com/jhoicas/solterito-inventario/pkg/logger"
)

// stores agrupa los adaptadores de persistencia según STORE_DRIVER.
type stores struct {
	tx interface {
		ledger.TxRunner
		catalog.TxRunner
	}
	products   repository.ProductRepository
	movements  repository.MovementRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	reports    repository.ReportRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	m := metrics.New(cfg.Metrics.Prefix)

	summaryOpts := []reports.Option{
		reports.WithLogger(log),
		reports.WithPDF(infrapdf.NewMarotoReportGenerator(cfg.App.Name)),
	}
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			// sin caché los reportes siguen funcionando contra la base
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, reportes sin caché")
		} else {
			defer rdb.Close()
			summaryOpts = append(summaryOpts, reports.WithCache(cache.NewRedisCache(rdb, cfg.App.Name), cfg.Redis.ReportCacheTTL))
		}
	}
	summaryUC := reports.NewSummaryUseCase(st.reports, summaryOpts...)

	ledgerSvc := ledger.NewService(st.tx, st.products, st.movements,
		ledger.WithLogger(log),
		ledger.WithRecorder(m),
		ledger.WithAfterCommit(func(ctx context.Context, _ *entity.Movement) { summaryUC.Invalidate(ctx) }),
	)
	categoryUC := catalog.NewCategoryUseCase(st.tx, st.categories, summaryUC.Invalidate)
	productUC := catalog.NewProductUseCase(st.products, st.categories, ledgerSvc, summaryUC.Invalidate)

	authUC := auth.NewAuthUseCase(st.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	created, err := authUC.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		log.Fatal().Err(err).Msg("crear administrador inicial")
	}
	if created {
		log.Info().Str("username", cfg.Admin.Username).Msg("administrador inicial creado")
	}

	limiter := httpRouter.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.RunCleanup(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http"), m))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		CategoryUC:   categoryUC,
		ProductUC:    productUC,
		Ledger:       ledgerSvc,
		ReportsUC:    summaryUC,
		LoginLimiter: limiter,
		Metrics:      m.Handler(),
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn().Msg("usando almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore(memory.WithLockTimeout(cfg.Ledger.LockTimeout))
		return &stores{
			tx:         memory.NewTxRunner(s),
			products:   memory.NewProductRepository(s),
			movements:  memory.NewMovementRepository(s),
			categories: memory.NewCategoryRepository(s),
			users:      memory.NewUserRepository(s),
			reports:    memory.NewReportRepository(s),
			close:      func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, cfg.DB.ConnectionString()); err != nil {
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &stores{
		tx:         postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout),
		products:   postgres.NewProductRepository(pool),
		movements:  postgres.NewMovementRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		users:      postgres.NewUserRepository(pool),
		reports:    postgres.NewReportRepository(pool),
		close:      pool.Close,
	}, nil
}
