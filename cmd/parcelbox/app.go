package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BearBump/ParcelBox/config"
	"github.com/BearBump/ParcelBox/internal/broker/kafka"
	"github.com/BearBump/ParcelBox/internal/cache/rediscache"
	"github.com/BearBump/ParcelBox/internal/display"
	"github.com/BearBump/ParcelBox/internal/integrations/courier"
	"github.com/BearBump/ParcelBox/internal/integrations/courier/fedexhttp"
	"github.com/BearBump/ParcelBox/internal/integrations/courier/upshttp"
	"github.com/BearBump/ParcelBox/internal/integrations/mailbox"
	mailboxfake "github.com/BearBump/ParcelBox/internal/integrations/mailbox/fake"
	"github.com/BearBump/ParcelBox/internal/integrations/mailbox/gmailhttp"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/BearBump/ParcelBox/internal/services/parcels"
	"github.com/BearBump/ParcelBox/internal/services/reconciler"
	"github.com/BearBump/ParcelBox/internal/storage/pgparcel"
	"github.com/BearBump/ParcelBox/internal/storage/sqliteparcel"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

type storage interface {
	Upsert(ctx context.Context, p *models.Parcel) error
	Get(ctx context.Context, trackingNumber string) (*models.Parcel, error)
	ListAll(ctx context.Context) ([]*models.Parcel, error)
	Delete(ctx context.Context, trackingNumber string) (bool, error)
}

type appFactories struct {
	newStorage     func(cfg *config.Config) (st storage, closeFn func(), err error)
	newMailbox     func(cfg *config.Config) (mailbox.Client, error)
	newRegistry    func(cfg *config.Config) *courier.Registry
	newProducer    func(cfg *config.Config) reconciler.Producer
	newRateLimiter func(cfg *config.Config) reconciler.RateLimiter
}

func defaultFactories() appFactories {
	return appFactories{
		newStorage: func(cfg *config.Config) (storage, func(), error) {
			switch cfg.Database.Driver {
			case "", "sqlite":
				path := cfg.Database.Path
				if path == "" {
					path = "parcels.db"
				}
				st, err := sqliteparcel.New(path)
				if err != nil {
					return nil, nil, err
				}
				return st, func() { _ = st.Close() }, nil
			case "postgres":
				sslMode := cfg.Database.SSLMode
				if sslMode == "" {
					sslMode = "disable"
				}
				connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
					cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
				st, err := pgparcel.New(connString)
				if err != nil {
					return nil, nil, err
				}
				return st, st.Close, nil
			default:
				return nil, nil, fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
			}
		},
		newMailbox: func(cfg *config.Config) (mailbox.Client, error) {
			// Без токена работаем на локальной заглушке: удобно для демо и тестов.
			if cfg.Gmail.TokenPath == "" {
				return mailboxfake.New(), nil
			}
			b, err := os.ReadFile(cfg.Gmail.TokenPath)
			if err != nil {
				return nil, errors.Wrap(err, "read gmail token")
			}
			return gmailhttp.New(cfg.Gmail.BaseURL, strings.TrimSpace(string(b))), nil
		},
		newRegistry: func(cfg *config.Config) *courier.Registry {
			return courier.NewRegistry(
				fedexhttp.New(cfg.Couriers.FedExBaseURL, cfg.Couriers.FedExAPIKey),
				upshttp.New(cfg.Couriers.UPSBaseURL, cfg.Couriers.UPSAPIKey),
			)
		},
		newProducer: func(cfg *config.Config) reconciler.Producer {
			if cfg.Kafka.Host == "" {
				return nil
			}
			brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
			return kafka.NewProducer(brokers)
		},
		newRateLimiter: func(cfg *config.Config) reconciler.RateLimiter {
			if cfg.Redis.Host == "" {
				return nil
			}
			return rediscache.NewRateLimiter(fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port))
		},
	}
}

type app struct {
	storage storage
	rec     *reconciler.Reconciler
	parcels *parcels.Service
	dash    *display.Dashboard

	closeFns []func()
}

func (a *app) close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
}

func buildApp(cfg *config.Config, f appFactories, out io.Writer) (*app, error) {
	a := &app{}

	stateDir := cfg.ParcelBox.StateDir
	if stateDir == "" {
		stateDir = "."
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create state dir")
	}

	// Одна работающая копия на каталог состояния: иначе два процесса
	// наперегонки пишут в базу и дёргают Gmail.
	lock := flock.New(filepath.Join(stateDir, "parcelbox.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, "acquire lock")
	}
	if !ok {
		return nil, errors.New("another parcelbox instance is already running")
	}
	a.closeFns = append(a.closeFns, func() { _ = lock.Unlock() })

	st, closeFn, err := f.newStorage(cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	a.storage = st
	if closeFn != nil {
		a.closeFns = append(a.closeFns, closeFn)
	}

	mb, err := f.newMailbox(cfg)
	if err != nil {
		a.close()
		return nil, err
	}

	checkInterval := time.Duration(cfg.ParcelBox.CheckIntervalMinutes) * time.Minute
	staleness := time.Duration(cfg.ParcelBox.StalenessMinutes) * time.Minute
	cooldown := time.Duration(cfg.ParcelBox.ErrorCooldownSeconds) * time.Second

	rec := reconciler.New(st, mb, f.newRegistry(cfg)).
		WithSettings(checkInterval, staleness, cooldown, cfg.Gmail.MaxEmailsPerCheck).
		WithSearchQuery(cfg.Gmail.SearchQuery)

	if p := f.newProducer(cfg); p != nil {
		topic := cfg.Kafka.ParcelUpdatedTopicName
		if topic == "" {
			topic = "parcel.updated"
		}
		rec = rec.WithProducer(p, topic)
		if c, ok := p.(io.Closer); ok {
			a.closeFns = append(a.closeFns, func() { _ = c.Close() })
		}
	}
	if rl := f.newRateLimiter(cfg); rl != nil {
		rec = rec.WithRateLimiter(rl, int64(cfg.ParcelBox.CourierRateLimitPerMinute))
		if c, ok := rl.(io.Closer); ok {
			a.closeFns = append(a.closeFns, func() { _ = c.Close() })
		}
	}
	a.rec = rec

	a.parcels = parcels.New(st)

	refresh := time.Duration(cfg.ParcelBox.TerminalRefreshSeconds) * time.Second
	a.dash = display.New(a.parcels, out).WithSettings(refresh, cfg.ParcelBox.MaxDisplayParcels)

	return a, nil
}

// RunDaemon запускает сверку в фоне и держит дашборд на переднем плане
// до отмены контекста.
func RunDaemon(ctx context.Context, cfg *config.Config, f appFactories, out io.Writer) error {
	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := buildApp(cfg, f, out)
	if err != nil {
		return err
	}
	defer a.close()

	if cfg.ParcelBox.HTTPAddr != "" {
		go func() {
			err := runOpsHTTPServer(ctx, opsHTTPOpts{
				httpAddr:    cfg.ParcelBox.HTTPAddr,
				swaggerPath: cfg.ParcelBox.SwaggerPath,
				reconciler:  a.rec,
				parcels:     a.parcels,
				cfg:         cfg,
			})
			if err != nil && err != http.ErrServerClosed {
				slog.Error("ops http server", "error", err.Error())
			}
		}()
	}

	if err := a.rec.Start(ctx); err != nil {
		return err
	}
	defer a.rec.Stop()

	slog.Info("parcelbox started")

	if err := a.dash.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// RunCheckOnce выполняет одну сверку и рисует дашборд одним снимком.
func RunCheckOnce(ctx context.Context, cfg *config.Config, f appFactories, out io.Writer) error {
	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := buildApp(cfg, f, out)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.rec.RunCycle(ctx); err != nil {
		return err
	}
	return a.dash.RenderOnce(ctx)
}
