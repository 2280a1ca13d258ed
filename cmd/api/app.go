package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/giovaniif/instrument-closet/domain/category"
	"github.com/giovaniif/instrument-closet/domain/instrument"
	"github.com/giovaniif/instrument-closet/domain/reservation"
	"github.com/giovaniif/instrument-closet/domain/user"
	"github.com/giovaniif/instrument-closet/infra/audit"
	"github.com/giovaniif/instrument-closet/infra/auth"
	"github.com/giovaniif/instrument-closet/infra/config"
	"github.com/giovaniif/instrument-closet/infra/events"
	"github.com/giovaniif/instrument-closet/infra/gateways"
	"github.com/giovaniif/instrument-closet/infra/repositories"
	"github.com/giovaniif/instrument-closet/protocols"
	"github.com/giovaniif/instrument-closet/use_cases/accounts"
	"github.com/giovaniif/instrument-closet/use_cases/availability"
	"github.com/giovaniif/instrument-closet/use_cases/book"
	"github.com/giovaniif/instrument-closet/use_cases/cancel"
	"github.com/giovaniif/instrument-closet/use_cases/catalog"
	"github.com/giovaniif/instrument-closet/use_cases/inventory"
	"github.com/giovaniif/instrument-closet/use_cases/listing"
	"github.com/giovaniif/instrument-closet/use_cases/reschedule"
)

// Stores groups the repositories of one backing store.
type Stores struct {
	Instruments  instrument.Repository
	Reservations reservation.Repository
	Categories   category.Repository
	Users        user.Repository
	SQL          *repositories.SQL
}

// App holds the wired use cases and the resources that must be released on shutdown.
type App struct {
	Config       config.Config
	Stores       Stores
	Tokens       *auth.Tokens
	Accounts     *accounts.Accounts
	Inventory    *inventory.Inventory
	Catalog      *catalog.Catalog
	Availability *availability.Availability
	Book         *book.Book
	Reschedule   *reschedule.Reschedule
	Cancel       *cancel.Cancel
	Listing      *listing.Listing
	checks       map[string]func(context.Context) error
	closers      []func(context.Context) error
}

// Collaborators lets callers (mostly tests) replace the infrastructure picked from config.
type Collaborators struct {
	Locker      protocols.InstrumentLocker
	Idempotency protocols.IdempotencyGateway
	Images      protocols.ImageStore
	Publisher   protocols.EventPublisher
}

func OpenStores(ctx context.Context, cfg config.Config) (Stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		m := repositories.NewMemory()
		return Stores{Instruments: m.Instruments(), Reservations: m.Reservations(), Categories: m.Categories(), Users: m.Users()}, nil
	case config.StorePostgres, config.StoreSQLite:
		dialect := repositories.Postgres
		if cfg.StoreDriver == config.StoreSQLite {
			dialect = repositories.SQLite
		}
		s, err := repositories.OpenSQL(ctx, dialect, cfg.DSN())
		if err != nil {
			return Stores{}, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return Stores{}, err
		}
		return Stores{Instruments: s.Instruments(), Reservations: s.Reservations(), Categories: s.Categories(), Users: s.Users(), SQL: s}, nil
	default:
		return Stores{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// NewApp opens every configured backend and wires the use cases over them.
func NewApp(ctx context.Context, cfg config.Config, override Collaborators) (*App, error) {
	app := &App{Config: cfg, checks: map[string]func(context.Context) error{}}
	fail := func(err error) (*App, error) {
		_ = app.Close(context.WithoutCancel(ctx))
		return nil, err
	}

	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Stores = stores
	if stores.SQL != nil {
		app.checks["store"] = stores.SQL.Ping
		app.closers = append(app.closers, func(context.Context) error { return stores.SQL.Close() })
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		app.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		app.closers = append(app.closers, func(context.Context) error { return rdb.Close() })
	}

	locker := override.Locker
	if locker == nil {
		switch cfg.Locker {
		case config.LockerRedis:
			locker = gateways.NewRedisLocker(rdb, 0, gateways.NewSleeper())
		case config.LockerPostgres:
			locker = gateways.NewAdvisoryLocker(stores.SQL.DB())
		default:
			locker = gateways.NewKeyedLocker()
		}
	}

	idempotency := override.Idempotency
	if idempotency == nil {
		idempotency = gateways.NewIdempotencyGatewayMemory()
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.WarnContext(ctx, "redis unreachable, using in-memory idempotency", "addr", cfg.RedisAddr, "error", err)
			} else {
				idempotency = gateways.NewIdempotencyGatewayRedis(rdb)
			}
		}
	}

	images := override.Images
	if images == nil {
		if cfg.S3Bucket != "" {
			s3, err := gateways.NewImageStoreS3(ctx, gateways.S3Config{
				Bucket:          cfg.S3Bucket,
				Region:          cfg.S3Region,
				Endpoint:        cfg.S3Endpoint,
				PathStyle:       cfg.S3PathStyle,
				AccessKeyID:     cfg.S3AccessKeyID,
				SecretAccessKey: cfg.S3SecretAccessKey,
			})
			if err != nil {
				return fail(err)
			}
			images = s3
		} else {
			images = gateways.NewImageStoreMemory("memory://images")
		}
	}

	publisher := override.Publisher
	if publisher == nil {
		sinks := []protocols.EventPublisher{events.NewLogPublisher()}
		if len(cfg.KafkaBrokers) > 0 {
			kafka := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
			sinks = append(sinks, kafka)
			app.closers = append(app.closers, func(context.Context) error { return kafka.Close() })
		}
		if cfg.MongoURI != "" {
			trail, err := audit.NewMongoAudit(ctx, cfg.MongoURI, cfg.MongoDatabase)
			if err != nil {
				return fail(err)
			}
			sinks = append(sinks, trail)
			app.checks["mongo"] = trail.Ping
			app.closers = append(app.closers, trail.Close)
		}
		publisher = events.NewFanout(sinks...)
	}

	app.Tokens = auth.NewTokens(cfg.SecretKey, 0)
	app.Accounts = accounts.NewAccounts(stores.Users, auth.NewBcryptHasher(cfg.BcryptCost), app.Tokens)
	app.Availability = availability.NewAvailability(stores.Instruments, stores.Reservations)
	app.Book = book.NewBook(app.Availability, stores.Reservations, stores.Users, locker, idempotency, publisher)
	app.Reschedule = reschedule.NewReschedule(app.Availability, stores.Reservations, locker, publisher)
	app.Cancel = cancel.NewCancel(stores.Reservations, publisher)
	app.Listing = listing.NewListing(stores.Reservations)
	app.Inventory = inventory.NewInventory(stores.Instruments, stores.Categories, stores.Reservations, locker, images, publisher)
	app.Catalog = catalog.NewCatalog(stores.Categories, stores.Instruments)
	return app, nil
}

// Health runs every backend check with a short deadline.
func (a *App) Health(ctx context.Context) (string, map[string]string) {
	status := "healthy"
	checks := map[string]string{}
	for name, check := range a.checks {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := check(checkCtx)
		cancel()
		if err != nil {
			status = "degraded"
			checks[name] = "down"
			continue
		}
		checks[name] = "up"
	}
	return status, checks
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
