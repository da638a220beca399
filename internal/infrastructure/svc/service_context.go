package svc

import (
	"context"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/linrh-dut/otc-report/internal/application/port"
	"github.com/linrh-dut/otc-report/internal/application/service"
	"github.com/linrh-dut/otc-report/internal/infrastructure/calendar"
	"github.com/linrh-dut/otc-report/internal/infrastructure/config"
	"github.com/linrh-dut/otc-report/internal/infrastructure/source/dce"
	postgresrepo "github.com/linrh-dut/otc-report/internal/infrastructure/storage/postgres"
	rediscache "github.com/linrh-dut/otc-report/internal/infrastructure/storage/redis"
	sqliterepo "github.com/linrh-dut/otc-report/internal/infrastructure/storage/sqlite"
)

// ServiceContext 应用启动的唯一装配点：按依赖顺序初始化存储、缓存、
// 日历与各业务服务，并维护反序关闭链。
type ServiceContext struct {
	Config   *config.Config
	Location *time.Location

	Store    port.Store
	Cache    port.ReportCache // redis 未启用时为 nil
	Calendar *calendar.Calendar

	Collector   *service.CollectService
	Queries     *service.QueryService
	Corrections *service.CorrectionService

	closerChain []func() error
}

func New(ctx context.Context, cfg *config.Config) (*ServiceContext, error) {
	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.App.Timezone, err)
	}

	sc := &ServiceContext{Config: cfg, Location: loc}

	if err := sc.initStorage(ctx); err != nil {
		_ = sc.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageInitFailed, err)
	}

	cal, err := calendar.Load(cfg.Collect.TradeCalendar)
	if err != nil {
		_ = sc.Close()
		return nil, err
	}
	sc.Calendar = cal

	source := dce.NewClient(cfg.Source.BaseURL, time.Duration(cfg.Collect.RequestTimeoutSec)*time.Second)

	sc.Collector = service.NewCollectService(source, sc.Store, cal, sc.Cache, loc)
	sc.Queries = service.NewQueryService(sc.Store)
	sc.Corrections = service.NewCorrectionService(sc.Store, sc.Cache)

	return sc, nil
}

func (sc *ServiceContext) initStorage(ctx context.Context) error {
	switch sc.Config.Storage.Driver {
	case "sqlite":
		repo, err := sqliterepo.New(sc.Config.Storage.SQLite.Path)
		if err != nil {
			return err
		}
		sc.Store = repo
		sc.closerChain = append(sc.closerChain, func() error {
			log.Info().Msg("closing sqlite connection")
			return repo.Close()
		})
		log.Info().Str("path", sc.Config.Storage.SQLite.Path).Msg("sqlite store initialized")

	case "postgres":
		repo, err := postgresrepo.New(sc.Config.Storage.Postgres.DSN)
		if err != nil {
			return err
		}
		sc.Store = repo
		sc.closerChain = append(sc.closerChain, func() error {
			log.Info().Msg("closing postgres connection")
			return repo.Close()
		})
		log.Info().Msg("postgres store initialized")

	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageDriver, sc.Config.Storage.Driver)
	}

	if sc.Config.Redis.Enabled {
		if err := sc.initRedis(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (sc *ServiceContext) initRedis(ctx context.Context) error {
	rdb := redisclient.NewClient(&redisclient.Options{
		Addr:     sc.Config.Redis.Addr,
		Password: sc.Config.Redis.Password,
		DB:       sc.Config.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(sc.Config.Redis.TTLSeconds) * time.Second
	sc.Cache = rediscache.New(rdb, sc.Config.Redis.Prefix, ttl)
	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return rdb.Close()
	})

	log.Info().Str("addr", sc.Config.Redis.Addr).Int("db", sc.Config.Redis.DB).Msg("redis report cache initialized")
	return nil
}

// Close 反序关闭全部资源
func (sc *ServiceContext) Close() error {
	for i := len(sc.closerChain) - 1; i >= 0; i-- {
		if err := sc.closerChain[i](); err != nil {
			log.Error().Err(err).Msg("error closing resource")
		}
	}
	return nil
}
