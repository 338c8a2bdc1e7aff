package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nereuslabs/nereusd/internal/platform/relayer"
	"github.com/nereuslabs/nereusd/internal/platform/suigraph"
	"github.com/nereuslabs/nereusd/internal/platform/suinode"
	"github.com/nereuslabs/nereusd/internal/refresh"
	"github.com/nereuslabs/nereusd/internal/server"
	"github.com/nereuslabs/nereusd/internal/server/handler"
	"github.com/nereuslabs/nereusd/internal/server/ws"
	"github.com/nereuslabs/nereusd/internal/service"
	"github.com/nereuslabs/nereusd/internal/trading"
)

// services bundles the domain services shared by the modes.
type services struct {
	markets   *service.MarketService
	buyers    *service.BuyerService
	trades    *service.TradeService
	liquidity *service.LiquidityService
	chat      *service.ChatService
	oracle    *service.OracleService
	users     *service.UserService
	book      *service.OrderbookService
	admin     *service.AdminService
}

// buildServices constructs the chain clients and every domain service on top
// of the wired infrastructure.
func (a *App) buildServices(deps *Dependencies) *services {
	indexer := suigraph.NewClient(
		a.cfg.Sui.IndexerURL,
		a.cfg.Sui.IndexerAPIKey,
		a.cfg.Sui.MarketPackage,
		a.cfg.Sui.BasePackage,
	)
	node := suinode.NewClient(a.cfg.Sui.NodeURL, a.cfg.Sui.MarketPackage)
	rly := relayer.NewClient(a.cfg.Relayer.BaseURL, a.cfg.Relayer.APIKey)
	builder := trading.NewBuilder(a.cfg.Market.OrderTTL)

	markets := service.NewMarketService(
		indexer, node,
		deps.MarketStore, deps.MarketCache, deps.PriceCache,
		deps.SignalBus, deps.Archiver,
		a.cfg.Market.PriceFetchLimit,
		a.logger,
	)

	return &services{
		markets:   markets,
		buyers:    service.NewBuyerService(indexer, deps.BuyerCache, a.logger),
		trades:    service.NewTradeService(node, deps.PriceCache, builder, rly, a.logger),
		liquidity: service.NewLiquidityService(rly, a.logger),
		chat:      service.NewChatService(deps.ChatStore, deps.SignalBus, a.logger),
		oracle:    service.NewOracleService(markets, indexer, deps.BlobReader, a.logger),
		users:     service.NewUserService(indexer),
		book:      service.NewOrderbookService(node, a.logger),
		admin:     service.NewAdminService(rly, a.logger),
	}
}

// ServeMode runs the HTTP API and WebSocket hub without the refresh loop.
// It serves whatever snapshot the store and caches currently hold.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startServer(ctx, g, deps, a.buildServices(deps))
	return g.Wait()
}

// RefreshMode runs only the refresh loop: poll the indexer, enrich prices,
// replace the snapshot, and publish the refresh signal.
func (a *App) RefreshMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting refresh mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startRefresher(ctx, g, deps, a.buildServices(deps))
	return g.Wait()
}

// FullMode runs the API server and the refresh loop in one process.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	svcs := a.buildServices(deps)
	a.startRefresher(ctx, g, deps, svcs)
	a.startServer(ctx, g, deps, svcs)
	return g.Wait()
}

// startRefresher adds the periodic market refresh goroutine to the errgroup.
func (a *App) startRefresher(ctx context.Context, g *errgroup.Group, deps *Dependencies, svcs *services) {
	refresher := refresh.NewRefresher(
		svcs.markets,
		deps.LockManager,
		deps.Notifier,
		a.cfg.Market.RefreshInterval,
		a.logger,
	)
	g.Go(func() error {
		err := refresher.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})
}

// startServer adds the WebSocket hub and HTTP server goroutines to the
// errgroup, with graceful shutdown on context cancellation.
func (a *App) startServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, svcs *services) {
	hub := ws.NewHub(deps.SignalBus, a.logger)
	g.Go(func() error {
		err := hub.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})

	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(a.logger),
		Markets:   handler.NewMarketHandler(svcs.markets, a.logger),
		Buyers:    handler.NewBuyerHandler(svcs.buyers, a.logger),
		Orders:    handler.NewOrderHandler(svcs.trades, a.logger),
		Liquidity: handler.NewLiquidityHandler(svcs.liquidity, a.logger),
		Chat:      handler.NewChatHandler(svcs.chat, a.logger),
		Oracle:    handler.NewOracleHandler(svcs.oracle, a.logger),
		Users:     handler.NewUserHandler(svcs.users, a.logger),
		Book:      handler.NewOrderbookHandler(svcs.book, a.logger),
		Admin:     handler.NewAdminHandler(svcs.admin, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:            a.cfg.Server.Port,
		CORSOrigins:     a.cfg.Server.CORSOrigins,
		APIKey:          a.cfg.Server.APIKey,
		RateLimitPerMin: a.cfg.Server.RateLimitPerMin,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
