package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/craftdeal/craftdeal/internal/config"
	"github.com/craftdeal/craftdeal/internal/usecase"
	"github.com/craftdeal/craftdeal/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newMarketplaceFacade,
		newHTTPServer,
		newPresenceMonitor,
	),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Auth     *usecase.AuthUseCase
	Identity *usecase.IdentityUseCase
	Orders   *usecase.OrderUseCase
	Ledger   *usecase.LedgerUseCase
	Escrows  *usecase.EscrowUseCase
	Refunds  *usecase.RefundUseCase
	Disputes *usecase.DisputeUseCase
	Payments PaymentVerifier
	Config   *config.Config
}

func newMarketplaceFacade(p facadeParams) *MarketplaceFacade {
	return NewMarketplaceFacade(p.Auth, p.Identity, p.Orders, p.Ledger, p.Escrows, p.Refunds, p.Disputes, p.Payments, p.Config.DefaultCurrency)
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *MarketplaceFacade
	Config *config.Config
	Logger *slog.Logger
}

func newPresenceMonitor(p workerParams) *worker.PresenceMonitor {
	return worker.NewPresenceMonitor(
		p.Facade,
		p.Config.PresencePoll,
		p.Config.MonitorBatch,
		p.Config.AbandonWindow,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.PresenceMonitor
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting craftdeal", slog.String("addr", p.Server.Addr))
			p.Worker.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Worker.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("craftdeal stopped")
			return nil
		},
	})
}
