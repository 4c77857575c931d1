package postgres

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/craftdeal/craftdeal/internal/config"
	"github.com/craftdeal/craftdeal/internal/domain/repository"
)

// Module wires PostgreSQL storage and repository adapters.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(
		func(s *Storage) repository.ProfileRepository { return s.Profiles() },
		func(s *Storage) repository.ProviderRepository { return s.Providers() },
		func(s *Storage) repository.OrderRepository { return s.Orders() },
		func(s *Storage) repository.EscrowRepository { return s.Escrows() },
		func(s *Storage) repository.RefundRepository { return s.Refunds() },
		func(s *Storage) repository.BalanceRepository { return s.Balances() },
		func(s *Storage) repository.DisputeRepository { return s.Disputes() },
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			storage.Close()
			return nil
		},
	})
}
