package usecase

import (
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/craftdeal/craftdeal/internal/config"
	"github.com/craftdeal/craftdeal/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	NewIdentityUseCase,
	NewOrderUseCase,
	NewLedgerUseCase,
	NewEscrowUseCase,
	NewRefundUseCase,
	newDisputeUseCase,
)

type disputeParams struct {
	fx.In

	Disputes repository.DisputeRepository
	Orders   repository.OrderRepository
	Identity *IdentityUseCase
	Config   *config.Config
	Logger   *slog.Logger
}

func newDisputeUseCase(p disputeParams) *DisputeUseCase {
	staleness := p.Config.StalenessWindow
	if staleness <= 0 {
		staleness = time.Minute
	}
	return NewDisputeUseCase(p.Disputes, p.Orders, p.Identity, staleness, p.Logger)
}
