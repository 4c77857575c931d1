package payment

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/craftdeal/craftdeal/internal/config"
)

// Module exposes payment client implementation to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	if p.Config.PaymentProcessorAddress == "" {
		return StaticClient{}, nil
	}
	return NewHTTPClient(p.Config.PaymentProcessorAddress, p.Logger)
}
