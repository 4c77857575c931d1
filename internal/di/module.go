package di

import (
	"go.uber.org/fx"

	"github.com/craftdeal/craftdeal/internal/adapter/payment"
	"github.com/craftdeal/craftdeal/internal/app"
	"github.com/craftdeal/craftdeal/internal/config"
	"github.com/craftdeal/craftdeal/internal/logger"
	"github.com/craftdeal/craftdeal/internal/pkg/auth"
	"github.com/craftdeal/craftdeal/internal/server/http/handlers"
	"github.com/craftdeal/craftdeal/internal/server/http/router"
	"github.com/craftdeal/craftdeal/internal/storage/postgres"
	"github.com/craftdeal/craftdeal/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		payment.Module,
		usecase.Module,
		fx.Provide(func(client payment.Client) app.PaymentVerifier { return client }),
		fx.Provide(func(facade *app.MarketplaceFacade) handlers.MarketplaceFacade { return facade }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
