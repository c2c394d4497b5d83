package app

import (
	"github.com/nguyentranbao-ct/storefront/internal/config"
	"github.com/nguyentranbao-ct/storefront/internal/server"
	"github.com/nguyentranbao-ct/storefront/internal/store"
	"github.com/nguyentranbao-ct/storefront/internal/usecase"
	"github.com/nguyentranbao-ct/storefront/internal/view"
	"github.com/nguyentranbao-ct/storefront/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"
)

func Invoke(funcs ...any) *fx.App {
	conf := config.MustLoad()
	if err := logger.Init(conf.Log.Level, conf.Log.Format); err != nil {
		panic(err)
	}
	log := logger.MustNamed("app")
	log.Desugar().Debug("config loaded", logger.Reflect("config", redact(conf)))

	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Unwrap().Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Provide(
			newLocalStorage,
			newCatalogSource,
			newValidator,
			newCryptoClient,
			newEventPublisher,

			store.NewCatalogStore,
			store.NewSessions,

			usecase.NewStorefrontUsecase,

			view.NewRenderer,
			server.NewFlashStore,
			server.NewController,
			server.NewEcho,
		),
		fx.Supply(conf),
		fx.Invoke(funcs...),
	)
}

// redact hides secrets before the config is logged.
func redact(conf *config.Config) config.Config {
	c := *conf
	if c.Database.Password != "" {
		c.Database.Password = "***"
	}
	if c.Session.Key != "" {
		c.Session.Key = "***"
	}
	return c
}
