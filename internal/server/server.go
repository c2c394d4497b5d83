package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nguyentranbao-ct/storefront/internal/config"
	pkgmdw "github.com/nguyentranbao-ct/storefront/internal/server/middleware"
	"github.com/nguyentranbao-ct/storefront/internal/view"
	"github.com/nguyentranbao-ct/storefront/pkg/crypto"
	"github.com/nguyentranbao-ct/storefront/pkg/logger"
	log "github.com/nguyentranbao-ct/storefront/pkg/logger/logctx"
	"go.uber.org/fx"
)

// NewFlashStore is the fx constructor of the notification cookie store.
func NewFlashStore(conf *config.Config, sealer crypto.Client) *FlashStore {
	return newFlashStore(sealer, conf.Session.Secure)
}

type templateRenderer struct {
	renderer *view.Renderer
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.renderer.Render(w, view.Page(name), data)
}

func isInternalPath(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/health" || p == "/metrics" || strings.HasPrefix(p, "/static/")
}

func isAPIPath(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

// NewEcho builds the HTTP handler with every route and middleware.
func NewEcho(
	conf *config.Config,
	handler Controller,
	sealer crypto.Client,
	renderer *view.Renderer,
) (*echo.Echo, error) {
	corsPattern, err := regexp.Compile(conf.Server.CORSOrigins)
	if err != nil {
		return nil, fmt.Errorf("compile cors origins: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = pkgmdw.NewValidator()
	e.Renderer = &templateRenderer{renderer: renderer}
	e.HTTPErrorHandler = errorHandler(renderer)

	e.Use(pkgmdw.Metrics(pkgmdw.MetricsConfig{
		Skipper:     isInternalPath,
		Namespace:   pkgmdw.DefaultMetricsConfig.Namespace,
		MetricsPath: pkgmdw.DefaultMetricsConfig.MetricsPath,
	}))
	e.Use(pkgmdw.RequestID(pkgmdw.RequestIDConfig{Skipper: isInternalPath}))
	e.Use(pkgmdw.CORS(pkgmdw.CORSConfig{
		Skipper: func(c echo.Context) bool { return !isAPIPath(c) },
		Origins: corsPattern,
		MaxAge:  10 * time.Minute,
	}))
	e.Use(pkgmdw.Shopper(pkgmdw.ShopperConfig{
		Skipper:    isInternalPath,
		Sealer:     sealer,
		CookieName: conf.Session.CookieName,
		MaxAge:     conf.Session.MaxAge,
		Secure:     conf.Session.Secure,
	}))
	e.Use(pkgmdw.LogRequest(pkgmdw.LogRequestConfig{
		Logger:  logger.MustNamed("http"),
		Skipper: isInternalPath,
		Bodies:  isAPIPath,
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Errorw(c.Request().Context(), "PANIC RECOVER", "error", err, "stack", string(stack))
			return nil
		},
	}))

	e.GET("/health", handler.Health)
	e.StaticFS("/static", view.Static())

	e.GET("/", handler.Home)
	e.GET("/index.html", handler.Home)
	e.GET("/search", handler.Search)
	e.GET("/product", handler.Product)
	e.GET("/cart", handler.Cart)
	e.GET("/wishlist", handler.Wishlist)
	e.POST("/actions", handler.Action)
	e.POST("/checkout", handler.Checkout)

	api := e.Group("/api/v1")
	api.POST("/actions", pkgmdw.WrapHandler(handler.APIAction))
	api.GET("/cart", pkgmdw.WrapHandler(handler.APICart))
	api.GET("/wishlist", pkgmdw.WrapHandler(handler.APIWishlist))
	api.GET("/products", pkgmdw.WrapHandler(handler.APIProducts))

	return e, nil
}

func StartServer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	e *echo.Echo,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infow(ctx, "starting HTTP server", "addr", conf.Server.Addr)
				if err := e.Start(conf.Server.Addr); !errors.Is(err, http.ErrServerClosed) {
					log.Errorw(ctx, "HTTP server stopped", "error", err)
					_ = sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

// errorHandler answers /api requests with the JSON envelope and every other
// request with the HTML error page.
func errorHandler(renderer *view.Renderer) echo.HTTPErrorHandler {
	apiHandler := pkgmdw.ErrorHandler(logger.MustNamed("http"))

	return func(err error, c echo.Context) {
		if err == nil || c.Response().Committed {
			return
		}
		if isAPIPath(c) {
			apiHandler(err, c)
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			log.Errorw(c.Request().Context(), "Request failed", "error", err)
			he = &echo.HTTPError{
				Code:    http.StatusInternalServerError,
				Message: http.StatusText(http.StatusInternalServerError),
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(he.Code)
			return
		}
		page := view.ErrorPage{
			Layout:  view.Layout{Page: view.PageError, Title: http.StatusText(he.Code)},
			Code:    he.Code,
			Message: fmt.Sprint(he.Message),
		}
		if err := c.Render(he.Code, string(view.PageError), page); err != nil {
			log.Errorw(c.Request().Context(), "Could not render error page", "error", err)
		}
	}
}
