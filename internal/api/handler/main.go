package handler

import (
	"net/http"

	"sleepfi/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🌙")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}

		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated requests.

		w := groupWallet{cfg.Container}
		routesAPIv1.POST("/auth/token", w.IssueToken)
		routesAPIv1.GET("/wallet/:address/balance", w.Balance)
		routesAPIv1.GET("/wallet/:address/forecast", w.Forecast)
		routesAPIv1.GET("/wallet/:address/sessions", w.Sessions)
		routesAPIv1.POST("/wallet/:address/boost/:boost", w.PurchaseBoost)
		routesAPIv1.POST("/wallet/:address/holder", w.GrantHolder)
		routesAPIv1.GET("/boosts", w.BoostCatalog)

		s := groupSession{cfg.Container}
		routesAPIv1.POST("/session/end", s.End)

		se := groupSeason{cfg.Container}
		routesAPIv1.GET("/season", se.Show)
		routesAPIv1.GET("/distributions", se.Distributions)

		l := groupLeaderboard{cfg.Container}
		routesAPIv1.GET("/leaderboard/points", l.GetPointsLeaderboard)
	}

	return r, nil
}
