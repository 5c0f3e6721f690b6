package handler

import (
	"sleepfi/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupLeaderboard struct {
	container *do.Injector
}

func (gr *groupLeaderboard) GetPointsLeaderboard(c echo.Context) error {
	ctx := c.Request().Context()

	// an authenticated caller also gets their own rank alongside the board
	me := ""
	if wallet, err := ResolveAuthWallet(ctx); err == nil {
		me = wallet.Wallet
	}

	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	response, err := serviceLeaderboard.GetPointsLeaderboard(ctx, me)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, response, nil)
}
