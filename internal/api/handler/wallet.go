package handler

import (
	"errors"
	"strconv"

	"sleepfi/internal/economy"
	"sleepfi/internal/models"
	"sleepfi/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupWallet struct {
	container *do.Injector
}

// IssueToken exchanges a wallet address for a short-lived bearer token. The
// address must at least parse; ownership proof lives outside this service.
func (gr *groupWallet) IssueToken(c echo.Context) error {
	ctx := c.Request().Context()

	var payload struct {
		Wallet   string `json:"wallet"`
		Username string `json:"username"`
		Referrer string `json:"referrer,omitempty"`
	}
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	if err := services.ValidateWallet(payload.Wallet); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	authentication, err := do.Invoke[*services.Authentication](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if payload.Referrer != "" {
		serviceLedger, err := do.Invoke[*services.ServiceLedger](gr.container)
		if err != nil {
			return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
		}
		if err := serviceLedger.RegisterReferral(ctx, payload.Wallet, payload.Referrer); err != nil {
			return httpx.RestAbort(c, nil, err)
		}
	}

	token, err := authentication.CreateToken(&models.WalletFromAuth{
		Wallet:   payload.Wallet,
		Username: payload.Username,
	})
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, map[string]any{"token": token}, nil)
}

func (gr *groupWallet) Balance(c echo.Context) error {
	ctx := c.Request().Context()

	serviceLedger, err := do.Invoke[*services.ServiceLedger](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	participant, err := serviceLedger.GetBalance(ctx, c.Param("address"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, participant, nil)
}

func (gr *groupWallet) Forecast(c echo.Context) error {
	ctx := c.Request().Context()

	serviceBoost, err := do.Invoke[*services.ServiceBoost](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	forecast, err := serviceBoost.Forecast(ctx, c.Param("address"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, forecast, nil)
}

func (gr *groupWallet) Sessions(c echo.Context) error {
	ctx := c.Request().Context()

	address := c.Param("address")
	if err := services.ValidateWallet(address); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 0 {
		page = 0
	}

	limit := 10
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, _ = strconv.Atoi(limitStr)
		if limit > 100 {
			limit = 100
		}
		if limit <= 0 {
			limit = 10
		}
	}

	serviceLedger, err := do.Invoke[*services.ServiceLedger](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	sessions, err := serviceLedger.GetSessions(ctx, address, limit, page*limit)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, sessions, nil)
}

// PurchaseBoost requires the caller to hold a token for the wallet being
// boosted; boosts are paid state, not public state.
func (gr *groupWallet) PurchaseBoost(c echo.Context) error {
	ctx := c.Request().Context()

	wallet, err := ResolveAuthWallet(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	address := c.Param("address")
	if wallet.Wallet != address {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("token wallet mismatch"), errorx.Authn))
	}

	serviceBoost, err := do.Invoke[*services.ServiceBoost](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	purchased, err := serviceBoost.PurchaseBoost(ctx, address, c.Param("boost"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, purchased, nil)
}

func (gr *groupWallet) GrantHolder(c echo.Context) error {
	ctx := c.Request().Context()

	wallet, err := ResolveAuthWallet(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	address := c.Param("address")
	if wallet.Wallet != address {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("token wallet mismatch"), errorx.Authn))
	}

	var payload struct {
		Holder bool `json:"holder"`
	}
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceBoost, err := do.Invoke[*services.ServiceBoost](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := serviceBoost.GrantHolder(ctx, address, payload.Holder); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]any{"holder": payload.Holder}, nil)
}

func (gr *groupWallet) BoostCatalog(c echo.Context) error {
	return httpx.RestAbort(c, economy.BoostCatalog(), nil)
}
