package handler

import (
	"errors"

	"sleepfi/internal/interfaces"
	"sleepfi/internal/pkg/limiter"
	"sleepfi/internal/services"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupSession struct {
	container *do.Injector
}

// End accepts one session-end report. Throttled per wallet before any
// pricing work happens; a stuck client retry loop cannot grind the ledger.
func (gr *groupSession) End(c echo.Context) error {
	ctx := c.Request().Context()

	var report services.SessionReport
	if err := c.Bind(&report); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	if report.Wallet == "" {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("missing wallet"), errorx.Validation))
	}

	rate, err := do.Invoke[interfaces.Limiter](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = rate.Allow(ctx, services.LimitKeySessionReport(report.Wallet), redis_rate.PerMinute(services.SESSION_REPORT_RATE_LIMIT_PER_MINUTE))
	if err != nil {
		if errors.Is(err, limiter.ErrRateLimited) {
			return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
		}
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	// a bearer token on the request can stand in for the body token
	if report.AuthToken == "" {
		report.AuthToken = bearerToken(c)
	}

	serviceLedger, err := do.Invoke[*services.ServiceLedger](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceLedger.RecordSessionEnd(ctx, &report)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, result, nil)
}
