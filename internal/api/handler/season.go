package handler

import (
	"errors"
	"strconv"
	"time"

	"sleepfi/internal/economy"
	"sleepfi/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupSeason struct {
	container *do.Injector
}

// Show returns the active season plus tonight's derived numbers: the week
// index, its difficulty and the pool the current participant count would earn.
func (gr *groupSeason) Show(c echo.Context) error {
	ctx := c.Request().Context()

	serviceSeason, err := do.Invoke[*services.ServiceSeason](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	season, err := serviceSeason.GetActiveSeason(ctx)
	if err != nil {
		if errors.Is(err, services.ErrNoActiveSeason) {
			return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.NotExist))
		}
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	participants, err := serviceSeason.ActiveParticipantCount(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	week := serviceSeason.WeekOf(season, time.Now().UTC())

	return httpx.RestAbort(c, map[string]any{
		"season":              season,
		"week":                week,
		"difficulty":          economy.DifficultyByWeek(week, season.TotalWeeks),
		"active_participants": participants,
		"nightly_pool":        economy.NightlyPool(participants, season.TotalSeasonPool),
	}, nil)
}

func (gr *groupSeason) Distributions(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 30
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, _ = strconv.Atoi(limitStr)
		if limit > 100 {
			limit = 100
		}
		if limit <= 0 {
			limit = 30
		}
	}

	serviceDistribution, err := do.Invoke[*services.ServiceDistribution](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	records, err := serviceDistribution.GetRecentDistributions(ctx, limit)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, records, nil)
}
