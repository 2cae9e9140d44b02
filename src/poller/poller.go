package poller

import (
	"context"
	"time"

	"market-pulse/src/cache"
	"market-pulse/src/helpers"
	"market-pulse/src/interfaces"
	"market-pulse/src/logger"
	"market-pulse/src/models"
	"market-pulse/src/utils"
)

// -----------------------------------------------------------------------------
// Poller
//
// Drives the quote sources on a fixed interval and pushes every accepted tick
// down the same three paths: hub fan-out, intraday cache merge, archive. When
// a provider rate-limits, the interval doubles up to the configured ceiling
// and snaps back to base on the next clean cycle.
// -----------------------------------------------------------------------------

type Poller struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	Sources   []interfaces.IQuoteSource
	Publisher interfaces.ITickPublisher
	Cache     *cache.IntradayCache
	DB        interfaces.IDatabase
	Scheduler *utils.MarketScheduler

	baseDelay time.Duration
	maxDelay  time.Duration
	delay     time.Duration
	done      chan struct{}
}

// -----------------------------------------------------------------------------

func NewPoller(cfg *models.MConfig, sources []interfaces.IQuoteSource, pub interfaces.ITickPublisher,
	intradayCache *cache.IntradayCache, db interfaces.IDatabase, sched *utils.MarketScheduler, log *logger.Logger) *Poller {

	base := time.Duration(cfg.Poll.IntervalSeconds) * time.Second
	if base <= 0 {
		base = 5 * time.Second
	}
	max := time.Duration(cfg.Poll.MaxIntervalSeconds) * time.Second
	if max < base {
		max = base
	}

	return &Poller{
		Config:    cfg,
		Logger:    log,
		Sources:   sources,
		Publisher: pub,
		Cache:     intradayCache,
		DB:        db,
		Scheduler: sched,
		baseDelay: base,
		maxDelay:  max,
		delay:     base,
		done:      make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

// Run polls until the context is cancelled or Stop is called.
func (p *Poller) Run(ctx context.Context) {
	p.Logger.Info("Poller started: %d sources, interval %s", len(p.Sources), p.baseDelay)

	for {
		p.cycle(ctx)

		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			p.Logger.Info("Poller stopped: context cancelled")
			return
		case <-p.done:
			p.Logger.Info("Poller stopped")
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (p *Poller) Stop() {
	close(p.done)
}

// -----------------------------------------------------------------------------

// cycle runs one pass over every source and adapts the polling delay.
func (p *Poller) cycle(ctx context.Context) {
	rateLimited := false

	for _, source := range p.Sources {
		if p.skipClosedMarket(source) {
			continue
		}

		ticks, err := source.Poll(ctx)
		if err != nil {
			if helpers.IsRateLimit(err) {
				rateLimited = true
				p.Logger.Warning("Source %s rate limited: %v", source.Name(), err)
			} else {
				p.Logger.Error("Source %s poll failed: %v", source.Name(), err)
			}
			continue
		}

		p.dispatch(ticks)
	}

	if rateLimited {
		p.widenDelay()
	} else if p.delay != p.baseDelay {
		p.Logger.Info("Polling delay reset to %s", p.baseDelay)
		p.delay = p.baseDelay
	}
}

// -----------------------------------------------------------------------------

// skipClosedMarket gates exchange-bound sources on market hours. Continuous
// sources always poll.
func (p *Poller) skipClosedMarket(source interfaces.IQuoteSource) bool {
	if source.AssetType() != models.AssetStock || p.Scheduler == nil {
		return false
	}
	if p.Scheduler.AnyMarketOpen() {
		return false
	}
	p.Logger.Debug("Source %s idle: all markets closed", source.Name())
	return true
}

// -----------------------------------------------------------------------------

func (p *Poller) dispatch(ticks []models.MTick) {
	for _, tick := range ticks {
		p.Publisher.Publish(tick)
		if p.Cache != nil {
			p.Cache.Apply(tick)
		}
	}

	if p.DB != nil && len(ticks) > 0 {
		if err := p.DB.SaveTicks(ticks); err != nil {
			p.Logger.Error("Failed to archive %d ticks: %v", len(ticks), err)
		}
	}
}

// -----------------------------------------------------------------------------

func (p *Poller) widenDelay() {
	widened := p.delay * 2
	if widened > p.maxDelay {
		widened = p.maxDelay
	}
	if widened != p.delay {
		p.Logger.Warning("Polling delay widened to %s", widened)
		p.delay = widened
	}
}
