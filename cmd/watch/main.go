package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"market-pulse/src/chart"
	"market-pulse/src/client"
	"market-pulse/src/logger"
	"market-pulse/src/models"
)

// -----------------------------------------------------------------------------
// watch - terminal subscriber
//
// Connects to a running market-pulse server, mirrors the live stream into
// per-ticker chart views and prints a summary line per refresh.
// -----------------------------------------------------------------------------

func main() {
	serverURL := flag.String("server", "http://127.0.0.1:8000", "market-pulse server base URL")
	tickersFlag := flag.String("tickers", "AAPL,BTC", "comma-separated tickers to watch")
	rangeFlag := flag.String("range", "1D", "chart range: 1D, 1W, 1M, 6M, 1Y")
	logLevel := flag.String("log-level", "WARNING", "log verbosity")
	flag.Parse()

	appLogger := logger.NewLogger(*logLevel, "watch")
	rng := models.MRange(*rangeFlag)

	tickers := strings.Split(*tickersFlag, ",")
	for i := range tickers {
		tickers[i] = strings.TrimSpace(tickers[i])
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	history := client.NewHistory(*serverURL)
	views := make(map[string]*chart.View, len(tickers))

	for _, ticker := range tickers {
		views[ticker] = loadView(ctx, history, ticker, rng, appLogger)
	}

	// Live overlay
	session := client.NewSession(*serverURL, appLogger)
	session.OnTick = func(tick models.MTick) {
		if v, ok := views[tick.Ticker]; ok {
			v.ApplyTick(tick)
		}
	}
	go session.Run(ctx)
	defer session.Close()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	refresh := time.NewTicker(2 * time.Second)
	defer refresh.Stop()

	for {
		select {
		case <-refresh.C:
			printBoard(session, views, tickers)
		case <-quit:
			fmt.Println("\nbye")
			return
		}
	}
}

// -----------------------------------------------------------------------------

// loadView fetches the baseline for one ticker. Intraday uses the minute
// series; coarser ranges use the daily warehouse rows.
func loadView(ctx context.Context, history *client.History, ticker string, rng models.MRange, log *logger.Logger) *chart.View {
	assetType := models.AssetStock
	view := chart.NewView(ticker, assetType, rng)
	token := view.BeginLoad()

	if rng.IsIntraday() {
		series, err := history.GetIntraday(ctx, ticker)
		if err != nil {
			log.Warning("No intraday baseline for %s: %v", ticker, err)
			view.CompleteLoad(token, nil, nil)
			return view
		}
		if series.AssetType != "" {
			view.AssetType = series.AssetType
		}
		view.CompleteLoad(token, series.Points, series.PrevClose)
		return view
	}

	bars, err := history.GetDaily(ctx, ticker, rng.TradingDays())
	if err != nil {
		log.Warning("No daily baseline for %s: %v", ticker, err)
		view.CompleteLoad(token, nil, nil)
		return view
	}
	view.CompleteLoad(token, chart.DailyBarsToPoints(bars, rng.TradingDays()), nil)
	return view
}

// -----------------------------------------------------------------------------

func printBoard(session *client.Session, views map[string]*chart.View, tickers []string) {
	fmt.Printf("--- %s [%s] ---\n", time.Now().Format("15:04:05"), session.State())

	for _, ticker := range tickers {
		view, ok := views[ticker]
		if !ok {
			continue
		}
		out := view.Render()

		last := "-"
		if n := len(out.Points); n > 0 {
			p := out.Points[n-1]
			if p.Above != nil {
				last = fmt.Sprintf("%.2f", *p.Above)
			} else if p.Below != nil {
				last = fmt.Sprintf("%.2f", *p.Below)
			}
		}

		change := "n/a"
		if out.PercentChange != nil {
			change = fmt.Sprintf("%+.2f%%", *out.PercentChange)
		}

		lat := ""
		if ms, ok := session.LatencyMs(ticker); ok {
			lat = fmt.Sprintf(" (%dms)", ms)
		}

		live := " "
		if out.Live {
			live = "*"
		}
		fmt.Printf("%s %-8s %10s  %8s%s\n", live, ticker, last, change, lat)
	}
}
