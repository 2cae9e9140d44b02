package interfaces

import (
	"context"

	"market-pulse/src/models"
)

// -----------------------------------------------------------------------------
// IQuoteSource is a provider the poller drives. One source covers one asset
// class; a poll cycle fans out over every configured source.
// -----------------------------------------------------------------------------

type IQuoteSource interface {

	// Name returns the unique identifier of the source.
	Name() string

	// -----------------------------------------------------------------------------

	// AssetType returns models.AssetStock or models.AssetCrypto.
	AssetType() string

	// -----------------------------------------------------------------------------

	// Tickers returns the dashboard tickers this source covers.
	Tickers() []string

	// -----------------------------------------------------------------------------

	// Poll fetches the latest quotes and returns them as normalized ticks.
	// A ticker that cannot be quoted this cycle is simply absent from the
	// result; Poll only errors when the whole cycle failed.
	Poll(ctx context.Context) ([]models.MTick, error)
}
