package interfaces

import "market-pulse/src/models"

// -----------------------------------------------------------------------------
// ITickPublisher is the publish side of the broadcast channel. The poller
// (and the /ingest bridge) push normalized ticks here; delivery to stream
// subscribers is the hub's concern.
// -----------------------------------------------------------------------------

type ITickPublisher interface {

	// Publish hands one tick to the channel. Never blocks on slow
	// subscribers; ordering per ticker follows publish order.
	Publish(tick models.MTick)

	// -----------------------------------------------------------------------------

	// Latest returns the most recently published tick for a ticker.
	Latest(ticker string) (models.MTick, bool)
}
