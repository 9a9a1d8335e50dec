package core

// Topic the exchange publishes ledger events on. The WebSocket hub
// subscribes to it and fans events out to connected clients.
const EventTopic = "ledger:events"

// Event kinds.
const (
	EventWalletCreated  = "wallet_created"
	EventAssetCreated   = "asset_created"
	EventAssetListed    = "asset_listed"
	EventAssetPurchased = "asset_purchased"
	EventTransfer       = "currency_transferred"
	EventBlockSealed    = "block_sealed"
)

// Event is one committed mutation, published on the bus after the ledger
// lock is released.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Bus is the publish side of an event bus. Satisfied by
// github.com/asaskevich/EventBus.
type Bus interface {
	Publish(topic string, args ...interface{})
}
