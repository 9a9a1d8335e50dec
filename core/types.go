package core

// BaseCurrency is the unit every balance and price is denominated in.
const BaseCurrency = "DAT"

// Wallet holds a user's balance and the set of assets they own.
type Wallet struct {
	Address     string   `json:"address"`
	Balance     int64    `json:"balance"`
	AssetsOwned []string `json:"assets_owned"`
	CreatedAt   int64    `json:"created_at"`
}

// Asset is a uniquely identified ownership record. Creator never changes;
// CurrentOwner moves with each purchase.
type Asset struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Creator      string            `json:"creator"`
	CurrentOwner string            `json:"current_owner"`
	AssetType    string            `json:"asset_type"`
	Metadata     map[string]string `json:"metadata"`
	CreatedAt    int64             `json:"created_at"`
	History      []Operation       `json:"transaction_history"`
}

// ListingStatus is the lifecycle state of a marketplace listing.
type ListingStatus string

const (
	ListingActive ListingStatus = "active"
	ListingSold   ListingStatus = "sold"
)

// Listing is an offer to sell one asset at a fixed price. Listings are keyed
// by asset id, so at most one active listing exists per asset.
type Listing struct {
	AssetID  string        `json:"asset_id"`
	Seller   string        `json:"seller"`
	Price    int64         `json:"price"`
	ListedAt int64         `json:"listed_at"`
	Status   ListingStatus `json:"status"`
}

// OpType tags an operation record with the kind of mutation it describes.
type OpType string

const (
	OpAssetCreation    OpType = "asset_creation"
	OpAssetPurchase    OpType = "asset_purchase"
	OpCurrencyTransfer OpType = "currency_transfer"
	OpMiningReward     OpType = "mining_reward"
)

// Operation is one committed ledger mutation. Records sit in the pending log
// until sealed into a block; purchase and creation records are also appended
// to the asset's own history. Only the fields relevant to the tagged kind
// are set.
type Operation struct {
	Type      OpType `json:"type"`
	AssetID   string `json:"asset_id,omitempty"`
	Creator   string `json:"creator,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Price     int64  `json:"price,omitempty"`
	Amount    int64  `json:"amount,omitempty"`
	Miner     string `json:"miner,omitempty"`
	Reward    int64  `json:"reward,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Block is an immutable batch of operations sealed behind a proof of work.
// PrevHash is the digest of the block at Index-1.
type Block struct {
	Index      int         `json:"index"`
	Timestamp  int64       `json:"timestamp"`
	Operations []Operation `json:"transactions"`
	Proof      uint64      `json:"proof"`
	PrevHash   string      `json:"previous_hash"`
}

// Receipt confirms a completed trade or transfer.
type Receipt struct {
	ID        string `json:"id"`
	Type      OpType `json:"type"`
	AssetID   string `json:"asset_id,omitempty"`
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    int64  `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}

// Portfolio is a consistent snapshot of a wallet and the full records of
// every asset it owns.
type Portfolio struct {
	Wallet Wallet  `json:"user_info"`
	Assets []Asset `json:"owned_assets"`
}

// Stats aggregates ledger-wide counts.
type Stats struct {
	TotalUsers     int    `json:"total_users"`
	TotalAssets    int    `json:"total_assets"`
	ActiveListings int    `json:"active_listings"`
	TotalBlocks    int    `json:"total_blocks"`
	PendingOps     int    `json:"pending_operations"`
	BaseCurrency   string `json:"base_currency"`
}

// MarketSummary describes the price distribution of active listings.
type MarketSummary struct {
	Listings    int     `json:"listings"`
	MeanPrice   float64 `json:"mean_price"`
	MedianPrice float64 `json:"median_price"`
}
