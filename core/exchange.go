package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Exchange is the single authoritative ledger instance. It owns the one
// process-wide lock that serializes every mutating operation, so a
// purchase's check-debit-credit-transfer sequence never interleaves with
// another mutation and a seal's drain of the pending log never races an
// append. Reads take the lock in read mode and return copies.
type Exchange struct {
	mu     sync.RWMutex
	ledger *Ledger
	store  *BlockStore

	nodeID string
	bus    Bus
	log    zerolog.Logger
	now    func() int64
}

// NewExchange builds an exchange with a genesis block already sealed.
// bus may be nil when no event feed is wired.
func NewExchange(nodeID string, logger zerolog.Logger, bus Bus) *Exchange {
	now := func() int64 { return time.Now().UnixNano() }
	store := newBlockStore(now())
	return &Exchange{
		ledger: newLedger(store),
		store:  store,
		nodeID: nodeID,
		bus:    bus,
		log:    logger.With().Str("component", "exchange").Logger(),
		now:    now,
	}
}

// NodeID returns the identity used as the miner of reward records.
func (e *Exchange) NodeID() string { return e.nodeID }

// CreateWallet inserts a wallet for address. Pass
// DefaultInitialBalance when the caller did not supply a balance.
func (e *Exchange) CreateWallet(address string, initialBalance int64) (Wallet, error) {
	if initialBalance < 0 {
		return Wallet{}, rejectedf("initial balance must not be negative")
	}
	e.mu.Lock()
	w, err := e.ledger.createWallet(address, initialBalance, e.now())
	e.mu.Unlock()
	if err != nil {
		return Wallet{}, err
	}
	e.log.Info().Str("address", address).Int64("balance", initialBalance).Msg("wallet created")
	e.publish(EventWalletCreated, w)
	return w, nil
}

// CreateAsset mints an asset owned by creator, who must already hold a
// wallet.
func (e *Exchange) CreateAsset(id, name, description, creator, assetType string, metadata map[string]string) (Asset, error) {
	e.mu.Lock()
	a, err := e.ledger.createAsset(id, name, description, creator, assetType, metadata, e.now())
	e.mu.Unlock()
	if err != nil {
		return Asset{}, err
	}
	e.log.Info().Str("asset", id).Str("creator", creator).Msg("asset created")
	e.publish(EventAssetCreated, a)
	return a, nil
}

// ListForSale puts an asset on the marketplace at a fixed positive price.
func (e *Exchange) ListForSale(assetID, seller string, price int64) (Listing, error) {
	e.mu.Lock()
	listing, err := e.ledger.listForSale(assetID, seller, price, e.now())
	e.mu.Unlock()
	if err != nil {
		return Listing{}, err
	}
	e.log.Info().Str("asset", assetID).Str("seller", seller).Int64("price", price).Msg("asset listed")
	e.publish(EventAssetListed, listing)
	return listing, nil
}

// BuyAsset settles a marketplace purchase atomically and removes the
// listing so the asset can be relisted.
func (e *Exchange) BuyAsset(assetID, buyer string) (Receipt, error) {
	e.mu.Lock()
	record, err := e.ledger.buyAsset(assetID, buyer, e.now())
	e.mu.Unlock()
	if err != nil {
		return Receipt{}, err
	}
	receipt := newReceipt(record)
	e.log.Info().Str("asset", assetID).Str("buyer", buyer).Int64("price", record.Price).Msg("asset purchased")
	e.publish(EventAssetPurchased, receipt)
	return receipt, nil
}

// TransferCurrency moves amount between two wallets.
func (e *Exchange) TransferCurrency(from, to string, amount int64) (Receipt, error) {
	e.mu.Lock()
	record, err := e.ledger.transferCurrency(from, to, amount, e.now())
	e.mu.Unlock()
	if err != nil {
		return Receipt{}, err
	}
	receipt := newReceipt(record)
	e.log.Info().Str("from", from).Str("to", to).Int64("amount", amount).Msg("currency transferred")
	e.publish(EventTransfer, receipt)
	return receipt, nil
}

// Wallet returns the wallet record for address.
func (e *Exchange) Wallet(address string) (Wallet, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.wallet(address)
}

// Portfolio returns a consistent snapshot of the wallet and its assets.
func (e *Exchange) Portfolio(address string) (Portfolio, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.portfolio(address)
}

// Assets returns every asset record.
func (e *Exchange) Assets() []Asset {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.allAssets()
}

// Marketplace returns every active listing.
func (e *Exchange) Marketplace() []Listing {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.marketplace()
}

// MarketSummary returns price statistics over the active listings.
func (e *Exchange) MarketSummary() MarketSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.marketSummary()
}

// Chain returns a snapshot of the full block sequence.
func (e *Exchange) Chain() []Block {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.chain()
}

// LastBlock returns the most recently sealed block.
func (e *Exchange) LastBlock() Block {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.last()
}

// PendingOperations returns the number of unsealed operations.
func (e *Exchange) PendingOperations() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.pendingCount()
}

// VerifyChain checks hash linkage and proof admission over the whole chain.
func (e *Exchange) VerifyChain() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.verify()
}

// Stats returns aggregate ledger counts.
func (e *Exchange) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Stats{
		TotalUsers:     len(e.ledger.wallets),
		TotalAssets:    len(e.ledger.assets),
		ActiveListings: len(e.ledger.market),
		TotalBlocks:    len(e.store.blocks),
		PendingOps:     len(e.store.pending),
		BaseCurrency:   BaseCurrency,
	}
}

func (e *Exchange) publish(kind string, data any) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(EventTopic, Event{Type: kind, Data: data})
}

func newReceipt(record Operation) Receipt {
	amount := record.Amount
	if record.Type == OpAssetPurchase {
		amount = record.Price
	}
	return Receipt{
		ID:        uuid.NewString(),
		Type:      record.Type,
		AssetID:   record.AssetID,
		From:      record.From,
		To:        record.To,
		Amount:    amount,
		Timestamp: record.Timestamp,
	}
}
