package core

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultInitialBalance is credited to a new wallet when the caller
	// does not supply a balance.
	DefaultInitialBalance int64 = 1000

	// DefaultAssetType is used when an asset is created without a type tag.
	DefaultAssetType = "NFT"
)

// Ledger owns the wallet, asset and marketplace maps. Like the BlockStore it
// does no locking of its own; the Exchange serializes every call. Successful
// mutations append their record to the store's pending log.
type Ledger struct {
	wallets map[string]*Wallet
	assets  map[string]*Asset
	market  map[string]*Listing
	store   *BlockStore
}

func newLedger(store *BlockStore) *Ledger {
	return &Ledger{
		wallets: make(map[string]*Wallet),
		assets:  make(map[string]*Asset),
		market:  make(map[string]*Listing),
		store:   store,
	}
}

// createWallet inserts a wallet for address with the given starting balance.
func (l *Ledger) createWallet(address string, initialBalance int64, now int64) (Wallet, error) {
	if _, exists := l.wallets[address]; exists {
		return Wallet{}, conflictf("wallet %s", address)
	}
	w := &Wallet{
		Address:     address,
		Balance:     initialBalance,
		AssetsOwned: []string{},
		CreatedAt:   now,
	}
	l.wallets[address] = w
	return *w, nil
}

// createAsset mints a new asset owned by its creator and records the
// creation in both the asset history and the pending log.
func (l *Ledger) createAsset(id, name, description, creator, assetType string, metadata map[string]string, now int64) (Asset, error) {
	if _, exists := l.assets[id]; exists {
		return Asset{}, conflictf("asset %s", id)
	}
	owner, exists := l.wallets[creator]
	if !exists {
		return Asset{}, notFoundf("creator %s", creator)
	}
	if assetType == "" {
		assetType = DefaultAssetType
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	record := Operation{
		Type:      OpAssetCreation,
		AssetID:   id,
		Creator:   creator,
		Timestamp: now,
	}
	a := &Asset{
		ID:           id,
		Name:         name,
		Description:  description,
		Creator:      creator,
		CurrentOwner: creator,
		AssetType:    assetType,
		Metadata:     metadata,
		CreatedAt:    now,
		History:      []Operation{record},
	}
	l.assets[id] = a
	owner.AssetsOwned = append(owner.AssetsOwned, id)
	l.store.appendPending(record)
	return snapshotAsset(a), nil
}

// listForSale puts an asset on the marketplace. Only the current owner may
// list, the price must be positive, and an already-listed asset stays
// untouched until its listing is removed by a purchase.
func (l *Ledger) listForSale(assetID, seller string, price int64, now int64) (Listing, error) {
	asset, exists := l.assets[assetID]
	if !exists {
		return Listing{}, notFoundf("asset %s", assetID)
	}
	if asset.CurrentOwner != seller {
		return Listing{}, rejectedf("asset %s not owned by %s", assetID, seller)
	}
	if _, listed := l.market[assetID]; listed {
		return Listing{}, rejectedf("asset %s already listed", assetID)
	}
	if price <= 0 {
		return Listing{}, rejectedf("price must be positive")
	}
	listing := &Listing{
		AssetID:  assetID,
		Seller:   seller,
		Price:    price,
		ListedAt: now,
		Status:   ListingActive,
	}
	l.market[assetID] = listing
	return *listing, nil
}

// buyAsset settles a purchase: debit buyer, credit seller, move ownership,
// remove the listing. All checks precede all mutations, so a failure leaves
// no partial state.
func (l *Ledger) buyAsset(assetID, buyer string, now int64) (Operation, error) {
	listing, exists := l.market[assetID]
	if !exists || listing.Status != ListingActive {
		return Operation{}, rejectedf("asset %s not available", assetID)
	}
	buyerWallet, exists := l.wallets[buyer]
	if !exists {
		return Operation{}, notFoundf("buyer %s", buyer)
	}
	sellerWallet := l.wallets[listing.Seller]
	if buyerWallet.Balance < listing.Price {
		return Operation{}, rejectedf("insufficient balance")
	}

	buyerWallet.Balance -= listing.Price
	sellerWallet.Balance += listing.Price
	removeAssetID(sellerWallet, assetID)
	buyerWallet.AssetsOwned = append(buyerWallet.AssetsOwned, assetID)
	asset := l.assets[assetID]
	asset.CurrentOwner = buyer

	record := Operation{
		Type:      OpAssetPurchase,
		AssetID:   assetID,
		From:      listing.Seller,
		To:        buyer,
		Price:     listing.Price,
		Timestamp: now,
	}
	asset.History = append(asset.History, record)
	l.store.appendPending(record)

	listing.Status = ListingSold
	delete(l.market, assetID)
	return record, nil
}

// transferCurrency moves amount from one wallet to another. A self-transfer
// is permitted and nets to zero.
func (l *Ledger) transferCurrency(from, to string, amount int64, now int64) (Operation, error) {
	sender, exists := l.wallets[from]
	if !exists {
		return Operation{}, notFoundf("user %s", from)
	}
	recipient, exists := l.wallets[to]
	if !exists {
		return Operation{}, notFoundf("user %s", to)
	}
	if amount <= 0 {
		return Operation{}, rejectedf("amount must be positive")
	}
	if sender.Balance < amount {
		return Operation{}, rejectedf("insufficient balance")
	}

	sender.Balance -= amount
	recipient.Balance += amount

	record := Operation{
		Type:      OpCurrencyTransfer,
		From:      from,
		To:        to,
		Amount:    amount,
		Timestamp: now,
	}
	l.store.appendPending(record)
	return record, nil
}

// creditReward mints the mining reward into the pending log. The miner does
// not need a wallet; the reward record only enters the chain.
func (l *Ledger) creditReward(miner string, reward int64, now int64) Operation {
	record := Operation{
		Type:      OpMiningReward,
		Miner:     miner,
		Reward:    reward,
		Timestamp: now,
	}
	l.store.appendPending(record)
	return record
}

// wallet returns a copy of the wallet for address.
func (l *Ledger) wallet(address string) (Wallet, error) {
	w, exists := l.wallets[address]
	if !exists {
		return Wallet{}, notFoundf("user %s", address)
	}
	return snapshotWallet(w), nil
}

// portfolio returns the wallet plus the full record of every owned asset.
func (l *Ledger) portfolio(address string) (Portfolio, error) {
	w, exists := l.wallets[address]
	if !exists {
		return Portfolio{}, notFoundf("user %s", address)
	}
	p := Portfolio{Wallet: snapshotWallet(w), Assets: []Asset{}}
	for _, id := range w.AssetsOwned {
		if a, ok := l.assets[id]; ok {
			p.Assets = append(p.Assets, snapshotAsset(a))
		}
	}
	return p, nil
}

// allAssets returns copies of every asset record.
func (l *Ledger) allAssets() []Asset {
	out := make([]Asset, 0, len(l.assets))
	for _, a := range l.assets {
		out = append(out, snapshotAsset(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// marketplace returns copies of every active listing.
func (l *Ledger) marketplace() []Listing {
	out := make([]Listing, 0, len(l.market))
	for _, listing := range l.market {
		out = append(out, *listing)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out
}

// marketSummary computes listing count and mean/median price over the
// active listings.
func (l *Ledger) marketSummary() MarketSummary {
	if len(l.market) == 0 {
		return MarketSummary{}
	}
	prices := make([]float64, 0, len(l.market))
	for _, listing := range l.market {
		prices = append(prices, float64(listing.Price))
	}
	sort.Float64s(prices)
	return MarketSummary{
		Listings:    len(prices),
		MeanPrice:   stat.Mean(prices, nil),
		MedianPrice: stat.Quantile(0.5, stat.Empirical, prices, nil),
	}
}

func removeAssetID(w *Wallet, assetID string) {
	for i, id := range w.AssetsOwned {
		if id == assetID {
			w.AssetsOwned = append(w.AssetsOwned[:i], w.AssetsOwned[i+1:]...)
			return
		}
	}
}

func snapshotWallet(w *Wallet) Wallet {
	out := *w
	out.AssetsOwned = append([]string(nil), w.AssetsOwned...)
	if out.AssetsOwned == nil {
		out.AssetsOwned = []string{}
	}
	return out
}

func snapshotAsset(a *Asset) Asset {
	out := *a
	out.Metadata = make(map[string]string, len(a.Metadata))
	for k, v := range a.Metadata {
		out.Metadata[k] = v
	}
	out.History = append([]Operation(nil), a.History...)
	return out
}
