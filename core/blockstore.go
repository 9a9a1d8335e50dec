package core

import (
	"fmt"
)

// BlockStore owns the sealed chain and the pending operation log. It does no
// locking of its own: the Exchange serializes every call, so that a seal's
// read-and-clear of the pending log never races a ledger append.
type BlockStore struct {
	blocks  []Block
	pending []Operation
}

// newBlockStore creates a store holding only the genesis block: index 1,
// fixed proof, placeholder previous hash, empty operation list.
func newBlockStore(now int64) *BlockStore {
	genesis := Block{
		Index:      1,
		Timestamp:  now,
		Operations: []Operation{},
		Proof:      GenesisProof,
		PrevHash:   GenesisPrevHash,
	}
	return &BlockStore{blocks: []Block{genesis}}
}

// appendPending records a committed mutation into the unsealed buffer.
func (bs *BlockStore) appendPending(op Operation) {
	bs.pending = append(bs.pending, op)
}

// pendingCount returns the number of unsealed operations.
func (bs *BlockStore) pendingCount() int {
	return len(bs.pending)
}

// last returns the most recently sealed block. The genesis block guarantees
// the chain is never empty.
func (bs *BlockStore) last() Block {
	return bs.blocks[len(bs.blocks)-1]
}

// seal wraps the pending log into a new block chained to the previous
// block's digest and clears the log. An empty pending log still seals a
// valid (empty) block.
func (bs *BlockStore) seal(proof uint64, now int64) Block {
	prev := bs.last()
	block := Block{
		Index:      prev.Index + 1,
		Timestamp:  now,
		Operations: bs.pending,
		Proof:      proof,
		PrevHash:   BlockDigest(prev),
	}
	if block.Operations == nil {
		block.Operations = []Operation{}
	}
	bs.pending = nil
	bs.blocks = append(bs.blocks, block)
	return block
}

// chain returns a copy of the full block sequence. Blocks are immutable
// after sealing, so a shallow copy is a safe snapshot.
func (bs *BlockStore) chain() []Block {
	out := make([]Block, len(bs.blocks))
	copy(out, bs.blocks)
	return out
}

// verify walks the chain and checks index continuity, previous-hash linkage
// and proof admission for every sealed block.
func (bs *BlockStore) verify() error {
	if len(bs.blocks) == 0 {
		return fmt.Errorf("empty chain")
	}
	if bs.blocks[0].PrevHash != GenesisPrevHash || bs.blocks[0].Index != 1 {
		return fmt.Errorf("invalid genesis block")
	}
	for i := 1; i < len(bs.blocks); i++ {
		current, previous := bs.blocks[i], bs.blocks[i-1]
		if current.Index != previous.Index+1 {
			return fmt.Errorf("block %d: invalid index: expected %d, got %d", i, previous.Index+1, current.Index)
		}
		if current.PrevHash != BlockDigest(previous) {
			return fmt.Errorf("block %d: previous hash mismatch", i)
		}
		if !ValidProof(previous.Proof, current.Proof) {
			return fmt.Errorf("block %d: proof %d not valid for previous proof %d", i, current.Proof, previous.Proof)
		}
	}
	return nil
}
