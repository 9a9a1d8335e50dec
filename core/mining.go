package core

import "github.com/google/uuid"

// MiningReward is credited to the node for every sealed block.
const MiningReward int64 = 10

// ProofOfWork performs the unbounded linear search for the first candidate
// satisfying ValidProof against lastProof. Pure CPU work; callers must not
// hold the exchange lock while searching.
func ProofOfWork(lastProof uint64) uint64 {
	var proof uint64
	for !ValidProof(lastProof, proof) {
		proof++
	}
	return proof
}

// Mine searches for a valid proof against the current chain tip, then
// appends the mining-reward record and seals a new block from the pending
// log. The search runs outside the lock; if another miner advances the
// chain while we search, the stale proof is discarded and the search
// restarts against the new tip.
func (e *Exchange) Mine() (Block, Receipt) {
	for {
		lastProof := e.LastBlock().Proof
		proof := ProofOfWork(lastProof)

		e.mu.Lock()
		if e.store.last().Proof != lastProof {
			e.mu.Unlock()
			continue
		}
		reward := e.ledger.creditReward(e.nodeID, MiningReward, e.now())
		block := e.store.seal(proof, e.now())
		e.mu.Unlock()

		e.log.Info().
			Int("index", block.Index).
			Uint64("proof", block.Proof).
			Int("operations", len(block.Operations)).
			Msg("block sealed")
		e.publish(EventBlockSealed, block)
		return block, Receipt{
			ID:        uuid.NewString(),
			Type:      OpMiningReward,
			To:        reward.Miner,
			Amount:    reward.Reward,
			Timestamp: reward.Timestamp,
		}
	}
}
