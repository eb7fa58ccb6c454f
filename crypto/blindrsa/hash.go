package blindrsa

import (
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/vocdoni/blindvote/types"
)

// Hash returns keccak256(paddedVote || mask), the hash bound to the vote in
// the commitment.
func Hash(paddedVote, mask types.Word) types.Word {
	return types.Word(ethcrypto.Keccak256Hash(paddedVote[:], mask[:]))
}
