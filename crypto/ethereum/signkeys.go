// Package ethereum wraps the secp256k1 keys used to identify voters and
// election creators. Identities are Ethereum addresses recovered from EIP-191
// personal signatures.
package ethereum

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/vocdoni/blindvote/util"
)

const (
	// SignatureLength is the size of a [R || S || V] signature.
	SignatureLength = ethcrypto.SignatureLength
	// HashLength is the size of a keccak256 digest.
	HashLength = common.HashLength
)

// ErrInvalidSignature is returned when an address cannot be recovered from a
// signature.
var ErrInvalidSignature = errors.New("invalid signature")

// SignKeys holds a secp256k1 key pair.
type SignKeys struct {
	Public  ecdsa.PublicKey
	Private ecdsa.PrivateKey
	lock    sync.RWMutex
}

// NewSignKeys returns an empty SignKeys. Call Generate or AddHexKey before
// signing.
func NewSignKeys() *SignKeys {
	return &SignKeys{}
}

// Generate creates a new random key pair.
func (k *SignKeys) Generate() error {
	k.lock.Lock()
	defer k.lock.Unlock()
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// AddHexKey imports a hex encoded private key, with or without 0x prefix.
func (k *SignKeys) AddHexKey(privHex string) error {
	k.lock.Lock()
	defer k.lock.Unlock()
	key, err := ethcrypto.HexToECDSA(util.TrimHex(privHex))
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// PublicKey returns the compressed public key.
func (k *SignKeys) PublicKey() []byte {
	k.lock.RLock()
	defer k.lock.RUnlock()
	return ethcrypto.CompressPubkey(&k.Public)
}

// Address returns the Ethereum address of the key pair.
func (k *SignKeys) Address() common.Address {
	k.lock.RLock()
	defer k.lock.RUnlock()
	return ethcrypto.PubkeyToAddress(k.Public)
}

// AddressString returns the checksummed address.
func (k *SignKeys) AddressString() string {
	return k.Address().Hex()
}

// SignEthereum signs msg with the EIP-191 personal message prefix. The
// recovery byte of the returned signature is 0 or 1.
func (k *SignKeys) SignEthereum(msg []byte) ([]byte, error) {
	k.lock.RLock()
	defer k.lock.RUnlock()
	if k.Private.D == nil {
		return nil, errors.New("no private key available")
	}
	sig, err := ethcrypto.Sign(Hash(msg), &k.Private)
	if err != nil {
		return nil, fmt.Errorf("could not sign: %w", err)
	}
	return sig, nil
}

// AddrFromSignature recovers the address that signed msg with SignEthereum.
// Recovery bytes 27 and 28 are accepted as well.
func AddrFromSignature(msg, signature []byte) (common.Address, error) {
	if len(signature) != SignatureLength {
		return common.Address{}, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(signature))
	}
	sig := make([]byte, SignatureLength)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return common.Address{}, fmt.Errorf("%w: bad recovery id %d", ErrInvalidSignature, signature[64])
	}
	pub, err := ethcrypto.SigToPub(Hash(msg), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}

// AddrFromPublicKey returns the address of a compressed or uncompressed public
// key.
func AddrFromPublicKey(pub []byte) (common.Address, error) {
	var (
		key *ecdsa.PublicKey
		err error
	)
	if len(pub) == 33 {
		key, err = ethcrypto.DecompressPubkey(pub)
	} else {
		key, err = ethcrypto.UnmarshalPubkey(pub)
	}
	if err != nil {
		return common.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(*key), nil
}

// Hash returns the EIP-191 personal message hash of msg.
func Hash(msg []byte) []byte {
	return accounts.TextHash(msg)
}
