package domain

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// Chain identifies the network a token or pool lives on. Data-acquisition
// calls take it explicitly; nothing in the core defaults to a chain.
type Chain string

const (
	ChainBSC      Chain = "bsc"
	ChainEthereum Chain = "ethereum"
	ChainSolana   Chain = "solana"
)

// String returns the string representation of Chain.
func (c Chain) String() string {
	return string(c)
}

// IsValid checks if the chain is a recognized value.
func (c Chain) IsValid() bool {
	switch c {
	case ChainBSC, ChainEthereum, ChainSolana:
		return true
	}
	return false
}

// ValidateAddress checks that addr is well-formed for the chain.
// EVM chains: 0x + 40 hex chars. Solana: base58, 32 bytes decoded.
func (c Chain) ValidateAddress(addr string) error {
	switch c {
	case ChainBSC, ChainEthereum:
		if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
			return fmt.Errorf("invalid %s address %q: want 0x-prefixed 20-byte hex", c, addr)
		}
		for _, r := range addr[2:] {
			if !isHexDigit(r) {
				return fmt.Errorf("invalid %s address %q: non-hex character", c, addr)
			}
		}
		return nil
	case ChainSolana:
		raw, err := base58.Decode(addr)
		if err != nil {
			return fmt.Errorf("invalid solana address %q: %w", addr, err)
		}
		if len(raw) != 32 {
			return fmt.Errorf("invalid solana address %q: decoded to %d bytes, want 32", addr, len(raw))
		}
		return nil
	default:
		return fmt.Errorf("unknown chain %q", c)
	}
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
