// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package address

import (
	"fmt"
	"strings"

	"github.com/complex-gh/adawallet/codec"
)

// Network identifies the chain an address is valid on.
type Network int

// Supported networks.
const (
	Mainnet Network = iota
	Preprod
	Preview
)

// Network discriminators carried in the low nibble of the address header.
// Every test network shares the same discriminator.
const (
	TestnetID byte = 0
	MainnetID byte = 1
)

type networkInfo struct {
	name          string
	id            byte
	addressPrefix string
	rewardPrefix  string
}

var networks = map[Network]networkInfo{
	Mainnet: {name: "mainnet", id: MainnetID, addressPrefix: codec.PrefixAddressMainnet, rewardPrefix: codec.PrefixRewardMainnet},
	Preprod: {name: "preprod", id: TestnetID, addressPrefix: codec.PrefixAddressPreprod, rewardPrefix: codec.PrefixRewardPreprod},
	Preview: {name: "preview", id: TestnetID, addressPrefix: codec.PrefixAddressPreview, rewardPrefix: codec.PrefixRewardPreview},
}

// Networks returns every supported network in a stable order.
func Networks() []Network {
	return []Network{Mainnet, Preprod, Preview}
}

// ParseNetwork maps a name such as "mainnet", "preprod" or "preview" to a
// Network. "testnet-preprod" and "testnet-preview" are accepted too.
func ParseNetwork(s string) (Network, error) {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "testnet-")
	for _, n := range Networks() {
		if networks[n].name == name {
			return n, nil
		}
	}
	return 0, fmt.Errorf("unknown network %q (must be mainnet, preprod or preview)", s)
}

// Valid reports whether n is a supported network.
func (n Network) Valid() bool {
	_, ok := networks[n]
	return ok
}

// String returns the network name.
func (n Network) String() string {
	if info, ok := networks[n]; ok {
		return info.name
	}
	return fmt.Sprintf("Network(%d)", int(n))
}

// ID returns the header discriminator.
func (n Network) ID() byte {
	return networks[n].id
}

// AddressPrefix returns the bech32 prefix for enterprise and base addresses.
func (n Network) AddressPrefix() string {
	return networks[n].addressPrefix
}

// RewardPrefix returns the bech32 prefix for reward addresses.
func (n Network) RewardPrefix() string {
	return networks[n].rewardPrefix
}

// networkForPrefix finds the network that owns hrp and whether hrp is a
// reward prefix.
func networkForPrefix(hrp string) (Network, bool, bool) {
	for _, n := range Networks() {
		info := networks[n]
		switch hrp {
		case info.addressPrefix:
			return n, false, true
		case info.rewardPrefix:
			return n, true, true
		}
	}
	return 0, false, false
}
