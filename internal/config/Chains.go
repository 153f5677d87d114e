/*

Chains the revnet contracts are deployed to.

This file maps chain ids to the display names used in the activity feed and to block
explorer base urls. An id that is missing here is shown as "chain <id>".

*/

package config

import "fmt"

type Chain struct {
	ID       int64
	Name     string
	Explorer string
	Testnet  bool
}

var Chains = map[int64]Chain{
	1:        {ID: 1, Name: "Ethereum", Explorer: "https://etherscan.io"},
	10:       {ID: 10, Name: "Optimism", Explorer: "https://optimistic.etherscan.io"},
	8453:     {ID: 8453, Name: "Base", Explorer: "https://basescan.org"},
	42161:    {ID: 42161, Name: "Arbitrum", Explorer: "https://arbiscan.io"},
	11155111: {ID: 11155111, Name: "Sepolia", Explorer: "https://sepolia.etherscan.io", Testnet: true},
	11155420: {ID: 11155420, Name: "OP Sepolia", Explorer: "https://sepolia-optimism.etherscan.io", Testnet: true},
	84532:    {ID: 84532, Name: "Base Sepolia", Explorer: "https://sepolia.basescan.org", Testnet: true},
	421614:   {ID: 421614, Name: "Arbitrum Sepolia", Explorer: "https://sepolia.arbiscan.io", Testnet: true},
}

// ChainName returns the display name for id.
func ChainName(id int64) string {
	if c, ok := Chains[id]; ok {
		return c.Name
	}
	return fmt.Sprintf("chain %d", id)
}

// TxURL links a transaction on the chain's explorer, or "" for unknown chains.
func TxURL(id int64, txHash string) string {
	c, ok := Chains[id]
	if !ok {
		return ""
	}
	return c.Explorer + "/tx/" + txHash
}
