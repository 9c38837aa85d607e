// Package common holds identifiers shared by every layer of the importer.
package common

// Network names the ledger network the record files come from.
type Network string

const (
	NetworkMainnet    Network = "mainnet"
	NetworkTestnet    Network = "testnet"
	NetworkPreviewnet Network = "previewnet"
	NetworkOther      Network = "other"
)

func (n Network) IsSupported() bool {
	switch n {
	case NetworkMainnet, NetworkTestnet, NetworkPreviewnet, NetworkOther:
		return true
	}
	return false
}

func (n Network) String() string {
	return string(n)
}

// Module is the name a module is registered, reported and versioned under.
type Module string

const ModuleImporter Module = "importer"

func (m Module) String() string {
	return string(m)
}
