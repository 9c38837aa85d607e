package domain

import (
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

// An allowance approval replaces the previous one for the same key, so allowances don't merge.

type CryptoAllowanceKey struct {
	Owner   entityid.EntityId
	Spender entityid.EntityId
}

type CryptoAllowance struct {
	Owner          entityid.EntityId
	Spender        entityid.EntityId
	Amount         int64
	AmountGranted  int64
	PayerAccountId entityid.EntityId
	TimestampLower int64
}

func (a *CryptoAllowance) Type() Type { return TypeCryptoAllowance }
func (a *CryptoAllowance) Key() any {
	return CryptoAllowanceKey{Owner: a.Owner, Spender: a.Spender}
}

func (a *CryptoAllowance) ReferencedEntityIds() []entityid.EntityId {
	return nonEmpty(a.Owner, a.Spender)
}

type TokenAllowanceKey struct {
	Owner   entityid.EntityId
	Spender entityid.EntityId
	TokenId entityid.EntityId
}

type TokenAllowance struct {
	Owner          entityid.EntityId
	Spender        entityid.EntityId
	TokenId        entityid.EntityId
	Amount         int64
	AmountGranted  int64
	PayerAccountId entityid.EntityId
	TimestampLower int64
}

func (a *TokenAllowance) Type() Type { return TypeTokenAllowance }
func (a *TokenAllowance) Key() any {
	return TokenAllowanceKey{Owner: a.Owner, Spender: a.Spender, TokenId: a.TokenId}
}

func (a *TokenAllowance) ReferencedEntityIds() []entityid.EntityId {
	return nonEmpty(a.Owner, a.Spender, a.TokenId)
}

type NftAllowance struct {
	Owner          entityid.EntityId
	Spender        entityid.EntityId
	TokenId        entityid.EntityId
	ApprovedForAll bool
	PayerAccountId entityid.EntityId
	TimestampLower int64
}

func (a *NftAllowance) Type() Type { return TypeNftAllowance }
func (a *NftAllowance) Key() any {
	return TokenAllowanceKey{Owner: a.Owner, Spender: a.Spender, TokenId: a.TokenId}
}

func (a *NftAllowance) ReferencedEntityIds() []entityid.EntityId {
	return nonEmpty(a.Owner, a.Spender, a.TokenId)
}
