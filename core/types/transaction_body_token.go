package types

type TokenType int16

const (
	TokenTypeFungibleCommon    TokenType = 0
	TokenTypeNonFungibleUnique TokenType = 1
)

type TokenSupplyType int16

const (
	TokenSupplyTypeInfinite TokenSupplyType = 0
	TokenSupplyTypeFinite   TokenSupplyType = 1
)

type TokenCreateBody struct {
	Name             string          `json:"name"`
	Symbol           string          `json:"symbol"`
	Decimals         int32           `json:"decimals"`
	InitialSupply    int64           `json:"initial_supply"`
	Treasury         AccountID       `json:"treasury"`
	AdminKey         []byte          `json:"admin_key,omitempty"`
	KycKey           []byte          `json:"kyc_key,omitempty"`
	FreezeKey        []byte          `json:"freeze_key,omitempty"`
	WipeKey          []byte          `json:"wipe_key,omitempty"`
	SupplyKey        []byte          `json:"supply_key,omitempty"`
	FeeScheduleKey   []byte          `json:"fee_schedule_key,omitempty"`
	PauseKey         []byte          `json:"pause_key,omitempty"`
	MetadataKey      []byte          `json:"metadata_key,omitempty"`
	FreezeDefault    bool            `json:"freeze_default,omitempty"`
	ExpirationTime   *int64          `json:"expiration_time,omitempty"`
	AutoRenewAccount *AccountID      `json:"auto_renew_account,omitempty"`
	AutoRenewPeriod  *int64          `json:"auto_renew_period,omitempty"`
	Memo             string          `json:"memo,omitempty"`
	TokenType        TokenType       `json:"token_type"`
	SupplyType       TokenSupplyType `json:"supply_type"`
	MaxSupply        int64           `json:"max_supply,omitempty"`
	Metadata         []byte          `json:"metadata,omitempty"`
}

func (*TokenCreateBody) TransactionType() TransactionType { return TransactionTypeTokenCreate }

// TokenUpdateBody uses nil for fields that are left unchanged.
type TokenUpdateBody struct {
	Token            EntityRef  `json:"token"`
	Name             *string    `json:"name,omitempty"`
	Symbol           *string    `json:"symbol,omitempty"`
	Treasury         *AccountID `json:"treasury,omitempty"`
	AdminKey         []byte     `json:"admin_key,omitempty"`
	KycKey           []byte     `json:"kyc_key,omitempty"`
	FreezeKey        []byte     `json:"freeze_key,omitempty"`
	WipeKey          []byte     `json:"wipe_key,omitempty"`
	SupplyKey        []byte     `json:"supply_key,omitempty"`
	FeeScheduleKey   []byte     `json:"fee_schedule_key,omitempty"`
	PauseKey         []byte     `json:"pause_key,omitempty"`
	MetadataKey      []byte     `json:"metadata_key,omitempty"`
	ExpirationTime   *int64     `json:"expiration_time,omitempty"`
	AutoRenewAccount *AccountID `json:"auto_renew_account,omitempty"`
	AutoRenewPeriod  *int64     `json:"auto_renew_period,omitempty"`
	Memo             *string    `json:"memo,omitempty"`
	Metadata         []byte     `json:"metadata,omitempty"`
}

func (*TokenUpdateBody) TransactionType() TransactionType { return TransactionTypeTokenUpdate }

type TokenMintBody struct {
	Token    EntityRef `json:"token"`
	Amount   int64     `json:"amount,omitempty"`
	Metadata [][]byte  `json:"metadata,omitempty"`
}

func (*TokenMintBody) TransactionType() TransactionType { return TransactionTypeTokenMint }

type TokenBurnBody struct {
	Token         EntityRef `json:"token"`
	Amount        int64     `json:"amount,omitempty"`
	SerialNumbers []int64   `json:"serial_numbers,omitempty"`
}

func (*TokenBurnBody) TransactionType() TransactionType { return TransactionTypeTokenBurn }

type TokenWipeBody struct {
	Token         EntityRef `json:"token"`
	Account       AccountID `json:"account"`
	Amount        int64     `json:"amount,omitempty"`
	SerialNumbers []int64   `json:"serial_numbers,omitempty"`
}

func (*TokenWipeBody) TransactionType() TransactionType { return TransactionTypeTokenWipe }

type TokenAssociateBody struct {
	Account AccountID   `json:"account"`
	Tokens  []EntityRef `json:"tokens"`
}

func (*TokenAssociateBody) TransactionType() TransactionType { return TransactionTypeTokenAssociate }

type TokenDissociateBody struct {
	Account AccountID   `json:"account"`
	Tokens  []EntityRef `json:"tokens"`
}

func (*TokenDissociateBody) TransactionType() TransactionType {
	return TransactionTypeTokenDissociate
}

// TokenAccountBody is shared by the freeze and kyc family, which all target one (token, account) pair.
type TokenAccountBody struct {
	Token   EntityRef `json:"token"`
	Account AccountID `json:"account"`
}

type (
	TokenFreezeBody    struct{ TokenAccountBody }
	TokenUnfreezeBody  struct{ TokenAccountBody }
	TokenGrantKycBody  struct{ TokenAccountBody }
	TokenRevokeKycBody struct{ TokenAccountBody }
)

func (*TokenFreezeBody) TransactionType() TransactionType    { return TransactionTypeTokenFreeze }
func (*TokenUnfreezeBody) TransactionType() TransactionType  { return TransactionTypeTokenUnfreeze }
func (*TokenGrantKycBody) TransactionType() TransactionType  { return TransactionTypeTokenGrantKyc }
func (*TokenRevokeKycBody) TransactionType() TransactionType { return TransactionTypeTokenRevokeKyc }

type TokenRefBody struct {
	Token EntityRef `json:"token"`
}

type (
	TokenDeleteBody  struct{ TokenRefBody }
	TokenPauseBody   struct{ TokenRefBody }
	TokenUnpauseBody struct{ TokenRefBody }
)

func (*TokenDeleteBody) TransactionType() TransactionType  { return TransactionTypeTokenDelete }
func (*TokenPauseBody) TransactionType() TransactionType   { return TransactionTypeTokenPause }
func (*TokenUnpauseBody) TransactionType() TransactionType { return TransactionTypeTokenUnpause }

type TokenFeeScheduleUpdateBody struct {
	Token      EntityRef `json:"token"`
	CustomFees []byte    `json:"custom_fees,omitempty"`
}

func (*TokenFeeScheduleUpdateBody) TransactionType() TransactionType {
	return TransactionTypeTokenFeeScheduleUpd
}

type TokenUpdateNftsBody struct {
	Token         EntityRef `json:"token"`
	SerialNumbers []int64   `json:"serial_numbers"`
	Metadata      []byte    `json:"metadata,omitempty"`
}

func (*TokenUpdateNftsBody) TransactionType() TransactionType { return TransactionTypeTokenUpdateNfts }
