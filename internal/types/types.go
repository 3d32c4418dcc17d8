// =============================================================================
// whalewatch - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - converter   (FilteredRecord)
//   - csvwriter   (FilteredRecord)
//   - rpcclient   (TransactionDetail)
//   - analysis    (TransactionDetail)
//   - xlsxreport  (TransactionDetail)
//
// =============================================================================

package types

// AddressPlaceholder is rendered wherever an output carries no address or
// no value.
const AddressPlaceholder = "N/A"

// =============================================================================
// ACCUMULATED OUTPUT
// =============================================================================

// FilteredRecord is one row of the accumulated output file.
//
// Values are carried verbatim from the source cell so that the text written
// to the output matches the text read from the input.
type FilteredRecord struct {
	// Hash is the opaque transaction identifier.
	Hash string

	// Time is the transaction timestamp (integer epoch seconds in practice).
	Time string
}

// OutputHeader is the header row of the accumulated output file.
var OutputHeader = []string{"hash", "time"}

// Fields returns the record in OutputHeader order.
func (r FilteredRecord) Fields() []string {
	return []string{r.Hash, r.Time}
}

// =============================================================================
// TRANSACTION DETAIL
// =============================================================================

// TransactionDetail mirrors the verbose result of Bitcoin Core's
// getrawtransaction call. It is read-only and never persisted.
type TransactionDetail struct {
	TxID          string `json:"txid"`
	Hash          string `json:"hash"`
	Version       int    `json:"version"`
	Size          int    `json:"size"`
	VSize         int    `json:"vsize"`
	Weight        int    `json:"weight"`
	LockTime      int64  `json:"locktime"`
	Vin           []Vin  `json:"vin"`
	Vout          []Vout `json:"vout"`
	Hex           string `json:"hex"`
	BlockHash     string `json:"blockhash,omitempty"`
	Confirmations int64  `json:"confirmations,omitempty"`
	Time          int64  `json:"time,omitempty"`
	BlockTime     int64  `json:"blocktime,omitempty"`
}

// Vin is a single transaction input.
type Vin struct {
	TxID      string     `json:"txid,omitempty"`
	Vout      int        `json:"vout"`
	Coinbase  string     `json:"coinbase,omitempty"`
	ScriptSig *ScriptSig `json:"scriptSig,omitempty"`
	Sequence  uint32     `json:"sequence"`
}

// ScriptSig is the unlocking script of an input.
type ScriptSig struct {
	Asm string `json:"asm"`
	Hex string `json:"hex"`
}

// Vout is a single transaction output.
type Vout struct {
	// Value is the output amount in the major unit. Nil when the node
	// omitted it.
	Value *float64 `json:"value"`

	// N is the output index.
	N int `json:"n"`

	ScriptPubKey ScriptPubKey `json:"scriptPubKey"`
}

// ScriptPubKey is the locking script of an output.
//
// Newer nodes report a single Address; older ones report Addresses.
type ScriptPubKey struct {
	Asm       string   `json:"asm"`
	Hex       string   `json:"hex"`
	ReqSigs   int      `json:"reqSigs,omitempty"`
	Type      string   `json:"type"`
	Address   string   `json:"address,omitempty"`
	Addresses []string `json:"addresses,omitempty"`
}

// DisplayAddress returns the first address of the output, or
// AddressPlaceholder when none is present.
func (v Vout) DisplayAddress() string {
	if len(v.ScriptPubKey.Addresses) > 0 && v.ScriptPubKey.Addresses[0] != "" {
		return v.ScriptPubKey.Addresses[0]
	}
	if v.ScriptPubKey.Address != "" {
		return v.ScriptPubKey.Address
	}
	return AddressPlaceholder
}
