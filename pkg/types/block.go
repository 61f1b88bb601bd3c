package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type Transaction struct {
	Data   []byte
	Nonce  uint64
	Sender [32]byte
}

func (tx *Transaction) Hash() common.Hash {
	raw, err := rlp.EncodeToBytes(tx)
	if err != nil {
		// rlp encoding of this struct cannot fail
		panic(err)
	}
	return crypto.Keccak256Hash(raw)
}

type BlockMetadata struct {
	// unix microseconds
	Timestamp uint64
}

// Block is an ordered unit of transactions emitted by the DA sequencer.
type Block struct {
	Height       uint64
	ID           common.Hash
	Parent       common.Hash
	Metadata     BlockMetadata
	Transactions []*Transaction
}

type blockIDInput struct {
	Height    uint64
	Parent    common.Hash
	Timestamp uint64
	TxHashes  []common.Hash
}

func NewBlock(height uint64, parent common.Hash, timestamp uint64, txs []*Transaction) *Block {
	b := &Block{
		Height:       height,
		Parent:       parent,
		Metadata:     BlockMetadata{Timestamp: timestamp},
		Transactions: txs,
	}
	b.ID = b.ComputeID()
	return b
}

// ComputeID hashes the header fields as they were at creation. Metadata changes made
// during execution retries do not affect the stored ID.
func (b *Block) ComputeID() common.Hash {
	raw, err := rlp.EncodeToBytes(&blockIDInput{
		Height:    b.Height,
		Parent:    b.Parent,
		Timestamp: b.Metadata.Timestamp,
		TxHashes:  b.TxHashes(),
	})
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(raw)
}

func (b *Block) TxHashes() []common.Hash {
	return lo.Map(b.Transactions, func(tx *Transaction, _ int) common.Hash {
		return tx.Hash()
	})
}

func (b *Block) Clone() *Block {
	cp := *b
	cp.Transactions = append([]*Transaction(nil), b.Transactions...)
	return &cp
}

func EncodeBlock(b *Block) ([]byte, error) {
	return rlp.EncodeToBytes(b)
}

func DecodeBlock(data []byte) (*Block, error) {
	b := &Block{}
	if err := rlp.DecodeBytes(data, b); err != nil {
		return nil, errors.Wrap(err, "decode block")
	}
	return b, nil
}

// BlockCommitment is the settlement unit for one executed block.
type BlockCommitment struct {
	Height     uint64      `json:"height"`
	BlockID    common.Hash `json:"blockId"`
	Commitment common.Hash `json:"commitment"`
}
