package types

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// BatchPayload is the payload carried inside a signed batch frame. A replica
// forwarding a client batch leaves Transactions empty and puts the client's
// complete frame in Forwarded.
type BatchPayload struct {
	Transactions []*Transaction
	Forwarded    []byte
}

func (p *BatchPayload) IsForwarded() bool {
	return len(p.Forwarded) != 0
}

func EncodeBatchPayload(p *BatchPayload) ([]byte, error) {
	return rlp.EncodeToBytes(p)
}

func DecodeBatchPayload(data []byte) (*BatchPayload, error) {
	p := &BatchPayload{}
	if err := rlp.DecodeBytes(data, p); err != nil {
		return nil, errors.Wrap(err, "decode batch payload")
	}
	return p, nil
}
