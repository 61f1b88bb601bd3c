package batchauth

import (
	"github.com/pkg/errors"

	"github.com/axiomesh/axiom-da-node/pkg/crypto"
	"github.com/axiomesh/axiom-da-node/pkg/types"
)

const (
	VerifyingKeySize = crypto.PublicKeySize
	SignatureSize    = crypto.SignatureSize
	HeaderSize       = VerifyingKeySize + SignatureSize
)

var (
	ErrBadFrame        = errors.New("batch frame too short")
	ErrBadSignature    = errors.New("batch signature invalid")
	ErrNotWhitelisted  = errors.New("batch signer not whitelisted")
	ErrNestedForwarded = errors.New("forwarded batch wraps another forwarded batch")
)

// Sign frames payload as verifying_key || signature || payload, the signature covering payload only.
func Sign(key *crypto.Ed25519PrivateKey, payload []byte) ([]byte, error) {
	sig, err := key.Sign(payload)
	if err != nil {
		return nil, errors.Wrap(err, "sign batch")
	}
	frame := make([]byte, 0, HeaderSize+len(payload))
	frame = append(frame, key.PublicKey().PublicKey...)
	frame = append(frame, sig...)
	frame = append(frame, payload...)
	return frame, nil
}

// SignTransactions encodes txs as a batch payload and frames it.
func SignTransactions(key *crypto.Ed25519PrivateKey, txs []*types.Transaction) ([]byte, error) {
	payload, err := types.EncodeBatchPayload(&types.BatchPayload{Transactions: txs})
	if err != nil {
		return nil, err
	}
	return Sign(key, payload)
}

// CoSign wraps an already framed batch into a forwarded payload signed by key.
func CoSign(key *crypto.Ed25519PrivateKey, frame []byte) ([]byte, error) {
	payload, err := types.EncodeBatchPayload(&types.BatchPayload{Forwarded: frame})
	if err != nil {
		return nil, err
	}
	return Sign(key, payload)
}

// Split cuts a frame into its parts without verifying anything.
func Split(frame []byte) (vk []byte, sig []byte, payload []byte, err error) {
	if len(frame) < HeaderSize {
		return nil, nil, nil, errors.Wrapf(ErrBadFrame, "got %d bytes, want at least %d", len(frame), HeaderSize)
	}
	return frame[:VerifyingKeySize], frame[VerifyingKeySize:HeaderSize], frame[HeaderSize:], nil
}
