package batchauth

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-da-node/pkg/crypto"
	"github.com/axiomesh/axiom-da-node/pkg/types"
)

type Verifier struct {
	whitelist *Whitelist
	logger    logrus.FieldLogger
}

func NewVerifier(whitelist *Whitelist, logger logrus.FieldLogger) *Verifier {
	return &Verifier{
		whitelist: whitelist,
		logger:    logger,
	}
}

func (v *Verifier) Whitelist() *Whitelist {
	return v.whitelist
}

// Verify checks the frame signature and the signer's whitelist membership, returning the payload.
func (v *Verifier) Verify(frame []byte) ([]byte, *crypto.Ed25519PublicKey, error) {
	vk, sig, payload, err := Split(frame)
	if err != nil {
		batchRejectedCounter.WithLabelValues("frame").Inc()
		return nil, nil, err
	}
	pub, err := crypto.UnmarshalEd25519PublicKey(vk)
	if err != nil {
		batchRejectedCounter.WithLabelValues("key").Inc()
		return nil, nil, errors.Wrap(ErrBadSignature, err.Error())
	}
	if !pub.Verify(payload, sig) {
		batchRejectedCounter.WithLabelValues("signature").Inc()
		return nil, nil, ErrBadSignature
	}
	if !v.whitelist.Contains(vk) {
		batchRejectedCounter.WithLabelValues("whitelist").Inc()
		return nil, nil, errors.Wrapf(ErrNotWhitelisted, "signer %s", pub)
	}
	batchAcceptedCounter.Inc()
	return payload, pub, nil
}

// VerifyBatch verifies a frame and decodes its transactions. A forwarded batch
// additionally needs its inner frame to verify, so both the forwarding node and
// the original signer must be whitelisted.
func (v *Verifier) VerifyBatch(frame []byte) (*types.BatchPayload, error) {
	payload, signer, err := v.Verify(frame)
	if err != nil {
		return nil, err
	}
	decoded, err := types.DecodeBatchPayload(payload)
	if err != nil {
		batchRejectedCounter.WithLabelValues("payload").Inc()
		return nil, err
	}
	if !decoded.IsForwarded() {
		return decoded, nil
	}

	innerPayload, origin, err := v.Verify(decoded.Forwarded)
	if err != nil {
		return nil, errors.Wrap(err, "forwarded batch")
	}
	inner, err := types.DecodeBatchPayload(innerPayload)
	if err != nil {
		batchRejectedCounter.WithLabelValues("payload").Inc()
		return nil, err
	}
	if inner.IsForwarded() {
		return nil, ErrNestedForwarded
	}
	v.logger.WithFields(logrus.Fields{
		"forwarder": signer.String(),
		"origin":    origin.String(),
		"txs":       len(inner.Transactions),
	}).Debug("Verified forwarded batch")
	return inner, nil
}
