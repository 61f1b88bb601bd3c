package batchauth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-da-node/pkg/crypto"
	"github.com/axiomesh/axiom-da-node/pkg/types"
)

func genKey(t *testing.T) *crypto.Ed25519PrivateKey {
	k, err := crypto.GenerateEd25519PrivateKey()
	require.Nil(t, err)
	return k
}

func TestSignVerify(t *testing.T) {
	key := genKey(t)
	v := NewVerifier(NewWhitelist(logrus.New(), key.PublicKey()), logrus.New())

	frame, err := Sign(key, []byte("payload"))
	require.Nil(t, err)
	require.Len(t, frame, HeaderSize+len("payload"))

	payload, signer, err := v.Verify(frame)
	require.Nil(t, err)
	assert.Equal(t, []byte("payload"), payload)
	assert.Equal(t, key.PublicKey().String(), signer.String())

	// altered payload
	tampered := append([]byte{}, frame...)
	tampered[len(tampered)-1] ^= 0xff
	_, _, err = v.Verify(tampered)
	assert.ErrorIs(t, err, ErrBadSignature)

	// altered key
	tampered = append([]byte{}, frame...)
	tampered[0] ^= 0xff
	_, _, err = v.Verify(tampered)
	assert.ErrorIs(t, err, ErrBadSignature)

	// valid signature from an unknown key
	other := genKey(t)
	frame, err = Sign(other, []byte("payload"))
	require.Nil(t, err)
	_, _, err = v.Verify(frame)
	assert.ErrorIs(t, err, ErrNotWhitelisted)

	_, _, err = v.Verify(make([]byte, HeaderSize-1))
	assert.ErrorIs(t, err, ErrBadFrame)
}

func TestVerifyBatchForwarded(t *testing.T) {
	client := genKey(t)
	replica := genKey(t)
	w := NewWhitelist(logrus.New(), client.PublicKey(), replica.PublicKey())
	v := NewVerifier(w, logrus.New())

	txs := []*types.Transaction{{Data: []byte("tx1")}, {Data: []byte("tx2"), Nonce: 1}}
	frame, err := SignTransactions(client, txs)
	require.Nil(t, err)

	batch, err := v.VerifyBatch(frame)
	require.Nil(t, err)
	require.Len(t, batch.Transactions, 2)

	forwarded, err := CoSign(replica, frame)
	require.Nil(t, err)
	batch, err = v.VerifyBatch(forwarded)
	require.Nil(t, err)
	require.Len(t, batch.Transactions, 2)
	assert.Equal(t, txs[1].Hash(), batch.Transactions[1].Hash())

	// origin must be whitelisted as well
	w.Remove(client.PublicKey())
	_, err = v.VerifyBatch(forwarded)
	assert.ErrorIs(t, err, ErrNotWhitelisted)
	w.Add(client.PublicKey())

	twice, err := CoSign(replica, forwarded)
	require.Nil(t, err)
	_, err = v.VerifyBatch(twice)
	assert.ErrorIs(t, err, ErrNestedForwarded)

	notPayload, err := Sign(client, []byte{0xff, 0x00})
	require.Nil(t, err)
	_, err = v.VerifyBatch(notPayload)
	assert.NotNil(t, err)
}

func writeWhitelist(t *testing.T, path string, keys ...*crypto.Ed25519PrivateKey) {
	content := "# allowed signers\n\n"
	for _, k := range keys {
		content += fmt.Sprintln(k.PublicKey().String())
	}
	require.Nil(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadWhitelist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whitelist")

	w, err := LoadWhitelist(path, logrus.New())
	require.Nil(t, err)
	assert.Equal(t, 0, w.Size())

	k1, k2 := genKey(t), genKey(t)
	writeWhitelist(t, path, k1, k2)
	require.Nil(t, w.Reload())
	assert.Equal(t, 2, w.Size())
	assert.True(t, w.Contains(k1.PublicKey().PublicKey))
	assert.False(t, w.Contains([]byte{1, 2, 3}))

	require.Nil(t, os.WriteFile(path, []byte("zz\n"), 0644))
	assert.NotNil(t, w.Reload())
	// bad edit keeps the last good set
	assert.Equal(t, 2, w.Size())
}

func TestWhitelistHotReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whitelist")
	k1, k2 := genKey(t), genKey(t)
	writeWhitelist(t, path, k1)

	w, err := LoadWhitelist(path, logrus.New())
	require.Nil(t, err)
	require.True(t, w.Contains(k1.PublicKey().PublicKey))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.Nil(t, w.Watch(ctx))

	writeWhitelist(t, path, k2)
	assert.Eventually(t, func() bool {
		return w.Contains(k2.PublicKey().PublicKey) && !w.Contains(k1.PublicKey().PublicKey)
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWhitelistSurvivesReplacedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whitelist")
	k1, k2 := genKey(t), genKey(t)
	writeWhitelist(t, path, k1)

	w, err := LoadWhitelist(path, logrus.New())
	require.Nil(t, err)
	require.Nil(t, os.Remove(path))
	require.Nil(t, w.Reload())
	assert.True(t, w.Contains(k1.PublicKey().PublicKey))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.Nil(t, w.Watch(ctx))

	// rename-then-write save
	writeWhitelist(t, path, k1)
	require.Nil(t, os.Rename(path, path+".bak"))
	assert.Never(t, func() bool {
		return !w.Contains(k1.PublicKey().PublicKey)
	}, 300*time.Millisecond, 20*time.Millisecond)

	writeWhitelist(t, path, k2)
	assert.Eventually(t, func() bool {
		return w.Contains(k2.PublicKey().PublicKey) && !w.Contains(k1.PublicKey().PublicKey)
	}, 5*time.Second, 20*time.Millisecond)
}
