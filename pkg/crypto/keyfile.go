package crypto

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

type KeyFileInfo struct {
	KeyType    string `json:"key_type"`
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
}

func WriteKeyFile(path string, key *Ed25519PrivateKey) error {
	info := KeyFileInfo{
		KeyType:    key.Type(),
		PrivateKey: key.String(),
		PublicKey:  key.PublicKey().String(),
	}
	raw, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "failed to create key dir for %s", path)
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		return errors.Wrapf(err, "failed to write key file %s", path)
	}
	return nil
}

func ReadKeyFile(path string) (*Ed25519PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read key file %s", path)
	}
	var info KeyFileInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal key file %s", path)
	}
	if info.KeyType != KeyTypeEd25519 {
		return nil, errors.Errorf("unsupported key type %q in %s", info.KeyType, path)
	}
	seed, err := hexutil.Decode(info.PrivateKey)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid private key in %s", path)
	}
	key, err := Ed25519PrivateKeyFromSeed(seed)
	if err != nil {
		return nil, err
	}
	if info.PublicKey != "" && info.PublicKey != key.PublicKey().String() {
		return nil, errors.Errorf("public key mismatch in %s", path)
	}
	return key, nil
}

// LoadOrGenerateKeyFile reads the key at path, creating a fresh one when the file is absent.
func LoadOrGenerateKeyFile(path string) (*Ed25519PrivateKey, error) {
	if _, err := os.Stat(path); err == nil {
		return ReadKeyFile(path)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	key, err := GenerateEd25519PrivateKey()
	if err != nil {
		return nil, err
	}
	if err := WriteKeyFile(path, key); err != nil {
		return nil, err
	}
	return key, nil
}
