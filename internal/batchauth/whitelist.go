package batchauth

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/axiomesh/axiom-da-node/pkg/crypto"
)

type key = [VerifyingKeySize]byte

// Whitelist is the set of verifying keys allowed to submit batches.
type Whitelist struct {
	lock sync.RWMutex
	keys map[key]struct{}

	path   string
	loaded atomic.Bool
	logger logrus.FieldLogger
}

func NewWhitelist(logger logrus.FieldLogger, keys ...*crypto.Ed25519PublicKey) *Whitelist {
	w := &Whitelist{
		keys:   make(map[key]struct{}, len(keys)),
		logger: logger,
	}
	for _, k := range keys {
		w.keys[k.Bytes32()] = struct{}{}
	}
	return w
}

// LoadWhitelist reads one hex encoded key per line. Blank lines and lines starting with # are skipped.
// A missing file yields an empty whitelist that fills in once the file appears.
// Once loaded, the set survives the file disappearing, as it does during an
// editor's rename-then-write save.
func LoadWhitelist(path string, logger logrus.FieldLogger) (*Whitelist, error) {
	w := &Whitelist{
		keys:   make(map[key]struct{}),
		path:   path,
		logger: logger,
	}
	if err := w.Reload(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Whitelist) Reload() error {
	if w.path == "" {
		return nil
	}
	raw, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			if w.loaded.Load() {
				w.logger.WithField("path", w.path).Warn("Whitelist file missing, keep the last loaded set")
				return nil
			}
			w.logger.WithField("path", w.path).Warn("Whitelist file not found, no batch will be accepted")
			w.Replace(nil)
			return nil
		}
		return errors.Wrapf(err, "read whitelist %s", w.path)
	}
	keys, err := parseWhitelist(raw)
	if err != nil {
		return errors.Wrapf(err, "parse whitelist %s", w.path)
	}
	w.Replace(keys)
	w.loaded.Store(true)
	w.logger.WithFields(logrus.Fields{
		"path": w.path,
		"size": len(keys),
	}).Info("Whitelist loaded")
	return nil
}

func parseWhitelist(raw []byte) ([]key, error) {
	var keys []key
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if !strings.HasPrefix(text, "0x") {
			text = "0x" + text
		}
		b, err := hexutil.Decode(text)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		pub, err := crypto.UnmarshalEd25519PublicKey(b)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		keys = append(keys, pub.Bytes32())
	}
	return keys, scanner.Err()
}

// Watch reloads the whitelist whenever its file changes until ctx is done.
func (w *Whitelist) Watch(ctx context.Context) error {
	if w.path == "" {
		return errors.New("whitelist has no backing file")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create whitelist watcher")
	}
	// editors replace files, so watch the parent dir
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return errors.Wrapf(err, "watch %s", filepath.Dir(w.path))
	}

	target := filepath.Clean(w.path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if err := w.Reload(); err != nil {
					// keep the previous set on a bad edit
					w.logger.WithError(err).Error("Reload whitelist failed")
					continue
				}
				whitelistReloadCounter.Inc()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.logger.WithError(err).Warn("Whitelist watcher error")
			}
		}
	}()
	return nil
}

func (w *Whitelist) Contains(vk []byte) bool {
	if len(vk) != VerifyingKeySize {
		return false
	}
	var k key
	copy(k[:], vk)
	w.lock.RLock()
	defer w.lock.RUnlock()
	_, ok := w.keys[k]
	return ok
}

func (w *Whitelist) Add(pub *crypto.Ed25519PublicKey) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.keys[pub.Bytes32()] = struct{}{}
	whitelistSizeGauge.Set(float64(len(w.keys)))
}

func (w *Whitelist) Remove(pub *crypto.Ed25519PublicKey) {
	w.lock.Lock()
	defer w.lock.Unlock()
	delete(w.keys, pub.Bytes32())
	whitelistSizeGauge.Set(float64(len(w.keys)))
}

// Replace swaps the whole set atomically.
func (w *Whitelist) Replace(keys []key) {
	m := lo.SliceToMap(keys, func(k key) (key, struct{}) {
		return k, struct{}{}
	})
	w.lock.Lock()
	defer w.lock.Unlock()
	w.keys = m
	whitelistSizeGauge.Set(float64(len(w.keys)))
}

func (w *Whitelist) Size() int {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return len(w.keys)
}
