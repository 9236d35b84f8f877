package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/rsakit/internal/textbook"
)

type StoredKey struct {
	ID          string              `json:"id"`
	Bits        int                 `json:"bits"`
	CreatedAt   time.Time           `json:"created_at"`
	Public      textbook.PublicKey  `json:"public_key"`
	Private     textbook.PrivateKey `json:"-"`
	BenchmarkID string              `json:"benchmark_id,omitempty"`
}

// KeyStore keeps generated keypairs in memory for the lifetime of the process.
type KeyStore struct {
	mu   sync.RWMutex
	keys map[string]*StoredKey
}

func NewKeyStore() *KeyStore {
	return &KeyStore{
		keys: make(map[string]*StoredKey),
	}
}

// Store registers a keypair and returns its stored record.
// requestedBits is the bit length the caller asked for, which can exceed
// the modulus bit length.
func (ks *KeyStore) Store(kp *textbook.Keypair, requestedBits int, benchmarkID string) *StoredKey {
	storedKey := &StoredKey{
		ID:          uuid.New().String(),
		Bits:        requestedBits,
		CreatedAt:   time.Now(),
		Public:      kp.Public,
		Private:     kp.Private,
		BenchmarkID: benchmarkID,
	}

	ks.mu.Lock()
	ks.keys[storedKey.ID] = storedKey
	ks.mu.Unlock()

	return storedKey
}

func (ks *KeyStore) GetKey(id string) (*StoredKey, bool) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	key, exists := ks.keys[id]
	return key, exists
}

func (ks *KeyStore) GetKeysByBenchmark(benchmarkID string) []*StoredKey {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	var keys []*StoredKey
	for _, key := range ks.keys {
		if key.BenchmarkID == benchmarkID {
			keys = append(keys, key)
		}
	}
	sortByCreation(keys)
	return keys
}

func (ks *KeyStore) DeleteKey(id string) bool {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	_, exists := ks.keys[id]
	delete(ks.keys, id)
	return exists
}

func (ks *KeyStore) GetAllKeys() []*StoredKey {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	keys := make([]*StoredKey, 0, len(ks.keys))
	for _, key := range ks.keys {
		keys = append(keys, key)
	}
	sortByCreation(keys)
	return keys
}

func (ks *KeyStore) Count() int {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return len(ks.keys)
}

func sortByCreation(keys []*StoredKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CreatedAt.Equal(keys[j].CreatedAt) {
			return keys[i].ID < keys[j].ID
		}
		return keys[i].CreatedAt.Before(keys[j].CreatedAt)
	})
}
