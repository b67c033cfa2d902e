// Package id generates ULID trade identifiers.
package id

import (
	"bytes"
	cryptoRand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Monotonic keeps ids generated within the same millisecond increasing.
	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a fresh ULID whose time component is at.
func New(at time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(at.UTC()), mono)
	if err != nil {
		panic(err)
	}
	return id.String()
}

// Derive returns a ULID whose time component is at and whose entropy is taken
// from a hash of key, so the same input always yields the same id.
func Derive(at time.Time, key string) string {
	sum := sha256.Sum256([]byte(key))
	id, err := ulid.New(ulid.Timestamp(at.UTC()), bytes.NewReader(sum[:]))
	if err != nil {
		panic(err)
	}
	return id.String()
}

// Time extracts the time component of a ULID string.
func Time(s string) (time.Time, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(id.Time()), nil
}
