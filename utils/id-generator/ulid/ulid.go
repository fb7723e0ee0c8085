package ulid

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

/* ========================================================================
 * ULID Generator
 * ========================================================================
 * 128-bit lexicographically sortable IDs: 48-bit millisecond timestamp
 * plus 80 bits of cryptographically secure randomness, rendered as 26
 * Crockford Base32 characters. Used for request IDs.
 * ======================================================================== */

var (
	globalEntropy io.Reader
	once          sync.Once
	mu            sync.Mutex
)

// Generator produces ULIDs from a dedicated entropy source.
type Generator struct {
	entropy io.Reader
	mu      sync.Mutex
}

// NewGenerator creates a generator. A nil entropy falls back to
// crypto/rand. The monotonic wrapper keeps same-millisecond IDs in
// generation order; it is not concurrency safe, hence the lock.
func NewGenerator(entropy io.Reader) *Generator {
	if entropy == nil {
		entropy = rand.Reader
	}
	if _, ok := entropy.(ulid.MonotonicEntropy); !ok {
		entropy = ulid.Monotonic(entropy, 0)
	}
	return &Generator{entropy: entropy}
}

// Generate returns a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString returns a new ULID as a string.
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

func initEntropy() {
	globalEntropy = ulid.Monotonic(rand.Reader, 0)
}

// Generate returns a new ULID using the process-wide entropy source.
func Generate() ulid.ULID {
	once.Do(initEntropy)

	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), globalEntropy)
}

// GenerateString returns a new ULID as a string.
func GenerateString() string {
	return Generate().String()
}

// Parse parses a ULID string.
func Parse(s string) (ulid.ULID, error) {
	return ulid.Parse(s)
}

// MustParse parses a ULID string or panics.
func MustParse(s string) ulid.ULID {
	id, err := ulid.Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Time extracts the embedded timestamp.
func Time(id ulid.ULID) time.Time {
	return ulid.Time(id.Time())
}

// IsZero reports whether id is the zero ULID.
func IsZero(id ulid.ULID) bool {
	return id.Compare(ulid.ULID{}) == 0
}
