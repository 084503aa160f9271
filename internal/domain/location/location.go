// Package location assigns the illustrative geolocation attached to scored
// transactions. The table is synthetic and carries no transaction meaning.
package location

import (
	"math/rand"
	"sync"
	"time"

	"github.com/okian/fraudstream/internal/domain/features"
)

// Table is the fixed set of 20 known points.
var Table = [...]features.Location{ //nolint:gochecknoglobals // fixed lookup table
	{Lat: 38.969555, Lon: -77.386098},  // Herndon, VA
	{Lat: 39.290385, Lon: -76.612189},  // Baltimore, MD
	{Lat: 32.776664, Lon: -96.796988},  // Dallas, TX
	{Lat: 32.715738, Lon: -117.161084}, // San Diego, CA
	{Lat: 36.153982, Lon: -95.992775},  // Tulsa, OK
	{Lat: 34.746481, Lon: -92.289595},  // Little Rock, AR
	{Lat: 28.538335, Lon: -81.379236},  // Orlando, FL
	{Lat: 35.227087, Lon: -80.843127},  // Charlotte, NC
	{Lat: 32.776475, Lon: -79.931051},  // Charleston, SC
	{Lat: 42.331427, Lon: -83.045754},  // Detroit, MI
	{Lat: 41.878114, Lon: -87.629798},  // Chicago, IL
	{Lat: 37.774929, Lon: -122.419416}, // San Francisco, CA
	{Lat: 29.760427, Lon: -95.369803},  // Houston, TX
	{Lat: 35.686975, Lon: -105.937799}, // Santa Fe, NM
	{Lat: 32.222607, Lon: -110.974711}, // Tucson, AZ
	{Lat: 51.507351, Lon: -0.127758},   // London, UK
	{Lat: 48.856614, Lon: 2.352222},    // Paris, FR
	{Lat: 51.339695, Lon: 12.373075},   // Leipzig, DE
	{Lat: 41.902783, Lon: 12.496366},   // Rome, IT
	{Lat: 53.349805, Lon: -6.260310},   // Dublin, IE
}

// Picker draws from Table uniformly. Safe for concurrent use.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Picker.
type Option func(*Picker)

// WithSeed makes draws reproducible. Zero keeps the time-based seed.
func WithSeed(seed int64) Option {
	return func(p *Picker) {
		if seed != 0 {
			p.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // not security sensitive
		}
	}
}

// NewPicker creates a picker seeded from the clock unless WithSeed is given.
func NewPicker(opts ...Option) *Picker {
	p := &Picker{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // not security sensitive
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pick returns one entry of Table.
func (p *Picker) Pick() features.Location {
	p.mu.Lock()
	i := p.rng.Intn(len(Table))
	p.mu.Unlock()
	return Table[i]
}

// Resolve prefers a location supplied by the payload and falls back to Pick.
func (p *Picker) Resolve(supplied *features.Location) features.Location {
	if supplied != nil {
		return *supplied
	}
	return p.Pick()
}

// Contains reports whether loc is one of the table entries.
func Contains(loc features.Location) bool {
	for _, l := range Table {
		if l == loc {
			return true
		}
	}
	return false
}
