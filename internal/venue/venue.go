// Package venue holds the static topology of the club: seating zones,
// the tables inside them, and the operating-hour window. The topology
// is loaded once at startup from a YAML file and never changes while
// the process runs.
package venue

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table is a bookable unit inside a zone.
type Table struct {
	ID       string `yaml:"id"`       // stable identifier, unique within the venue
	Capacity int    `yaml:"capacity"` // maximum number of guests the table seats
}

// Zone is a named seating area. Tables keep the order they were
// configured in; availability listings preserve that order.
type Zone struct {
	ID     string  `yaml:"id"`
	Tables []Table `yaml:"tables"`
}

// Venue is the full static configuration. OpenFrom/OpenUntil bound the
// bookable time window and may wrap past midnight (the default club
// schedule is 18:00–04:00).
type Venue struct {
	Zones     []Zone `yaml:"zones"`
	OpenFrom  string `yaml:"open_from"`
	OpenUntil string `yaml:"open_until"`

	openFromMin  int // minutes since midnight
	openUntilMin int
	maxParty     int
	byZone       map[string]*Zone
	zoneOfTable  map[string]string
}

// Load reads and validates a venue topology from a YAML file. An empty
// path returns the built-in default layout.
func Load(path string) (*Venue, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read venue file: %w", err)
	}
	var v Venue
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse venue file: %w", err)
	}
	if err := v.init(); err != nil {
		return nil, err
	}
	return &v, nil
}

// Default returns the layout the bot ships with: four zones matching
// the club floor plan, each with a handful of tables.
func Default() *Venue {
	v := &Venue{
		Zones: []Zone{
			{ID: "VIP", Tables: []Table{
				{ID: "VIP-1", Capacity: 6}, {ID: "VIP-2", Capacity: 6}, {ID: "VIP-3", Capacity: 8},
			}},
			{ID: "Balcony", Tables: []Table{
				{ID: "B-1", Capacity: 4}, {ID: "B-2", Capacity: 4}, {ID: "B-3", Capacity: 4}, {ID: "B-4", Capacity: 2},
			}},
			{ID: "Dancefloor", Tables: []Table{
				{ID: "D-1", Capacity: 4}, {ID: "D-2", Capacity: 4}, {ID: "D-3", Capacity: 6},
			}},
			{ID: "Bar", Tables: []Table{
				{ID: "BAR-1", Capacity: 2}, {ID: "BAR-2", Capacity: 2}, {ID: "BAR-3", Capacity: 3},
			}},
		},
		OpenFrom:  "18:00",
		OpenUntil: "04:00",
	}
	if err := v.init(); err != nil {
		// The built-in layout is fixed at compile time; failing to
		// validate it is a programming error.
		panic(err)
	}
	return v
}

// init validates the configuration and builds lookup indexes.
func (v *Venue) init() error {
	if len(v.Zones) == 0 {
		return fmt.Errorf("venue config: no zones defined")
	}
	if v.OpenFrom == "" {
		v.OpenFrom = "18:00"
	}
	if v.OpenUntil == "" {
		v.OpenUntil = "04:00"
	}
	var err error
	if v.openFromMin, err = parseClock(v.OpenFrom); err != nil {
		return fmt.Errorf("venue config: open_from: %w", err)
	}
	if v.openUntilMin, err = parseClock(v.OpenUntil); err != nil {
		return fmt.Errorf("venue config: open_until: %w", err)
	}
	v.byZone = make(map[string]*Zone, len(v.Zones))
	v.zoneOfTable = make(map[string]string)
	for i := range v.Zones {
		z := &v.Zones[i]
		if z.ID == "" {
			return fmt.Errorf("venue config: zone %d has no id", i)
		}
		key := strings.ToLower(z.ID)
		if _, dup := v.byZone[key]; dup {
			return fmt.Errorf("venue config: duplicate zone %q", z.ID)
		}
		v.byZone[key] = z
		if len(z.Tables) == 0 {
			return fmt.Errorf("venue config: zone %q has no tables", z.ID)
		}
		for _, t := range z.Tables {
			if t.ID == "" {
				return fmt.Errorf("venue config: zone %q has a table with no id", z.ID)
			}
			if t.Capacity < 1 {
				return fmt.Errorf("venue config: table %q has capacity %d", t.ID, t.Capacity)
			}
			tkey := strings.ToLower(t.ID)
			if _, dup := v.zoneOfTable[tkey]; dup {
				return fmt.Errorf("venue config: duplicate table %q", t.ID)
			}
			v.zoneOfTable[tkey] = z.ID
			if t.Capacity > v.maxParty {
				v.maxParty = t.Capacity
			}
		}
	}
	return nil
}

// Zone looks a zone up by its identifier, case-insensitively. The
// second return value reports whether the zone exists.
func (v *Venue) Zone(id string) (*Zone, bool) {
	z, ok := v.byZone[strings.ToLower(strings.TrimSpace(id))]
	return z, ok
}

// TableInZone returns the table with the given id if it belongs to the
// named zone. Matching is case-insensitive on both identifiers.
func (v *Venue) TableInZone(zoneID, tableID string) (Table, bool) {
	z, ok := v.Zone(zoneID)
	if !ok {
		return Table{}, false
	}
	want := strings.ToLower(strings.TrimSpace(tableID))
	for _, t := range z.Tables {
		if strings.ToLower(t.ID) == want {
			return t, true
		}
	}
	return Table{}, false
}

// MaxPartySize is the largest table capacity in the venue; party sizes
// above it are rejected outright.
func (v *Venue) MaxPartySize() int { return v.maxParty }

// WithinHours reports whether a wall-clock time (minutes precision)
// falls inside the operating window. The window may wrap past
// midnight: with 18:00–04:00, both 23:30 and 01:15 are inside while
// 12:00 is not. Both bounds are inclusive.
func (v *Venue) WithinHours(hour, minute int) bool {
	m := hour*60 + minute
	if v.openFromMin <= v.openUntilMin {
		return m >= v.openFromMin && m <= v.openUntilMin
	}
	return m >= v.openFromMin || m <= v.openUntilMin
}

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return h*60 + m, nil
}
