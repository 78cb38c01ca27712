package mine

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	dErrors "minetrack/pkg/domain-errors"
)

// Type enumerates the kinds of mining site that can be registered.
type Type string

const (
	TypeGold      Type = "gold"
	TypeCoal      Type = "coal"
	TypeNickel    Type = "nickel"
	TypeCopper    Type = "copper"
	TypeIronOre   Type = "iron-ore"
	TypeTin       Type = "tin"
	TypeBauxite   Type = "bauxite"
	TypeManganese Type = "manganese"
	TypeOther     Type = "other"
)

var validTypes = map[Type]struct{}{
	TypeGold: {}, TypeCoal: {}, TypeNickel: {}, TypeCopper: {}, TypeIronOre: {},
	TypeTin: {}, TypeBauxite: {}, TypeManganese: {}, TypeOther: {},
}

// ParseType validates a raw mine-type string.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := validTypes[t]; !ok {
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown mine type %q", s))
	}
	return t, nil
}

// License tracks the legal permit state of a mine, independent of
// verification.
type License string

const (
	LicensePending  License = "pending"
	LicenseValid    License = "valid"
	LicenseExpiring License = "expiring"
	LicenseExpired  License = "expired"
)

// ParseLicense validates a raw license string.
func ParseLicense(s string) (License, error) {
	l := License(strings.ToLower(strings.TrimSpace(s)))
	switch l {
	case LicensePending, LicenseValid, LicenseExpiring, LicenseExpired:
		return l, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown license status %q", s))
}

// licenseTransitions is the permitted lifecycle: pending→valid on approval,
// valid→expiring as renewal comes due, expiring→expired on lapse, and
// expired→pending when a renewal application is filed. Self-transitions are
// always allowed so re-applying a state stays idempotent.
//
// The system this replaces allowed any license value to be set from any other;
// the table is a deliberate tightening.
var licenseTransitions = map[License]License{
	LicensePending:  LicenseValid,
	LicenseValid:    LicenseExpiring,
	LicenseExpiring: LicenseExpired,
	LicenseExpired:  LicensePending,
}

// CanTransitionTo reports whether the license may move to next.
func (l License) CanTransitionTo(next License) bool {
	return l == next || licenseTransitions[l] == next
}

// Coordinates locates a mine. Immutable after creation; no update path
// accepts them.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Validate checks the coordinates are on the globe.
func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return dErrors.New(dErrors.CodeValidation, "latitude must be within [-90, 90]")
	}
	if c.Lng < -180 || c.Lng > 180 {
		return dErrors.New(dErrors.CodeValidation, "longitude must be within [-180, 180]")
	}
	return nil
}

// WeatherReading is the weather half of an environmental snapshot.
type WeatherReading struct {
	TemperatureC  float64 `json:"temperatureC"`
	ConditionText string  `json:"conditionText"`
}

// AirQuality carries pollutant concentrations from the provider.
type AirQuality struct {
	PM25       float64 `json:"pm2_5"`
	CO         float64 `json:"co"`
	NO2        float64 `json:"no2"`
	O3         float64 `json:"o3"`
	SO2        float64 `json:"so2"`
	USEPAIndex int     `json:"usEpaIndex"`
}

// EnvironmentalSnapshot is a read-time annotation attached by the enrichment
// service. It is constructed fresh per read, never persisted, and never
// cached. Degraded marks a snapshot fabricated from the fallback because the
// upstream provider failed.
type EnvironmentalSnapshot struct {
	Weather    WeatherReading `json:"weather"`
	AirQuality *AirQuality    `json:"airQuality,omitempty"`
	Degraded   bool           `json:"degraded"`
}

// Mine is the central record for a registered mining site.
//
// Invariants:
//   - created with Verified=false and License=pending; both are admin-only
//     after that
//   - Coordinates are immutable after creation
//   - Version starts at 1 and advances on every mutation; writes are
//     compare-and-set on it
//   - UpdatedAt advances on every mutation, including idempotent re-applies
type Mine struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        Type        `json:"type"`
	Coordinates Coordinates `json:"coordinates"`
	Description string      `json:"description"`
	Verified    bool        `json:"verified"`
	License     License     `json:"license"`
	Version     int64       `json:"version"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`

	// Environmental is populated on enriched reads only.
	Environmental *EnvironmentalSnapshot `json:"environmentalSnapshot,omitempty"`
}

// Clone returns a copy safe to annotate without touching the stored record.
func (m *Mine) Clone() *Mine {
	cp := *m
	if m.Environmental != nil {
		snap := *m.Environmental
		cp.Environmental = &snap
	}
	return &cp
}

// CreateInput is a mine submission before governance defaults are applied.
// Any verified/license values a client smuggles into the request are ignored;
// defaults are set by the service.
type CreateInput struct {
	Name        string
	Type        Type
	Coordinates Coordinates
	Description string
}

const (
	descriptionMin = 10
	descriptionMax = 500
	nameMax        = 200
)

// Validate rejects incomplete or out-of-range submissions.
func (in CreateInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(in.Name) > nameMax {
		return dErrors.New(dErrors.CodeValidation, "name is too long")
	}
	if _, ok := validTypes[in.Type]; !ok {
		return dErrors.New(dErrors.CodeValidation, "mine type is required")
	}
	if err := in.Coordinates.Validate(); err != nil {
		return err
	}
	desc := strings.TrimSpace(in.Description)
	if len(desc) < descriptionMin || len(desc) > descriptionMax {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("description must be between %d and %d characters", descriptionMin, descriptionMax))
	}
	return nil
}

// ValidID reports whether id has the shape of a store identifier (24 hex
// characters). A malformed ID is a validation error, distinct from a
// well-formed ID that matches nothing.
func ValidID(id string) bool {
	if len(id) != 24 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}
