// Package axes maps physical axis roles (longitude, latitude, spectral,
// time, exposure time) onto the concrete coordinates of a spectrogram
// observation. It holds the table of recognized coordinate names for each
// role, resolves a role to its coordinate source (the primary world
// coordinate frame or the extra-coordinate side table), and keeps the
// per-axis bookkeeping consistent under slicing.
package axes

import "strings"

// Role identifies a physical axis role recognized by the resolver.
type Role int

const (
	// Longitude is the solar longitude role.
	Longitude Role = iota

	// Latitude is the solar latitude role.
	Latitude

	// Spectral is the wavelength/energy/frequency role.
	Spectral

	// Time is the observation time role.
	Time

	// ExposureTime is the per-exposure integration time role.
	ExposureTime

	numRoles
)

// String returns the human-readable role name used in error messages.
func (r Role) String() string {
	switch r {
	case Longitude:
		return "longitude"
	case Latitude:
		return "latitude"
	case Spectral:
		return "spectral"
	case Time:
		return "time"
	case ExposureTime:
		return "exposure time"
	default:
		return "unknown"
	}
}

// baseSynonyms lists the recognized coordinate names per role, in match
// priority order. Names are matched against world axis physical type
// labels by containment and against extra-coordinate keys by equality,
// so entries like ".lon" also pick up richer identifiers such as
// "custom:pos.helioprojective.lon".
var baseSynonyms = [numRoles][]string{
	Longitude:    {".lon", "longitude", "lon"},
	Latitude:     {".lat", "latitude", "lat"},
	Spectral:     {"em.wl", "em.energy", "em.freq", "wavelength", "energy", "frequency", "freq", "lambda"},
	Time:         {"time"},
	ExposureTime: {"exposure time", "exposure_time", "exposure times", "exposure_times", "exp time", "exp_time", "exp times", "exp_times"},
}

// registry holds the expanded synonym lists: every base name plus its
// upper-case and capitalized variants, duplicates removed, priority order
// preserved. Built once at package load.
var registry [numRoles][]string

func init() {
	for role, base := range baseSynonyms {
		expanded := make([]string, 0, 3*len(base))
		expanded = append(expanded, base...)
		for _, name := range base {
			expanded = append(expanded, strings.ToUpper(name))
		}
		// Capitalize the base names and their upper-case variants, as
		// either spelling may appear in instrument headers.
		n := len(expanded)
		for i := 0; i < n; i++ {
			expanded = append(expanded, capitalize(expanded[i]))
		}
		registry[role] = dedupe(expanded)
	}
}

// capitalize upper-cases the first byte and lower-cases the remainder.
// Synonym tables are plain ASCII so byte-wise casing is sufficient.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// Synonyms returns the full list of recognized coordinate names for a
// role, including case variants, in match priority order.
func Synonyms(role Role) []string {
	if role < 0 || role >= numRoles {
		return nil
	}
	out := make([]string, len(registry[role]))
	copy(out, registry[role])
	return out
}

// Roles returns all recognized axis roles in resolution order.
func Roles() []Role {
	return []Role{Longitude, Latitude, Spectral, Time, ExposureTime}
}
