package axes

import "fmt"

// AxisNotFoundError reports that a requested axis role has no resolvable
// coordinate in either the world coordinate frame or the extra-coordinate
// table. It carries the full list of supported names so callers can see
// what the resolver would have accepted.
type AxisNotFoundError struct {
	Role     Role
	Synonyms []string
}

func (e *AxisNotFoundError) Error() string {
	return fmt.Sprintf("%s axis not found; if in extra coordinates, axis name must be one of: %v",
		e.Role, e.Synonyms)
}

// AmbiguousAxisNameError reports that a world type name was satisfied by
// more than one coordinate source during reverse lookup, so the pixel
// axes it maps to cannot be determined.
type AmbiguousAxisNameError struct {
	Name string
}

func (e *AmbiguousAxisNameError) Error() string {
	return fmt.Sprintf("axis name %q is not unique across the coordinate frame and extra coordinates", e.Name)
}
