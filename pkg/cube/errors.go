package cube

// InconsistentAxesError reports that the per-axis instrument role labels
// of a raster sequence could not be derived: after placing the slit-step
// and spectral labels, the number of unlabeled axes was not exactly one,
// so the coordinate frame, extra coordinates and common axis contradict
// each other.
type InconsistentAxesError struct {
	Unlabeled int
}

func (e *InconsistentAxesError) Error() string {
	return "coordinate frame, extra coordinates and common axis are not consistent: " +
		"expected exactly one unlabeled axis for the position along the slit"
}
