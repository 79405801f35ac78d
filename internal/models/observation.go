package models

// Observation identifies the instrument context a spectrogram cube or
// sequence was recorded in. All cubes of a sequence share one
// observation identity.
type Observation struct {
	// Instrument is the observing instrument name.
	Instrument string

	// OBSID is the observation campaign identifier.
	OBSID string

	// Detector is the detector descriptor from the observation header,
	// e.g. "FUV1" or "NUV".
	Detector string

	// SpectralWindow names the spectral window the cubes were cut from.
	SpectralWindow string

	// Extra holds any additional header keywords worth carrying along.
	Extra map[string]string
}

// Copy returns a deep copy of the observation metadata.
func (o *Observation) Copy() *Observation {
	if o == nil {
		return nil
	}
	c := *o
	if o.Extra != nil {
		c.Extra = make(map[string]string, len(o.Extra))
		for k, v := range o.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}
