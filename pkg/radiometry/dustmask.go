package radiometry

import "github.com/ctessum/sparse"

// DustMask flags pixels affected by dust on the detector in a 3-D data
// array (exposure, slit position, spectral). A pixel seeds the mask when
// its value lies in (-200, 0.5); the seeds are then dilated with
// 8-connectivity within each 2-D frame so neighbours influenced by the
// dust are masked too. The result is aligned with the flattened elements
// of the input and follows the valid=false convention.
func DustMask(data *sparse.DenseArray) ([]bool, error) {
	if len(data.Shape) != 3 {
		return nil, &ShapeError{Op: "dust masking", Rank: len(data.Shape)}
	}
	nz, ny, nx := data.Shape[0], data.Shape[1], data.Shape[2]
	seed := make([]bool, len(data.Elements))
	for i, v := range data.Elements {
		seed[i] = v < 0.5 && v > -200
	}
	mask := make([]bool, len(seed))
	at := func(z, y, x int) int { return (z*ny+y)*nx + x }
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				if !seed[at(z, y, x)] {
					continue
				}
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						yy, xx := y+dy, x+dx
						if yy < 0 || yy >= ny || xx < 0 || xx >= nx {
							continue
						}
						mask[at(z, yy, xx)] = true
					}
				}
			}
		}
	}
	return mask, nil
}
