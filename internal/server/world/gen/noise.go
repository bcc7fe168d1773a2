package gen

import "context"

// Noise is a HeightSource backed by seeded 2D simplex noise: a broad
// low-frequency field shapes the landmass and a second, higher-frequency
// field adds small-scale detail. Heights stay within [1,250] so every
// column keeps a bedrock floor and head room below the world ceiling.
type Noise struct {
	terrain *noiseField
	detail  *noiseField
}

// NewNoise creates a noise height source from a seed.
func NewNoise(seed int64) *Noise {
	return &Noise{
		terrain: newNoiseField(seed),
		detail:  newNoiseField(seed + 1),
	}
}

// Height implements HeightSource.
func (n *Noise) Height(_ context.Context, worldX, worldZ int32) (int, error) {
	base := n.terrain.octave(float64(worldX)/128.0, float64(worldZ)/128.0, 6, 0.5)
	detail := n.detail.octave(float64(worldX)/32.0, float64(worldZ)/32.0, 3, 0.5)

	h := int(64.0 + base*24.0 + detail*4.0)
	if h < 1 {
		h = 1
	}
	if h > 250 {
		h = 250
	}
	return h, nil
}

// grad2 are gradient vectors for 2D simplex noise.
var grad2 = [12][2]float64{
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{1, 0}, {-1, 0}, {1, 0}, {-1, 0},
	{0, 1}, {0, -1}, {0, 1}, {0, -1},
}

// noiseField produces deterministic simplex noise from a seed.
// Output of both noise2 and octave is in the range [-1, 1].
type noiseField struct {
	perm [512]int
}

// newNoiseField builds a field with a seeded permutation table.
func newNoiseField(seed int64) *noiseField {
	nf := &noiseField{}

	var p [256]int
	for i := range p {
		p[i] = i
	}

	// Fisher-Yates shuffle with seed-derived random.
	s := seed
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407 // LCG
		j := int((s>>33)&0x7FFFFFFF) % (i + 1)
		if j < 0 {
			j = -j
		}
		p[i], p[j] = p[j], p[i]
	}

	// Double the permutation table for wrapping.
	for i := 0; i < 512; i++ {
		nf.perm[i] = p[i&255]
	}
	return nf
}

// noise2 returns 2D simplex noise for the given coordinates.
func (nf *noiseField) noise2(x, y float64) float64 {
	const (
		f2 = 0.36602540378443864676 // (sqrt(3) - 1) / 2
		g2 = 0.21132486540518711775 // (3 - sqrt(3)) / 6
	)

	// Skew input space to determine simplex cell.
	s := (x + y) * f2
	i := fastFloor(x + s)
	j := fastFloor(y + s)

	t := float64(i+j) * g2
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)

	// Determine which simplex we are in.
	var i1, j1 int
	if x0 > y0 {
		i1 = 1
	} else {
		j1 = 1
	}

	x1 := x0 - float64(i1) + g2
	y1 := y0 - float64(j1) + g2
	x2 := x0 - 1.0 + 2.0*g2
	y2 := y0 - 1.0 + 2.0*g2

	ii := i & 255
	jj := j & 255
	gi0 := nf.perm[ii+nf.perm[jj]] % 12
	gi1 := nf.perm[ii+i1+nf.perm[jj+j1]] % 12
	gi2 := nf.perm[ii+1+nf.perm[jj+1]] % 12

	var n0, n1, n2 float64

	t0 := 0.5 - x0*x0 - y0*y0
	if t0 >= 0 {
		t0 *= t0
		n0 = t0 * t0 * (grad2[gi0][0]*x0 + grad2[gi0][1]*y0)
	}

	t1 := 0.5 - x1*x1 - y1*y1
	if t1 >= 0 {
		t1 *= t1
		n1 = t1 * t1 * (grad2[gi1][0]*x1 + grad2[gi1][1]*y1)
	}

	t2 := 0.5 - x2*x2 - y2*y2
	if t2 >= 0 {
		t2 *= t2
		n2 = t2 * t2 * (grad2[gi2][0]*x2 + grad2[gi2][1]*y2)
	}

	return 70.0 * (n0 + n1 + n2)
}

// octave layers multiple octaves of noise for natural-looking terrain.
func (nf *noiseField) octave(x, y float64, octaves int, persistence float64) float64 {
	var total, maxVal float64
	frequency := 1.0
	amplitude := 1.0

	for i := 0; i < octaves; i++ {
		total += nf.noise2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2.0
	}
	return total / maxVal
}

func fastFloor(x float64) int {
	xi := int(x)
	if x < float64(xi) {
		return xi - 1
	}
	return xi
}
