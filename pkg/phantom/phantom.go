// Package phantom generates deterministic synthetic volumes with a known
// signal level and noise standard deviation, used to validate SNR
// estimation.
package phantom

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"mrisnr/pkg/mask"
	"mrisnr/pkg/volume"
)

// Noise selects the noise model of a phantom.
type Noise int

const (
	// Gaussian adds real-valued noise inside the cube only; the rest of the
	// volume stays exactly zero.
	Gaussian Noise = iota

	// Magnitude takes the modulus of the signal plus complex Gaussian noise
	// everywhere, as a magnitude MRI reconstruction does. The cube becomes
	// Rician and the empty surroundings Rayleigh distributed.
	Magnitude
)

func (n Noise) String() string {
	switch n {
	case Gaussian:
		return "gaussian"
	case Magnitude:
		return "magnitude"
	default:
		return fmt.Sprintf("Noise(%d)", int(n))
	}
}

// ParseNoise converts a noise model name.
func ParseNoise(s string) (Noise, error) {
	switch s {
	case "gaussian":
		return Gaussian, nil
	case "magnitude":
		return Magnitude, nil
	default:
		return 0, fmt.Errorf("invalid noise model: %s (must be gaussian or magnitude)", s)
	}
}

// Params describes a cubic phantom.
type Params struct {
	// Size is the edge length of the volume in voxels
	Size int

	// CubeSize is the edge length of the centred signal cube
	CubeSize int

	// Intensity is the signal level inside the cube
	Intensity float64

	// Sigma is the standard deviation of the Gaussian noise
	Sigma float64

	// Seed makes the noise reproducible
	Seed uint64

	// Noise selects the noise model
	Noise Noise

	// Antithetic draws Gaussian noise in mirrored pairs (+z, -z) so that the
	// noise sample is exactly symmetric about zero. Ignored for Magnitude.
	Antithetic bool

	// Margin is the gap in voxels between the cube and the background mask
	Margin int
}

// Phantom is a generated image with its ground-truth masks.
type Phantom struct {
	// Image holds the noisy intensities
	Image *volume.Volume[float64]

	// Signal is 1.0 inside the cube and 0.0 elsewhere
	Signal mask.Probabilities

	// Background is 1 for voxels at least Margin voxels away from the cube
	// along every axis, 0 elsewhere
	Background mask.Labels

	// Params used to build the phantom
	Params Params
}

// ExpectedSNR returns the ratio the estimator should recover.
func (p Params) ExpectedSNR() float64 {
	return p.Intensity / p.Sigma
}

func (p Params) validate() error {
	if p.Size <= 0 {
		return fmt.Errorf("size must be positive, got %d", p.Size)
	}
	if p.CubeSize <= 0 || p.CubeSize > p.Size {
		return fmt.Errorf("cube size must be in 1..%d, got %d", p.Size, p.CubeSize)
	}
	if p.Sigma < 0 || math.IsNaN(p.Sigma) {
		return fmt.Errorf("sigma must be non-negative, got %f", p.Sigma)
	}
	if p.Margin < 0 {
		return fmt.Errorf("margin must be non-negative, got %d", p.Margin)
	}
	if p.Noise != Gaussian && p.Noise != Magnitude {
		return fmt.Errorf("invalid noise model: %v", p.Noise)
	}
	return nil
}

// Generate builds the phantom described by p.
func Generate(p Params) (*Phantom, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	shape := volume.Shape{Width: p.Size, Height: p.Size, Depth: p.Size}
	lo := (p.Size - p.CubeSize) / 2
	hi := lo + p.CubeSize

	signal := volume.New[float64](shape)
	signal.Fill(lo, lo, lo, hi, hi, hi, 1.0)

	background := volume.New[int](shape)
	background.Fill(0, 0, 0, p.Size, p.Size, p.Size, 1)
	background.Fill(lo-p.Margin, lo-p.Margin, lo-p.Margin, hi+p.Margin, hi+p.Margin, hi+p.Margin, 0)

	noise := distuv.Normal{
		Mu:    0,
		Sigma: p.Sigma,
		Src:   rand.NewSource(p.Seed),
	}

	img := volume.New[float64](shape)
	switch p.Noise {
	case Gaussian:
		var last float64
		k := 0
		for i, s := range signal.Data {
			if s == 0 {
				continue
			}
			var n float64
			if p.Antithetic && k%2 == 1 {
				n = -last
			} else {
				n = noise.Rand()
				last = n
			}
			img.Data[i] = p.Intensity*s + n
			k++
		}
	case Magnitude:
		for i, s := range signal.Data {
			re := p.Intensity*s + noise.Rand()
			im := noise.Rand()
			img.Data[i] = math.Hypot(re, im)
		}
	}

	return &Phantom{
		Image:      img,
		Signal:     mask.NewProbabilities(signal),
		Background: mask.NewLabels(background),
		Params:     p,
	}, nil
}
