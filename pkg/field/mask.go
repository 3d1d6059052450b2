package field

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math/rand/v2"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/spacecol/pkg/errors"
)

// Mask defaults.
const (
	DefaultMaskThreshold = 128
	DefaultMaskWidth     = 800
	DefaultMaskHeight    = 1000

	// attemptFactor bounds rejection sampling to this many draws per
	// requested attractor.
	attemptFactor = 5
)

// MaskConfig parameterises sampling inside an image silhouette. Pixels darker
// than Threshold count as inside.
type MaskConfig struct {
	Path      string      // image file; ignored when Image is set
	Image     image.Image // preloaded image
	Width     int         // working resolution
	Height    int
	Count     int
	Threshold *uint8   // default DefaultMaskThreshold; 0 selects no pixel
	RootX     *float64 // default Width/2
	RootY     *float64 // default Height
}

// Mask samples attractors at integer pixel positions inside a dark silhouette.
type Mask struct {
	cfg       MaskConfig
	threshold uint8
	seq       Sequence
	grey      *image.Gray
}

// NewMask creates a mask-sampled generator. Zero Width and Height and a nil
// Threshold take their defaults.
func NewMask(cfg MaskConfig) *Mask {
	if cfg.Width <= 0 {
		cfg.Width = DefaultMaskWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultMaskHeight
	}
	threshold := uint8(DefaultMaskThreshold)
	if cfg.Threshold != nil {
		threshold = *cfg.Threshold
	}
	return &Mask{cfg: cfg, threshold: threshold}
}

func (g *Mask) Dims() int    { return 2 }
func (g *Mask) Kind() string { return KindMask }

// Anchor returns a root at the bottom centre of the frame (or the configured
// root) growing upward for DefaultSeedSteps steps.
func (g *Mask) Anchor() Seed {
	x, y := float64(g.cfg.Width)/2, float64(g.cfg.Height)
	if g.cfg.RootX != nil {
		x = *g.cfg.RootX
	}
	if g.cfg.RootY != nil {
		y = *g.cfg.RootY
	}
	return Seed{Pos: r3.Vec{X: x, Y: y}, Dir: r3.Vec{Y: -1}, Steps: DefaultSeedSteps}
}

// Generate loads the mask and rejection-samples up to Count attractors within
// 5×Count attempts. Running out of attempts yields fewer attractors, not an
// error.
func (g *Mask) Generate(rng *rand.Rand) ([]Attractor, error) {
	if g.cfg.Count < 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "attractor count must not be negative, got %d", g.cfg.Count)
	}
	g.seq.Reset()
	if g.grey == nil {
		src := g.cfg.Image
		if src == nil {
			img, err := LoadImage(g.cfg.Path)
			if err != nil {
				return nil, err
			}
			src = img
		}
		g.grey = Greyscale(src, g.cfg.Width, g.cfg.Height)
	}
	if !anyBelow(g.grey, g.threshold) {
		return nil, errors.New(errors.ErrCodeInvalidGeometry, "mask has no pixel darker than %d", g.threshold)
	}

	w, h := g.cfg.Width, g.cfg.Height
	pts := make([]r3.Vec, 0, g.cfg.Count)
	for attempts := 0; len(pts) < g.cfg.Count && attempts < g.cfg.Count*attemptFactor; attempts++ {
		x, y := rng.IntN(w), rng.IntN(h)
		if g.grey.GrayAt(x, y).Y < g.threshold {
			pts = append(pts, r3.Vec{X: float64(x), Y: float64(y)})
		}
	}
	return g.seq.Wrap(pts), nil
}

// LoadImage decodes an image file. Any failure is reported as
// RESOURCE_UNAVAILABLE.
func LoadImage(path string) (image.Image, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeResourceUnavailable, "no mask image given")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResourceUnavailable, err, "open mask %s", path)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResourceUnavailable, err, "decode mask %s", path)
	}
	return img, nil
}

// Greyscale converts src to an 8-bit grey image of the given size using
// Catmull-Rom resampling.
func Greyscale(src image.Image, w, h int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func anyBelow(img *image.Gray, threshold uint8) bool {
	for _, p := range img.Pix {
		if p < threshold {
			return true
		}
	}
	return false
}
