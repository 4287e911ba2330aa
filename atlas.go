package canopy

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"slices"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// TextureRegion describes a sub-rectangle within an atlas page.
type TextureRegion struct {
	Page      uint16 // atlas page index
	X, Y      uint16 // top-left corner of the sub-image rect within the atlas page
	Width     uint16 // width of the sub-image rect (may differ from OriginalW if trimmed)
	Height    uint16 // height of the sub-image rect (may differ from OriginalH if trimmed)
	OriginalW uint16 // untrimmed sprite width as authored
	OriginalH uint16 // untrimmed sprite height as authored
	OffsetX   int16  // horizontal trim offset from TexturePacker
	OffsetY   int16  // vertical trim offset from TexturePacker
	Rotated   bool   // true if the region is stored 90 degrees clockwise in the atlas
}

// Size returns the untrimmed size used for leaf geometry. Regions without
// an authored size fall back to their frame size.
func (r TextureRegion) Size() (w, h float64) {
	w, h = float64(r.OriginalW), float64(r.OriginalH)
	if w == 0 {
		w = float64(r.Width)
	}
	if h == 0 {
		h = float64(r.Height)
	}
	return w, h
}

// Atlas holds one or more atlas page images and a map of named regions.
type Atlas struct {
	// Pages contains the atlas page images indexed by page number.
	Pages   []*ebiten.Image
	regions map[string]TextureRegion
}

// Region returns the TextureRegion for the given name.
func (a *Atlas) Region(name string) (TextureRegion, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// Regions returns the named regions in argument order. Unknown names are
// logged and skipped.
func (a *Atlas) Regions(names ...string) []TextureRegion {
	out := make([]TextureRegion, 0, len(names))
	for _, name := range names {
		r, ok := a.regions[name]
		if !ok {
			logf("Atlas", "region %q not found, skipped", name)
			continue
		}
		out = append(out, r)
	}
	return out
}

// RegionsWithPrefix returns every region whose name starts with prefix,
// ordered by name. Useful for numbered leaf frames ("leaf_01.png", ...).
func (a *Atlas) RegionsWithPrefix(prefix string) []TextureRegion {
	var names []string
	for name := range a.regions {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return a.Regions(names...)
}

// Len returns the number of regions.
func (a *Atlas) Len() int {
	return len(a.regions)
}

// magenta placeholder singleton; canopy is single-threaded
var magentaImage *ebiten.Image

func ensureMagentaImage() *ebiten.Image {
	if magentaImage == nil {
		magentaImage = ebiten.NewImage(1, 1)
		magentaImage.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
	}
	return magentaImage
}

// image resolves the drawable sub-image for r. Regions on a missing page
// resolve to a 1x1 magenta placeholder.
func (a *Atlas) image(r TextureRegion) *ebiten.Image {
	if int(r.Page) >= len(a.Pages) || a.Pages[r.Page] == nil {
		return ensureMagentaImage()
	}
	page := a.Pages[r.Page]
	var rect image.Rectangle
	if r.Rotated {
		rect = image.Rect(int(r.X), int(r.Y), int(r.X)+int(r.Height), int(r.Y)+int(r.Width))
	} else {
		rect = image.Rect(int(r.X), int(r.Y), int(r.X)+int(r.Width), int(r.Y)+int(r.Height))
	}
	return page.SubImage(rect).(*ebiten.Image)
}

// NewAtlasFromImages builds an atlas with one page per image. Each page is
// a single full-size region named by the matching entry in names.
func NewAtlasFromImages(names []string, images []*ebiten.Image) (*Atlas, error) {
	if len(names) != len(images) {
		return nil, fmt.Errorf("canopy: %d names for %d images", len(names), len(images))
	}
	atlas := &Atlas{
		Pages:   images,
		regions: make(map[string]TextureRegion, len(names)),
	}
	for i, img := range images {
		b := img.Bounds()
		w, h := uint16(b.Dx()), uint16(b.Dy())
		atlas.regions[names[i]] = TextureRegion{
			Page:      uint16(i),
			X:         uint16(b.Min.X),
			Y:         uint16(b.Min.Y),
			Width:     w,
			Height:    h,
			OriginalW: w,
			OriginalH: h,
		}
	}
	return atlas, nil
}

// LoadAtlas parses TexturePacker JSON data and associates the given page images.
// Supports both the hash format (single "frames" object) and the array format
// ("textures" array with per-page frame lists).
func LoadAtlas(jsonData []byte, pages []*ebiten.Image) (*Atlas, error) {
	// Probe top-level keys to detect format.
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("canopy: failed to parse atlas JSON: %w", err)
	}

	atlas := &Atlas{
		Pages:   pages,
		regions: make(map[string]TextureRegion),
	}

	switch {
	case probe.Textures != nil:
		if err := parseArrayFormat(probe.Textures, atlas); err != nil {
			return nil, err
		}
	case probe.Frames != nil:
		if err := parseHashFrames(probe.Frames, 0, atlas); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("canopy: atlas JSON has neither \"frames\" nor \"textures\" key")
	}

	return atlas, nil
}

// --- JSON structure types ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

// parseHashFrames parses the hash format: {"name": {frame...}, ...}
func parseHashFrames(raw json.RawMessage, pageIndex uint16, atlas *Atlas) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("canopy: failed to parse atlas frames: %w", err)
	}
	for name, f := range frames {
		atlas.regions[name] = frameToRegion(f, pageIndex)
	}
	return nil
}

// parseArrayFormat parses the array format: [{"image":"...", "frames":{...}}, ...]
func parseArrayFormat(raw json.RawMessage, atlas *Atlas) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return fmt.Errorf("canopy: failed to parse atlas textures array: %w", err)
	}
	for i, tex := range textures {
		for name, f := range tex.Frames {
			atlas.regions[name] = frameToRegion(f, uint16(i))
		}
	}
	return nil
}

func frameToRegion(f jsonFrame, page uint16) TextureRegion {
	return TextureRegion{
		Page:      page,
		X:         uint16(f.Frame.X),
		Y:         uint16(f.Frame.Y),
		Width:     uint16(f.Frame.W),
		Height:    uint16(f.Frame.H),
		OriginalW: uint16(f.SourceSize.W),
		OriginalH: uint16(f.SourceSize.H),
		OffsetX:   int16(f.SpriteSourceSize.X),
		OffsetY:   int16(f.SpriteSourceSize.Y),
		Rotated:   f.Rotated,
	}
}
