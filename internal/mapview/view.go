package mapview

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"dpdmap/internal/geom"
	"dpdmap/internal/tiles"
)

var (
	// ErrNotLoaded is returned by operations that need the overlay layers
	// before the dataset has loaded.
	ErrNotLoaded = eris.New("mapview: map or layers are not initialized yet")
	// ErrClosed is returned when a load finishes after Close.
	ErrClosed = eris.New("mapview: view closed")
)

// The map always opens on Dublin city centre.
var DublinCenter = orb.Point{-6.2603, 53.3498}

const DefaultZoom = 12

type Options struct {
	// Base is the tile layer under the overlays. Nil means no basemap.
	Base   *tiles.Layer
	Logger *zap.Logger
}

// View owns the map state: the viewport, the base layer, both overlays and
// the open popup. It is not safe for concurrent use; the UI loop drives it.
type View struct {
	log  *zap.Logger
	base *tiles.Layer
	vp   geom.Viewport

	features   []geom.Feature
	index      *geom.Index
	boundaries *Layer
	choropleth *Layer
	mode       ViewMode
	popup      *Popup

	rev uint64

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// New creates the map centered on Dublin. The returned view's Context is
// cancelled by Close and should bound the dataset load.
func New(parent context.Context, opts Options) *View {
	log := opts.Logger
	if log == nil {
		log = zap.L()
	}
	ctx, cancel := context.WithCancel(parent)
	return &View{
		log:    log,
		base:   opts.Base,
		vp:     geom.Viewport{Center: DublinCenter, Zoom: DefaultZoom},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context lives as long as the view.
func (v *View) Context() context.Context { return v.ctx }

func (v *View) Viewport() geom.Viewport { return v.vp }

func (v *View) SetViewport(vp geom.Viewport) { v.vp = vp }

func (v *View) Base() *tiles.Layer { return v.base }

func (v *View) Attribution() string {
	if v.base == nil {
		return ""
	}
	return v.base.Attribution()
}

func (v *View) Loaded() bool { return v.boundaries != nil && v.choropleth != nil }

func (v *View) Features() []geom.Feature { return v.features }

func (v *View) Index() *geom.Index { return v.index }

func (v *View) Mode() ViewMode { return v.mode }

// Layers returns both overlays, nil before load.
func (v *View) Layers() (boundaries, choropleth *Layer) { return v.boundaries, v.choropleth }

// Mounted returns the overlay attached to the map, nil before load.
func (v *View) Mounted() *Layer {
	switch {
	case v.boundaries != nil && v.boundaries.attached:
		return v.boundaries
	case v.choropleth != nil && v.choropleth.attached:
		return v.choropleth
	}
	return nil
}

func (v *View) Popup() (Popup, bool) {
	if v.popup == nil {
		return Popup{}, false
	}
	return *v.popup, true
}

// Revision changes whenever anything drawn by the overlays changes.
func (v *View) Revision() uint64 { return v.rev }

// LoadBoundaries installs a freshly loaded dataset: the boundary layer is
// built and mounted, the choropleth layer is built detached. A load error is
// logged and leaves the view with the basemap only.
func (v *View) LoadBoundaries(features []geom.Feature, err error) error {
	if v.closed {
		v.log.Debug("mapview: dropping load result after close")
		return ErrClosed
	}
	if err != nil {
		v.log.Error("error loading boundaries", zap.Error(err))
		return err
	}
	if len(features) == 0 {
		v.log.Error("error loading boundaries", zap.Error(geom.ErrNoFeatures))
		return geom.ErrNoFeatures
	}
	v.features = features
	v.index = geom.NewIndex(features)
	v.boundaries = newBoundaryLayer(len(features))
	v.choropleth = newChoroplethLayer(features)
	v.boundaries.attached = true
	v.mode = Boundaries
	v.popup = nil
	v.rev++
	v.log.Info("boundaries loaded", zap.Int("features", len(features)))
	return nil
}

// Click opens the popup of feature i, closing any open popup first.
func (v *View) Click(i int) error {
	if !v.Loaded() {
		return ErrNotLoaded
	}
	if i < 0 || i >= len(v.features) {
		return eris.Errorf("mapview: feature %d out of range", i)
	}
	v.ClosePopup()
	v.apply(HandleClick(ClickEvent{Index: i, Feature: v.features[i], Mode: v.mode}))
	return nil
}

// ClosePopup dismisses the open popup and reports whether there was one.
func (v *View) ClosePopup() bool {
	if v.popup == nil {
		return false
	}
	v.popup = nil
	v.apply(HandlePopupClose(PopupCloseEvent{Mode: v.mode}))
	v.rev++
	return true
}

// ToggleMode detaches the mounted overlay and attaches the other one. An
// open popup is closed under the current mode first.
func (v *View) ToggleMode() error {
	if !v.Loaded() {
		v.log.Error("cannot toggle layers", zap.Error(ErrNotLoaded))
		return ErrNotLoaded
	}
	v.ClosePopup()
	from, to := v.boundaries, v.choropleth
	if v.mode == Choropleth {
		from, to = to, from
	}
	from.attached = false
	to.attached = true
	v.mode = v.mode.Other()
	v.rev++
	v.log.Debug("mapview: toggled", zap.Stringer("mode", v.mode))
	return nil
}

// Close cancels an in-flight load and releases the layers and the basemap.
func (v *View) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.cancel()
	v.features, v.index = nil, nil
	v.boundaries, v.choropleth = nil, nil
	v.popup = nil
	v.rev++
	if v.base != nil {
		v.base.Close()
	}
}

func (v *View) apply(eff Effect) {
	for _, c := range eff.Restyle {
		if c.All {
			v.boundaries.setAll(c.Style)
		} else {
			v.boundaries.set(c.Feature, c.Style)
		}
	}
	if eff.Popup != nil {
		p := *eff.Popup
		v.popup = &p
	}
	v.rev++
}
