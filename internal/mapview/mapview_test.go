package mapview

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dpdmap/internal/geom"
)

func square(x, y, size float64) orb.MultiPolygon {
	return orb.MultiPolygon{{{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}}}}
}

func testFeatures() []geom.Feature {
	fs := []geom.Feature{
		{Geometry: square(-6.30, 53.30, 0.01), TotalPop: 312, HasPop: true, Density: 0.01, HasDense: true},
		{Geometry: square(-6.28, 53.30, 0.01), TotalPop: 250, HasPop: true, Density: 0.05, HasDense: true},
		{Geometry: square(-6.26, 53.30, 0.01), TotalPop: 97, HasPop: true, Density: 0.09, HasDense: true},
	}
	for i := range fs {
		fs[i].Bound = fs[i].Geometry.Bound()
	}
	return fs
}

func newTestView(t *testing.T) (*View, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	v := New(context.Background(), Options{Logger: zap.New(core)})
	t.Cleanup(v.Close)
	return v, logs
}

func loadedView(t *testing.T) (*View, *observer.ObservedLogs) {
	t.Helper()
	v, logs := newTestView(t)
	require.NoError(t, v.LoadBoundaries(testFeatures(), nil))
	return v, logs
}

func TestColorFor(t *testing.T) {
	tests := []struct {
		density float64
		want    string
	}{
		{-1, "#f2f0f7"},
		{0, "#f2f0f7"},
		{0.02, "#f2f0f7"},
		{0.020001, "#cbc9e2"},
		{0.04, "#cbc9e2"},
		{0.05, "#9e9ac8"},
		{0.06, "#9e9ac8"},
		{0.08, "#756bb1"},
		{0.080001, "#54278f"},
		{12, "#54278f"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ColorFor(tt.density), "density %v", tt.density)
	}
	assert.Equal(t, 4, BucketFor(0.5))
}

func TestViewModeLabels(t *testing.T) {
	assert.Equal(t, "Show Choropleth", Boundaries.ToggleLabel())
	assert.Equal(t, "Show Boundaries", Choropleth.ToggleLabel())
	assert.Equal(t, Choropleth, Boundaries.Other())
	assert.Equal(t, Boundaries, Choropleth.Other())
	assert.Equal(t, "choropleth", Choropleth.String())
}

func TestPopupText(t *testing.T) {
	f := geom.Feature{TotalPop: 312, HasPop: true, Density: 0.04, HasDense: true}
	assert.Equal(t, "Total Population: 312\nDensity: 0.0400", PopupText(f))

	f = geom.Feature{TotalPop: 95.5, HasPop: true, Density: 0.123456, HasDense: true}
	assert.Equal(t, "Total Population: 95.5\nDensity: 0.1235", PopupText(f))

	assert.Equal(t, "Total Population: n/a\nDensity: n/a", PopupText(geom.Feature{}))
}

func TestHandleClick(t *testing.T) {
	f := testFeatures()[1]

	eff := HandleClick(ClickEvent{Index: 1, Feature: f, Mode: Boundaries})
	require.NotNil(t, eff.Popup)
	assert.Equal(t, 1, eff.Popup.Feature)
	assert.Equal(t, []StyleChange{
		{All: true, Style: GreyedStyle},
		{Feature: 1, Style: HighlightStyle},
	}, eff.Restyle)

	eff = HandleClick(ClickEvent{Index: 1, Feature: f, Mode: Choropleth})
	require.NotNil(t, eff.Popup)
	assert.Empty(t, eff.Restyle)
}

func TestHandlePopupClose(t *testing.T) {
	eff := HandlePopupClose(PopupCloseEvent{Mode: Boundaries})
	assert.Equal(t, []StyleChange{{All: true, Style: DefaultStyle}}, eff.Restyle)
	assert.Nil(t, eff.Popup)

	assert.Equal(t, Effect{}, HandlePopupClose(PopupCloseEvent{Mode: Choropleth}))
}

func TestChoroplethStyle(t *testing.T) {
	s := ChoroplethStyle(geom.Feature{Density: 0.07, HasDense: true})
	assert.Equal(t, "#756bb1", s.Fill())
	assert.Equal(t, "white", s.Color)
	assert.InDelta(t, 0.7, s.FillOpacity, 1e-9)

	s = ChoroplethStyle(geom.Feature{})
	assert.Zero(t, s.FillOpacity)

	assert.Equal(t, "red", HighlightStyle.Fill())
}

func TestNewView(t *testing.T) {
	v, _ := newTestView(t)
	vp := v.Viewport()
	assert.Equal(t, DublinCenter, vp.Center)
	assert.Equal(t, 12, vp.Zoom)
	assert.False(t, v.Loaded())
	assert.Nil(t, v.Mounted())
	assert.Empty(t, v.Attribution())
}

func TestExactlyOneLayerMounted(t *testing.T) {
	v, _ := loadedView(t)
	b, c := v.Layers()

	assert.Equal(t, Boundaries, v.Mode())
	assert.Same(t, b, v.Mounted())
	assert.True(t, b.Attached())
	assert.False(t, c.Attached())

	require.NoError(t, v.ToggleMode())
	assert.Equal(t, Choropleth, v.Mode())
	assert.Same(t, c, v.Mounted())
	assert.False(t, b.Attached())
	assert.True(t, c.Attached())

	require.NoError(t, v.ToggleMode())
	assert.Equal(t, Boundaries, v.Mode())
	assert.Same(t, b, v.Mounted())
	assert.True(t, b.Attached())
	assert.False(t, c.Attached())
}

func TestClickInBoundariesMode(t *testing.T) {
	v, _ := loadedView(t)
	b, _ := v.Layers()

	require.NoError(t, v.Click(1))
	assert.Equal(t, GreyedStyle, b.Style(0))
	assert.Equal(t, HighlightStyle, b.Style(1))
	assert.Equal(t, GreyedStyle, b.Style(2))

	p, ok := v.Popup()
	require.True(t, ok)
	assert.Equal(t, 1, p.Feature)
	assert.Equal(t, "Total Population: 250\nDensity: 0.0500", p.Text)

	require.NoError(t, v.Click(2))
	assert.Equal(t, GreyedStyle, b.Style(1))
	assert.Equal(t, HighlightStyle, b.Style(2))

	assert.True(t, v.ClosePopup())
	for i := 0; i < b.Len(); i++ {
		assert.Equal(t, DefaultStyle, b.Style(i))
	}
	_, ok = v.Popup()
	assert.False(t, ok)
	assert.False(t, v.ClosePopup())
}

func TestClickInChoroplethModeKeepsFills(t *testing.T) {
	v, _ := loadedView(t)
	require.NoError(t, v.ToggleMode())
	b, c := v.Layers()

	var before []Style
	for i := 0; i < c.Len(); i++ {
		before = append(before, c.Style(i))
	}
	for i := 0; i < c.Len(); i++ {
		require.NoError(t, v.Click(i))
		p, ok := v.Popup()
		require.True(t, ok)
		assert.Equal(t, i, p.Feature)
	}
	for i := 0; i < c.Len(); i++ {
		assert.Equal(t, before[i], c.Style(i))
		assert.Equal(t, DefaultStyle, b.Style(i))
	}
	assert.True(t, v.ClosePopup())
	assert.Equal(t, before[0], c.Style(0))
}

func TestToggleClosesPopupAndResets(t *testing.T) {
	v, _ := loadedView(t)
	b, _ := v.Layers()

	require.NoError(t, v.Click(0))
	require.NoError(t, v.ToggleMode())

	_, ok := v.Popup()
	assert.False(t, ok)
	for i := 0; i < b.Len(); i++ {
		assert.Equal(t, DefaultStyle, b.Style(i))
	}
}

func TestToggleBeforeLoad(t *testing.T) {
	v, logs := newTestView(t)
	rev := v.Revision()

	err := v.ToggleMode()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Equal(t, Boundaries, v.Mode())
	assert.Nil(t, v.Mounted())
	assert.Equal(t, rev, v.Revision())

	entries := logs.FilterMessage("cannot toggle layers").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)

	assert.ErrorIs(t, v.Click(0), ErrNotLoaded)
}

func TestLoadError(t *testing.T) {
	v, logs := newTestView(t)

	err := v.LoadBoundaries(nil, errors.New("connection refused"))
	assert.Error(t, err)
	assert.False(t, v.Loaded())
	assert.Equal(t, 1, logs.FilterMessage("error loading boundaries").Len())

	assert.ErrorIs(t, v.LoadBoundaries(nil, nil), geom.ErrNoFeatures)
	assert.False(t, v.Loaded())
}

func TestClickOutOfRange(t *testing.T) {
	v, _ := loadedView(t)
	assert.Error(t, v.Click(-1))
	assert.Error(t, v.Click(3))
	_, ok := v.Popup()
	assert.False(t, ok)
}

func TestReloadResetsState(t *testing.T) {
	v, _ := loadedView(t)
	require.NoError(t, v.ToggleMode())
	require.NoError(t, v.Click(0))

	require.NoError(t, v.LoadBoundaries(testFeatures()[:2], nil))
	assert.Equal(t, Boundaries, v.Mode())
	_, ok := v.Popup()
	assert.False(t, ok)
	assert.Len(t, v.Features(), 2)
	assert.Equal(t, 2, v.Index().Len())
}

func TestCloseIgnoresLateLoad(t *testing.T) {
	v, logs := newTestView(t)
	ctx := v.Context()

	v.Close()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	assert.ErrorIs(t, v.LoadBoundaries(testFeatures(), nil), ErrClosed)
	assert.False(t, v.Loaded())
	assert.Zero(t, logs.FilterMessage("boundaries loaded").Len())

	v.Close()
}

func TestRevisionTracksChanges(t *testing.T) {
	v, _ := loadedView(t)
	r0 := v.Revision()
	require.NoError(t, v.Click(0))
	r1 := v.Revision()
	assert.Greater(t, r1, r0)
	require.NoError(t, v.ToggleMode())
	assert.Greater(t, v.Revision(), r1)
}

func TestCloseBumpsRevision(t *testing.T) {
	v, _ := loadedView(t)
	require.NoError(t, v.Click(0))
	r := v.Revision()
	v.Close()
	assert.Greater(t, v.Revision(), r)
	assert.False(t, v.Loaded())
}
