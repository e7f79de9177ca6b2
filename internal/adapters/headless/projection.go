package headless

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/wroge/wgs84"

	"github.com/samirrijal/geogrid/internal/core/domain"
)

const (
	// tileSize is the pixel size of one world tile at zoom 0.
	tileSize     = 512.0
	earthRadius  = 6378137.0
	maxMercator  = 85.051128779806604
	boundsSample = 16
	limbSample   = 64
)

// worldSize returns the width of the whole world in pixels at zoom.
func worldSize(zoom float64) float64 {
	return tileSize * math.Exp2(zoom)
}

// rotate turns (x, y) by deg degrees counterclockwise.
func rotate(x, y, deg float64) (float64, float64) {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return x*cos - y*sin, x*sin + y*cos
}

// wrapLng brings lng within 180 degrees of ref.
func wrapLng(lng, ref float64) float64 {
	d := math.Mod(lng-ref+180, 360)
	if d < 0 {
		d += 360
	}
	return ref + d - 180
}

// projection converts between geographic and viewport coordinates for one camera.
type projection interface {
	project(cam domain.Camera, size domain.Size, p domain.LngLat) domain.ScreenPoint
	unproject(cam domain.Camera, size domain.Size, s domain.ScreenPoint) domain.LngLat
	occluded(cam domain.Camera, p domain.LngLat) bool
	bounds(cam domain.Camera, size domain.Size) domain.Bounds
}

// mercator is the Web Mercator (EPSG:3857) projection.
type mercator struct {
	toMeters func(a, b, c float64) (float64, float64, float64)
	toLonLat func(a, b, c float64) (float64, float64, float64)
}

func newMercator() *mercator {
	epsg := wgs84.EPSG()
	return &mercator{
		toMeters: wgs84.Transform(epsg.Code(4326), epsg.Code(3857)),
		toLonLat: wgs84.Transform(epsg.Code(3857), epsg.Code(4326)),
	}
}

func (m *mercator) meters(p domain.LngLat) (float64, float64) {
	lat := math.Max(-maxMercator, math.Min(maxMercator, p.Lat))
	x, y, _ := m.toMeters(p.Lng, lat, 0)
	return x, y
}

// scale returns pixels per projected meter at zoom.
func (m *mercator) scale(zoom float64) float64 {
	return worldSize(zoom) / (2 * math.Pi * earthRadius)
}

func (m *mercator) project(cam domain.Camera, size domain.Size, p domain.LngLat) domain.ScreenPoint {
	cx, cy := m.meters(cam.Center)
	x, y := m.meters(p)
	k := m.scale(cam.Zoom)
	dx, dy := rotate((x-cx)*k, (y-cy)*k, -cam.Bearing)
	return domain.ScreenPoint{X: size.Width/2 + dx, Y: size.Height/2 - dy}
}

func (m *mercator) unproject(cam domain.Camera, size domain.Size, s domain.ScreenPoint) domain.LngLat {
	cx, cy := m.meters(cam.Center)
	k := m.scale(cam.Zoom)
	dx, dy := rotate(s.X-size.Width/2, size.Height/2-s.Y, cam.Bearing)
	lng, lat, _ := m.toLonLat(cx+dx/k, cy+dy/k, 0)
	return domain.LngLat{Lng: lng, Lat: lat}
}

func (m *mercator) occluded(domain.Camera, domain.LngLat) bool {
	return false
}

func (m *mercator) bounds(cam domain.Camera, size domain.Size) domain.Bounds {
	corners := []domain.ScreenPoint{
		{X: 0, Y: 0}, {X: size.Width, Y: 0},
		{X: 0, Y: size.Height}, {X: size.Width, Y: size.Height},
	}
	b := domain.Bounds{West: math.Inf(1), South: math.Inf(1), East: math.Inf(-1), North: math.Inf(-1)}
	for _, c := range corners {
		extend(&b, m.unproject(cam, size, c))
	}
	return b
}

func extend(b *domain.Bounds, p domain.LngLat) {
	b.West = math.Min(b.West, p.Lng)
	b.East = math.Max(b.East, p.Lng)
	b.South = math.Min(b.South, p.Lat)
	b.North = math.Max(b.North, p.Lat)
}

// globe is an orthographic view of the sphere centred on the camera.
type globe struct{}

// frame returns the unit vectors pointing at the camera centre, east and north.
func (globe) frame(center domain.LngLat) (c, east, north r3.Vector) {
	c = s2.PointFromLatLng(s2.LatLngFromDegrees(center.Lat, center.Lng)).Vector
	lng := center.Lng * math.Pi / 180
	lat := center.Lat * math.Pi / 180
	east = r3.Vector{X: -math.Sin(lng), Y: math.Cos(lng), Z: 0}
	north = r3.Vector{X: -math.Sin(lat) * math.Cos(lng), Y: -math.Sin(lat) * math.Sin(lng), Z: math.Cos(lat)}
	return c, east, north
}

// radius is the globe radius in pixels at zoom.
func (globe) radius(zoom float64) float64 {
	return worldSize(zoom) / (2 * math.Pi)
}

func (g globe) project(cam domain.Camera, size domain.Size, p domain.LngLat) domain.ScreenPoint {
	_, east, north := g.frame(cam.Center)
	v := s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lng)).Vector
	r := g.radius(cam.Zoom)
	dx, dy := rotate(v.Dot(east)*r, v.Dot(north)*r, -cam.Bearing)
	return domain.ScreenPoint{X: size.Width/2 + dx, Y: size.Height/2 - dy}
}

// unproject maps pixels on the globe disc to the visible hemisphere. Pixels
// outside the disc map behind the horizon, further back the further out they are.
func (g globe) unproject(cam domain.Camera, size domain.Size, s domain.ScreenPoint) domain.LngLat {
	c, east, north := g.frame(cam.Center)
	r := g.radius(cam.Zoom)
	dx, dy := rotate(s.X-size.Width/2, size.Height/2-s.Y, cam.Bearing)
	u, v := dx/r, dy/r

	var w float64
	if d2 := u*u + v*v; d2 <= 1 {
		w = math.Sqrt(1 - d2)
	} else {
		d := math.Sqrt(d2)
		u, v, w = u/d, v/d, -(d - 1)
	}
	dir := east.Mul(u).Add(north.Mul(v)).Add(c.Mul(w)).Normalize()
	ll := s2.LatLngFromPoint(s2.Point{Vector: dir})
	return domain.LngLat{Lng: ll.Lng.Degrees(), Lat: ll.Lat.Degrees()}
}

func (g globe) occluded(cam domain.Camera, p domain.LngLat) bool {
	c, _, _ := g.frame(cam.Center)
	v := s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lng)).Vector
	return v.Dot(c) < 0
}

func (g globe) onScreen(size domain.Size, s domain.ScreenPoint) bool {
	return s.X >= 0 && s.X <= size.Width && s.Y >= 0 && s.Y <= size.Height
}

// bounds samples the viewport edges and the globe limb for the visible extent.
func (g globe) bounds(cam domain.Camera, size domain.Size) domain.Bounds {
	b := domain.Bounds{West: math.Inf(1), South: math.Inf(1), East: math.Inf(-1), North: math.Inf(-1)}
	add := func(p domain.LngLat) {
		p.Lng = wrapLng(p.Lng, cam.Center.Lng)
		extend(&b, p)
	}
	add(cam.Center)

	r := g.radius(cam.Zoom)
	onDisc := func(s domain.ScreenPoint) bool {
		dx, dy := s.X-size.Width/2, s.Y-size.Height/2
		return dx*dx+dy*dy <= r*r
	}
	for i := 0; i <= boundsSample; i++ {
		t := float64(i) / boundsSample
		for _, s := range []domain.ScreenPoint{
			{X: t * size.Width, Y: 0},
			{X: t * size.Width, Y: size.Height},
			{X: 0, Y: t * size.Height},
			{X: size.Width, Y: t * size.Height},
		} {
			if onDisc(s) {
				add(g.unproject(cam, size, s))
			}
		}
	}
	for i := 0; i < limbSample; i++ {
		a := 2 * math.Pi * float64(i) / limbSample
		s := domain.ScreenPoint{
			X: size.Width/2 + 0.999*r*math.Cos(a),
			Y: size.Height/2 + 0.999*r*math.Sin(a),
		}
		if g.onScreen(size, s) {
			add(g.unproject(cam, size, s))
		}
	}

	for _, pole := range []domain.LngLat{{Lat: domain.MaxLatitude}, {Lat: domain.MinLatitude}} {
		if g.occluded(cam, pole) || !g.onScreen(size, g.project(cam, size, pole)) {
			continue
		}
		b.West, b.East = domain.MinLongitude, domain.MaxLongitude
		if pole.Lat > 0 {
			b.North = domain.MaxLatitude
		} else {
			b.South = domain.MinLatitude
		}
	}
	return b
}
