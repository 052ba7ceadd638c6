package grid

import (
	geojson "github.com/paulmach/go.geojson"
)

// FeatureCollection renders the network as GeoJSON in canvas coordinates:
// one LineString per road centreline and one Point per intersection, bounded
// by the canvas.
func (n *Network) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.BoundingBox = []float64{0, 0, n.Width(), n.Height()}
	for i, y := range n.hRoads {
		f := geojson.NewLineStringFeature([][]float64{{0, y}, {n.width, y}})
		f.SetProperty("kind", "road")
		f.SetProperty("axis", "horizontal")
		f.SetProperty("index", i)
		f.SetProperty("width", n.roadW)
		fc.AddFeature(f)
	}
	for i, x := range n.vRoads {
		f := geojson.NewLineStringFeature([][]float64{{x, 0}, {x, n.height}})
		f.SetProperty("kind", "road")
		f.SetProperty("axis", "vertical")
		f.SetProperty("index", i)
		f.SetProperty("width", n.roadW)
		fc.AddFeature(f)
	}
	for id, p := range n.Intersections() {
		f := geojson.NewPointFeature([]float64{p.X, p.Y})
		f.SetProperty("kind", "intersection")
		f.SetProperty("id", id)
		fc.AddFeature(f)
	}
	return fc
}
