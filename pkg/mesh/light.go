package mesh

import (
	"go.uber.org/zap"

	"github.com/vpdb/server-sub007/pkg/formats"
	"github.com/vpdb/server-sub007/pkg/math"
)

// Light parameter defaults.
const (
	defaultLightDecay     float32 = 2
	defaultLightIntensity float32 = 1
	defaultLightFalloff   float32 = 50
	bulbSides                     = 8
)

// LightParams returns the point light of a light item. The color is the
// item's own; stored intensity and falloff override the defaults. Distance is
// the falloff in scene units.
func LightParams(name string, l *formats.Light, scale float32) *Light {
	light := &Light{
		Name:      name,
		Position:  l.Center.XYZ(l.BulbHaloHeight),
		Color:     l.Color,
		Intensity: defaultLightIntensity,
		Distance:  scale * defaultLightFalloff,
		Decay:     defaultLightDecay,
	}
	if l.Intensity != nil {
		light.Intensity = *l.Intensity
	}
	if l.Falloff != nil {
		light.Distance = *l.Falloff * scale
	}
	return light
}

// BulbMesh returns the bulb geometry: an eight-sided prism of the bulb's
// diameter centered on the light at halo height.
func BulbMesh(name string, l *formats.Light) (*Mesh, error) {
	r := l.MeshRadius
	d := r * 2
	return PrimitiveMesh(name, &formats.Primitive{
		Position: math.Vertex3D{X: l.Center.X - r, Y: l.Center.Y - r, Z: l.BulbHaloHeight - r},
		Size:     math.Vertex3D{X: d, Y: d, Z: d},
		Sides:    bulbSides,
		Visible:  true,
	})
}

// buildLight emits bulb geometry and the light itself for lights showing a
// bulb mesh. Other lights are not exported.
func buildLight(ctx *Context, item *formats.ItemRecord) ([]Node, error) {
	l, err := itemData[*formats.Light](item)
	if err != nil {
		return nil, err
	}
	if !l.ShowBulbMesh {
		ctx.logger().Debug("light has no bulb mesh", zap.String("item", item.Name))
		return nil, nil
	}

	bulb, err := BulbMesh(item.Name, l)
	if err != nil {
		return nil, err
	}
	return []Node{
		{Group: GroupLightBulbs, Mesh: bulb},
		{Group: GroupLights, Light: LightParams(item.Name, l, ctx.scale())},
	}, nil
}
