package formats

import "github.com/vpdb/server-sub007/pkg/math"

// Light is a lamp insert or bulb. Intensity and Falloff are nil when the item
// does not store them; Color falls back to DefaultLightColor.
type Light struct {
	Center math.Vertex2D

	Falloff      *float32
	FalloffPower float32
	Intensity    *float32
	Color        Color
	Color2       Color

	Surface           string
	Image             string
	BlinkPattern      string
	BlinkInterval     int32
	IsBulbLight       bool
	ShowBulbMesh      bool
	MeshRadius        float32
	BulbHaloHeight    float32
	TransmissionScale float32
	FadeSpeedUp       float32
	FadeSpeedDown     float32

	Points []DragPoint
}

// Kind implements ItemData.
func (l *Light) Kind() ItemKind { return KindLight }

// FalloffOr returns the stored falloff or def.
func (l *Light) FalloffOr(def float32) float32 {
	if l.Falloff != nil {
		return *l.Falloff
	}
	return def
}

func parseLight(ir *itemRecords) (ItemData, error) {
	var f fieldReader
	l := &Light{
		FalloffPower:   2,
		Color:          DefaultLightColor,
		MeshRadius:     20,
		BulbHaloHeight: 28,
		BlinkPattern:   "10",
		BlinkInterval:  125,
	}

	for _, rec := range ir.records {
		switch rec.Tag {
		case "VCEN":
			v, err := rec.Vertex2D()
			f.fail(err)
			l.Center = v
		case "RADI":
			l.Falloff = f.f32p(rec)
		case "FAPO":
			f.f32(rec, &l.FalloffPower)
		case "COLR":
			f.color(rec, &l.Color)
		case "COL2":
			f.color(rec, &l.Color2)
		case "BWTH":
			l.Intensity = f.f32p(rec)
		case "SURF":
			f.str(rec, &l.Surface)
		case "IMG1":
			f.str(rec, &l.Image)
		case "BPAT":
			f.str(rec, &l.BlinkPattern)
		case "BINT":
			f.i32(rec, &l.BlinkInterval)
		case "BULT":
			f.boolean(rec, &l.IsBulbLight)
		case "SHBM":
			f.boolean(rec, &l.ShowBulbMesh)
		case "BMSC":
			f.f32(rec, &l.MeshRadius)
		case "BHHI":
			f.f32(rec, &l.BulbHaloHeight)
		case "TRMS":
			f.f32(rec, &l.TransmissionScale)
		case "FASP":
			f.f32(rec, &l.FadeSpeedUp)
		case "FASD":
			f.f32(rec, &l.FadeSpeedDown)
		}
	}
	if f.err != nil {
		return nil, f.err
	}

	points, err := ir.dragPoints()
	if err != nil {
		return nil, err
	}
	l.Points = points
	return l, nil
}
