package formats

// Flasher is a flat, optionally textured polygon floating above the playfield.
type Flasher struct {
	Points []DragPoint

	Height  float32
	CenterX float32
	CenterY float32
	RotX    float32
	RotY    float32
	RotZ    float32

	Color          Color
	Image          string
	ImageB         string
	Alpha          int32
	Visible        bool
	AddBlend       bool
	DisplayTexture bool
}

// Kind implements ItemData.
func (fl *Flasher) Kind() ItemKind { return KindFlasher }

func parseFlasher(ir *itemRecords) (ItemData, error) {
	var f fieldReader
	fl := &Flasher{
		Height:  50,
		Color:   ColorWhite,
		Alpha:   100,
		Visible: true,
	}

	for _, rec := range ir.records {
		switch rec.Tag {
		case "FHEI":
			f.f32(rec, &fl.Height)
		case "FLAX":
			f.f32(rec, &fl.CenterX)
		case "FLAY":
			f.f32(rec, &fl.CenterY)
		case "FROX":
			f.f32(rec, &fl.RotX)
		case "FROY":
			f.f32(rec, &fl.RotY)
		case "FROZ":
			f.f32(rec, &fl.RotZ)
		case "COLR":
			f.color(rec, &fl.Color)
		case "IMAG":
			f.str(rec, &fl.Image)
		case "IMAB":
			f.str(rec, &fl.ImageB)
		case "FALP":
			f.i32(rec, &fl.Alpha)
		case "FVIS":
			f.boolean(rec, &fl.Visible)
		case "ADDB":
			f.boolean(rec, &fl.AddBlend)
		case "DSPT":
			f.boolean(rec, &fl.DisplayTexture)
		}
	}
	if f.err != nil {
		return nil, f.err
	}

	points, err := ir.dragPoints()
	if err != nil {
		return nil, err
	}
	fl.Points = points
	return fl, nil
}
