package formats

// Surface is a wall: a closed drag point outline extruded between two heights.
type Surface struct {
	Points []DragPoint

	HeightBottom float32
	HeightTop    float32

	Image        string
	SideImage    string
	TopMaterial  string
	SideMaterial string

	TopVisible    bool
	SideVisible   bool
	Droppable     bool
	IsBottomSolid bool
}

// Kind implements ItemData.
func (s *Surface) Kind() ItemKind { return KindSurface }

func parseSurface(ir *itemRecords) (ItemData, error) {
	var f fieldReader
	s := &Surface{
		HeightTop:   50,
		TopVisible:  true,
		SideVisible: true,
	}

	for _, rec := range ir.records {
		switch rec.Tag {
		case "HTBT":
			f.f32(rec, &s.HeightBottom)
		case "HTTP":
			f.f32(rec, &s.HeightTop)
		case "IMAG":
			f.str(rec, &s.Image)
		case "SIMG":
			f.str(rec, &s.SideImage)
		case "TOMA":
			f.str(rec, &s.TopMaterial)
		case "SIMA":
			f.str(rec, &s.SideMaterial)
		case "VSBL":
			f.boolean(rec, &s.TopVisible)
		case "SVBL":
			f.boolean(rec, &s.SideVisible)
		case "DROP":
			f.boolean(rec, &s.Droppable)
		case "ISBS":
			f.boolean(rec, &s.IsBottomSolid)
		}
	}
	if f.err != nil {
		return nil, f.err
	}

	points, err := ir.dragPoints()
	if err != nil {
		return nil, err
	}
	s.Points = points
	return s, nil
}
