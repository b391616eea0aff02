package formats

import (
	"fmt"
	"strings"

	"github.com/vpdb/server-sub007/pkg/biff"
	"github.com/vpdb/server-sub007/pkg/math"
)

// ItemKind is the type number stored in front of every game item stream.
type ItemKind uint32

// Item kinds, numbered as stored in table files.
const (
	KindSurface ItemKind = iota
	KindFlipper
	KindTimer
	KindPlunger
	KindTextbox
	KindBumper
	KindTrigger
	KindLight
	KindKicker
	KindDecal
	KindGate
	KindSpinner
	KindRamp
	KindTable
	KindLightCenter
	KindDragPoint
	KindCollection
	KindDispReel
	KindLightSeq
	KindPrimitive
	KindFlasher
	KindRubber
	KindHitTarget

	// KindCount is the number of known kinds.
	KindCount
)

var kindNames = [KindCount]string{
	"Surface", "Flipper", "Timer", "Plunger", "Textbox", "Bumper", "Trigger",
	"Light", "Kicker", "Decal", "Gate", "Spinner", "Ramp", "Table",
	"LightCenter", "DragPoint", "Collection", "DispReel", "LightSeq",
	"Primitive", "Flasher", "Rubber", "HitTarget",
}

// String returns the kind name.
func (k ItemKind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Unknown(%d)", uint32(k))
}

// Valid reports whether k is a known kind.
func (k ItemKind) Valid() bool {
	return k < KindCount
}

// ItemData is the decoded payload of an item. Kinds without a dedicated
// decoder use *Generic.
type ItemData interface {
	Kind() ItemKind
}

// ItemRecord is one game item in file order.
type ItemRecord struct {
	// Index is the N of the GameItemN stream.
	Index int
	Kind  ItemKind
	Name  string
	// Records holds the top-level records of the item, drag point sections excluded.
	Records []biff.Record
	Data    ItemData
}

// Generic holds items whose fields are not decoded.
type Generic struct {
	ItemKind ItemKind
}

// Kind implements ItemData.
func (g *Generic) Kind() ItemKind { return g.ItemKind }

// DragPoint is a control point of a curve-shaped item.
type DragPoint struct {
	Center      math.Vertex3D
	Smooth      bool
	Slingshot   bool
	AutoTexture bool
	TexCoord    float32
	Locked      bool
}

// ControlPoint converts the drag point for curve evaluation.
func (d DragPoint) ControlPoint() math.ControlPoint {
	return math.ControlPoint{Pos: d.Center, Smooth: d.Smooth, Slingshot: d.Slingshot}
}

// ControlPoints converts a drag point list.
func ControlPoints(points []DragPoint) []math.ControlPoint {
	out := make([]math.ControlPoint, len(points))
	for i, p := range points {
		out[i] = p.ControlPoint()
	}
	return out
}

func parseDragPoint(recs []biff.Record) (DragPoint, error) {
	var f fieldReader
	var dp DragPoint
	for _, rec := range recs {
		switch rec.Tag {
		case "VCEN":
			v, err := rec.Vertex3D()
			f.fail(err)
			dp.Center.X, dp.Center.Y = v.X, v.Y
		case "POSZ":
			f.f32(rec, &dp.Center.Z)
		case "SMTH":
			f.boolean(rec, &dp.Smooth)
		case "SLNG":
			f.boolean(rec, &dp.Slingshot)
		case "ATEX":
			f.boolean(rec, &dp.AutoTexture)
		case "TEXC":
			f.f32(rec, &dp.TexCoord)
		case "LOCK":
			f.boolean(rec, &dp.Locked)
		}
	}
	return dp, f.err
}

// itemRecords splits an item stream body into top-level records and drag point sections.
type itemRecords struct {
	records []biff.Record
	points  [][]biff.Record
}

func readItemRecords(r *biff.Reader) (*itemRecords, error) {
	out := &itemRecords{}
	err := r.Walk(func(rec biff.Record) error {
		if rec.Tag == "DPNT" {
			section, err := r.Section()
			if err != nil {
				return err
			}
			out.points = append(out.points, section)
			return nil
		}
		out.records = append(out.records, rec)
		return nil
	})
	return out, err
}

func (ir *itemRecords) dragPoints() ([]DragPoint, error) {
	if len(ir.points) == 0 {
		return nil, nil
	}
	out := make([]DragPoint, 0, len(ir.points))
	for _, recs := range ir.points {
		dp, err := parseDragPoint(recs)
		if err != nil {
			return nil, err
		}
		out = append(out, dp)
	}
	return out, nil
}

// name returns the item's NAME record.
func (ir *itemRecords) name() (string, error) {
	for _, rec := range ir.records {
		if rec.Tag == "NAME" {
			return rec.WideString()
		}
	}
	return "", nil
}

type itemParser func(*itemRecords) (ItemData, error)

var itemParsers = map[ItemKind]itemParser{
	KindPrimitive: parsePrimitive,
	KindLight:     parseLight,
	KindSurface:   parseSurface,
	KindFlasher:   parseFlasher,
}

// parseItem decodes one GameItemN stream. Broken record framing is returned
// as is; field decoding failures wrap ErrMalformedItem.
func parseItem(index int, data []byte) (*ItemRecord, error) {
	r := biff.NewReader(data)
	typ, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	kind := ItemKind(typ)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s in item %d", ErrUnsupportedItemType, kind, index)
	}

	recs, err := readItemRecords(r)
	if err != nil {
		return nil, err
	}
	name, err := recs.name()
	if err != nil {
		return nil, fmt.Errorf("%w: %s %d: name: %w", ErrMalformedItem, kind, index, err)
	}

	item := &ItemRecord{Index: index, Kind: kind, Name: name, Records: recs.records}
	if parse, ok := itemParsers[kind]; ok {
		if item.Data, err = parse(recs); err != nil {
			return nil, fmt.Errorf("%w: %s %q: %w", ErrMalformedItem, kind, name, err)
		}
	} else {
		item.Data = &Generic{ItemKind: kind}
	}
	return item, nil
}

func lowerName(s string) string {
	return strings.ToLower(s)
}
