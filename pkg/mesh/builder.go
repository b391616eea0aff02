package mesh

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vpdb/server-sub007/pkg/formats"
)

// DefaultScale converts table units to scene units.
const DefaultScale float32 = 0.05

// Context carries what builders need besides the item itself.
type Context struct {
	Table *formats.Table
	// Scale converts table units to scene units; 0 means DefaultScale.
	Scale  float32
	Logger *zap.Logger
}

func (c *Context) scale() float32 {
	if c.Scale == 0 {
		return DefaultScale
	}
	return c.Scale
}

func (c *Context) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// builderFunc turns one item into scene nodes. A nil result without error
// means the item has no geometry.
type builderFunc func(ctx *Context, item *formats.ItemRecord) ([]Node, error)

var builders = [...]builderFunc{
	formats.KindSurface:     buildSurface,
	formats.KindFlipper:     buildNone,
	formats.KindTimer:       buildNone,
	formats.KindPlunger:     buildNone,
	formats.KindTextbox:     buildNone,
	formats.KindBumper:      buildNone,
	formats.KindTrigger:     buildNone,
	formats.KindLight:       buildLight,
	formats.KindKicker:      buildNone,
	formats.KindDecal:       buildNone,
	formats.KindGate:        buildNone,
	formats.KindSpinner:     buildNone,
	formats.KindRamp:        buildNone,
	formats.KindTable:       buildNone,
	formats.KindLightCenter: buildNone,
	formats.KindDragPoint:   buildNone,
	formats.KindCollection:  buildNone,
	formats.KindDispReel:    buildNone,
	formats.KindLightSeq:    buildNone,
	formats.KindPrimitive:   buildPrimitive,
	formats.KindFlasher:     buildFlasher,
	formats.KindRubber:      buildNone,
	formats.KindHitTarget:   buildNone,
}

// Every item kind needs exactly one builder.
var _ = [1]struct{}{}[len(builders)-int(formats.KindCount)]

func buildNone(ctx *Context, item *formats.ItemRecord) ([]Node, error) {
	ctx.logger().Debug("item has no geometry",
		zap.String("item", item.Name),
		zap.Stringer("kind", item.Kind))
	return nil, nil
}

// Result is the output of Build.
type Result struct {
	// Nodes holds the playfield first, then item nodes in file order.
	Nodes []Node
	// Warnings lists items that were skipped.
	Warnings []error
}

// Build creates the playfield and the nodes of every item. Only a missing
// playfield is fatal; failing items are skipped with a warning.
func Build(ctx *Context) (*Result, error) {
	log := ctx.logger()

	playfield, err := BuildPlayfield(ctx)
	if err != nil {
		return nil, err
	}
	res := &Result{Nodes: []Node{{Group: GroupPlayfield, Mesh: playfield}}}

	for _, item := range ctx.Table.Items {
		if !item.Kind.Valid() {
			res.Warnings = append(res.Warnings, fmt.Errorf("%w: %s", formats.ErrUnsupportedItemType, item.Kind))
			continue
		}
		nodes, err := builders[item.Kind](ctx, item)
		if err != nil {
			err = fmt.Errorf("%w: %s %q: %w", ErrMeshBuild, item.Kind, item.Name, err)
			log.Warn("skipping item", zap.String("item", item.Name), zap.Error(err))
			res.Warnings = append(res.Warnings, err)
			continue
		}
		res.Nodes = append(res.Nodes, nodes...)
	}
	return res, nil
}

// itemData asserts the item payload type.
func itemData[T formats.ItemData](item *formats.ItemRecord) (T, error) {
	data, ok := item.Data.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("unexpected item data %T", item.Data)
	}
	return data, nil
}
