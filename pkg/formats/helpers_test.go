package formats

import (
	"fmt"

	"github.com/vpdb/server-sub007/pkg/biff"
	"github.com/vpdb/server-sub007/pkg/cfb"
	"github.com/vpdb/server-sub007/pkg/encoding"
	"github.com/vpdb/server-sub007/pkg/math"
)

// tableBuilder assembles the streams of a synthetic table.
type tableBuilder struct {
	gameData  *biff.Writer
	items     [][]byte
	images    [][]byte
	materials []Material
	streams   map[string][]byte
}

func newTableBuilder(width, height float32) *tableBuilder {
	gd := biff.NewWriter().
		Float32("LEFT", 0).
		Float32("TOPX", 0).
		Float32("RGHT", width).
		Float32("BOTM", height)
	return &tableBuilder{gameData: gd, streams: make(map[string][]byte)}
}

func (b *tableBuilder) item(kind ItemKind, name string, body func(w *biff.Writer)) *tableBuilder {
	w := biff.NewWriter().Uint32Value(uint32(kind)).WideString("NAME", name)
	if body != nil {
		body(w)
	}
	b.items = append(b.items, w.End().Data())
	return b
}

func (b *tableBuilder) image(body func(w *biff.Writer)) *tableBuilder {
	w := biff.NewWriter()
	body(w)
	b.images = append(b.images, w.End().Data())
	return b
}

func (b *tableBuilder) storage() *cfb.Storage {
	gd := b.gameData.
		Int32("SEDT", int32(len(b.items))).
		Int32("SIMG", int32(len(b.images))).
		Int32("MASI", int32(len(b.materials))).
		Record("MATE", EncodeMaterials(b.materials)).
		End().
		Data()

	streams := map[string][]byte{"GameStg/GameData": gd}
	for i, data := range b.items {
		streams[fmt.Sprintf("GameStg/GameItem%d", i)] = data
	}
	for i, data := range b.images {
		streams[fmt.Sprintf("GameStg/Image%d", i)] = data
	}
	for k, v := range b.streams {
		streams[k] = v
	}
	return cfb.NewMemStorage(streams)
}

func (b *tableBuilder) parse(opts ParseOptions) (*Table, error) {
	return ParseStorage(b.storage(), opts)
}

func dragPoint(w *biff.Writer, x, y float32, smooth bool) {
	w.Tag("DPNT")
	w.Vertex2D("VCEN", math.Vertex2D{X: x, Y: y})
	w.Float32("POSZ", 0)
	w.Bool("SMTH", smooth)
	w.End()
}

func utf16(s string) []byte {
	return encoding.UTF8ToUTF16(s)
}
