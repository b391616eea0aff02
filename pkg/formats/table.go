package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/vpdb/server-sub007/pkg/biff"
	"github.com/vpdb/server-sub007/pkg/cfb"
	"github.com/vpdb/server-sub007/pkg/encoding"
)

// Camera defaults for tables that do not store a desktop view.
const (
	DefaultInclination float32 = 43
	DefaultFOV         float32 = 45
)

// ParseOptions controls table parsing.
type ParseOptions struct {
	// TolerantImages keeps partially decoded bitmaps instead of failing.
	TolerantImages bool
}

// GameData holds the decoded GameStg/GameData fields the converter uses.
// Everything else stays available through Table.Chunks.
type GameData struct {
	Name string

	Left, Top, Right, Bottom float32

	Inclination float32
	FOV         float32
	Layback     float32
	Rotation    float32

	Image             string
	PlayfieldMaterial string

	NumItems     int32
	NumSounds    int32
	NumImages    int32
	NumFonts     int32
	NumCollects  int32
	NumMaterials int32
	Materials    []byte

	Script string
}

// Table is a parsed table file. It is read-only after Parse returns.
type Table struct {
	Version  int32
	Info     map[string]string
	GameData GameData
	// Chunks holds the GameData records in file order.
	Chunks    []biff.Record
	Items     []*ItemRecord
	Images    []*Image
	Materials []Material
	// Warnings lists non-fatal problems met while parsing.
	Warnings []error

	itemsByName     map[string]*ItemRecord
	imagesByName    map[string]*Image
	materialsByName map[string]*Material
}

// Width returns the playfield width.
func (t *Table) Width() float32 {
	return t.GameData.Right - t.GameData.Left
}

// Height returns the playfield height.
func (t *Table) Height() float32 {
	return t.GameData.Bottom - t.GameData.Top
}

// Chunk returns the first GameData record with the given tag.
func (t *Table) Chunk(tag string) (biff.Record, bool) {
	for _, rec := range t.Chunks {
		if rec.Tag == tag {
			return rec, true
		}
	}
	return biff.Record{}, false
}

// Item finds an item by name, ignoring case.
func (t *Table) Item(name string) *ItemRecord {
	return t.itemsByName[lowerName(name)]
}

// Image finds an image by name, ignoring case.
func (t *Table) Image(name string) *Image {
	if name == "" {
		return nil
	}
	return t.imagesByName[lowerName(name)]
}

// Material finds a material by name, ignoring case.
func (t *Table) Material(name string) *Material {
	if name == "" {
		return nil
	}
	return t.materialsByName[lowerName(name)]
}

// Parse parses a table file.
func Parse(data []byte, opts ParseOptions) (*Table, error) {
	st, err := cfb.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedContainer, err)
	}
	return ParseStorage(st, opts)
}

// ParseFile parses a table file from disk.
func ParseFile(path string, opts ParseOptions) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return Parse(data, opts)
}

// ParseStorage parses the streams of an opened compound file.
func ParseStorage(st *cfb.Storage, opts ParseOptions) (*Table, error) {
	t := &Table{Info: make(map[string]string)}
	warn := func(err error) { t.Warnings = append(t.Warnings, err) }

	data, err := st.Read(streamGameData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedContainer, err)
	}
	if err := t.parseGameData(data); err != nil {
		return nil, fmt.Errorf("%w: game data: %w", ErrMalformedContainer, err)
	}

	if data, err := st.Read(streamVersion); err == nil && len(data) >= 4 {
		t.Version = int32(binary.LittleEndian.Uint32(data))
	}
	t.parseInfo(st)

	if t.Materials, err = parseMaterials(t.GameData.Materials, int(t.GameData.NumMaterials)); err != nil {
		return nil, err
	}

	for i := 0; i < int(t.GameData.NumItems); i++ {
		path := fmt.Sprintf(streamItem, i)
		data, err := st.Read(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedContainer, err)
		}
		item, err := parseItem(i, data)
		if errors.Is(err, ErrUnsupportedItemType) || errors.Is(err, ErrMalformedItem) {
			warn(err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedContainer, path, err)
		}
		t.Items = append(t.Items, item)
	}

	for i := 0; i < int(t.GameData.NumImages); i++ {
		path := fmt.Sprintf(streamImage, i)
		data, err := st.Read(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedContainer, err)
		}
		img, err := parseImage(data, opts, warn)
		if err != nil {
			if errors.Is(err, ErrMalformedContainer) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedContainer, path, err)
		}
		t.Images = append(t.Images, img)
	}

	t.reindex()
	return t, nil
}

// NewTable assembles a table from decoded parts.
func NewTable(gd GameData, items []*ItemRecord, images []*Image, materials []Material) *Table {
	t := &Table{
		Info:      make(map[string]string),
		GameData:  gd,
		Items:     items,
		Images:    images,
		Materials: materials,
	}
	t.reindex()
	return t
}

// reindex rebuilds the name lookups. The first of several equally named
// entries wins.
func (t *Table) reindex() {
	t.itemsByName = make(map[string]*ItemRecord, len(t.Items))
	for _, item := range t.Items {
		if _, dup := t.itemsByName[lowerName(item.Name)]; !dup {
			t.itemsByName[lowerName(item.Name)] = item
		}
	}
	t.imagesByName = make(map[string]*Image, len(t.Images))
	for _, img := range t.Images {
		if _, dup := t.imagesByName[lowerName(img.Name)]; !dup {
			t.imagesByName[lowerName(img.Name)] = img
		}
	}
	t.materialsByName = make(map[string]*Material, len(t.Materials))
	for i := range t.Materials {
		m := &t.Materials[i]
		if _, dup := t.materialsByName[lowerName(m.Name)]; !dup {
			t.materialsByName[lowerName(m.Name)] = m
		}
	}
}

func (t *Table) parseGameData(data []byte) error {
	var f fieldReader
	gd := &t.GameData
	gd.Inclination = DefaultInclination
	gd.FOV = DefaultFOV

	required := map[string]bool{"LEFT": false, "TOPX": false, "RGHT": false, "BOTM": false}

	r := biff.NewReader(data)
	err := r.Walk(func(rec biff.Record) error {
		if _, ok := required[rec.Tag]; ok {
			required[rec.Tag] = true
		}
		switch rec.Tag {
		case "LEFT":
			f.f32(rec, &gd.Left)
		case "TOPX":
			f.f32(rec, &gd.Top)
		case "RGHT":
			f.f32(rec, &gd.Right)
		case "BOTM":
			f.f32(rec, &gd.Bottom)
		case "INCL":
			f.f32(rec, &gd.Inclination)
		case "FOVX":
			f.f32(rec, &gd.FOV)
		case "LAYB":
			f.f32(rec, &gd.Layback)
		case "ROTA":
			f.f32(rec, &gd.Rotation)
		case "IMAG":
			f.str(rec, &gd.Image)
		case "PLMA":
			f.str(rec, &gd.PlayfieldMaterial)
		case "NAME":
			f.wide(rec, &gd.Name)
		case "SEDT":
			f.i32(rec, &gd.NumItems)
		case "SSND":
			f.i32(rec, &gd.NumSounds)
		case "SIMG":
			f.i32(rec, &gd.NumImages)
		case "SFNT":
			f.i32(rec, &gd.NumFonts)
		case "SCOL":
			f.i32(rec, &gd.NumCollects)
		case "MASI":
			f.i32(rec, &gd.NumMaterials)
		case "MATE":
			gd.Materials = rec.Data
		case "CODE":
			// the script follows the tag unframed: int32 length, then text
			if len(rec.Data) == 0 {
				n, err := r.Uint32()
				if err != nil {
					return err
				}
				script := r.Rest()
				if int(n) > len(script) {
					return fmt.Errorf("%w: script of %d bytes", biff.ErrTruncated, n)
				}
				gd.Script = encoding.ANSIToUTF8(script[:n])
				if err := r.Skip(int(n)); err != nil {
					return err
				}
			}
		}
		t.Chunks = append(t.Chunks, rec)
		return f.err
	})
	if err != nil {
		return err
	}

	var missing []string
	for _, tag := range []string{"LEFT", "TOPX", "RGHT", "BOTM"} {
		if !required[tag] {
			missing = append(missing, tag)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing playfield dimensions %s", strings.Join(missing, ", "))
	}
	return nil
}

// parseInfo reads the UTF-16 strings of the TableInfo storage.
func (t *Table) parseInfo(st *cfb.Storage) {
	prefix := storageInfo + "/"
	for _, path := range st.List() {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		data, err := st.Read(path)
		if err != nil {
			continue
		}
		t.Info[strings.TrimPrefix(path, prefix)] = encoding.UTF16ToUTF8(data)
	}
}
