package formats

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/vpdb/server-sub007/pkg/biff"
	"github.com/vpdb/server-sub007/pkg/cfb"
)

func TestParseStorage_GameData(t *testing.T) {
	b := newTableBuilder(1111, 2222)
	b.gameData.
		Float32("INCL", 6).
		Float32("FOVX", 38).
		String("IMAG", "Playfield").
		String("PLMA", "Wood").
		WideString("NAME", "Table1").
		Record("ZZZZ", []byte{1, 2, 3})
	b.streams["GameStg/Version"] = binary.LittleEndian.AppendUint32(nil, 1080)
	b.streams["TableInfo/TableName"] = utf16("Medieval Madness")
	b.streams["TableInfo/AuthorName"] = utf16("Someone")

	table, err := b.parse(ParseOptions{})
	if err != nil {
		t.Fatalf("ParseStorage: %v", err)
	}

	gd := table.GameData
	if table.Width() != 1111 || table.Height() != 2222 {
		t.Errorf("size = %vx%v, want 1111x2222", table.Width(), table.Height())
	}
	if gd.Inclination != 6 || gd.FOV != 38 {
		t.Errorf("camera = %v/%v, want 6/38", gd.Inclination, gd.FOV)
	}
	if gd.Image != "Playfield" || gd.PlayfieldMaterial != "Wood" || gd.Name != "Table1" {
		t.Errorf("strings = %q %q %q", gd.Image, gd.PlayfieldMaterial, gd.Name)
	}
	if table.Version != 1080 {
		t.Errorf("Version = %d, want 1080", table.Version)
	}
	if table.Info["TableName"] != "Medieval Madness" || table.Info["AuthorName"] != "Someone" {
		t.Errorf("Info = %v", table.Info)
	}

	// unknown records are kept in order
	rec, ok := table.Chunk("ZZZZ")
	if !ok || len(rec.Data) != 3 {
		t.Errorf("Chunk(ZZZZ) = %v, %v", rec, ok)
	}
	if table.Chunks[0].Tag != "LEFT" {
		t.Errorf("first chunk = %s, want LEFT", table.Chunks[0].Tag)
	}
}

func TestParseStorage_Defaults(t *testing.T) {
	table, err := newTableBuilder(100, 200).parse(ParseOptions{})
	if err != nil {
		t.Fatalf("ParseStorage: %v", err)
	}
	if table.GameData.Inclination != DefaultInclination || table.GameData.FOV != DefaultFOV {
		t.Errorf("camera defaults = %v/%v", table.GameData.Inclination, table.GameData.FOV)
	}
	if len(table.Items) != 0 || len(table.Images) != 0 || len(table.Warnings) != 0 {
		t.Errorf("unexpected content: %d items, %d images, %v", len(table.Items), len(table.Images), table.Warnings)
	}
}

func TestParseStorage_MissingDimensions(t *testing.T) {
	for _, drop := range []string{"LEFT", "TOPX", "RGHT", "BOTM"} {
		t.Run(drop, func(t *testing.T) {
			w := biff.NewWriter()
			for _, tag := range []string{"LEFT", "TOPX", "RGHT", "BOTM"} {
				if tag != drop {
					w.Float32(tag, 10)
				}
			}
			st := cfb.NewMemStorage(map[string][]byte{"GameStg/GameData": w.End().Data()})
			_, err := ParseStorage(st, ParseOptions{})
			if !errors.Is(err, ErrMalformedContainer) {
				t.Errorf("err = %v, want ErrMalformedContainer", err)
			}
		})
	}
}

func TestParseStorage_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		streams map[string][]byte
	}{
		{"no game data", map[string][]byte{"GameStg/Version": {0, 0, 0, 0}}},
		{"truncated game data", map[string][]byte{"GameStg/GameData": {12, 0, 0, 0, 'L', 'E'}}},
		{"missing item stream", map[string][]byte{
			"GameStg/GameData": biff.NewWriter().
				Float32("LEFT", 0).Float32("TOPX", 0).Float32("RGHT", 1).Float32("BOTM", 1).
				Int32("SEDT", 1).End().Data(),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStorage(cfb.NewMemStorage(tt.streams), ParseOptions{})
			if !errors.Is(err, ErrMalformedContainer) {
				t.Errorf("err = %v, want ErrMalformedContainer", err)
			}
		})
	}
}

func TestParse_NotCompoundFile(t *testing.T) {
	_, err := Parse([]byte("definitely not a table"), ParseOptions{})
	if !errors.Is(err, ErrMalformedContainer) {
		t.Errorf("err = %v, want ErrMalformedContainer", err)
	}
}

func TestParseStorage_Script(t *testing.T) {
	script := "Option Explicit\r\n"
	b := newTableBuilder(10, 10)
	b.gameData.Tag("CODE").
		Uint32Value(uint32(len(script))).
		Raw([]byte(script)).
		Float32("LAYB", 3)

	table, err := b.parse(ParseOptions{})
	if err != nil {
		t.Fatalf("ParseStorage: %v", err)
	}
	if table.GameData.Script != script {
		t.Errorf("Script = %q, want %q", table.GameData.Script, script)
	}
	if table.GameData.Layback != 3 {
		t.Errorf("record after script: Layback = %v, want 3", table.GameData.Layback)
	}
}

func TestParseStorage_UnsupportedItem(t *testing.T) {
	b := newTableBuilder(10, 10).
		item(KindTimer, "Timer1", nil).
		item(ItemKind(99), "Mystery", nil).
		item(KindGate, "Gate1", nil)

	table, err := b.parse(ParseOptions{})
	if err != nil {
		t.Fatalf("ParseStorage: %v", err)
	}
	if len(table.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(table.Items))
	}
	if table.Items[0].Name != "Timer1" || table.Items[1].Name != "Gate1" {
		t.Errorf("items = %q, %q", table.Items[0].Name, table.Items[1].Name)
	}
	if table.Items[1].Index != 2 {
		t.Errorf("Gate1 index = %d, want 2", table.Items[1].Index)
	}
	if len(table.Warnings) != 1 || !errors.Is(table.Warnings[0], ErrUnsupportedItemType) {
		t.Errorf("Warnings = %v, want one ErrUnsupportedItemType", table.Warnings)
	}
	if g, ok := table.Item("gate1").Data.(*Generic); !ok || g.Kind() != KindGate {
		t.Errorf("Item(gate1).Data = %#v", table.Item("gate1").Data)
	}
}
