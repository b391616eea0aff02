package cfb

import (
	"errors"
	"testing"
)

func TestMemStorage(t *testing.T) {
	st := NewMemStorage(map[string][]byte{
		"GameStg/GameData":     {1, 2, 3},
		"GameStg\\GameItem0":   {4},
		"/TableInfo/TableName": {5, 6},
	})

	wantList := []string{"GameStg/GameData", "GameStg/GameItem0", "TableInfo/TableName"}
	got := st.List()
	if len(got) != len(wantList) {
		t.Fatalf("List() = %v, want %v", got, wantList)
	}
	for i := range wantList {
		if got[i] != wantList[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], wantList[i])
		}
	}

	tests := []struct {
		path string
		want int
	}{
		{"GameStg/GameData", 3},
		{"gamestg/gamedata", 3},
		{"GameStg\\GameItem0", 1},
		{"TableInfo/TableName", 2},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if !st.Contains(tt.path) {
				t.Fatalf("Contains(%q) = false", tt.path)
			}
			data, err := st.Read(tt.path)
			if err != nil {
				t.Fatalf("Read(%q): %v", tt.path, err)
			}
			if len(data) != tt.want {
				t.Errorf("len = %d, want %d", len(data), tt.want)
			}
		})
	}
}

func TestReadMissing(t *testing.T) {
	st := NewMemStorage(nil)
	if st.Contains("GameStg/Version") {
		t.Error("empty storage contains a stream")
	}
	if _, err := st.Read("GameStg/Version"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestOpenInvalid(t *testing.T) {
	if _, err := Open([]byte("not a compound file at all")); !errors.Is(err, ErrInvalidFile) {
		t.Errorf("err = %v, want ErrInvalidFile", err)
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		parents []string
		name    string
		want    string
	}{
		{nil, "Version", "Version"},
		{[]string{"GameStg"}, "GameData", "GameStg/GameData"},
		{[]string{"Root Entry", "GameStg"}, "Image0", "GameStg/Image0"},
	}
	for _, tt := range tests {
		if got := joinPath(tt.parents, tt.name); got != tt.want {
			t.Errorf("joinPath(%v, %q) = %q, want %q", tt.parents, tt.name, got, tt.want)
		}
	}
}
