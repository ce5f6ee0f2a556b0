package store

import (
	"errors"
	"path/filepath"
	"testing"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSaveLoad(t *testing.T) {
	svc, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open store failed: %v", err)
	}
	defer svc.Close()

	st := svc.NewStore("state", "protocol", "all")
	want := payload{Name: "goratings", Count: 42}
	if err := st.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var got payload
	if err := st.Load(&got); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Fatalf("round trip 不符: got=%+v want=%+v", got, want)
	}
}

func TestLoad_NotExists(t *testing.T) {
	svc, err := OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	var got payload
	if err := svc.NewStore("state", "missing", "all").Load(&got); !errors.Is(err, ErrNotExists) {
		t.Fatalf("缺失键 got=%v want=ErrNotExists", err)
	}
}

func TestKeysAreIsolated(t *testing.T) {
	svc, err := OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	a := svc.NewStore("state", "a", "all")
	b := svc.NewStore("state", "b", "all")
	if err := a.Save(payload{Name: "a"}); err != nil {
		t.Fatal(err)
	}

	var got payload
	if err := b.Load(&got); !errors.Is(err, ErrNotExists) {
		t.Fatalf("不同 id 的键串了: %v", err)
	}
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")

	svc, err := Open(dir)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := svc.NewStore("state", "protocol", "all").Save(payload{Name: "persisted", Count: 7}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Close(); err != nil {
		t.Fatal(err)
	}

	svc2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer svc2.Close()

	var got payload
	if err := svc2.NewStore("state", "protocol", "all").Load(&got); err != nil {
		t.Fatalf("reopen Load failed: %v", err)
	}
	if got.Name != "persisted" || got.Count != 7 {
		t.Fatalf("重开后数据不符: %+v", got)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("空路径应报错")
	}
}
