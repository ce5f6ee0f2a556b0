package market

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/immutable-ratings/goratings/internal/protocol"
)

var testRegistryAddr = common.HexToAddress("0x00000000000000000000000000000000000000A1")

func TestNewRegistry_ZeroAddress(t *testing.T) {
	if _, err := NewRegistry(common.Address{}); !errors.Is(err, protocol.ErrZeroAddress) {
		t.Fatalf("零地址应拒绝, got=%v", err)
	}
}

func TestDeriveAddress_Deterministic(t *testing.T) {
	r, err := NewRegistry(testRegistryAddr)
	if err != nil {
		t.Fatal(err)
	}

	url := "https://example.com"
	a := r.DeriveAddress(url)
	b := r.DeriveAddress(url)
	if a != b {
		t.Fatalf("同一 URL 推导地址不一致: %s vs %s", a.Hex(), b.Hex())
	}
	if a == (common.Address{}) {
		t.Fatal("推导地址不应为零地址")
	}
	if r.DeriveAddress("https://example.org") == a {
		t.Fatal("不同 URL 不应推导出相同地址")
	}
}

func TestDeriveAddress_DependsOnRegistryIdentity(t *testing.T) {
	r1, _ := NewRegistry(testRegistryAddr)
	r2, _ := NewRegistry(common.HexToAddress("0x00000000000000000000000000000000000000A2"))
	if r1.DeriveAddress("https://example.com") == r2.DeriveAddress("https://example.com") {
		t.Fatal("不同 registry 身份应得到不同市场地址")
	}
}

func TestCreate_StableBeforeAndAfter(t *testing.T) {
	r, _ := NewRegistry(testRegistryAddr)
	url := "https://example.com/page"

	// 创建前即可查询，创建后地址不变
	preview := r.DeriveAddress(url)
	if r.Exists(url) {
		t.Fatal("未创建的市场不应存在")
	}
	created, err := r.Create(url)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created != preview {
		t.Fatalf("创建后地址变化: preview=%s created=%s", preview.Hex(), created.Hex())
	}
	if !r.Exists(url) {
		t.Fatal("创建后 Exists 应为 true")
	}
}

func TestCreate_Errors(t *testing.T) {
	r, _ := NewRegistry(testRegistryAddr)
	if _, err := r.Create(""); !errors.Is(err, protocol.ErrEmptyURL) {
		t.Fatalf("空 URL got=%v", err)
	}
	if _, err := r.Create("https://example.com"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Create("https://example.com"); !errors.Is(err, protocol.ErrMarketAlreadyExists) {
		t.Fatalf("重复创建 got=%v", err)
	}
}

func TestEnsure_Idempotent(t *testing.T) {
	r, _ := NewRegistry(testRegistryAddr)
	url := "https://example.com"

	addr1, created, err := r.Ensure(url)
	if err != nil || !created {
		t.Fatalf("首次 Ensure 应创建: created=%v err=%v", created, err)
	}
	addr2, created, err := r.Ensure(url)
	if err != nil || created {
		t.Fatalf("二次 Ensure 不应再创建: created=%v err=%v", created, err)
	}
	if addr1 != addr2 {
		t.Fatalf("Ensure 返回地址不稳定: %s vs %s", addr1.Hex(), addr2.Hex())
	}
	if _, _, err := r.Ensure(""); !errors.Is(err, protocol.ErrEmptyURL) {
		t.Fatalf("空 URL got=%v", err)
	}
	if r.Count() != 1 {
		t.Fatalf("Count got=%d want=1", r.Count())
	}
}

func TestSnapshotRestore(t *testing.T) {
	r, _ := NewRegistry(testRegistryAddr)
	for i := 0; i < 5; i++ {
		if _, err := r.Create(fmt.Sprintf("https://example.com/%d", i)); err != nil {
			t.Fatal(err)
		}
	}

	snap := r.Snapshot()
	restored, _ := NewRegistry(testRegistryAddr)
	restored.Restore(snap)

	if restored.Count() != r.Count() {
		t.Fatalf("恢复后数量不符: got=%d want=%d", restored.Count(), r.Count())
	}
	for url, addr := range snap {
		if !restored.Exists(url) {
			t.Fatalf("恢复后缺少市场 %s", url)
		}
		if restored.DeriveAddress(url) != addr {
			t.Fatalf("恢复后地址不符 %s", url)
		}
	}
}
