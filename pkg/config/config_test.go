package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Listen != ":8080" {
		t.Fatalf("listen got=%s", cfg.Server.Listen)
	}
	if cfg.Server.JournalDB != "data/journal.db" || cfg.Store.Path != "data/state" {
		t.Fatalf("路径默认值不符: %+v", cfg)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("日志级别默认值不符: %s", cfg.Log.Level)
	}
}

func TestLoad(t *testing.T) {
	content := `
server:
  listen: ":9090"
  journalDb: /tmp/j.db
store:
  path: /tmp/state
protocol:
  chainId: 84532
  deployer: "0x0000000000000000000000000000000000000a01"
  receiver: "0x0000000000000000000000000000000000000a02"
  maxRatings: 50
log:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Listen != ":9090" || cfg.Server.JournalDB != "/tmp/j.db" {
		t.Fatalf("server 配置不符: %+v", cfg.Server)
	}
	if cfg.Protocol.ChainID != 84532 || cfg.Protocol.MaxRatings != 50 {
		t.Fatalf("protocol 配置不符: %+v", cfg.Protocol)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("日志级别不符: %s", cfg.Log.Level)
	}
	// 未写明的字段仍取默认值
	if cfg.Log.MaxSize != 100 {
		t.Fatalf("MaxSize 默认值不符: %d", cfg.Log.MaxSize)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("缺失文件应报错")
	}
}
