package syncgroup

import (
	"sync/atomic"
	"testing"
)

func TestRunWait(t *testing.T) {
	g := NewSyncGroup()
	var n int64
	for i := 0; i < 5; i++ {
		g.Add(func() { atomic.AddInt64(&n, 1) })
	}
	g.Add(nil) // nil 函数被忽略
	g.Run()
	g.Wait()
	if n != 5 {
		t.Fatalf("执行次数 got=%d want=5", n)
	}
}

func TestRunClearsPending(t *testing.T) {
	g := NewSyncGroup()
	var n int64
	g.Add(func() { atomic.AddInt64(&n, 1) })
	g.Run()
	g.Wait()
	// 再次 Run 不应重复执行已启动过的函数
	g.Run()
	g.Wait()
	if n != 1 {
		t.Fatalf("重复执行: %d", n)
	}
}
