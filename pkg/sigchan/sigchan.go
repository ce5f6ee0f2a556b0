package sigchan

// Chan 非阻塞信号 channel：只通知"有事发生"，不携带数据。
// 缓冲满时 Emit 直接丢弃，合并成一次通知。
type Chan struct {
	c chan struct{}
}

// New 创建信号 channel
func New(bufferSize int) *Chan {
	return &Chan{
		c: make(chan struct{}, bufferSize),
	}
}

// Emit 发送信号（非阻塞）
func (c *Chan) Emit() {
	select {
	case c.c <- struct{}{}:
	default:
	}
}

// C 返回内部 channel（用于 select）
func (c *Chan) C() <-chan struct{} {
	return c.c
}
