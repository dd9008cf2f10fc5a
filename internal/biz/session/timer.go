package session

import (
	"time"
)

// ticker 每秒推进的循环倒计时。recipients 返回 nil 时自动熄灭,
// remaining 走到零后回绕重新计时。
type ticker struct {
	taskID    int64
	duration  int64 // 秒
	frequency int64 // 播报间隔, 秒
	remaining int64

	message    func(remaining int64) string
	recipients func() []int64
}

// StartTimer 启动 (或重置) 一个具名倒计时。同名倒计时先取消再重挂。
func (s *Session) StartTimer(purpose string, duration, frequency int64, message func(int64) string, recipients func() []int64) {
	if s.closed || duration <= 0 {
		return
	}
	if frequency <= 0 {
		frequency = 1
	}
	s.StopTimer(purpose)

	t := &ticker{
		duration:   duration,
		frequency:  frequency,
		remaining:  duration,
		message:    message,
		recipients: recipients,
	}
	s.tickers[purpose] = t
	t.taskID = s.repo.GetTimer().Forever(time.Second, func() {
		s.repo.GetLoop().Post(func() { s.tick(purpose, t) })
	})
}

// StopTimer 熄灭具名倒计时, 不存在时为空操作
func (s *Session) StopTimer(purpose string) {
	t, ok := s.tickers[purpose]
	if !ok {
		return
	}
	s.repo.GetTimer().Cancel(t.taskID)
	delete(s.tickers, purpose)
}

func (s *Session) stopAllTimers() {
	for purpose, t := range s.tickers {
		s.repo.GetTimer().Cancel(t.taskID)
		delete(s.tickers, purpose)
	}
}

func (s *Session) tick(purpose string, t *ticker) {
	// 取消后仍可能有已投递的滴答在路上
	if cur, ok := s.tickers[purpose]; !ok || cur != t {
		return
	}
	rec := t.recipients()
	if rec == nil {
		s.StopTimer(purpose)
		return
	}
	t.remaining--
	if t.remaining <= 0 {
		s.world.Broadcast(rec, t.message(0))
		t.remaining = t.duration
		return
	}
	if t.remaining%t.frequency == 0 {
		s.world.Broadcast(rec, t.message(t.remaining))
	}
}
