package player

import (
	"sync"
)

// Manager 玩家注册表。玩家同一时刻至多属于一个对局或一个排队区,
// 占位绑定只允许从这里修改。
type Manager struct {
	players sync.Map // uid -> *Player
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Get(uid int64) *Player {
	if v, ok := m.players.Load(uid); ok {
		return v.(*Player)
	}
	return nil
}

// GetOrCreate returns the registered player, creating it from profile on
// first sight.
func (m *Manager) GetOrCreate(profile *Profile) *Player {
	if p := m.Get(profile.UID); p != nil {
		return p
	}
	p := New(profile)
	actual, _ := m.players.LoadOrStore(profile.UID, p)
	return actual.(*Player)
}

func (m *Manager) Remove(uid int64) {
	m.players.Delete(uid)
}

func (m *Manager) Range(f func(p *Player) bool) {
	m.players.Range(func(_, v any) bool {
		return f(v.(*Player))
	})
}

func (m *Manager) Count() int {
	n := 0
	m.players.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
