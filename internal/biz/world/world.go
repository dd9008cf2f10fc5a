// Package world declares the collaborator contracts toward the surrounding
// virtual world. The real adapters live outside this process; the Nop
// implementations keep the core runnable and testable without them.
package world

import (
	"fmt"
	"strconv"
	"strings"
)

// Point 世界坐标
type Point struct {
	X, Y, Z float64
}

func (p Point) String() string {
	return fmt.Sprintf("x=%.1f,y=%.1f,z=%.1f", p.X, p.Y, p.Z)
}

// ParsePoint parses "x=?,y=?,z=?" metadata. Extra fields are ignored.
func ParsePoint(s string) (Point, error) {
	p := Point{}
	found := 0
	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		v, err := strconv.ParseFloat(kv[1], 64)
		if err != nil {
			return Point{}, fmt.Errorf("parse point %q: %w", s, err)
		}
		switch strings.ToLower(kv[0]) {
		case "x":
			p.X, found = v, found+1
		case "y":
			p.Y, found = v, found+1
		case "z":
			p.Z, found = v, found+1
		}
	}
	if found < 3 {
		return Point{}, fmt.Errorf("parse point %q: missing axis", s)
	}
	return p, nil
}

// Item 背包物品快照的最小表示
type Item struct {
	Kind  string `json:"kind"`
	Count int32  `json:"count"`
}

// Ops 会话运行期间需要的世界操作
type Ops interface {
	Teleport(uid int64, to Point)
	Message(uid int64, text string)
	Broadcast(uids []int64, text string)
	SnapshotInventory(uid int64) []Item
	ClearInventory(uid int64)
	RestoreInventory(uid int64, items []Item)
}

// Placer 结构放置子系统 (开局铺设场地用)
type Placer interface {
	PlaceStructure(blueprint string, origin Point, scale int32) error
	UndoLastPlacement()
}

type nop struct{}

// NewNop returns world operations that do nothing. Used until a real world
// adapter is wired in, and by tests.
func NewNop() Ops { return nop{} }

func (nop) Teleport(int64, Point)          {}
func (nop) Message(int64, string)          {}
func (nop) Broadcast([]int64, string)      {}
func (nop) SnapshotInventory(int64) []Item { return nil }
func (nop) ClearInventory(int64)           {}
func (nop) RestoreInventory(int64, []Item) {}

type nopPlacer struct{}

func NewNopPlacer() Placer { return nopPlacer{} }

func (nopPlacer) PlaceStructure(string, Point, int32) error { return nil }
func (nopPlacer) UndoLastPlacement()                        {}
