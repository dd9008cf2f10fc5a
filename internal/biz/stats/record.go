package stats

import (
	"time"
)

// Record 一张按写入顺序保留字段的事件台账。
// 数值累加保持最小够用的位宽, 与历史落库数据的列类型兼容。
type Record struct {
	fields []string
	data   map[string]any
}

func NewRecord() *Record {
	return &Record{data: make(map[string]any)}
}

// Set overwrites the field. Durations and instants are normalized to plain
// seconds before storage.
func (r *Record) Set(field string, v any) {
	if _, ok := r.data[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.data[field] = normalize(v)
}

// Add combines the value with whatever the field already holds. Numbers are
// added width-preservingly, strings are concatenated, everything else
// overwrites.
func (r *Record) Add(field string, v any) {
	v = normalize(v)
	old, ok := r.data[field]
	if !ok {
		r.Set(field, v)
		return
	}
	switch x := v.(type) {
	case string:
		if s, ok := old.(string); ok {
			r.data[field] = s + x
			return
		}
	default:
		if sum, ok := addNumbers(old, v); ok {
			r.data[field] = sum
			return
		}
	}
	r.data[field] = v
}

func (r *Record) Get(field string) (any, bool) {
	v, ok := r.data[field]
	return v, ok
}

// Float returns the field as float64 if it holds any numeric type.
func (r *Record) Float(field string) (float64, bool) {
	v, ok := r.data[field]
	if !ok {
		return 0, false
	}
	f, _, ok := widen(v)
	return f, ok
}

// Fields returns field names in first-write order.
func (r *Record) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

func (r *Record) Len() int { return len(r.fields) }

func normalize(v any) any {
	switch x := v.(type) {
	case time.Duration:
		return int64(x / time.Second)
	case time.Time:
		return x.Unix()
	default:
		return v
	}
}

// rank of each numeric width, widest wins
const (
	rankInt8 = iota
	rankInt16
	rankInt32
	rankInt64
	rankFloat32
	rankFloat64
)

func widen(v any) (f float64, rank int, ok bool) {
	switch x := v.(type) {
	case float64:
		return x, rankFloat64, true
	case float32:
		return float64(x), rankFloat32, true
	case int64:
		return float64(x), rankInt64, true
	case int:
		return float64(x), rankInt64, true
	case int32:
		return float64(x), rankInt32, true
	case int16:
		return float64(x), rankInt16, true
	case int8:
		return float64(x), rankInt8, true
	default:
		return 0, 0, false
	}
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	default:
		return 0
	}
}

// addNumbers 两数相加, 结果位宽取两操作数中较宽者
func addNumbers(a, b any) (any, bool) {
	fa, ra, ok := widen(a)
	if !ok {
		return nil, false
	}
	fb, rb, ok := widen(b)
	if !ok {
		return nil, false
	}
	rank := ra
	if rb > rank {
		rank = rb
	}
	switch rank {
	case rankFloat64:
		return fa + fb, true
	case rankFloat32:
		return float32(fa) + float32(fb), true
	case rankInt64:
		return asInt64(a) + asInt64(b), true
	case rankInt32:
		return int32(asInt64(a) + asInt64(b)), true
	case rankInt16:
		return int16(asInt64(a) + asInt64(b)), true
	default:
		return int8(asInt64(a) + asInt64(b)), true
	}
}
