package envelope

import (
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "null"
	}
}

// Member is a single key/value entry of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable request value. Objects keep the order in which
// their members were received. Numbers keep their textual form.
//
// The zero Value is Null.
type Value struct {
	kind    Kind
	text    string
	flag    bool
	members []Member
	items   []Value
}

func Null() Value {
	return Value{}
}

func NewString(s string) Value {
	return Value{kind: KindString, text: s}
}

// NewNumber wraps a numeric literal as received on the wire.
func NewNumber(literal string) Value {
	return Value{kind: KindNumber, text: literal}
}

func NewInt(n int64) Value {
	return Value{kind: KindNumber, text: strconv.FormatInt(n, 10)}
}

func NewBool(b bool) Value {
	return Value{kind: KindBool, flag: b}
}

func NewObject(members ...Member) Value {
	cp := make([]Member, len(members))
	copy(cp, members)
	return Value{kind: KindObject, members: cp}
}

func NewArray(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, items: cp}
}

// EmptyObject returns an object without members.
func EmptyObject() Value {
	return Value{kind: KindObject}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.text, true
}

// AsNumber returns the numeric literal.
func (v Value) AsNumber() (string, bool) {
	if v.kind != KindNumber {
		return "", false
	}
	return v.text, true
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.flag, true
}

// Members returns a copy of the object members, or nil for non objects.
func (v Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}
	cp := make([]Member, len(v.members))
	copy(cp, v.members)
	return cp
}

// Items returns a copy of the array items, or nil for non arrays.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	cp := make([]Value, len(v.items))
	copy(cp, v.items)
	return cp
}

// Len reports the number of members or items of a container.
func (v Value) Len() int {
	switch v.kind {
	case KindObject:
		return len(v.members)
	case KindArray:
		return len(v.items)
	default:
		return 0
	}
}

// Get returns the first member stored under key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Set returns a copy of the object where every member named key holds val.
// When the key is absent the member is appended.
func (v Value) Set(key string, val Value) Value {
	if v.kind != KindObject {
		return v
	}
	out := make([]Member, len(v.members), len(v.members)+1)
	copy(out, v.members)
	found := false
	for i := range out {
		if out[i].Key == key {
			out[i].Value = val
			found = true
		}
	}
	if !found {
		out = append(out, Member{Key: key, Value: val})
	}
	return Value{kind: KindObject, members: out}
}

// Text renders a scalar the way it is written into a query string or a
// path segment. Containers render as JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindString, KindNumber:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindNull:
		return "null"
	default:
		return string(v.AppendJSON(nil))
	}
}

// Equal reports deep equality, including member order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString, KindNumber:
		return v.text == o.text
	case KindBool:
		return v.flag == o.flag
	case KindObject:
		if len(v.members) != len(o.members) {
			return false
		}
		for i := range v.members {
			if v.members[i].Key != o.members[i].Key || !v.members[i].Value.Equal(o.members[i].Value) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	}
	return false
}
