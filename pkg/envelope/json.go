package envelope

import (
	"errors"
	"fmt"

	"github.com/valyala/fastjson"
)

var parserPool fastjson.ParserPool

// ErrDuplicateKey is returned for a JSON object that names the same member
// twice. Such a document has no single meaning.
var ErrDuplicateKey = errors.New("duplicate object key")

// ParseJSON decodes a JSON document into a Value. Member order is preserved.
func ParseJSON(data []byte) (Value, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	jv, err := p.ParseBytes(data)
	if err != nil {
		return Value{}, fmt.Errorf("invalid json: %w", err)
	}
	return fromFastJSON(jv)
}

func fromFastJSON(jv *fastjson.Value) (Value, error) {
	switch jv.Type() {
	case fastjson.TypeObject:
		o, _ := jv.Object()
		members := make([]Member, 0, o.Len())
		seen := make(map[string]struct{}, o.Len())
		var err error
		o.Visit(func(key []byte, v *fastjson.Value) {
			if err != nil {
				return
			}
			k := string(key)
			if _, dup := seen[k]; dup {
				err = fmt.Errorf("%w: %q", ErrDuplicateKey, k)
				return
			}
			seen[k] = struct{}{}
			var member Value
			if member, err = fromFastJSON(v); err == nil {
				members = append(members, Member{Key: k, Value: member})
			}
		})
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindObject, members: members}, nil
	case fastjson.TypeArray:
		arr, _ := jv.Array()
		items := make([]Value, len(arr))
		for i, item := range arr {
			v, err := fromFastJSON(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{kind: KindArray, items: items}, nil
	case fastjson.TypeString:
		b, _ := jv.StringBytes()
		return NewString(string(b)), nil
	case fastjson.TypeNumber:
		return NewNumber(jv.String()), nil
	case fastjson.TypeTrue:
		return NewBool(true), nil
	case fastjson.TypeFalse:
		return NewBool(false), nil
	default:
		return Null(), nil
	}
}

// AppendJSON appends the JSON encoding of v to dst.
func (v Value) AppendJSON(dst []byte) []byte {
	var a fastjson.Arena
	return v.toFastJSON(&a).MarshalTo(dst)
}

func (v Value) MarshalJSON() ([]byte, error) {
	return v.AppendJSON(nil), nil
}

func (v Value) toFastJSON(a *fastjson.Arena) *fastjson.Value {
	switch v.kind {
	case KindString:
		return a.NewString(v.text)
	case KindNumber:
		return a.NewNumberString(v.text)
	case KindBool:
		if v.flag {
			return a.NewTrue()
		}
		return a.NewFalse()
	case KindObject:
		o := a.NewObject()
		for _, m := range v.members {
			o.Set(m.Key, m.Value.toFastJSON(a))
		}
		return o
	case KindArray:
		arr := a.NewArray()
		for i, item := range v.items {
			arr.SetArrayItem(i, item.toFastJSON(a))
		}
		return arr
	default:
		return a.NewNull()
	}
}
