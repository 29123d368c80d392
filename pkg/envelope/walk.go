package envelope

import (
	"errors"
	"strconv"
	"strings"
)

var ErrMaxDepth = errors.New("maximum nesting depth exceeded")

type segment struct {
	key     string
	index   int
	isIndex bool
}

// Path locates a leaf inside a section.
type Path struct {
	segs []segment
}

func (p Path) Key(key string) Path {
	segs := make([]segment, len(p.segs)+1)
	copy(segs, p.segs)
	segs[len(p.segs)] = segment{key: key}
	return Path{segs: segs}
}

func (p Path) Index(i int) Path {
	segs := make([]segment, len(p.segs)+1)
	copy(segs, p.segs)
	segs[len(p.segs)] = segment{index: i, isIndex: true}
	return Path{segs: segs}
}

// Field returns the nearest enclosing object key. Array elements resolve to
// the key holding the array.
func (p Path) Field() string {
	for i := len(p.segs) - 1; i >= 0; i-- {
		if !p.segs[i].isIndex {
			return p.segs[i].key
		}
	}
	return ""
}

// Depth is the number of segments from the section root.
func (p Path) Depth() int {
	return len(p.segs)
}

func (p Path) String() string {
	var sb strings.Builder
	for i, s := range p.segs {
		if s.isIndex {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(s.index))
			sb.WriteByte(']')
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(s.key)
	}
	return sb.String()
}

// StringFunc returns the replacement for a string leaf.
type StringFunc func(path Path, s string) string

// TransformStrings returns a copy of v where every string leaf was replaced
// by fn. Containers nested deeper than maxDepth yield ErrMaxDepth; the root
// container counts as depth 1. A maxDepth <= 0 disables the bound.
func TransformStrings(v Value, maxDepth int, fn StringFunc) (Value, error) {
	return transform(v, Path{}, 0, maxDepth, fn)
}

func transform(v Value, path Path, depth, maxDepth int, fn StringFunc) (Value, error) {
	switch v.kind {
	case KindString:
		return NewString(fn(path, v.text)), nil
	case KindObject:
		if maxDepth > 0 && depth >= maxDepth {
			return Value{}, ErrMaxDepth
		}
		out := make([]Member, len(v.members))
		for i, m := range v.members {
			nv, err := transform(m.Value, path.Key(m.Key), depth+1, maxDepth, fn)
			if err != nil {
				return Value{}, err
			}
			out[i] = Member{Key: m.Key, Value: nv}
		}
		return Value{kind: KindObject, members: out}, nil
	case KindArray:
		if maxDepth > 0 && depth >= maxDepth {
			return Value{}, ErrMaxDepth
		}
		out := make([]Value, len(v.items))
		for i, item := range v.items {
			nv, err := transform(item, path.Index(i), depth+1, maxDepth, fn)
			if err != nil {
				return Value{}, err
			}
			out[i] = nv
		}
		return Value{kind: KindArray, items: out}, nil
	default:
		return v, nil
	}
}

// WalkStrings calls fn for every string leaf in document order and stops at
// the first error returned by fn.
func WalkStrings(v Value, maxDepth int, fn func(path Path, s string) error) error {
	return walk(v, Path{}, 0, maxDepth, fn)
}

func walk(v Value, path Path, depth, maxDepth int, fn func(path Path, s string) error) error {
	switch v.kind {
	case KindString:
		return fn(path, v.text)
	case KindObject:
		if maxDepth > 0 && depth >= maxDepth {
			return ErrMaxDepth
		}
		for _, m := range v.members {
			if err := walk(m.Value, path.Key(m.Key), depth+1, maxDepth, fn); err != nil {
				return err
			}
		}
	case KindArray:
		if maxDepth > 0 && depth >= maxDepth {
			return ErrMaxDepth
		}
		for i, item := range v.items {
			if err := walk(item, path.Index(i), depth+1, maxDepth, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
