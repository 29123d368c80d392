package envelope

// Pair is one key/value entry of a query string or url-encoded form.
type Pair struct {
	Key   string
	Value string
}

// FromPairs builds an object from ordered pairs. Repeated keys collapse into
// an array holding every value in arrival order.
func FromPairs(pairs []Pair) Value {
	index := make(map[string]int, len(pairs))
	members := make([]Member, 0, len(pairs))
	for _, p := range pairs {
		i, ok := index[p.Key]
		if !ok {
			index[p.Key] = len(members)
			members = append(members, Member{Key: p.Key, Value: NewString(p.Value)})
			continue
		}
		cur := members[i].Value
		if cur.kind == KindArray {
			members[i].Value = Value{kind: KindArray, items: append(cur.items, NewString(p.Value))}
		} else {
			members[i].Value = Value{kind: KindArray, items: []Value{cur, NewString(p.Value)}}
		}
	}
	return Value{kind: KindObject, members: members}
}

// Pairs flattens an object back into ordered pairs. Arrays expand into one
// pair per item.
func Pairs(v Value) []Pair {
	if v.kind != KindObject {
		return nil
	}
	out := make([]Pair, 0, len(v.members))
	for _, m := range v.members {
		if m.Value.kind == KindArray {
			for _, item := range m.Value.items {
				out = append(out, Pair{Key: m.Key, Value: item.Text()})
			}
			continue
		}
		out = append(out, Pair{Key: m.Key, Value: m.Value.Text()})
	}
	return out
}
