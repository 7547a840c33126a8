// Package wire implements the JSON compatible tree exchanged at the system boundary.
//
// A tree is built from Null, Bool, Number, String, Array and *Object nodes. Numbers keep
// their literal text so 64-bit integers never round trip through float64, and objects keep
// their member order so that trees render byte for byte reproducibly.
package wire

// Kind identifies a node of the tree.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a node of the tree.
type Value interface {
	Kind() Kind
}

type (
	// Null is the JSON null literal.
	Null struct{}
	// Bool is a JSON boolean.
	Bool bool
	// Number is a JSON number kept as its literal text.
	Number string
	// String is a JSON string.
	String string
	// Array is an ordered JSON array.
	Array []Value
)

func (Null) Kind() Kind { return KindNull }
func (Bool) Kind() Kind { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (Array) Kind() Kind { return KindArray }

// Member is a single key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Object is a JSON object which remembers member order.
type Object struct {
	members []Member
	index   map[string]int
}

// NewObject creates an object with the given members in order.
// A repeated key replaces the earlier value in place.
func NewObject(members ...Member) *Object {
	obj := &Object{
		members: make([]Member, 0, len(members)),
		index:   make(map[string]int, len(members)),
	}
	for _, m := range members {
		obj.Set(m.Key, m.Value)
	}
	return obj
}

func (*Object) Kind() Kind { return KindObject }

// Set appends key or replaces its value while keeping its position.
func (o *Object) Set(key string, value Value) {
	if o.index == nil {
		o.index = map[string]int{}
	}
	if i, ok := o.index[key]; ok {
		o.members[i].Value = value
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: value})
}

// Get returns the value of key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.members[i].Value, true
}

// Has returns true if key exists.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Keys returns member keys in order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.Key
	}
	return keys
}

// Members returns a copy of the members in order.
func (o *Object) Members() []Member {
	if o == nil {
		return nil
	}
	members := make([]Member, len(o.members))
	copy(members, o.members)
	return members
}

// Equal compares two trees. Object member order is significant.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Number:
		return av == b.(Number)
	case String:
		return av == b.(String)
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv := b.(*Object)
		if av.Len() != bv.Len() {
			return false
		}
		if av.Len() == 0 {
			return true
		}
		for i, m := range av.members {
			other := bv.members[i]
			if m.Key != other.Key || !Equal(m.Value, other.Value) {
				return false
			}
		}
		return true
	}
	return false
}
