package block

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidShape is returned when a shape declaration is inconsistent.
	ErrInvalidShape = errors.New("invalid shape")
	// ErrDuplicateShape is returned when a (family, tag) pair is registered twice.
	ErrDuplicateShape = errors.New("duplicate shape")
)

// TypeFieldName is the wire name of the discriminator field.
const TypeFieldName = "type"

// Registry maps (family, discriminator) pairs to shapes.
// A registry is immutable once NewRegistry returns and is safe for concurrent use.
type Registry struct {
	shapes map[Family]map[uint8]*Shape
}

// NewRegistry builds a registry from shapes. Every family referenced by a field must
// itself have at least one registered shape.
func NewRegistry(shapes ...*Shape) (*Registry, error) {
	r := &Registry{
		shapes: map[Family]map[uint8]*Shape{},
	}
	for _, shape := range shapes {
		if err := r.register(shape); err != nil {
			return nil, err
		}
	}
	for _, byTag := range r.shapes {
		for _, shape := range byTag {
			if err := r.checkFields(shape.Name, shape.Fields, map[*RecordShape]bool{}); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

func (r *Registry) register(shape *Shape) error {
	if shape == nil {
		return fmt.Errorf("%w: nil shape", ErrInvalidShape)
	}
	if !shape.Family.Valid() {
		return fmt.Errorf("%w: %s has invalid family %d", ErrInvalidShape, shape.Name, shape.Family)
	}
	if shape.Build == nil || shape.Split == nil {
		return fmt.Errorf("%w: %s must declare Build and Split", ErrInvalidShape, shape.Name)
	}
	byTag, ok := r.shapes[shape.Family]
	if !ok {
		byTag = map[uint8]*Shape{}
		r.shapes[shape.Family] = byTag
	}
	if existing, ok := byTag[shape.Tag]; ok {
		return fmt.Errorf("%w: %s and %s both use %s/%d", ErrDuplicateShape, existing.Name, shape.Name, shape.Family, shape.Tag)
	}
	byTag[shape.Tag] = shape
	return nil
}

func (r *Registry) checkFields(owner string, fields []Field, seen map[*RecordShape]bool) error {
	names := map[string]bool{TypeFieldName: true}
	for _, field := range fields {
		if field.Name == "" || names[field.Name] {
			return fmt.Errorf("%w: %s declares field %q twice or reserved", ErrInvalidShape, owner, field.Name)
		}
		names[field.Name] = true
		switch field.Kind {
		case FieldUint:
			if field.Bits != 8 && field.Bits != 16 && field.Bits != 32 && field.Bits != 64 {
				return fmt.Errorf("%w: %s.%s has unsupported width %d", ErrInvalidShape, owner, field.Name, field.Bits)
			}
		case FieldVariant, FieldList:
			if _, ok := r.shapes[field.Family]; !ok {
				return fmt.Errorf("%w: %s.%s references unregistered family %s", ErrInvalidShape, owner, field.Name, field.Family)
			}
		case FieldRecord:
			if field.Record == nil || field.Record.Build == nil || field.Record.Split == nil {
				return fmt.Errorf("%w: %s.%s has incomplete record", ErrInvalidShape, owner, field.Name)
			}
			if seen[field.Record] {
				continue
			}
			seen[field.Record] = true
			if err := r.checkFields(field.Record.Name, field.Record.Fields, seen); err != nil {
				return err
			}
		case FieldUintString, FieldU256, FieldBool, FieldString, FieldHex:
		default:
			return fmt.Errorf("%w: %s.%s has unknown kind %d", ErrInvalidShape, owner, field.Name, field.Kind)
		}
	}
	return nil
}

func (r *Registry) lookup(family Family, tag uint8) (*Shape, bool) {
	shape, ok := r.shapes[family][tag]
	return shape, ok
}

// Lookup returns the shape registered for the pair.
func (r *Registry) Lookup(family Family, tag uint8) (*Shape, error) {
	shape, ok := r.lookup(family, tag)
	if !ok {
		return nil, &DecodeError{
			Kind:   KindUnknownDiscriminator,
			Path:   "$",
			Family: family,
			Tag:    uint64(tag),
			HasTag: true,
			Reason: fmt.Sprintf("no %s variant with type %d", family, tag),
		}
	}
	return shape, nil
}

// Shapes returns the shapes of family ordered by discriminator.
func (r *Registry) Shapes(family Family) []*Shape {
	byTag := r.shapes[family]
	shapes := make([]*Shape, 0, len(byTag))
	for _, shape := range byTag {
		shapes = append(shapes, shape)
	}
	sort.Slice(shapes, func(i, j int) bool {
		return shapes[i].Tag < shapes[j].Tag
	})
	return shapes
}

// Families returns the families with at least one shape.
func (r *Registry) Families() []Family {
	families := []Family{}
	for _, f := range Families() {
		if _, ok := r.shapes[f]; ok {
			families = append(families, f)
		}
	}
	return families
}

var defaultRegistry = buildDefaultRegistry()

func buildDefaultRegistry() *Registry {
	shapes := []*Shape{}
	shapes = append(shapes, addressShapes...)
	shapes = append(shapes, publicKeyShapes...)
	shapes = append(shapes, signatureShapes...)
	shapes = append(shapes, unlockConditionShapes...)
	shapes = append(shapes, featureShapes...)
	shapes = append(shapes, blockIssuerKeyShapes...)
	shapes = append(shapes, tokenSchemeShapes...)
	shapes = append(shapes, outputShapes...)
	shapes = append(shapes, unlockShapes...)
	shapes = append(shapes, contextInputShapes...)
	registry, err := NewRegistry(shapes...)
	if err != nil {
		panic(err)
	}
	return registry
}

// DefaultRegistry returns the registry holding every variant of this package.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
