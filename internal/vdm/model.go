// Package vdm holds the resolved virtual data model: every schema element
// paired with the final identifiers the emitter writes.
package vdm

// Model is the fully named service.
type Model struct {
	ServiceID    string
	ServiceClass string
	Package      string
	Format       string
	Entities     []Entity
	Operations   []Operation
}

// Entity is a generated entity class with its fluent helper.
type Entity struct {
	Source            string
	Label             string
	ClassName         string
	FluentHelperClass string
	// CollectionMethod and ByKeyMethod are service class methods reading the entity.
	CollectionMethod string
	ByKeyMethod      string
	Properties       []Property
	Navigations      []Navigation
}

// Keys returns the key properties in declaration order.
func (e Entity) Keys() []Property {
	var keys []Property
	for _, p := range e.Properties {
		if p.Key {
			keys = append(keys, p)
		}
	}
	return keys
}

// Property is a generated field with its constant and builder method.
type Property struct {
	Source        string
	Label         string
	Field         string
	Constant      string
	BuilderMethod string
	JavaType      string
	Key           bool
	Nullable      bool
}

// Navigation is a generated link to another entity class.
type Navigation struct {
	Source   string
	Field    string
	Constant string
	Method   string
	Target   string
	Many     bool
}

// Operation is a generated service method with every overload to emit.
type Operation struct {
	Source     string
	Label      string
	Method     string
	HTTPMethod string
	ReturnType string
	Parameters []Parameter
	Overloads  [][]Parameter
}

// Parameter is a generated method parameter.
type Parameter struct {
	Source   string
	Name     string
	JavaType string
	Nullable bool
}
