package model

// Decorator adjusts a template copy right before it is rendered, for example
// to apply theme defaults. Decorators never see the stored template.
type Decorator interface {
	Decorate(*Template) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*Template) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(tmpl *Template) error {
	return fn(tmpl)
}
