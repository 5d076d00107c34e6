package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/phitop/internal/dynamo"
)

// Method is an integrator that knows its order of accuracy.
type Method interface {
	dynamo.Integrator
	Order() int
}

var methods = map[string]func() Method{
	"euler": func() Method { return NewEuler() },
	"heun":  func() Method { return NewHeun() },
	"rk4":   func() Method { return NewRK4() },
}

// Lookup returns a fresh integrator registered under name.
func Lookup(name string) (Method, error) {
	fn, ok := methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %v)", dynamo.ErrUnknownIntegrator, name, Names())
	}
	return fn(), nil
}

// Names lists the registered integrators, lowest order first.
func Names() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return methods[names[i]]().Order() < methods[names[j]]().Order()
	})
	return names
}
