package dispatch

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/invokit/invokit-go/contracts"
)

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// MethodRegistry maps operation names to callable methods on one service
// object. Exported methods are discovered by reflection at construction
// and exposed under lower-camel operation names ("Add" becomes "add");
// standalone functions can sit next to them via RegisterFunc.
//
// A registry is built during service setup and must not be modified once
// dispatching begins. Concurrent calls through a frozen registry are safe.
type MethodRegistry struct {
	service any
	methods map[string]reflect.Value
}

// NewMethodRegistry reflects over the service object's exported methods.
func NewMethodRegistry(service any) (*MethodRegistry, error) {
	if service == nil {
		return nil, fmt.Errorf("service object cannot be nil")
	}

	r := &MethodRegistry{
		service: service,
		methods: make(map[string]reflect.Value),
	}

	v := reflect.ValueOf(service)
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() {
			continue
		}
		r.methods[operationName(m.Name)] = v.Method(i)
	}
	return r, nil
}

// RegisterFunc registers a standalone function under the given operation
// name, alongside the reflected service methods.
func (r *MethodRegistry) RegisterFunc(name string, fn any) error {
	if name == "" {
		return fmt.Errorf("operation name cannot be empty")
	}
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return fmt.Errorf("operation %q must be a function, got %T", name, fn)
	}
	if _, exists := r.methods[name]; exists {
		return fmt.Errorf("operation %q already registered", name)
	}
	r.methods[name] = v
	return nil
}

// Has reports whether the named operation exists.
func (r *MethodRegistry) Has(name string) bool {
	_, ok := r.methods[name]
	return ok
}

// Names returns the registered operation names, sorted.
func (r *MethodRegistry) Names() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Service returns the underlying service object.
func (r *MethodRegistry) Service() any {
	return r.service
}

// Call invokes the named operation with the given arguments. A leading
// context.Context parameter on the target is filled with ctx; the
// remaining parameters are filled from args in order, with strict type
// assignability and no conversions. Supported return shapes are (), (T),
// (error), and (T, error); anything else faults with ErrBadSignature.
func (r *MethodRegistry) Call(ctx context.Context, name string, args ...any) (any, error) {
	fn, ok := r.methods[name]
	if !ok {
		return nil, &contracts.InvocationFault{Op: "call", Method: name, Err: contracts.ErrMethodNotFound}
	}

	t := fn.Type()
	in := make([]reflect.Value, 0, t.NumIn())
	next := 0
	if t.NumIn() > 0 && t.In(0) == ctxType {
		in = append(in, reflect.ValueOf(ctx))
		next = 1
	}

	declared := t.NumIn() - next
	if t.IsVariadic() {
		if len(args) < declared-1 {
			return nil, &contracts.InvocationFault{
				Op:     "call",
				Method: name,
				Err:    fmt.Errorf("expected at least %d arguments, got %d: %w", declared-1, len(args), contracts.ErrBadArguments),
			}
		}
	} else if len(args) != declared {
		return nil, &contracts.InvocationFault{
			Op:     "call",
			Method: name,
			Err:    fmt.Errorf("expected %d arguments, got %d: %w", declared, len(args), contracts.ErrBadArguments),
		}
	}

	for i, arg := range args {
		v, err := conform(arg, paramType(t, next+i))
		if err != nil {
			return nil, &contracts.InvocationFault{
				Op:     "call",
				Method: name,
				Err:    fmt.Errorf("argument %d: %v: %w", i, err, contracts.ErrBadArguments),
			}
		}
		in = append(in, v)
	}

	return normalize(name, fn.Call(in))
}

// operationName lowers the leading rune of an exported method name, so
// "Add" is dispatched as "add" and "CheckBalance" as "checkBalance".
func operationName(method string) string {
	r, size := utf8.DecodeRuneInString(method)
	if r == utf8.RuneError {
		return method
	}
	return string(unicode.ToLower(r)) + method[size:]
}

// paramType returns the declared type of parameter i, unwrapping the
// element type for a variadic tail.
func paramType(t reflect.Type, i int) reflect.Type {
	if t.IsVariadic() && i >= t.NumIn()-1 {
		return t.In(t.NumIn() - 1).Elem()
	}
	return t.In(i)
}

// conform checks that arg is assignable to the parameter type. A nil arg
// maps to the zero value for nilable kinds.
func conform(arg any, pt reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch pt.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
			return reflect.Zero(pt), nil
		default:
			return reflect.Value{}, fmt.Errorf("nil is not assignable to %v", pt)
		}
	}
	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(pt) {
		return reflect.Value{}, fmt.Errorf("%T is not assignable to %v", arg, pt)
	}
	return v, nil
}

// normalize maps a reflected return list onto the (result, error) shape.
func normalize(name string, out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type().Implements(errType) {
			return nil, toError(out[0])
		}
		return out[0].Interface(), nil
	case 2:
		if !out[1].Type().Implements(errType) {
			return nil, &contracts.InvocationFault{Op: "call", Method: name, Err: contracts.ErrBadSignature}
		}
		if err := toError(out[1]); err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	default:
		return nil, &contracts.InvocationFault{Op: "call", Method: name, Err: contracts.ErrBadSignature}
	}
}

func toError(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface().(error)
}
