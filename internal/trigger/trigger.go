package trigger

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Predicate is a compiled boolean trigger.
type Predicate struct {
	Src     string
	program *vm.Program
}

func Compile(src string) (*Predicate, error) {
	program, err := expr.Compile(src, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile trigger %q: %w", src, err)
	}
	return &Predicate{Src: src, program: program}, nil
}

func (p *Predicate) Eval(env Env) (bool, error) {
	out, err := expr.Run(p.program, env)
	if err != nil {
		return false, fmt.Errorf("run trigger %q: %w", p.Src, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Set caches compiled predicates by name. Safe for concurrent use.
type Set struct {
	mu    sync.RWMutex
	preds map[string]*Predicate
}

func NewSet() *Set {
	return &Set{preds: map[string]*Predicate{}}
}

// Add compiles src under name, replacing any previous predicate.
func (s *Set) Add(name, src string) error {
	p, err := Compile(src)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	s.mu.Lock()
	s.preds[name] = p
	s.mu.Unlock()
	return nil
}

// Eval runs the named predicate. A name that was never added evaluates to false.
func (s *Set) Eval(name string, env Env) (bool, error) {
	s.mu.RLock()
	p, ok := s.preds[name]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return p.Eval(env)
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.preds)
}
