package pattern

import "sync"

// Compiled programs are cached by a structural signature of the
// Pattern, per spec.md §4.6.3. The source keys this cache
// thread-locally to avoid synchronization; Go has no goroutine-local
// storage, so this module uses a single process-wide cache guarded by
// a mutex instead (documented in DESIGN.md as the one deliberate
// deviation from the source's thread-local design). Lookup is
// best-effort: a miss just recompiles and stores the result.
var (
	progCacheMu sync.RWMutex
	progCache   = make(map[string]*Program)
)

func compiledProgram(p Pattern) *Program {
	key := p.describe()

	progCacheMu.RLock()
	prog, ok := progCache[key]
	progCacheMu.RUnlock()
	if ok {
		return prog
	}

	var code []Instr
	var lits []Pattern
	p.compile(&code, &lits)
	code = append(code, Instr{op: opAccept})
	prog = &Program{code: code, literals: lits}

	progCacheMu.Lock()
	progCache[key] = prog
	progCacheMu.Unlock()
	return prog
}
