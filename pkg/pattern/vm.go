package pattern

import "github.com/blockchaincommons/gordian-envelope/pkg/envelope"

// Axis names a child relation the VM can descend through, one of the
// five edge kinds spec.md §3.5 defines for envelope traversal (EdgeType
// carries a sixth, None, used only for the traversal root).
type Axis int

const (
	AxisSubject Axis = iota
	AxisAssertion
	AxisPredicate
	AxisObject
	AxisWrapped
)

// Children returns the (child, EdgeType) pairs reachable from env via
// axis, per spec.md §4.6.2's PushAxis semantics.
func (a Axis) Children(env envelope.Envelope) []childEdge {
	switch a {
	case AxisSubject:
		if envelope.IsNode(env) {
			return []childEdge{{envelope.Subject(env), envelope.EdgeSubject}}
		}
	case AxisAssertion:
		if envelope.IsNode(env) {
			out := make([]childEdge, 0, len(envelope.Assertions(env)))
			for _, a := range envelope.Assertions(env) {
				out = append(out, childEdge{a, envelope.EdgeAssertion})
			}
			return out
		}
	case AxisPredicate:
		if as, ok := env.(*envelope.Assertion); ok {
			return []childEdge{{as.Predicate(), envelope.EdgePredicate}}
		}
	case AxisObject:
		if as, ok := env.(*envelope.Assertion); ok {
			return []childEdge{{as.Object(), envelope.EdgeObject}}
		}
	case AxisWrapped:
		if w, ok := env.(*envelope.Wrapped); ok {
			return []childEdge{{w.Inner(), envelope.EdgeWrapped}}
		}
		if envelope.IsNode(env) {
			subject := envelope.Subject(env)
			if w, ok := subject.(*envelope.Wrapped); ok {
				return []childEdge{{w.Inner(), envelope.EdgeWrapped}}
			}
		}
	}
	return nil
}

type childEdge struct {
	env  envelope.Envelope
	edge envelope.EdgeType
}

// structuralChildren returns env's children in Walk's fixed descent
// order (subject, assertions; predicate, object; inner), the same
// order Search uses to explore a subtree exhaustively.
func structuralChildren(env envelope.Envelope) []envelope.Envelope {
	switch x := env.(type) {
	case *envelope.Node:
		out := make([]envelope.Envelope, 0, 1+len(x.Assertions()))
		out = append(out, x.Subject())
		out = append(out, x.Assertions()...)
		return out
	case *envelope.Assertion:
		return []envelope.Envelope{x.Predicate(), x.Object()}
	case *envelope.Wrapped:
		return []envelope.Envelope{x.Inner()}
	default:
		return nil
	}
}

// Instr is a single bytecode instruction in a compiled Program
// (spec.md §4.6.2).
type Instr struct {
	op   opcode
	a, b int // Split targets, or Jump target in a
	idx  int // literal index for MatchPredicate/Search/NotMatch/Repeat

	axis Axis

	repeatMin   int
	repeatMax   int // -1 means unbounded
	repeatMode  Greediness
}

type opcode int

const (
	opMatchPredicate opcode = iota
	opSplit
	opJump
	opPushAxis
	opPop
	opSave
	opAccept
	opSearch
	opExtendSequence
	opCombineSequence
	opNavigateSubject
	opNotMatch
	opRepeat
)

// Program is a compiled Pattern: a flat instruction stream plus the
// sub-patterns its MatchPredicate/Search/NotMatch/Repeat instructions
// reference by index.
type Program struct {
	code    []Instr
	literals []Pattern
}

// thread is the VM's backtracking state: a program counter, the
// envelope currently being matched, the path accumulated so far, and a
// stack of paths saved by ExtendSequence for CombineSequence to merge.
type thread struct {
	pc         int
	env        envelope.Envelope
	path       Path
	savedPaths []Path
}

func (t thread) fork() thread {
	return thread{pc: t.pc, env: t.env, path: t.path.clone(), savedPaths: append([]Path(nil), t.savedPaths...)}
}

// runProgram executes prog starting at root, returning every path
// emitted by Save/Accept.
func runProgram(prog *Program, root envelope.Envelope) []Path {
	var out []Path
	start := thread{pc: 0, env: root, path: Path{root}}
	runThread(prog, start, &out)
	return out
}

// runThread executes a single thread (and any it spawns) to
// completion, via a LIFO work list per spec.md §5's single-threaded
// cooperative scheduling model. Returns true if any path was produced.
func runThread(prog *Program, start thread, out *[]Path) bool {
	produced := false
	stack := []thread{start}

	for len(stack) > 0 {
		th := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

	step:
		for {
			instr := prog.code[th.pc]
			switch instr.op {
			case opMatchPredicate:
				if len(atomicPaths(prog.literals[instr.idx], th.env)) == 0 {
					break step
				}
				th.pc++

			case opSplit:
				fork := th.fork()
				fork.pc = instr.a
				stack = append(stack, fork)
				th.pc = instr.b

			case opJump:
				th.pc = instr.a

			case opPushAxis:
				th.pc++
				for _, ce := range instr.axis.Children(th.env) {
					fork := th.fork()
					fork.env = ce.env
					fork.path = append(fork.path, ce.env)
					stack = append(stack, fork)
				}
				break step

			case opPop:
				if len(th.path) > 0 {
					th.path = th.path[:len(th.path)-1]
				}
				th.pc++

			case opSave:
				*out = append(*out, th.path.clone())
				produced = true
				th.pc++

			case opAccept:
				*out = append(*out, th.path.clone())
				produced = true
				break step

			case opSearch:
				inner := prog.literals[instr.idx]
				found := inner.directPaths(th.env)
				if len(found) > 0 {
					produced = true
					for _, fp := range found {
						*out = append(*out, extendPath(th.path, fp))
					}
				}
				children := structuralChildren(th.env)
				for i := len(children) - 1; i >= 0; i-- {
					fork := th.fork()
					fork.env = children[i]
					fork.path = append(fork.path, children[i])
					stack = append(stack, fork)
				}
				break step

			case opExtendSequence:
				if last := th.path.Last(); last != nil {
					th.savedPaths = append(th.savedPaths, th.path.clone())
					th.env = last
					th.path = Path{last}
				}
				th.pc++

			case opCombineSequence:
				if n := len(th.savedPaths); n > 0 {
					saved := th.savedPaths[n-1]
					th.savedPaths = th.savedPaths[:n-1]
					combined := saved.clone()
					if len(saved) > 0 && len(th.path) > 0 && saved[len(saved)-1] == th.path[0] {
						combined = append(combined, th.path[1:]...)
					} else {
						combined = append(combined, th.path...)
					}
					th.path = combined
				}
				th.pc++

			case opNavigateSubject:
				if envelope.IsNode(th.env) {
					subject := envelope.Subject(th.env)
					th.env = subject
					th.path = append(th.path, subject)
				}
				th.pc++

			case opNotMatch:
				if len(atomicPaths(prog.literals[instr.idx], th.env)) > 0 {
					break step
				}
				th.pc++

			case opRepeat:
				pat := prog.literals[instr.idx]
				results := repeatStates(pat, th.env, th.path, instr.repeatMin, instr.repeatMax, instr.repeatMode)
				if len(results) == 0 {
					break step
				}
				nextPC := th.pc + 1
				success := false
				for _, st := range results {
					fork := th.fork()
					fork.pc = nextPC
					fork.env = st.env
					fork.path = st.path
					if runThread(prog, fork, out) {
						produced = true
						success = true
						break
					}
				}
				_ = success
				break step
			}
		}
	}
	return produced
}

// extendPath appends sp to base, dropping sp's leading element when it
// duplicates base's last element (directPaths results start at the
// envelope they were evaluated against, which is already base's last
// element once base is non-empty).
func extendPath(base, sp Path) Path {
	combined := base.clone()
	if len(combined) > 0 && len(sp) > 0 && sp[0] == combined[len(combined)-1] {
		combined = append(combined, sp[1:]...)
	} else {
		combined = append(combined, sp...)
	}
	return combined
}

// atomicPaths evaluates p's direct, uncached match against env. Used
// by MatchPredicate/NotMatch operands, which may be leaf patterns,
// structure patterns, or the atomic meta patterns (Any, None, And, Or,
// Capture) — anything that does not itself require VM recursion.
func atomicPaths(p Pattern, env envelope.Envelope) []Path {
	return p.directPaths(env)
}

type repeatState struct {
	env  envelope.Envelope
	path Path
}

// repeatStates enumerates the reachable states after 0..=bound
// applications of pat starting at (env, path), filters by min, and
// orders the counts by mode: Greedy descending, Lazy ascending,
// Possessive only the maximum (spec.md §4.6.2, Repeat).
func repeatStates(pat Pattern, env envelope.Envelope, path Path, min, max int, mode Greediness) []repeatState {
	states := [][]repeatState{{{env: env, path: path.clone()}}}
	bound := max
	unbounded := bound < 0
	for count := 0; unbounded || count < bound; count++ {
		var next []repeatState
		for _, st := range states[len(states)-1] {
			for _, subPath := range pat.directPaths(st.env) {
				last := subPath.Last()
				if last == nil || last.Digest().Equal(st.env.Digest()) {
					continue
				}
				next = append(next, repeatState{env: last, path: extendPath(st.path, subPath)})
			}
		}
		if len(next) == 0 {
			break
		}
		states = append(states, next)
		if unbounded && len(states) > maxUnboundedRepeat {
			break
		}
	}

	maxPossible := len(states) - 1
	maxAllowed := maxPossible
	if !unbounded && bound < maxAllowed {
		maxAllowed = bound
	}
	if maxAllowed < min {
		return nil
	}

	var counts []int
	switch mode {
	case Lazy:
		for c := min; c <= maxAllowed; c++ {
			counts = append(counts, c)
		}
	case Possessive:
		counts = []int{maxAllowed}
	default: // Greedy
		for c := maxAllowed; c >= min; c-- {
			counts = append(counts, c)
		}
	}

	var out []repeatState
	for _, c := range counts {
		if c < len(states) {
			out = append(out, states[c]...)
		}
	}
	return out
}

// maxUnboundedRepeat bounds unbounded (`max == -1`) repetition search
// so a pattern that can repeat indefinitely over a cyclic-looking but
// finite tree still terminates; envelope trees are acyclic and finite
// (spec.md §5), so this is a safety valve, not a real limit in practice.
const maxUnboundedRepeat = 4096
