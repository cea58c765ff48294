package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/apokryfos/Enumerable/pipeline"
	"github.com/apokryfos/Enumerable/sequence"
	"github.com/apokryfos/Enumerable/validation"
)

// step is one parsed --op flag: a name and its comma-separated arguments.
type step struct {
	Name string
	Args []string
}

// parseStep splits "name:arg1,arg2" into a step.
func parseStep(s string) (step, error) {
	name, rest, hasArgs := strings.Cut(strings.TrimSpace(s), ":")
	if name == "" {
		return step{}, fmt.Errorf("empty operation in %q", s)
	}
	st := step{Name: name}
	if hasArgs {
		st.Args = splitArgs(rest)
	}
	return st, nil
}

// splitArgs splits on commas outside of JSON brackets and quotes.
func splitArgs(s string) []string {
	var (
		args  []string
		depth int
		quote bool
		start int
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && quote:
			i++
		case c == '"':
			quote = !quote
		case quote:
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			depth--
		case c == ',' && depth == 0:
			args = append(args, s[start:i])
			start = i + 1
		}
	}
	return append(args, s[start:])
}

// literal decodes a JSON argument, falling back to the raw string.
func literal(s string) any {
	if v, err := sequence.DecodeJSON([]byte(s)); err == nil {
		return v
	}
	return s
}

func literals(args []string) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = literal(a)
	}
	return out
}

// selectorArg returns the selector named by args[i], or nil for identity.
func selectorArg(args []string, i int) any {
	if i >= len(args) || args[i] == "" {
		return nil
	}
	return args[i]
}

func intArg(st step, i int, def int) (int, error) {
	if i >= len(st.Args) {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(st.Args[i]))
	if err != nil {
		return 0, fmt.Errorf("%s: argument %d: %w", st.Name, i+1, err)
	}
	return n, nil
}

type combinator struct {
	usage string
	arity [2]int
	apply func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error)
}

type terminal struct {
	usage string
	arity [2]int
	run   func(ctx context.Context, p *pipeline.Pipeline, st step) (any, error)
}

// unbounded marks a variadic maximum arity.
const unbounded = -1

func sized(fn func(p *pipeline.Pipeline, n int) *pipeline.Pipeline, def int) func(*pipeline.Pipeline, step) (*pipeline.Pipeline, error) {
	return func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		n, err := intArg(st, 0, def)
		if err != nil {
			return nil, err
		}
		return fn(p, n), nil
	}
}

func operand(fn func(p *pipeline.Pipeline, v any) *pipeline.Pipeline) func(*pipeline.Pipeline, step) (*pipeline.Pipeline, error) {
	return func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return fn(p, literal(st.Args[0])), nil
	}
}

var combinators = map[string]combinator{
	"skip":  {"skip:N", [2]int{1, 1}, sized((*pipeline.Pipeline).Skip, 0)},
	"take":  {"take:N", [2]int{1, 1}, sized((*pipeline.Pipeline).Take, 0)},
	"nth":   {"nth:N", [2]int{1, 1}, sized((*pipeline.Pipeline).Nth, 0)},
	"chunk": {"chunk:N", [2]int{1, 1}, sized((*pipeline.Pipeline).Chunk, 0)},
	"slice": {"slice:FROM[,SIZE]", [2]int{1, 2}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		from, err := intArg(st, 0, 0)
		if err != nil {
			return nil, err
		}
		size, err := intArg(st, 1, -1)
		if err != nil {
			return nil, err
		}
		return p.Slice(from, size), nil
	}},
	"flatten":  {"flatten[:DEPTH]", [2]int{0, 1}, sized((*pipeline.Pipeline).Flatten, 0)},
	"collapse": {"collapse", [2]int{0, 0}, func(p *pipeline.Pipeline, _ step) (*pipeline.Pipeline, error) { return p.Collapse(), nil }},
	"keys":     {"keys", [2]int{0, 0}, func(p *pipeline.Pipeline, _ step) (*pipeline.Pipeline, error) { return p.Keys(), nil }},
	"values":   {"values", [2]int{0, 0}, func(p *pipeline.Pipeline, _ step) (*pipeline.Pipeline, error) { return p.Values(), nil }},
	"flip":     {"flip", [2]int{0, 0}, func(p *pipeline.Pipeline, _ step) (*pipeline.Pipeline, error) { return p.Flip(), nil }},
	"pluck": {"pluck:KEY", [2]int{1, 1}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return p.Pluck(st.Args[0]), nil
	}},
	"keyBy": {"keyBy:KEY", [2]int{1, 1}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return p.KeyBy(st.Args[0]), nil
	}},
	"filter": {"filter[:KEY]", [2]int{0, 1}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return p.Filter(selectorArg(st.Args, 0)), nil
	}},
	"reject": {"reject[:KEY]", [2]int{0, 1}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return p.Reject(selectorArg(st.Args, 0)), nil
	}},
	"where": {"where:KEY[,OP],VALUE", [2]int{1, 3}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		args := make([]any, 0, 2)
		for i, a := range st.Args[1:] {
			// The operator stays a string; the compare value is a literal.
			if i == 0 && len(st.Args) == 3 {
				args = append(args, a)
				continue
			}
			args = append(args, literal(a))
		}
		return p.Where(st.Args[0], args...), nil
	}},
	"whereIn": {"whereIn:KEY,VALUE...", [2]int{2, unbounded}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return p.WhereIn(st.Args[0], literals(st.Args[1:])), nil
	}},
	"whereNotIn": {"whereNotIn:KEY,VALUE...", [2]int{2, unbounded}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return p.WhereNotIn(st.Args[0], literals(st.Args[1:])), nil
	}},
	"only": {"only:KEY...", [2]int{1, unbounded}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return p.Only(literals(st.Args)...), nil
	}},
	"except": {"except:KEY...", [2]int{1, unbounded}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return p.Except(literals(st.Args)...), nil
	}},
	"countValues": {"countValues[:KEY]", [2]int{0, 1}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return p.CountValues(selectorArg(st.Args, 0)), nil
	}},
	"push": {"push:VALUE", [2]int{1, 1}, operand((*pipeline.Pipeline).Push)},
	"prepend": {"prepend:VALUE...", [2]int{1, unbounded}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return p.Prepend(literals(st.Args)...), nil
	}},
	"pad": {"pad:N,VALUE", [2]int{2, 2}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		n, err := intArg(st, 0, 0)
		if err != nil {
			return nil, err
		}
		return p.Pad(n, literal(st.Args[1])), nil
	}},
	"merge":  {"merge:JSON", [2]int{1, 1}, operand((*pipeline.Pipeline).Merge)},
	"concat": {"concat:JSON", [2]int{1, 1}, operand((*pipeline.Pipeline).Concat)},
	"union":  {"union:JSON", [2]int{1, 1}, operand((*pipeline.Pipeline).Union)},
	"diff": {"diff:JSON...", [2]int{1, unbounded}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return p.Diff(literals(st.Args)...), nil
	}},
	"diffKeys": {"diffKeys:JSON...", [2]int{1, unbounded}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return p.DiffKeys(literals(st.Args)...), nil
	}},
	"intersect": {"intersect:JSON...", [2]int{1, unbounded}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return p.Intersect(literals(st.Args)...), nil
	}},
	"crossJoin": {"crossJoin:JSON...", [2]int{1, unbounded}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return p.CrossJoin(literals(st.Args)...), nil
	}},
	"zip": {"zip:JSON[,ignore]", [2]int{1, 2}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return p.Zip(literal(st.Args[0]), len(st.Args) == 2 && st.Args[1] == "ignore"), nil
	}},
	"combine": {"combine:JSON[,strict]", [2]int{1, 2}, func(p *pipeline.Pipeline, st step) (*pipeline.Pipeline, error) {
		return p.Combine(literal(st.Args[0]), len(st.Args) == 2 && st.Args[1] == "strict"), nil
	}},
}

func aggregate(fn func(p *pipeline.Pipeline, ctx context.Context, sel any) (any, error)) func(context.Context, *pipeline.Pipeline, step) (any, error) {
	return func(ctx context.Context, p *pipeline.Pipeline, st step) (any, error) {
		return fn(p, ctx, selectorArg(st.Args, 0))
	}
}

func float(fn func(p *pipeline.Pipeline, ctx context.Context, sel any) (float64, error)) func(context.Context, *pipeline.Pipeline, step) (any, error) {
	return func(ctx context.Context, p *pipeline.Pipeline, st step) (any, error) {
		return fn(p, ctx, selectorArg(st.Args, 0))
	}
}

var terminals = map[string]terminal{
	"all": {"all", [2]int{0, 0}, func(ctx context.Context, p *pipeline.Pipeline, _ step) (any, error) {
		return p.ToArray(ctx)
	}},
	"count": {"count", [2]int{0, 0}, func(ctx context.Context, p *pipeline.Pipeline, _ step) (any, error) {
		return p.Count(ctx)
	}},
	"sum":     {"sum[:KEY]", [2]int{0, 1}, aggregate((*pipeline.Pipeline).Sum)},
	"max":     {"max[:KEY]", [2]int{0, 1}, aggregate((*pipeline.Pipeline).Max)},
	"min":     {"min[:KEY]", [2]int{0, 1}, aggregate((*pipeline.Pipeline).Min)},
	"mode":    {"mode[:KEY]", [2]int{0, 1}, aggregate((*pipeline.Pipeline).Mode)},
	"average": {"average[:KEY]", [2]int{0, 1}, float((*pipeline.Pipeline).Average)},
	"avg":     {"avg[:KEY]", [2]int{0, 1}, float((*pipeline.Pipeline).Avg)},
	"median":  {"median[:KEY]", [2]int{0, 1}, float((*pipeline.Pipeline).Median)},
	"first": {"first[:KEY[,OP],VALUE]", [2]int{0, 3}, func(ctx context.Context, p *pipeline.Pipeline, st step) (any, error) {
		v, _, err := p.First(ctx, whereArgs(st.Args)...)
		return v, err
	}},
	"last": {"last[:KEY[,OP],VALUE]", [2]int{0, 3}, func(ctx context.Context, p *pipeline.Pipeline, st step) (any, error) {
		v, _, err := p.Last(ctx, whereArgs(st.Args)...)
		return v, err
	}},
	"every": {"every[:KEY]", [2]int{0, 1}, func(ctx context.Context, p *pipeline.Pipeline, st step) (any, error) {
		return p.Every(ctx, selectorArg(st.Args, 0))
	}},
	"get": {"get:KEY", [2]int{1, 1}, func(ctx context.Context, p *pipeline.Pipeline, st step) (any, error) {
		v, _, err := p.Get(ctx, literal(st.Args[0]))
		return v, err
	}},
	"has": {"has:KEY", [2]int{1, 1}, func(ctx context.Context, p *pipeline.Pipeline, st step) (any, error) {
		return p.Has(ctx, literal(st.Args[0]), false)
	}},
	"isEmpty": {"isEmpty", [2]int{0, 0}, func(ctx context.Context, p *pipeline.Pipeline, _ step) (any, error) {
		return p.IsEmpty(ctx)
	}},
	"implode": {"implode[:SEP]", [2]int{0, 1}, func(ctx context.Context, p *pipeline.Pipeline, st step) (any, error) {
		sep := ""
		if len(st.Args) > 0 {
			// A quoted separator may contain commas.
			sep = st.Args[0]
			if s, ok := literal(sep).(string); ok {
				sep = s
			}
		}
		return p.Implode(ctx, sep)
	}},
}

// whereArgs converts KEY[,OP],VALUE arguments for First and Last.
func whereArgs(args []string) []any {
	out := make([]any, 0, len(args))
	for i, a := range args {
		if i == 0 || (i == 1 && len(args) == 3) {
			out = append(out, a)
			continue
		}
		out = append(out, literal(a))
	}
	return out
}

func checkArity(st step, arity [2]int) error {
	n := len(st.Args)
	field := st.Name + " arguments"
	v := validation.New().Min(field, n, arity[0])
	if arity[1] != unbounded {
		v.Custom(n <= arity[1], field, fmt.Sprintf("must be at most %d", arity[1]))
	}
	return v.Validate()
}

// plan is a chain of combinators ending in an optional terminal.
type plan struct {
	steps    []step
	terminal *step
}

// parsePlan validates the --op flags. Only the last one may be a terminal.
func parsePlan(ops []string) (plan, error) {
	var pl plan
	for i, raw := range ops {
		st, err := parseStep(raw)
		if err != nil {
			return plan{}, err
		}
		if c, ok := combinators[st.Name]; ok {
			if err := checkArity(st, c.arity); err != nil {
				return plan{}, fmt.Errorf("%w (usage: %s)", err, c.usage)
			}
			pl.steps = append(pl.steps, st)
			continue
		}
		t, ok := terminals[st.Name]
		if !ok {
			return plan{}, fmt.Errorf("unknown operation %q", st.Name)
		}
		if i != len(ops)-1 {
			return plan{}, fmt.Errorf("terminal %q must be the last operation", st.Name)
		}
		if err := checkArity(st, t.arity); err != nil {
			return plan{}, fmt.Errorf("%w (usage: %s)", err, t.usage)
		}
		pl.terminal = &st
	}
	return pl, nil
}

// execute applies the plan to p. Without a terminal the result is ToArray.
func (pl plan) execute(ctx context.Context, p *pipeline.Pipeline) (any, error) {
	for _, st := range pl.steps {
		next, err := combinators[st.Name].apply(p, st)
		if err != nil {
			return nil, err
		}
		p = next
	}
	if pl.terminal == nil {
		return p.ToArray(ctx)
	}
	return terminals[pl.terminal.Name].run(ctx, p, *pl.terminal)
}

// usages lists every operation, combinators first.
func usages() []string {
	var out []string
	for _, c := range combinators {
		out = append(out, c.usage)
	}
	slices.Sort(out)
	var terms []string
	for _, t := range terminals {
		terms = append(terms, t.usage)
	}
	slices.Sort(terms)
	return append(out, terms...)
}
