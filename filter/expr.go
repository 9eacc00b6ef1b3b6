package filter

import (
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/qbtlang/ts"
)

// qtPlaceholder matches Qt argument markers (%1 .. %99, %L1) and %n.
var qtPlaceholder = regexp.MustCompile(`%L?(\d{1,2}|n)`)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	extra      map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) Compiler {
	c := &exprCompiler{
		helperFuncs: make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache[CompiledFilter]
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Type-check against a prototype environment so unknown fields fail here
	env := createRuntimeEnvironment(ts.Entry{})
	maps.Copy(env, c.helperFuncs)

	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
	}
	if len(c.helperFuncs) > 0 {
		filter.extra = c.helperFuncs
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate evaluates the filter against a message; a runtime failure is a
// non-match. Evaluators use Match instead.
func (f *exprFilter) Evaluate(entry ts.Entry) bool {
	ok, err := f.Match(entry)
	return err == nil && ok
}

// Match evaluates the filter against a message
func (f *exprFilter) Match(entry ts.Entry) (bool, error) {
	env := createRuntimeEnvironment(entry)
	maps.Copy(env, f.extra)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, Key: entry.Key().String(), Err: err}
	}

	matched, _ := result.(bool)
	return matched, nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// IsThreadSafe indicates that expr filters are thread-safe
func (f *exprFilter) IsThreadSafe() bool {
	return true
}

// addHelperFunctions adds the entry-independent helpers
func addHelperFunctions(env map[string]any) {
	env["icontains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["placeholders"] = placeholders
	env["hasAccelerator"] = hasAccelerator
	env["lineCount"] = func(str string) int {
		if str == "" {
			return 0
		}
		return strings.Count(str, "\n") + 1
	}
}

// createRuntimeEnvironment creates the runtime environment for filter evaluation
func createRuntimeEnvironment(entry ts.Entry) map[string]any {
	env := make(map[string]any, 32)

	addHelperFunctions(env)

	files := make([]string, 0, len(entry.Locations))
	for _, l := range entry.Locations {
		files = append(files, l.Filename)
	}

	env["Entry"] = entry
	env["Context"] = entry.Context
	env["Source"] = entry.Source
	env["Comment"] = entry.Comment
	env["ExtraComment"] = entry.ExtraComment
	env["TranslatorComment"] = entry.TranslatorComment
	env["Translation"] = entry.Translation
	env["Type"] = string(entry.Type)
	env["Finished"] = entry.Finished()
	env["Unfinished"] = entry.Type == ts.TypeUnfinished
	env["Obsolete"] = entry.Obsolete()
	env["Numerus"] = entry.Numerus
	env["Files"] = files

	env["inFile"] = createInFileFunc(files)
	env["placeholdersMatch"] = createPlaceholdersMatchFunc(entry)
	env["acceleratorMismatch"] = createAcceleratorMismatchFunc(entry)

	return env
}

// placeholders returns the sorted distinct Qt placeholders in s
func placeholders(s string) []string {
	found := qtPlaceholder.FindAllString(s, -1)
	for i, p := range found {
		found[i] = strings.Replace(p, "%L", "%", 1)
	}
	slices.Sort(found)
	return slices.Compact(found)
}

// hasAccelerator reports whether s marks a keyboard accelerator with a
// single ampersand; "&&" is a literal ampersand.
func hasAccelerator(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '&' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '&' {
			i++
			continue
		}
		if i+1 < len(s) {
			return true
		}
	}
	return false
}

func createInFileFunc(files []string) func(string) bool {
	return func(name string) bool {
		name = strings.ToLower(name)
		for _, f := range files {
			if strings.Contains(strings.ToLower(f), name) {
				return true
			}
		}
		return false
	}
}

func createPlaceholdersMatchFunc(entry ts.Entry) func() bool {
	return func() bool {
		if !entry.Finished() {
			return true
		}
		want := placeholders(entry.Source)
		// %n is optional in the singular form of a numerus message
		if entry.Numerus {
			want = slices.DeleteFunc(want, func(p string) bool { return p == "%n" })
			got := placeholders(entry.Translation)
			got = slices.DeleteFunc(got, func(p string) bool { return p == "%n" })
			return slices.Equal(want, got)
		}
		return slices.Equal(want, placeholders(entry.Translation))
	}
}

func createAcceleratorMismatchFunc(entry ts.Entry) func() bool {
	return func() bool {
		if !entry.Finished() {
			return false
		}
		return hasAccelerator(entry.Source) != hasAccelerator(entry.Translation)
	}
}
