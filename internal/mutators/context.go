package mutators

// ArrayInfo tracks what is known about one Bash array variable while the
// chain runs: whether a declaration was seen, the current element count, and
// the element texts (when the declaration form exposed them).
type ArrayInfo struct {
	Declared bool
	Length   int
	Elements []string
}

// Context carries mutator bookkeeping through one chain invocation. It is
// created empty at the start of a chain transform, mutated in place by each
// mutator, and never reset mid-chain.
type Context struct {
	// Features records which rewrites have fired. Diagnostic only; the
	// chain never gates on it.
	Features map[string]bool

	// Arrays maps array variable names to what has been learned about them.
	Arrays map[string]*ArrayInfo

	// TmpCounter mints unique temp-file variable names for process
	// substitution rewrites.
	TmpCounter int
}

func NewContext() *Context {
	return &Context{
		Features: make(map[string]bool),
		Arrays:   make(map[string]*ArrayInfo),
	}
}

func (c *Context) MarkFeature(name string) {
	c.Features[name] = true
}

// Array returns the tracked info for name, creating a zero-length entry if
// the array has not been seen before.
func (c *Context) Array(name string) *ArrayInfo {
	info, ok := c.Arrays[name]
	if !ok {
		info = &ArrayInfo{Declared: true}
		c.Arrays[name] = info
	}
	return info
}

// KnownArray reports whether name was observed as an array, without creating
// an entry.
func (c *Context) KnownArray(name string) (*ArrayInfo, bool) {
	info, ok := c.Arrays[name]
	return info, ok
}

// NextTmpVar mints the next unique temp-file variable name (tmp1, tmp2, ...).
func (c *Context) NextTmpVar() string {
	c.TmpCounter++
	return tmpVarName(c.TmpCounter)
}
