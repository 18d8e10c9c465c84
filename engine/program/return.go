package program

// ReturnKind discriminates the result of a program callback.
type ReturnKind int

const (
	// ReturnNone continues without changes.
	ReturnNone ReturnKind = iota
	// ReturnExit asks the conductor to shut the whole application down.
	ReturnExit
	// ReturnSet carries renderer settings to apply after the callback returns.
	ReturnSet
)

func (k ReturnKind) String() string {
	switch k {
	case ReturnNone:
		return "none"
	case ReturnExit:
		return "exit"
	case ReturnSet:
		return "set"
	default:
		return "unknown"
	}
}

// Return is the tagged result of OnEvent and Update.
type Return struct {
	kind     ReturnKind
	settings []ProgramRendererBuilderOption
}

// Continue returns the empty result: nothing changes.
func Continue() Return {
	return Return{kind: ReturnNone}
}

// Exit returns a result requesting application shutdown.
func Exit() Return {
	return Return{kind: ReturnExit}
}

// Set returns a result carrying renderer settings, applied in order once the callback returns.
// A Set with no settings behaves like Continue.
//
// Parameters:
//   - settings: the same options NewProgramRenderer accepts
//
// Returns:
//   - Return: the result to hand back to the conductor
func Set(settings ...ProgramRendererBuilderOption) Return {
	if len(settings) == 0 {
		return Continue()
	}
	return Return{kind: ReturnSet, settings: settings}
}

// Kind returns the result's discriminant. The zero Return is ReturnNone.
func (r Return) Kind() ReturnKind {
	return r.kind
}

// IsExit reports whether the result requests shutdown.
func (r Return) IsExit() bool {
	return r.kind == ReturnExit
}

// Apply applies the carried settings to pr. It is a no-op for Continue and Exit, or when pr was
// not created by NewProgramRenderer.
//
// Parameters:
//   - pr: the renderer to update
func (r Return) Apply(pr ProgramRenderer) {
	if r.kind != ReturnSet {
		return
	}
	impl, ok := pr.(*programRenderer)
	if !ok {
		return
	}
	for _, opt := range r.settings {
		if opt != nil {
			opt(impl)
		}
	}
}
