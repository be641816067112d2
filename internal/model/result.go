package model

// Kind tags which variant a Result holds.
type Kind int

const (
	KindLoading Kind = iota
	KindFailed
	KindSucceeded
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindFailed:
		return "failed"
	case KindSucceeded:
		return "succeeded"
	}
	return "unknown"
}

// Result is the outcome of one fetch: Loading, Failed or Succeeded.
// Fields are unexported so only the constructors below can build one,
// which keeps exactly one variant set at a time.
type Result struct {
	kind    Kind
	message string
	items   []Todo
}

func Loading() Result { return Result{kind: KindLoading} }

// Failed carries a user-facing message and no items.
func Failed(message string) Result {
	return Result{kind: KindFailed, message: message}
}

func Succeeded(items []Todo) Result {
	if items == nil {
		items = []Todo{}
	}
	return Result{kind: KindSucceeded, items: items}
}

func (r Result) Kind() Kind { return r.kind }

func (r Result) IsLoading() bool { return r.kind == KindLoading }

// Message is empty unless the result is Failed.
func (r Result) Message() string { return r.message }

// Items is empty unless the result is Succeeded.
func (r Result) Items() []Todo {
	if r.kind != KindSucceeded {
		return nil
	}
	return r.items
}
