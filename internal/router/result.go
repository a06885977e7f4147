package router

type Outcome int

const (
	// OutcomeSent means the user got a reply and stays where they were.
	OutcomeSent Outcome = iota
	// OutcomeStateChanged means the session moved to Result.To.
	OutcomeStateChanged
	// OutcomeFailed means the message couldn't be served, see Result.Err.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeStateChanged:
		return "state_changed"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the outcome of handling one message.
type Result struct {
	Outcome Outcome
	From    State
	To      State
	Reply   string
	Err     error
}

func sent(reply string) Result {
	return Result{Outcome: OutcomeSent, Reply: reply}
}

func changed(to State, reply string) Result {
	return Result{Outcome: OutcomeStateChanged, To: to, Reply: reply}
}

func failed(reply string, err error) Result {
	return Result{Outcome: OutcomeFailed, Reply: reply, Err: err}
}

