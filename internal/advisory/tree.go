package advisory

// Unanswered is the placeholder answer a form submits before the user picks an option.
const Unanswered = "Select..."

// Node is one question of a decision tree. Every option has exactly one branch.
type Node struct {
	Question string
	Options  []string
	Branches map[string]Branch
}

// Branch leads either to another question or to a verdict.
type Branch struct {
	Next    *Node
	Verdict *Verdict
}

// Status tells whether a traversal reached a verdict.
type Status int

const (
	StatusPending Status = iota
	StatusDecided
)

func (s Status) String() string {
	if s == StatusDecided {
		return "decided"
	}
	return "pending"
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Step is one answered question on the traversal path.
type Step struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Outcome is the result of walking a tree with a sequence of answers.
// A pending outcome carries the question that still needs an answer.
type Outcome struct {
	Status   Status   `json:"status"`
	Verdict  *Verdict `json:"verdict,omitempty"`
	Question string   `json:"question,omitempty"`
	Options  []string `json:"options,omitempty"`
	Path     []Step   `json:"path"`
}

// Evaluate walks tree following answers in order. A missing, placeholder or unknown
// answer stops the walk with a pending outcome; answers past a verdict are ignored.
func Evaluate(tree *Node, answers []string) Outcome {
	path := make([]Step, 0, len(answers))
	node := tree
	for i := 0; node != nil; i++ {
		pending := Outcome{
			Status:   StatusPending,
			Question: node.Question,
			Options:  node.Options,
			Path:     path,
		}
		if i >= len(answers) {
			return pending
		}

		answer := answers[i]
		branch, ok := node.Branches[answer]
		if !ok || answer == "" || answer == Unanswered {
			return pending
		}

		path = append(path, Step{Question: node.Question, Answer: answer})
		if branch.Verdict != nil {
			verdict := *branch.Verdict
			return Outcome{Status: StatusDecided, Verdict: &verdict, Path: path}
		}
		node = branch.Next
	}
	return Outcome{Status: StatusPending, Path: path}
}
