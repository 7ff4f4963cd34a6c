package content

import "slices"

// Transition names of the simple publication workflow.
const (
	TransitionSubmit  = "submit"
	TransitionPublish = "publish"
	TransitionRetract = "retract"
	TransitionReject  = "reject"
)

type transition struct {
	from []State
	to   State
}

var workflow = map[string]transition{
	TransitionSubmit:  {from: []State{StatePrivate}, to: StatePending},
	TransitionPublish: {from: []State{StatePrivate, StatePending}, to: StatePublished},
	TransitionRetract: {from: []State{StatePending, StatePublished}, to: StatePrivate},
	TransitionReject:  {from: []State{StatePending}, to: StatePrivate},
}

// AvailableTransitions lists the transitions that can fire from state, sorted by name.
func AvailableTransitions(state State) []string {
	var out []string
	for name, tr := range workflow {
		if slices.Contains(tr.from, state) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// nextState returns the state reached by firing action from state.
func nextState(state State, action string) (State, bool) {
	tr, ok := workflow[action]
	if !ok || !slices.Contains(tr.from, state) {
		return state, false
	}
	return tr.to, true
}
