package domain

type Action string

const (
	ActionEdit             Action = "edit"
	ActionDelete           Action = "delete"
	ActionConfirmOrder     Action = "confirm_order"
	ActionConfirmReception Action = "confirm_reception"
	ActionReorder          Action = "reorder"
)

// Actions lists every row action in button order.
var Actions = []Action{ActionEdit, ActionDelete, ActionConfirmOrder, ActionConfirmReception, ActionReorder}

// audience says who may trigger an action for a given status.
type audience int

const (
	nobody audience = iota
	supervisorOnly
	ownerOrSupervisor
)

// eligibility is the single source of truth for row actions. Rendering and
// dispatch both read it.
var eligibility = map[Status]map[Action]audience{
	StatusNew: {
		ActionEdit:         ownerOrSupervisor,
		ActionDelete:       ownerOrSupervisor,
		ActionConfirmOrder: supervisorOnly,
	},
	StatusOrdered: {
		ActionEdit:             supervisorOnly,
		ActionConfirmReception: ownerOrSupervisor,
	},
	StatusReceived: {
		ActionReorder: ownerOrSupervisor,
	},
}

// transitions records the status each workflow action moves a request to.
// Reorder does not move the source request; it creates a new one in New.
var transitions = map[Action]struct{ from, to Status }{
	ActionConfirmOrder:     {StatusNew, StatusOrdered},
	ActionConfirmReception: {StatusOrdered, StatusReceived},
	ActionReorder:          {StatusReceived, StatusNew},
}

// Allowed reports whether viewer may run action on a request in status that
// was created by owner.
func Allowed(action Action, status Status, viewer Viewer, owner string) bool {
	switch eligibility[status][action] {
	case supervisorOnly:
		return viewer.Supervisor
	case ownerOrSupervisor:
		return viewer.Supervisor || viewer.Owns(owner)
	}
	return false
}

// AvailableActions returns the eligible actions for a row, in button order.
func AvailableActions(status Status, viewer Viewer, owner string) []Action {
	var out []Action
	for _, a := range Actions {
		if Allowed(a, status, viewer, owner) {
			out = append(out, a)
		}
	}
	return out
}

// Transition returns the status a request ends in after action, starting from
// from. ok is false for actions that do not change workflow state or cannot
// start from that status.
func Transition(action Action, from Status) (to Status, ok bool) {
	t, found := transitions[action]
	if !found || t.from != from {
		return "", false
	}
	return t.to, true
}
