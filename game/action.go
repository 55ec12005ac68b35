package game

// ActionType represents the type of action a player can request.
type ActionType int

const (
	SetupAction ActionType = iota
	RemoveAction
	MoveAction
	BoostAction
	EnterAction
	LineBoostAttachAction
	LineBoostDetachAction
	VirusCheckAction
	FirewallPlaceAction
	FirewallRemoveAction
	NotFoundAction
	EndTurnAction
)

var actionNames = map[ActionType]string{
	SetupAction:           "setup",
	RemoveAction:          "remove",
	MoveAction:            "move",
	BoostAction:           "boost",
	EnterAction:           "enter",
	LineBoostAttachAction: "lineboost-attach",
	LineBoostDetachAction: "lineboost-detach",
	VirusCheckAction:      "viruscheck",
	FirewallPlaceAction:   "firewall-place",
	FirewallRemoveAction:  "firewall-remove",
	NotFoundAction:        "notfound",
	EndTurnAction:         "endturn",
}

func (t ActionType) String() string {
	if name, ok := actionNames[t]; ok {
		return name
	}
	return "unknown"
}

// Action describes one operation a player asks for. Only the fields the
// type needs are meaningful; terminal slots are chosen by whoever applies it.
type Action struct {
	Type   ActionType
	Kind   CardKind    // SetupAction
	From   Position    // first cell of every positional action
	To     Position    // MoveAction, BoostAction, second cell of NotFoundAction
	Reveal bool        // EnterAction
	Stack  StackChoice // EnterAction
	Swap   bool        // NotFoundAction
}

// IsSetup reports whether the action belongs to the setup phase.
func (a Action) IsSetup() bool {
	return a.Type == SetupAction || a.Type == RemoveAction
}
