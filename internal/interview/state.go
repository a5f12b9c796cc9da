package interview

// State identifies the current phase of a screening conversation. States
// advance monotonically along the declared order; only the exit path may jump
// straight to the terminal state.
type State int

const (
	StateGreeting State = iota
	StateName
	StateContact
	StateExperience
	StatePosition
	StateLocation
	StateTechStack
	StateTechnicalQuestions
	StateClosing
	StateEnded
)

var stateNames = map[State]string{
	StateGreeting:           "greeting",
	StateName:               "name_collection",
	StateContact:            "contact_collection",
	StateExperience:         "experience_collection",
	StatePosition:           "position_collection",
	StateLocation:           "location_collection",
	StateTechStack:          "tech_stack_collection",
	StateTechnicalQuestions: "technical_questions",
	StateClosing:            "closing",
	StateEnded:              "ended",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
