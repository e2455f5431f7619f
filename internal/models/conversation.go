// internal/models/conversation.go
package models

// Intent is the coarse category assigned to a free-text utterance.
type Intent string

const (
	IntentGreeting Intent = "greeting"
	IntentSearch   Intent = "search"
	IntentShow     Intent = "show"
	IntentUpdate   Intent = "update"
	IntentAdd      Intent = "add"
	IntentGeneral  Intent = "general"
)

// FlowMode identifies the active multi-step dialog, if any.
type FlowMode string

const (
	ModeNone   FlowMode = "none"
	ModeShow   FlowMode = "show"
	ModeUpdate FlowMode = "update"
	ModeAdd    FlowMode = "add"
	ModeSearch FlowMode = "search"
)

// ConversationState is the per-session mutable flow state, owned exclusively
// by the flow engine. Invariant: Mode == ModeNone implies Step == 0 and empty Data.
type ConversationState struct {
	Mode            FlowMode          `json:"mode"`
	Step            int               `json:"step"`
	Data            map[string]string `json:"data"`
	CurrentBusiness *Listing          `json:"currentBusiness,omitempty"`
}

// NewConversationState returns an idle state.
func NewConversationState() *ConversationState {
	return &ConversationState{
		Mode: ModeNone,
		Step: 0,
		Data: map[string]string{},
	}
}

// Reset clears the active flow. CurrentBusiness survives a reset so
// follow-up suggestions can still anchor on the last resolved listing.
func (s *ConversationState) Reset() {
	s.Mode = ModeNone
	s.Step = 0
	s.Data = map[string]string{}
}

// Begin switches to a new flow at its first step.
func (s *ConversationState) Begin(mode FlowMode) {
	s.Mode = mode
	s.Step = 1
	s.Data = map[string]string{}
}
