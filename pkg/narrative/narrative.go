// Package narrative defines the contract between the turn orchestrator and
// the narrator: the prompt sent out and the proposal that comes back. The
// proposal is untrusted input; everything in it is validated downstream.
package narrative

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

// Narrator message roles, matching the chat-completion wire shape.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message sent to the narrator.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnPrompt carries everything the narrator needs to write one turn.
type TurnPrompt struct {
	RunID  uuid.UUID `json:"run_id"`
	TurnNo int       `json:"turn_no"`
	Locale string    `json:"locale,omitempty"`

	// SceneID and ScenePrompt frame the scene when a new one was selected
	// this turn; both empty on continuation turns.
	SceneID     string `json:"scene_id,omitempty"`
	ScenePrompt string `json:"scene_prompt,omitempty"`

	// ChoiceText is the player's selected choice, verbatim.
	ChoiceText string `json:"choice_text,omitempty"`

	// Summary is the rolling narrative summary; Recent holds the last few
	// narrative-log entries, oldest first.
	Summary string   `json:"summary,omitempty"`
	Recent  []string `json:"recent,omitempty"`

	// State is a snapshot for prompt building only; the narrator never
	// mutates it.
	State *state.GameState `json:"-"`
}

// Cost is the deterministic resource price of taking a choice. It is applied
// by the engine before the narrator runs, never by the narrator.
type Cost struct {
	Stamina      int `json:"stamina,omitempty"`
	Qi           int `json:"qi,omitempty"`
	Silver       int `json:"silver,omitempty"`
	SpiritStones int `json:"spirit_stones,omitempty"`
	TimeSegments int `json:"time_segments,omitempty"`
}

// Zero reports whether the cost is entirely free.
func (c Cost) Zero() bool {
	return c == Cost{}
}

// Choice is one option offered to the player for the next turn.
type Choice struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	TextEN string `json:"text_en,omitempty"`
	Cost   Cost   `json:"cost,omitempty"`
}

// Proposal is the narrator's full response for one turn: prose, the next
// choices, and the state changes it proposes. Deltas are suggestions only;
// the delta engine clamps or rejects each one independently.
type Proposal struct {
	Narrative      string                `json:"narrative"`
	Choices        []Choice              `json:"choices"`
	ProposedDeltas []state.ProposedDelta `json:"deltas,omitempty"`
	Events         []state.GameEvent     `json:"events,omitempty"`
}

// Validate checks the minimum shape the orchestrator requires. A proposal
// failing validation is replaced by the fallback, not repaired.
func (p *Proposal) Validate() error {
	if p == nil {
		return fmt.Errorf("nil proposal")
	}
	if p.Narrative == "" {
		return fmt.Errorf("proposal has empty narrative")
	}
	if len(p.Choices) == 0 {
		return fmt.Errorf("proposal offers no choices")
	}
	for i, c := range p.Choices {
		if c.ID == "" || c.Text == "" {
			return fmt.Errorf("choice %d missing id or text", i)
		}
	}
	return nil
}

// ChoiceByID returns the proposal choice with the ID, or nil.
func (p *Proposal) ChoiceByID(id string) *Choice {
	for i := range p.Choices {
		if p.Choices[i].ID == id {
			return &p.Choices[i]
		}
	}
	return nil
}
