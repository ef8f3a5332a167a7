// Package services holds the narrator backends. A narrator turns a
// TurnPrompt into a Proposal; the engine treats whatever comes back as
// untrusted and falls back to a deterministic proposal on any failure.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hmnguyen-dev/tutien-engine/pkg/narrative"
	"github.com/hmnguyen-dev/tutien-engine/pkg/textfilter"
)

// NarratorService generates one narrative turn.
type NarratorService interface {
	GenerateTurn(ctx context.Context, prompt narrative.TurnPrompt) (*narrative.Proposal, error)
	Ping(ctx context.Context) error
}

// parseProposal extracts and validates a Proposal from raw model output.
// Shared by every backend so fence handling stays in one place.
func parseProposal(raw string) (*narrative.Proposal, error) {
	blob := textfilter.ExtractJSON(raw)
	if blob == "" {
		return nil, fmt.Errorf("no JSON object in narrator output")
	}
	var p narrative.Proposal
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		return nil, fmt.Errorf("failed to parse narrator output: %w", err)
	}
	p.Narrative = textfilter.StripMarkers(p.Narrative)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Fallback returns a deterministic, well-formed proposal used whenever the
// narrator errors or returns a malformed shape. It advances the story
// without touching state.
func Fallback(prompt narrative.TurnPrompt) *narrative.Proposal {
	text := "Thời gian lặng lẽ trôi qua. Bạn tĩnh tâm điều tức, chờ cơ duyên kế tiếp."
	if prompt.ScenePrompt != "" {
		text = prompt.ScenePrompt
	}
	return &narrative.Proposal{
		Narrative: text,
		Choices: []narrative.Choice{
			{
				ID:   "cultivate",
				Text: "Tĩnh tọa tu luyện",
				Cost: narrative.Cost{Stamina: 10, TimeSegments: 1},
			},
			{
				ID:   "rest",
				Text: "Nghỉ ngơi dưỡng sức",
				Cost: narrative.Cost{TimeSegments: 1},
			},
			{
				ID:   "explore",
				Text: "Ra ngoài thăm dò",
				Cost: narrative.Cost{Stamina: 15, TimeSegments: 1},
			},
		},
	}
}

// systemPrompt is the narrator contract: write the scene, offer choices,
// and propose state changes in strict JSON.
const systemPrompt = `You are the narrator of a Vietnamese xianxia (tu tiên) text RPG.
Write immersive second-person prose in Vietnamese. Keep each turn under 200 words.

Respond with ONLY a JSON object, no markdown fences, in this shape:
{
  "narrative": "the prose for this turn",
  "choices": [{"id": "snake_case_id", "text": "choice text", "cost": {"stamina": 0, "qi": 0, "silver": 0, "spirit_stones": 0, "time_segments": 1}}],
  "deltas": [{"field": "namespace.sub_field", "operation": "add|subtract|set", "value": 0}]
}

Offer 2-4 choices. Deltas describe consequences of THIS turn; the engine
validates and clamps every delta, so propose modest values. Known delta
namespaces: stats, attrs, karma, progress, inventory, skills, techniques,
sect, location.`

// BuildMessages renders the prompt into narrator chat messages.
func BuildMessages(prompt narrative.TurnPrompt) []narrative.Message {
	var sb strings.Builder

	if prompt.Summary != "" {
		sb.WriteString("Story so far: ")
		sb.WriteString(prompt.Summary)
		sb.WriteString("\n\n")
	}
	if len(prompt.Recent) > 0 {
		sb.WriteString("Recent turns:\n")
		for _, r := range prompt.Recent {
			sb.WriteString("- ")
			sb.WriteString(r)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	if gs := prompt.State; gs != nil {
		fmt.Fprintf(&sb, "Character: %s, %s tầng %d (thân: %s), linh căn %s %v.\n",
			gs.Name, gs.Progress.Realm, gs.Progress.RealmStage,
			gs.Progress.BodyRealm, gs.SpiritRoot.Grade, gs.SpiritRoot.Elements)
		fmt.Fprintf(&sb, "HP %d/%d, Qi %d/%d, Stamina %d/%d, Silver %d, Spirit stones %d, Karma %d.\n",
			gs.Stats.HP, gs.Stats.HPMax, gs.Stats.Qi, gs.Stats.QiMax,
			gs.Stats.Stamina, gs.Stats.StaminaMax, gs.Stats.Silver, gs.Stats.SpiritStones, gs.Karma)
		if gs.Location != "" {
			fmt.Fprintf(&sb, "Location: %s.\n", gs.Location)
		}
		if gs.SectMembership != nil {
			fmt.Fprintf(&sb, "Sect: %s (%s).\n", gs.SectMembership.SectName, gs.SectMembership.Rank)
		}
		sb.WriteString("\n")
	}
	if prompt.ScenePrompt != "" {
		fmt.Fprintf(&sb, "New scene: %s\n\n", prompt.ScenePrompt)
	}
	if prompt.ChoiceText != "" {
		fmt.Fprintf(&sb, "The player chose: %s\n", prompt.ChoiceText)
	} else {
		sb.WriteString("Open the scene.\n")
	}
	fmt.Fprintf(&sb, "This is turn %d.", prompt.TurnNo)

	return []narrative.Message{
		{Role: narrative.RoleSystem, Content: systemPrompt},
		{Role: narrative.RoleUser, Content: sb.String()},
	}
}
