package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validProposal() *Proposal {
	return &Proposal{
		Narrative: "Gió núi thổi qua sơn môn.",
		Choices: []Choice{
			{ID: "cultivate", Text: "Tĩnh tọa tu luyện"},
			{ID: "explore", Text: "Xuống núi dạo chơi", Cost: Cost{Stamina: 10, TimeSegments: 1}},
		},
	}
}

func TestProposalValidate(t *testing.T) {
	assert.NoError(t, validProposal().Validate())

	var nilP *Proposal
	assert.Error(t, nilP.Validate())

	p := validProposal()
	p.Narrative = ""
	assert.Error(t, p.Validate())

	p = validProposal()
	p.Choices = nil
	assert.Error(t, p.Validate())

	p = validProposal()
	p.Choices[0].ID = ""
	assert.Error(t, p.Validate())
}

func TestChoiceByID(t *testing.T) {
	p := validProposal()
	c := p.ChoiceByID("explore")
	assert.NotNil(t, c)
	assert.Equal(t, 10, c.Cost.Stamina)
	assert.Nil(t, p.ChoiceByID("missing"))
}

func TestCostZero(t *testing.T) {
	assert.True(t, Cost{}.Zero())
	assert.False(t, Cost{Qi: 1}.Zero())
}
