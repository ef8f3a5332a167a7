package state

// SectRank is a member's standing within a sect, lowest to highest.
type SectRank string

const (
	RankOuterDisciple SectRank = "đệ tử ngoại môn"
	RankInnerDisciple SectRank = "đệ tử nội môn"
	RankCoreDisciple  SectRank = "đệ tử hạch tâm"
	RankElder         SectRank = "trưởng lão"
	RankGrandElder    SectRank = "thái thượng trưởng lão"
)

// SectRanks lists the five ranks in ascending order.
var SectRanks = []SectRank{
	RankOuterDisciple,
	RankInnerDisciple,
	RankCoreDisciple,
	RankElder,
	RankGrandElder,
}

// SectBenefits are the passive benefits a rank confers.
type SectBenefits struct {
	// CultivationBonus is a percentage added to cultivation exp gain.
	CultivationBonus float64 `json:"cultivation_bonus"`
	// MonthlySalary is paid in spirit stones.
	MonthlySalary int `json:"monthly_salary"`
	// MissionReward multiplies sect mission contribution payouts.
	MissionReward float64 `json:"mission_reward"`
}

// rankBenefits is the fixed rank -> benefits lookup applied on promotion.
var rankBenefits = map[SectRank]SectBenefits{
	RankOuterDisciple: {CultivationBonus: 5, MonthlySalary: 1, MissionReward: 1.0},
	RankInnerDisciple: {CultivationBonus: 10, MonthlySalary: 3, MissionReward: 1.2},
	RankCoreDisciple:  {CultivationBonus: 20, MonthlySalary: 8, MissionReward: 1.5},
	RankElder:         {CultivationBonus: 35, MonthlySalary: 20, MissionReward: 2.0},
	RankGrandElder:    {CultivationBonus: 50, MonthlySalary: 50, MissionReward: 3.0},
}

// BenefitsForRank returns the benefit bundle for a rank. Unknown ranks get
// outer-disciple benefits.
func BenefitsForRank(r SectRank) SectBenefits {
	if b, ok := rankBenefits[r]; ok {
		return b
	}
	return rankBenefits[RankOuterDisciple]
}

// ValidSectRank reports whether r is one of the five known ranks.
func ValidSectRank(r SectRank) bool {
	_, ok := rankBenefits[r]
	return ok
}

// SectMembership is the full record of a character's sect affiliation.
type SectMembership struct {
	SectID     string       `json:"sect_id"`
	SectName   string       `json:"sect_name"`
	SectNameEN string       `json:"sect_name_en,omitempty"`
	Rank       SectRank     `json:"rank"`
	Benefits   SectBenefits `json:"benefits"`

	Contribution int `json:"contribution"`
	Reputation   int `json:"reputation"`
	JoinedTurn   int `json:"joined_turn,omitempty"`
}

// JoinSect creates the membership record and syncs the legacy name mirrors.
func (gs *GameState) JoinSect(m SectMembership) {
	if m.Rank == "" {
		m.Rank = RankOuterDisciple
	}
	m.Benefits = BenefitsForRank(m.Rank)
	gs.SectMembership = &m
	gs.SectName = m.SectName
	gs.SectNameEN = m.SectNameEN
}

// LeaveSect clears the membership record and the legacy mirrors.
func (gs *GameState) LeaveSect() {
	gs.SectMembership = nil
	gs.SectName = ""
	gs.SectNameEN = ""
}

// SectCultivationBonus returns the multiplier contributed by sect
// membership: 1 + cultivation_bonus/100, or 1.0 when unaffiliated.
func (gs *GameState) SectCultivationBonus() float64 {
	if gs.SectMembership == nil {
		return 1.0
	}
	return 1.0 + gs.SectMembership.Benefits.CultivationBonus/100.0
}
