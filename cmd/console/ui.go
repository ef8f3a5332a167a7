package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/hmnguyen-dev/tutien-engine/internal/turn"
	"github.com/hmnguyen-dev/tutien-engine/pkg/narrative"
	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config        *ConsoleConfig
	client        *http.Client
	gameState     *state.GameState
	choices       []narrative.Choice
	history       []string
	storyViewport viewport.Model
	metaViewport  viewport.Model
	selected      int
	ready         bool
	width         int
	height        int
	err           error
	loading       bool
	statusLine    string

	showQuitModal bool
	progressTick  int
}

type turnResultMsg struct {
	result *turn.TurnResult
	err    error
}

type clipboardMsg struct {
	err error
}

type runRefreshedMsg struct {
	gameState *state.GameState
	err       error
}

type progressTickMsg struct{}

var (
	storyPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	selectedChoiceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, gs *state.GameState) ConsoleUI {
	storyVp := viewport.New(50, 20)
	storyVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:        cfg,
		client:        client,
		gameState:     gs,
		storyViewport: storyVp,
		metaViewport:  metaVp,
		loading:       true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	// Open the run with a sceneless first turn.
	return tea.Batch(m.submitTurn(narrative.Choice{}), progressTick())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var vpCmd, mvCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.storyViewport, vpCmd = m.storyViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		storyWidth := int(float64(m.width)*0.72) - 4
		metaWidth := m.width - storyWidth - 6

		m.storyViewport.Width = storyWidth - 2
		m.storyViewport.Height = m.height - len(m.choices) - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4

		m.ready = true
		m.writeStoryContent()
		if m.gameState != nil {
			m.metaViewport.SetContent(writeMetadata(m.gameState))
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if !m.loading && m.selected > 0 {
				m.selected--
			}
		case tea.KeyDown:
			if !m.loading && m.selected < len(m.choices)-1 {
				m.selected++
			}
		case tea.KeyEnter:
			if m.loading || len(m.choices) == 0 {
				return m, nil
			}
			choice := m.choices[m.selected]
			m.loading = true
			m.progressTick = 0
			m.statusLine = ""
			m.history = append(m.history,
				promptStyle.Render("▶ "+choiceLabel(choice)))
			m.writeStoryContent()
			return m, tea.Batch(m.submitTurn(choice), progressTick())
		default:
			switch msg.String() {
			case "y":
				if len(m.history) > 0 {
					return m, m.copyLatest()
				}
			case "r":
				return m, m.refreshRun()
			}
		}

	case turnResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.history = append(m.history, errorStyle.Render("Error: "+msg.err.Error()))
		} else {
			m.gameState = msg.result.State
			m.choices = msg.result.Choices
			m.selected = 0
			m.history = append(m.history, msg.result.Narrative)
			for _, ev := range msg.result.Events {
				m.history = append(m.history, eventStyle.Render("⚡ "+eventLabel(ev)))
			}
			if msg.result.SaveStatus == turn.SaveStatusWarning {
				m.history = append(m.history,
					errorStyle.Render("⚠ Progress could not be saved; this turn may be lost."))
			}
			m.metaViewport.SetContent(writeMetadata(m.gameState))
		}
		m.writeStoryContent()
		m.storyViewport.GotoBottom()
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.statusLine = errorStyle.Render("Copy failed: " + msg.err.Error())
		} else {
			m.statusLine = loadingStyle.Render("Copied latest narration to clipboard")
		}
		return m, nil

	case runRefreshedMsg:
		if msg.err == nil && msg.gameState != nil {
			m.gameState = msg.gameState
			m.metaViewport.SetContent(writeMetadata(m.gameState))
		}
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeStoryContent()
			return m, progressTick()
		}
	}

	m.storyViewport, vpCmd = m.storyViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(vpCmd, mvCmd)
}

func (m *ConsoleUI) writeStoryContent() {
	storyWidth := m.storyViewport.Width - 6
	if storyWidth < 20 {
		storyWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("TU TIÊN ENGINE") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", storyWidth)) + "\n\n")

	for _, entry := range m.history {
		content.WriteString(narratorStyle.Render("") + wordwrap.String(entry, storyWidth) + "\n\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.storyViewport.SetContent(content.String())
	m.storyViewport.GotoBottom()
}

func writeMetadata(gs *state.GameState) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render(gs.Name) + "\n\n")

	content.WriteString(fmt.Sprintf("Cảnh giới: %s tầng %d\n", gs.Progress.Realm, gs.Progress.RealmStage))
	content.WriteString(fmt.Sprintf("Thể phách: %s tầng %d\n\n", gs.Progress.BodyRealm, gs.Progress.BodyStage))

	content.WriteString(fmt.Sprintf("HP      %d/%d\n", gs.Stats.HP, gs.Stats.HPMax))
	content.WriteString(fmt.Sprintf("Qi      %d/%d\n", gs.Stats.Qi, gs.Stats.QiMax))
	content.WriteString(fmt.Sprintf("Stamina %d/%d\n\n", gs.Stats.Stamina, gs.Stats.StaminaMax))

	content.WriteString(fmt.Sprintf("Bạc: %d\n", gs.Stats.Silver))
	content.WriteString(fmt.Sprintf("Linh thạch: %d\n\n", gs.Stats.SpiritStones))

	content.WriteString(fmt.Sprintf("Tuổi: %d/%d\n", gs.Calendar.Age, gs.Calendar.MaxLifespan))
	content.WriteString(fmt.Sprintf("Năm %d tháng %d ngày %d\n\n", gs.Calendar.Year, gs.Calendar.Month, gs.Calendar.Day))

	if gs.SectMembership != nil {
		content.WriteString(fmt.Sprintf("Tông môn: %s\n", gs.SectMembership.SectName))
		content.WriteString(fmt.Sprintf("Chức vị: %s\n", gs.SectMembership.Rank))
		content.WriteString(fmt.Sprintf("Cống hiến: %d\n\n", gs.SectMembership.Contribution))
	}

	if gs.Location != "" {
		content.WriteString("Vị trí: " + gs.Location + "\n\n")
	}

	content.WriteString(fmt.Sprintf("Lượt: %d\n", gs.TurnCount))
	content.WriteString(fmt.Sprintf("Vật phẩm: %d\n\n", len(gs.Inventory)))

	content.WriteString("Commands:\n")
	content.WriteString("• ↑/↓: Choose\n")
	content.WriteString("• Enter: Act\n")
	content.WriteString("• y: Copy narration\n")
	content.WriteString("• r: Refresh state\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func choiceLabel(c narrative.Choice) string {
	label := c.Text
	if label == "" {
		label = c.TextEN
	}
	if c.Cost.Zero() {
		return label
	}
	var costs []string
	if c.Cost.Stamina > 0 {
		costs = append(costs, fmt.Sprintf("%d thể lực", c.Cost.Stamina))
	}
	if c.Cost.Qi > 0 {
		costs = append(costs, fmt.Sprintf("%d qi", c.Cost.Qi))
	}
	if c.Cost.Silver > 0 {
		costs = append(costs, fmt.Sprintf("%d bạc", c.Cost.Silver))
	}
	if c.Cost.SpiritStones > 0 {
		costs = append(costs, fmt.Sprintf("%d linh thạch", c.Cost.SpiritStones))
	}
	if len(costs) == 0 {
		return label
	}
	return fmt.Sprintf("%s (%s)", label, strings.Join(costs, ", "))
}

func eventLabel(ev state.GameEvent) string {
	switch ev.Type {
	case state.EventBreakthrough:
		return fmt.Sprintf("Đột phá! %v tầng %v", ev.Data["realm"], ev.Data["stage"])
	case state.EventBodyBreakthrough:
		return fmt.Sprintf("Thể phách đột phá! %v tầng %v", ev.Data["body_realm"], ev.Data["body_stage"])
	case state.EventCombat:
		if v, ok := ev.Data["victory"].(bool); ok && v {
			return fmt.Sprintf("Chiến thắng %v", ev.Data["enemy_name"])
		}
		return fmt.Sprintf("Bại trận trước %v", ev.Data["enemy_name"])
	case state.EventLoot:
		return "Thu hoạch chiến lợi phẩm"
	case state.EventSkillLevelUp:
		return fmt.Sprintf("Kỹ năng thăng cấp: %v", ev.Data["skill_name"])
	case state.EventSectJoin:
		return fmt.Sprintf("Gia nhập %v", ev.Data["sect_name"])
	case state.EventSectPromotion:
		return fmt.Sprintf("Thăng chức: %v", ev.Data["rank"])
	default:
		return string(ev.Type)
	}
}

func (m ConsoleUI) submitTurn(choice narrative.Choice) tea.Cmd {
	return func() tea.Msg {
		result, err := postTurn(m.client, m.config.APIBaseURL, turn.TurnRequest{
			RunID:      m.gameState.ID,
			ChoiceID:   choice.ID,
			ChoiceText: choice.Text,
			Cost:       choice.Cost,
		})
		return turnResultMsg{result, err}
	}
}

func (m ConsoleUI) refreshRun() tea.Cmd {
	return func() tea.Msg {
		gs, err := getRun(m.client, m.config.APIBaseURL, m.gameState.ID)
		return runRefreshedMsg{gs, err}
	}
}

func (m ConsoleUI) copyLatest() tea.Cmd {
	latest := m.history[len(m.history)-1]
	return func() tea.Msg {
		return clipboardMsg{clipboard.WriteAll(latest)}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Rời khỏi tu luyện?"))
	content.WriteString("\n\n")
	content.WriteString("Progress is saved after every turn.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderChoices(width int) string {
	if m.loading {
		return loadingStyle.Render("Thiên cơ đang vận chuyển...")
	}
	if len(m.choices) == 0 {
		return promptStyle.Render("No choices available")
	}

	var b strings.Builder
	for i, c := range m.choices {
		label := choiceLabel(c)
		if len(label) > width-4 && width > 8 {
			label = label[:width-5] + "…"
		}
		if i == m.selected {
			b.WriteString(selectedChoiceStyle.Render("▶ " + label))
		} else {
			b.WriteString(choiceStyle.Render("  " + label))
		}
		b.WriteString("\n")
	}
	if m.statusLine != "" {
		b.WriteString(m.statusLine)
	}
	return b.String()
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	storyWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - storyWidth - 6

	storyPanel := storyPanelStyle.Width(storyWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.storyViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", storyWidth-4)),
			m.renderChoices(storyWidth),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, storyPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.storyViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
