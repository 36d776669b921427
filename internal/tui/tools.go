package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/naveenspark/fitline/internal/store"
	"github.com/naveenspark/fitline/pkg/domain"
)

// restPresets are the rest timer lengths in seconds; the default is 90.
var restPresets = []int{30, 60, 90, 120}

const defaultPreset = 2

type toolsSection int

const (
	sectionNotes toolsSection = iota
	sectionCalories
	sectionTimer
)

var toolsSections = []string{"Notes", "Calories", "Rest timer"}

type toolsState int

const (
	toolsBrowse toolsState = iota
	toolsAddNote
	toolsAddFood
)

// Food form field order.
const (
	foodName = iota
	foodCalories
	foodProtein
	foodFat
	foodCarbs
)

type toolsLoadedMsg struct {
	notes   []domain.Note
	entries []domain.CalorieEntry
	err     error
}

type toolsSavedMsg struct {
	status string
	err    error
}

type restTickMsg struct {
	gen int
}

type toolsModel struct {
	docs      *store.DB
	section   toolsSection
	state     toolsState
	notes     []domain.Note
	entries   []domain.CalorieEntry
	cursor    int
	note      string
	food      form
	preset    int
	remaining int
	running   bool
	gen       int
	statusMsg string
	err       string
	now       func() time.Time
	width     int
	height    int
}

func newToolsModel(docs *store.DB) toolsModel {
	return toolsModel{
		docs: docs,
		food: newForm(
			field{label: "food", placeholder: "e.g. oatmeal"},
			field{label: "calories", placeholder: "kcal"},
			field{label: "protein", placeholder: "g, optional"},
			field{label: "fat", placeholder: "g, optional"},
			field{label: "carbs", placeholder: "g, optional"},
		),
		preset:    defaultPreset,
		remaining: restPresets[defaultPreset],
		now:       time.Now,
	}
}

func (m toolsModel) Init() tea.Cmd {
	docs := m.docs
	return func() tea.Msg {
		if docs == nil {
			return toolsLoadedMsg{}
		}
		notes, err := docs.Notes()
		if err != nil {
			return toolsLoadedMsg{err: err}
		}
		entries, err := docs.CalorieEntries()
		return toolsLoadedMsg{notes: notes, entries: entries, err: err}
	}
}

// leave stops the rest timer; its pending tick becomes stale.
func (m toolsModel) leave() toolsModel {
	m.running = false
	m.gen++
	return m
}

func restTickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return restTickMsg{gen: gen}
	})
}

func (m toolsModel) editing() bool {
	return m.state != toolsBrowse
}

func (m toolsModel) Update(msg tea.Msg) (toolsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case toolsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.notes = msg.notes
		m.entries = msg.entries
		if m.cursor >= len(m.notes) {
			m.cursor = max(len(m.notes)-1, 0)
		}
		return m, nil

	case toolsSavedMsg:
		if msg.err != nil {
			m.statusMsg = "save failed: " + msg.err.Error()
			return m, nil
		}
		m.statusMsg = msg.status
		return m, m.Init()

	case restTickMsg:
		if msg.gen != m.gen || !m.running {
			return m, nil
		}
		m.remaining--
		if m.remaining <= 0 {
			m.remaining = 0
			m.running = false
			m.statusMsg = "rest over, next set!"
			return m, nil
		}
		return m, restTickCmd(m.gen)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case toolsAddNote:
			return m.updateAddNote(msg)
		case toolsAddFood:
			return m.updateAddFood(msg)
		}
		m.statusMsg = ""
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m toolsModel) updateBrowse(msg tea.KeyMsg) (toolsModel, tea.Cmd) {
	if msg.String() == "tab" {
		m.section = (m.section + 1) % toolsSection(len(toolsSections))
		m.cursor = 0
		return m, nil
	}

	switch m.section {
	case sectionNotes:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.notes)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "a":
			m.state = toolsAddNote
			m.note = ""
		case "d":
			if m.cursor < len(m.notes) {
				return m, m.deleteNote(m.notes[m.cursor].ID)
			}
		}

	case sectionCalories:
		if msg.String() == "a" {
			m.state = toolsAddFood
			m.food = m.food.clear()
			m.err = ""
		}

	case sectionTimer:
		switch msg.String() {
		case " ", "enter":
			if m.running {
				m.running = false
				m.gen++
				return m, nil
			}
			if m.remaining == 0 {
				m.remaining = restPresets[m.preset]
			}
			m.running = true
			m.gen++
			return m, restTickCmd(m.gen)
		case "p":
			m.preset = (m.preset + 1) % len(restPresets)
			m.remaining = restPresets[m.preset]
			m.running = false
			m.gen++
		case "r":
			m.remaining = restPresets[m.preset]
			m.running = false
			m.gen++
		}
	}
	return m, nil
}

func (m toolsModel) updateAddNote(msg tea.KeyMsg) (toolsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = toolsBrowse
	case "enter":
		text := strings.TrimSpace(m.note)
		if text == "" {
			m.state = toolsBrowse
			return m, nil
		}
		m.state = toolsBrowse
		m.note = ""
		docs := m.docs
		return m, func() tea.Msg {
			_, err := docs.AddNote(text)
			return toolsSavedMsg{status: "note saved", err: err}
		}
	default:
		m.note = editKey(m.note, msg)
	}
	return m, nil
}

func (m toolsModel) updateAddFood(msg tea.KeyMsg) (toolsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = toolsBrowse
		m.err = ""
		return m, nil
	case "enter":
		entry, err := m.foodEntry()
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.err = ""
		m.state = toolsBrowse
		docs := m.docs
		return m, func() tea.Msg {
			_, err := docs.AddCalorieEntry(entry)
			return toolsSavedMsg{status: "logged " + entry.Food, err: err}
		}
	}
	m.food = m.food.update(msg)
	return m, nil
}

// foodEntry reads the food form. Food and calories are required; macros
// default to zero.
func (m toolsModel) foodEntry() (domain.CalorieEntry, error) {
	e := domain.CalorieEntry{Food: m.food.value(foodName), LoggedAt: m.now()}
	if e.Food == "" {
		return e, fmt.Errorf("food is required")
	}
	nums := []struct {
		idx      int
		name     string
		dst      *float64
		required bool
	}{
		{foodCalories, "calories", &e.Calories, true},
		{foodProtein, "protein", &e.Protein, false},
		{foodFat, "fat", &e.Fat, false},
		{foodCarbs, "carbs", &e.Carbs, false},
	}
	for _, n := range nums {
		s := m.food.value(n.idx)
		if s == "" {
			if n.required {
				return e, fmt.Errorf("%s is required", n.name)
			}
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			return e, fmt.Errorf("%s must be a non-negative number", n.name)
		}
		*n.dst = v
	}
	return e, nil
}

func (m toolsModel) deleteNote(id uuid.UUID) tea.Cmd {
	docs := m.docs
	return func() tea.Msg {
		return toolsSavedMsg{status: "note deleted", err: docs.DeleteNote(id)}
	}
}

func (m toolsModel) helpKeys() string {
	switch m.state {
	case toolsAddNote:
		return helpBar("enter", "save", "esc", "cancel")
	case toolsAddFood:
		return helpBar("tab", "next", "enter", "save", "esc", "cancel")
	}
	switch m.section {
	case sectionNotes:
		return helpBar("1-6", "tabs", "tab", "section", "j/k", "nav", "a", "add", "d", "delete", "q", "quit")
	case sectionCalories:
		return helpBar("1-6", "tabs", "tab", "section", "a", "add food", "q", "quit")
	}
	return helpBar("1-6", "tabs", "tab", "section", "space", "start/pause", "p", "preset", "r", "reset", "q", "quit")
}

func (m toolsModel) View() string {
	var b strings.Builder
	b.WriteString("\n ")
	for i, name := range toolsSections {
		if toolsSection(i) == m.section {
			b.WriteString(accentStyle.Underline(true).Render(name))
		} else {
			b.WriteString(dimStyle.Render(name))
		}
		b.WriteString("   ")
	}
	b.WriteString("\n\n")

	switch m.section {
	case sectionNotes:
		m.viewNotes(&b)
	case sectionCalories:
		m.viewCalories(&b)
	case sectionTimer:
		m.viewTimer(&b)
	}

	if m.err != "" {
		b.WriteString("\n " + errorStyle.Render(m.err) + "\n")
	} else if m.statusMsg != "" {
		b.WriteString("\n " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}

func (m toolsModel) viewNotes(b *strings.Builder) {
	if m.state == toolsAddNote {
		b.WriteString(" " + inputPromptStyle.Render("> ") + normalStyle.Render(m.note) + accentStyle.Render("█") + "\n\n")
	}
	if len(m.notes) == 0 {
		b.WriteString(" " + dimStyle.Render("no notes yet") + "\n")
		return
	}
	for i, n := range m.notes {
		line := metaStyle.Render(fmt.Sprintf("%8s", formatTime(n.CreatedAt))) + "  " + truncStr(n.Text, 70)
		if i == m.cursor && m.state == toolsBrowse {
			b.WriteString(" " + selectedRowBg.Render(selectedStyle.Render(line)) + "\n")
		} else {
			b.WriteString(" " + normalStyle.Render(line) + "\n")
		}
	}
}

func (m toolsModel) viewCalories(b *strings.Builder) {
	if m.state == toolsAddFood {
		b.WriteString(m.food.view() + "\n")
	}
	today := m.now()
	total := domain.CalorieTotals(m.entries, today)
	fmt.Fprintf(b, " %s %s\n", sectionHeaderStyle.Render("Today"),
		normalStyle.Render(fmt.Sprintf("%.0f kcal · P %.0fg · F %.0fg · C %.0fg", total.Calories, total.Protein, total.Fat, total.Carbs)))

	y, mo, d := today.Date()
	shown := 0
	for _, e := range m.entries {
		ey, em, ed := e.LoggedAt.In(today.Location()).Date()
		if ey != y || em != mo || ed != d {
			continue
		}
		fmt.Fprintf(b, "   %s %s\n", normalStyle.Render(fmt.Sprintf("%-24s", truncStr(e.Food, 24))), dimStyle.Render(fmt.Sprintf("%.0f kcal", e.Calories)))
		shown++
	}
	if shown == 0 {
		b.WriteString("   " + dimStyle.Render("nothing logged today") + "\n")
	}
}

func (m toolsModel) viewTimer(b *strings.Builder) {
	clock := formatClock(m.remaining)
	if m.running {
		clock = accentStyle.Bold(true).Render(clock)
	} else {
		clock = selectedStyle.Render(clock)
	}
	b.WriteString("   " + clock + "\n\n ")
	for i, p := range restPresets {
		label := fmt.Sprintf("%ds", p)
		if i == m.preset {
			b.WriteString(okStyle.Render("["+label+"]") + " ")
		} else {
			b.WriteString(dimStyle.Render(" "+label+" ") + " ")
		}
	}
	b.WriteString("\n")
}
