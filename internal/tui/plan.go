package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fitline/internal/store"
	"github.com/naveenspark/fitline/pkg/client"
	"github.com/naveenspark/fitline/pkg/domain"
	"github.com/naveenspark/fitline/pkg/workout"
)

type planState int

const (
	planBrowse planState = iota
	planPrefs
	planEdit
)

// Preferences form field order.
const (
	prefGoal = iota
	prefLevel
	prefDays
	prefEquipment
)

// Edit form field order.
const (
	editSets = iota
	editReps
	editWeight
)

type planLoadedMsg struct {
	plan   *domain.WorkoutPlan
	source string
	err    error
}

func (m planLoadedMsg) failure() error { return m.err }

type planSavedMsg struct {
	plan *domain.WorkoutPlan
	err  error
}

type planLoggedMsg struct {
	exercise string
	err      error
}

func (m planLoggedMsg) failure() error { return m.err }

type routineCompletedMsg struct {
	day string
	err error
}

func (m routineCompletedMsg) failure() error { return m.err }

type planCopyMsg struct {
	err error
}

type planModel struct {
	client    *client.Client
	docs      *store.DB
	plan      *domain.WorkoutPlan
	state     planState
	prefs     form
	edit      form
	day       int
	cursor    int
	loading   bool
	statusMsg string
	err       string
	width     int
	height    int
}

func newPlanModel(c *client.Client, docs *store.DB) planModel {
	goals := make([]string, len(domain.Goals))
	for i, g := range domain.Goals {
		goals[i] = string(g)
	}
	levels := make([]string, len(domain.Levels))
	for i, l := range domain.Levels {
		levels[i] = string(l)
	}
	return planModel{
		client: c,
		docs:   docs,
		prefs: newForm(
			field{label: "goal", options: goals},
			field{label: "level", options: levels},
			field{label: "days", value: strconv.Itoa(workout.DefaultDays), placeholder: fmt.Sprintf("%d-%d", workout.MinDays, workout.MaxDays)},
			field{label: "equipment", placeholder: "any (e.g. dumbbell)"},
		),
		edit: newForm(
			field{label: "sets"},
			field{label: "reps"},
			field{label: "weight", placeholder: "kg, blank for none"},
		),
	}
}

func (m planModel) Init() tea.Cmd {
	docs := m.docs
	return func() tea.Msg {
		if docs == nil {
			return planLoadedMsg{}
		}
		plan, err := docs.WorkoutPlan()
		return planLoadedMsg{plan: plan, source: "saved", err: err}
	}
}

// preferences reads the form into workout.Preferences.
func (m planModel) preferences() (workout.Preferences, error) {
	p := workout.Preferences{
		Goal:      domain.Goal(m.prefs.value(prefGoal)),
		Level:     domain.Level(m.prefs.value(prefLevel)),
		Equipment: m.prefs.value(prefEquipment),
	}
	if s := m.prefs.value(prefDays); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil {
			return p, fmt.Errorf("days must be a number")
		}
		p.Days = days
	}
	return p, p.Validate()
}

func (m planModel) generate(p workout.Preferences) tea.Cmd {
	c, docs := m.client, m.docs
	return func() tea.Msg {
		catalog, err := c.ListExercises(context.Background(), client.ExerciseFilter{})
		if err != nil {
			return planLoadedMsg{err: err}
		}
		plan, err := workout.Generate(p, catalog, nil)
		if err != nil {
			return planLoadedMsg{err: err}
		}
		if docs != nil {
			if err := docs.SaveWorkoutPlan(plan); err != nil {
				return planLoadedMsg{err: err}
			}
		}
		return planLoadedMsg{plan: plan, source: "generated"}
	}
}

// fetchRemote replaces the local plan with the one stored on the server.
func (m planModel) fetchRemote() tea.Cmd {
	c, docs := m.client, m.docs
	return func() tea.Msg {
		plan, err := c.GetCurrentPlan(context.Background())
		if err != nil {
			return planLoadedMsg{err: err}
		}
		if plan == nil {
			return planLoadedMsg{source: "server has no plan"}
		}
		if docs != nil {
			if err := docs.SaveWorkoutPlan(plan); err != nil {
				return planLoadedMsg{err: err}
			}
		}
		return planLoadedMsg{plan: plan, source: "synced"}
	}
}

func (m planModel) save() tea.Cmd {
	docs, plan := m.docs, m.plan
	return func() tea.Msg {
		if docs == nil {
			return planSavedMsg{plan: plan}
		}
		return planSavedMsg{plan: plan, err: docs.SaveWorkoutPlan(plan)}
	}
}

func (m planModel) routine() *domain.Routine {
	if m.plan == nil || m.day >= len(m.plan.Routines) {
		return nil
	}
	return &m.plan.Routines[m.day]
}

func (m planModel) selected() *domain.PlannedExercise {
	r := m.routine()
	if r == nil || m.cursor >= len(r.Exercises) {
		return nil
	}
	return &r.Exercises[m.cursor]
}

// editing reports whether a form has the keyboard.
func (m planModel) editing() bool {
	return m.state != planBrowse
}

func (m planModel) Update(msg tea.Msg) (planModel, tea.Cmd) {
	switch msg := msg.(type) {
	case planLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		m.err = ""
		if msg.plan != nil {
			m.plan = msg.plan
			m.day, m.cursor = 0, 0
		}
		if msg.source != "" && msg.source != "saved" {
			m.statusMsg = msg.source
		}
		return m, nil

	case planSavedMsg:
		if msg.err != nil {
			m.statusMsg = "save failed: " + msg.err.Error()
		} else {
			m.statusMsg = "saved"
		}
		return m, nil

	case planLoggedMsg:
		if msg.err != nil {
			m.statusMsg = "log failed: " + errText(msg.err)
		} else {
			m.statusMsg = "logged " + msg.exercise
		}
		return m, nil

	case routineCompletedMsg:
		if msg.err != nil {
			m.statusMsg = "complete failed: " + errText(msg.err)
		} else {
			m.statusMsg = msg.day + " complete"
		}
		return m, nil

	case planCopyMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusMsg = "copied!"
		}
		return m, nil

	case dashboardLoadedMsg:
		// Default the generator to the member's profile.
		if msg.me != nil {
			m.prefs = m.prefs.pick(prefGoal, string(msg.me.FitnessGoal))
			m.prefs = m.prefs.pick(prefLevel, string(msg.me.ExperienceLevel))
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch m.state {
		case planPrefs:
			return m.updatePrefs(msg)
		case planEdit:
			return m.updateEdit(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m planModel) updateBrowse(msg tea.KeyMsg) (planModel, tea.Cmd) {
	switch msg.String() {
	case "g":
		m.state = planPrefs
		m.err = ""
		return m, nil
	case "s":
		m.loading = true
		return m, m.fetchRemote()
	}

	if m.plan == nil {
		return m, nil
	}
	switch msg.String() {
	case "j", "down":
		if r := m.routine(); r != nil && m.cursor < len(r.Exercises)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "l", "right", "]":
		if m.day < len(m.plan.Routines)-1 {
			m.day++
			m.cursor = 0
		}
	case "left", "[":
		if m.day > 0 {
			m.day--
			m.cursor = 0
		}
	case "+", "=":
		if ex := m.selected(); ex != nil {
			sets := ex.Sets + 1
			if err := workout.EditExercise(m.plan, m.day, m.cursor, workout.Edit{Sets: &sets}); err == nil {
				return m, m.save()
			}
		}
	case "-":
		if ex := m.selected(); ex != nil && ex.Sets > 1 {
			sets := ex.Sets - 1
			if err := workout.EditExercise(m.plan, m.day, m.cursor, workout.Edit{Sets: &sets}); err == nil {
				return m, m.save()
			}
		}
	case "e":
		if ex := m.selected(); ex != nil {
			m.edit.fields[editSets].value = strconv.Itoa(ex.Sets)
			m.edit.fields[editReps].value = strconv.Itoa(ex.Reps)
			m.edit.fields[editWeight].value = ""
			if ex.Weight > 0 {
				m.edit.fields[editWeight].value = strconv.FormatFloat(ex.Weight, 'f', -1, 64)
			}
			m.edit.focus = 0
			m.state = planEdit
		}
	case "enter":
		if ex := m.selected(); ex != nil {
			c := m.client
			entry := domain.WorkoutLog{
				Exercise: ex.Name,
				Sets:     ex.Sets,
				Reps:     ex.Reps,
				Weight:   ex.Weight,
				Date:     time.Now().Format(time.DateOnly),
			}
			return m, func() tea.Msg {
				_, err := c.CreateWorkoutLog(context.Background(), entry)
				return planLoggedMsg{exercise: entry.Exercise, err: err}
			}
		}
	case "x":
		if r := m.routine(); r != nil {
			c, day, id := m.client, r.Day, m.day+1
			return m, func() tea.Msg {
				err := c.CompleteRoutine(context.Background(), id)
				return routineCompletedMsg{day: day, err: err}
			}
		}
	case "c":
		text := workout.Text(m.plan)
		return m, func() tea.Msg {
			return planCopyMsg{err: clipboard.WriteAll(text)}
		}
	}
	return m, nil
}

func (m planModel) updatePrefs(msg tea.KeyMsg) (planModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = planBrowse
		m.err = ""
		return m, nil
	case "enter":
		p, err := m.preferences()
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.err = ""
		m.state = planBrowse
		m.loading = true
		return m, m.generate(p)
	}
	m.prefs = m.prefs.update(msg)
	return m, nil
}

func (m planModel) updateEdit(msg tea.KeyMsg) (planModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = planBrowse
		m.err = ""
		return m, nil
	case "enter":
		sets, err1 := strconv.Atoi(m.edit.value(editSets))
		reps, err2 := strconv.Atoi(m.edit.value(editReps))
		if err1 != nil || err2 != nil {
			m.err = "sets and reps must be numbers"
			return m, nil
		}
		e := workout.Edit{Sets: &sets, Reps: &reps}
		weight := 0.0
		if s := m.edit.value(editWeight); s != "" {
			w, err := strconv.ParseFloat(s, 64)
			if err != nil {
				m.err = "weight must be a number"
				return m, nil
			}
			weight = w
		}
		e.Weight = &weight
		if err := workout.EditExercise(m.plan, m.day, m.cursor, e); err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.err = ""
		m.state = planBrowse
		return m, m.save()
	}
	m.edit = m.edit.update(msg)
	return m, nil
}

func (m planModel) helpKeys() string {
	switch m.state {
	case planPrefs:
		return helpBar("tab", "next", "←/→", "choose", "enter", "generate", "esc", "cancel")
	case planEdit:
		return helpBar("tab", "next", "enter", "save", "esc", "cancel")
	}
	if m.plan == nil {
		return helpBar("1-6", "tabs", "g", "generate", "s", "sync", "h", "help", "q", "quit")
	}
	return helpBar("1-6", "tabs", "j/k", "nav", "[/]", "day", "+/-", "sets", "e", "edit", "enter", "log", "x", "done", "c", "copy", "g", "new")
}

func (m planModel) View() string {
	var b strings.Builder
	switch m.state {
	case planPrefs:
		b.WriteString("\n " + sectionHeaderStyle.Render("New plan") + "\n\n")
		b.WriteString(m.prefs.view())
		if m.err != "" {
			b.WriteString("\n " + errorStyle.Render(m.err) + "\n")
		}
		return b.String()
	case planEdit:
		if ex := m.selected(); ex != nil {
			b.WriteString("\n " + sectionHeaderStyle.Render("Edit "+ex.Name) + "\n\n")
		}
		b.WriteString(m.edit.view())
		if m.err != "" {
			b.WriteString("\n " + errorStyle.Render(m.err) + "\n")
		}
		return b.String()
	}

	if m.loading {
		return " " + dimStyle.Render("building plan...")
	}
	if m.err != "" {
		b.WriteString(" " + errorStyle.Render("error: "+m.err) + "\n")
	}
	if m.plan == nil {
		b.WriteString(" " + dimStyle.Render("no plan yet, press g to generate one") + "\n")
		if m.statusMsg != "" {
			b.WriteString(" " + accentStyle.Render(m.statusMsg) + "\n")
		}
		return b.String()
	}

	p := m.plan
	fmt.Fprintf(&b, "\n %s  %s\n", selectedStyle.Render(p.Name), metaStyle.Render(p.Goal.Label()+" · "+string(p.Level)))

	var days strings.Builder
	for i, r := range p.Routines {
		if i == m.day {
			days.WriteString(accentStyle.Underline(true).Render(r.Day))
		} else {
			days.WriteString(dimStyle.Render(r.Day))
		}
		days.WriteString("  ")
	}
	b.WriteString(" " + days.String() + "\n\n")

	r := m.routine()
	if r == nil || len(r.Exercises) == 0 {
		b.WriteString("   " + dimStyle.Render("rest day") + "\n")
	} else {
		for i, ex := range r.Exercises {
			rx := fmt.Sprintf("%d×%d", ex.Sets, ex.Reps)
			if ex.Weight > 0 {
				rx += fmt.Sprintf(" @ %g", ex.Weight)
			}
			line := fmt.Sprintf("%2d. %-32s %-10s %s", i+1, truncStr(ex.Name, 32), rx, truncStr(ex.Notes, 30))
			if i == m.cursor {
				b.WriteString(" " + selectedRowBg.Render(selectedStyle.Render(line)) + "\n")
			} else {
				b.WriteString(" " + normalStyle.Render(line) + "\n")
			}
		}
	}
	if m.statusMsg != "" {
		b.WriteString("\n " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}
