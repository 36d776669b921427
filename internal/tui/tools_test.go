package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fitline/pkg/domain"
)

func newTestTools(t *testing.T) toolsModel {
	t.Helper()
	m := newToolsModel(newTestDB(t))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = m.Update(m.Init()())
	return m
}

func updateTools(m toolsModel, keys ...string) (toolsModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = m.Update(key(k))
	}
	return m, cmd
}

// settle runs a save command and the reload it triggers.
func settle(t *testing.T, m toolsModel, cmd tea.Cmd) toolsModel {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m, reload := m.Update(cmd())
	if reload == nil {
		t.Fatalf("expected reload after save, status %q", m.statusMsg)
	}
	m, _ = m.Update(reload())
	return m
}

func TestToolsAddAndDeleteNote(t *testing.T) {
	m := newTestTools(t)
	if !strings.Contains(m.View(), "no notes yet") {
		t.Fatalf("expected empty notes, got:\n%s", m.View())
	}

	m, _ = updateTools(m, "a")
	if !m.editing() {
		t.Fatal("expected note input")
	}
	m, cmd := updateTools(m, "felt strong on squats", "enter")
	m = settle(t, m, cmd)

	if len(m.notes) != 1 || m.notes[0].Text != "felt strong on squats" {
		t.Fatalf("expected saved note, got %#v", m.notes)
	}
	if !strings.Contains(m.View(), "note saved") {
		t.Errorf("expected saved status, got:\n%s", m.View())
	}

	m, cmd = updateTools(m, "d")
	m = settle(t, m, cmd)
	if len(m.notes) != 0 {
		t.Errorf("expected note deleted, got %#v", m.notes)
	}
}

func TestToolsEmptyNoteIsDiscarded(t *testing.T) {
	m := newTestTools(t)
	m, cmd := updateTools(m, "a", " ", "enter")
	if cmd != nil {
		t.Error("expected no save for a blank note")
	}
	if m.editing() {
		t.Error("expected input closed")
	}
}

func TestToolsFoodValidation(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  string
	}{
		{"missing food", []string{}, "food is required"},
		{"missing calories", []string{"oats"}, "calories is required"},
		{"bad calories", []string{"oats", "tab", "lots"}, "calories must be a non-negative number"},
		{"negative macro", []string{"oats", "tab", "300", "tab", "-4"}, "protein must be a non-negative number"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestTools(t)
			m, _ = updateTools(m, "tab", "a")
			m, _ = updateTools(m, tc.input...)
			m, cmd := updateTools(m, "enter")
			if cmd != nil {
				t.Error("expected no save")
			}
			if !strings.Contains(m.View(), tc.want) {
				t.Errorf("expected %q, got:\n%s", tc.want, m.View())
			}
		})
	}
}

func TestToolsLogFood(t *testing.T) {
	m := newTestTools(t)
	m, _ = updateTools(m, "tab")
	if !strings.Contains(m.View(), "nothing logged today") {
		t.Fatalf("expected empty calories, got:\n%s", m.View())
	}
	m, cmd := updateTools(m, "a", "oatmeal", "tab", "300", "tab", "10", "enter")
	m = settle(t, m, cmd)

	view := m.View()
	for _, want := range []string{"oatmeal", "300 kcal · P 10g", "logged oatmeal"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view, got:\n%s", want, view)
		}
	}
}

func TestToolsCaloriesOnlyCountToday(t *testing.T) {
	m := newToolsModel(nil)
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.Local)
	m.now = func() time.Time { return now }
	m.section = sectionCalories
	m, _ = m.Update(toolsLoadedMsg{entries: []domain.CalorieEntry{
		{Food: "eggs", Calories: 200, LoggedAt: now.Add(-time.Hour)},
		{Food: "pizza", Calories: 900, LoggedAt: now.Add(-24 * time.Hour)},
	}})
	view := m.View()
	if !strings.Contains(view, "200 kcal ·") {
		t.Errorf("expected today's total of 200, got:\n%s", view)
	}
	if strings.Contains(view, "pizza") {
		t.Errorf("expected yesterday's entry hidden, got:\n%s", view)
	}
}

func TestToolsRestTimer(t *testing.T) {
	m := newToolsModel(nil)
	m.section = sectionTimer
	if !strings.Contains(m.View(), "1:30") {
		t.Fatalf("expected 90s default, got:\n%s", m.View())
	}

	m, cmd := updateTools(m, " ")
	if cmd == nil || !m.running {
		t.Fatal("expected timer to start")
	}
	m, cmd = m.Update(restTickMsg{gen: m.gen})
	if cmd == nil || m.remaining != 89 {
		t.Fatalf("expected 89s left and another tick, got %d", m.remaining)
	}

	// Pausing bumps the generation, so the pending tick is dropped.
	stale := m.gen
	m, _ = updateTools(m, " ")
	if m.running {
		t.Fatal("expected paused")
	}
	if _, cmd := m.Update(restTickMsg{gen: stale}); cmd != nil {
		t.Error("expected stale tick dropped")
	}
	if m.remaining != 89 {
		t.Errorf("expected time frozen at 89, got %d", m.remaining)
	}
}

func TestToolsRestTimerFinishes(t *testing.T) {
	m := newToolsModel(nil)
	m.section = sectionTimer
	m, _ = updateTools(m, " ")
	m.remaining = 1
	m, cmd := m.Update(restTickMsg{gen: m.gen})
	if cmd != nil {
		t.Error("expected no tick after finishing")
	}
	if m.running || m.remaining != 0 {
		t.Errorf("expected stopped at 0, got running=%v remaining=%d", m.running, m.remaining)
	}
	if !strings.Contains(m.View(), "rest over, next set!") {
		t.Errorf("expected finish message, got:\n%s", m.View())
	}

	// Starting again restarts from the preset.
	m, _ = updateTools(m, " ")
	if m.remaining != 90 {
		t.Errorf("expected restart at 90, got %d", m.remaining)
	}
}

func TestToolsPresetCycle(t *testing.T) {
	m := newToolsModel(nil)
	m.section = sectionTimer
	m, _ = updateTools(m, "p")
	if m.remaining != 120 {
		t.Errorf("expected 120, got %d", m.remaining)
	}
	m, _ = updateTools(m, "p")
	if m.remaining != 30 {
		t.Errorf("expected wrap to 30, got %d", m.remaining)
	}
	if !strings.Contains(m.View(), "[30s]") {
		t.Errorf("expected selected preset, got:\n%s", m.View())
	}
}

func TestToolsLeaveStopsTimer(t *testing.T) {
	m := newToolsModel(nil)
	m.section = sectionTimer
	m, _ = updateTools(m, " ")
	gen := m.gen
	m = m.leave()
	if m.running {
		t.Error("expected timer stopped")
	}
	if _, cmd := m.Update(restTickMsg{gen: gen}); cmd != nil {
		t.Error("expected tick from before leaving to be dropped")
	}
}
