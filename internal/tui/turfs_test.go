package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/turfbook/turfbook/pkg/client"
	"github.com/turfbook/turfbook/pkg/domain"
)

func makeTestTurf(name, slug, city string) domain.Turf {
	return domain.Turf{
		ID:       "id-" + slug,
		Name:     name,
		Slug:     slug,
		Location: domain.Location{City: city},
		OperatingHours: domain.OperatingHours{
			Start: "09:00",
			End:   "23:00",
		},
		Active: true,
	}
}

func newTestTurfsModel() turfsModel {
	m := newTurfsModel(nil)
	m.width = 80
	m.height = 30
	return m
}

func TestTurfsRendersList(t *testing.T) {
	m := newTestTurfsModel()
	m, _ = m.Update(turfsLoadedMsg{turfs: []domain.Turf{
		makeTestTurf("Arena One", "arena-one", "Dhaka"),
		makeTestTurf("GreenField", "greenfield", "Chattogram"),
	}})

	out := m.View()
	for _, want := range []string{"Arena One", "GreenField", "Dhaka"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestTurfsCursorNavigation(t *testing.T) {
	m := newTestTurfsModel()
	m, _ = m.Update(turfsLoadedMsg{turfs: []domain.Turf{
		makeTestTurf("A", "a", "X"),
		makeTestTurf("B", "b", "X"),
		makeTestTurf("C", "c", "X"),
	}})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if m.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", m.cursor)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if m.cursor != 2 {
		t.Error("cursor must not move past the last row")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	if m.cursor != 0 {
		t.Error("g should jump to the top")
	}
}

func TestTurfsEnterOpensDetail(t *testing.T) {
	m := newTestTurfsModel()
	m, _ = m.Update(turfsLoadedMsg{turfs: []domain.Turf{
		makeTestTurf("Arena One", "arena-one", "Dhaka"),
	}})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected showTurfMsg command")
	}
	msg, ok := cmd().(showTurfMsg)
	if !ok {
		t.Fatalf("expected showTurfMsg, got %T", cmd())
	}
	if msg.slug != "arena-one" {
		t.Errorf("slug = %q", msg.slug)
	}
}

func TestTurfsSearchInputCapturesKeys(t *testing.T) {
	m := newTestTurfsModel()
	m, _ = m.Update(turfsLoadedMsg{turfs: []domain.Turf{makeTestTurf("A", "a", "X")}})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.searching {
		t.Fatal("/ should open the search prompt")
	}
	for _, r := range "arena" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if m.search != "arena" {
		t.Fatalf("search = %q", m.search)
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.searching {
		t.Error("enter should leave search mode")
	}
	if m.page != 1 {
		t.Error("a new search resets to page 1")
	}
	if cmd == nil {
		t.Error("a new search reloads the list")
	}
}

func TestTurfsPaginationBounds(t *testing.T) {
	m := newTestTurfsModel()
	m, _ = m.Update(turfsLoadedMsg{
		turfs: []domain.Turf{makeTestTurf("A", "a", "X")},
		meta:  &client.Meta{CurrentPage: 1, TotalPages: 3, TotalItems: 41},
	})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	if cmd != nil {
		t.Error("p on the first page must not reload")
	}

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if cmd == nil {
		t.Fatal("n should fetch the next page")
	}
	if m.page != 2 {
		t.Errorf("page = %d, want 2", m.page)
	}

	if !strings.Contains(m.View(), "page 1/3") {
		t.Error("pagination footer should show the fetched meta")
	}
}

func TestTurfsLoadErrorShows(t *testing.T) {
	m := newTestTurfsModel()
	m, _ = m.Update(turfsLoadedMsg{err: errors.New("connect refused")})
	if !strings.Contains(m.View(), "Could not load turfs") {
		t.Error("load failures should render a friendly message")
	}
}
