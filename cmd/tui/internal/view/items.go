package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/freshness"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
)

type itemsState int

const (
	itemsStateBrowse itemsState = iota
	itemsStateFilter
)

type horizon int

const (
	horizonAll horizon = iota
	horizonSoon
	horizonWeek
)

var horizonLabels = []string{"All", "Within 3 days", "Within 7 days"}

// ItemsModel lists saved items with their freshness badges, soonest first.
type ItemsModel struct {
	CommonModel
	itemService *item.Service

	state   itemsState
	table   table.Model
	items   []*item.Item
	form    *huh.Form
	horizon horizon

	username string
	loading  bool
	err      error

	// Form bindings
	formUser string
}

func NewItemsModel(svc *item.Service, username string) ItemsModel {
	columns := []table.Column{
		{Title: "Expiry", Width: 12},
		{Title: "Freshness", Width: 22},
		{Title: "Name", Width: 32},
		{Title: "Brand", Width: 18},
		{Title: "Size", Width: 10},
		{Title: "Barcode", Width: 15},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ItemsModel{
		itemService: svc,
		table:       t,
		username:    username,
		loading:     true,
	}
}

func (m ItemsModel) Title() string { return "Shelf" }
func (m ItemsModel) ShortHelp() string {
	if m.state == itemsStateFilter {
		return "Enter: apply | Esc: cancel"
	}
	return "Esc: back | d: expiry filter | u: user | r: refresh"
}

func (m ItemsModel) Init() tea.Cmd {
	return m.loadItemsCmd()
}

func (m ItemsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadItemsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.items = msg.items
		m.refreshTable()
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case itemsStateBrowse:
		return m.updateBrowse(msg)
	case itemsStateFilter:
		return m.updateFilter(msg)
	}

	return m, nil
}

func (m ItemsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadItemsCmd()
		case "d":
			m.horizon = (m.horizon + 1) % horizon(len(horizonLabels))
			return m, m.loadItemsCmd()
		case "u":
			return m.enterFilterMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ItemsModel) enterFilterMode() (tea.Model, tea.Cmd) {
	m.formUser = m.username

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("username").
				Title("Show items saved by").
				Placeholder("everyone").
				Value(&m.formUser).
				Validate(func(s string) error {
					if strings.ContainsAny(s, " \t") {
						return fmt.Errorf("username cannot contain spaces")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = itemsStateFilter
	m.table.Blur()
	return m, m.form.Init()
}

func (m ItemsModel) updateFilter(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = itemsStateBrowse
			m.form = nil
			m.table.Focus()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.username = strings.TrimSpace(m.formUser)
	m.state = itemsStateBrowse
	m.form = nil
	m.table.Focus()
	m.loading = true

	return m, m.loadItemsCmd()
}

func (m ItemsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading items...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	user := m.username
	if user == "" {
		user = "everyone"
	}

	header := fmt.Sprintf(
		"Filter: [d] Expiring: %s | [u] User: %s | %d items",
		activeStyle(horizonLabels[m.horizon]),
		activeStyle(user),
		len(m.items),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if idx := m.table.Cursor(); idx >= 0 && idx < len(m.items) {
		sel := m.items[idx]
		badge := freshness.BadgeFor(freshness.ClassifyAt(sel.Expiry, time.Now()))
		content += fmt.Sprintf("\n%s  %s", sel.Name, RenderBadge(badge))
	}

	if m.state == itemsStateFilter && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n" + m.ShortHelp())
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m ItemsModel) filter(today expiry.Date) item.ListFilter {
	var f item.ListFilter

	if m.username != "" {
		f.Username = new(m.username)
	}

	switch m.horizon {
	case horizonSoon:
		f.ExpiringBy = new(today.AddDays(freshness.SoonThresholdDays))
	case horizonWeek:
		f.ExpiringBy = new(today.AddDays(7))
	}

	return f
}

func (m *ItemsModel) refreshTable() {
	now := time.Now()

	rows := make([]table.Row, 0, len(m.items))
	for _, it := range m.items {
		badge := freshness.BadgeFor(freshness.ClassifyAt(it.Expiry, now))
		rows = append(rows, table.Row{
			FormatExpiry(it.Expiry),
			badge.Text,
			it.Name,
			it.Brand,
			it.Quantity,
			it.Barcode,
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadItemsMsg struct {
	items []*item.Item
	err   error
}

func (m ItemsModel) loadItemsCmd() tea.Cmd {
	filter := m.filter(expiry.DateOf(time.Now()))

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		items, err := m.itemService.List(ctx, filter)
		return loadItemsMsg{items: items, err: err}
	}
}
