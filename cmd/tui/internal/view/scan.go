package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/shelflife/internal/acquisition"
	"github.com/MrJamesThe3rd/shelflife/internal/freshness"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
)

const commitTimeout = 10 * time.Second

// ScanModel drives one acquisition workflow. Barcodes typed or scanned into
// the input are pushed through a decoder, the same way a keyboard-wedge
// scanner delivers them.
type ScanModel struct {
	CommonModel

	decoder  *acquisition.PushDecoder
	workflow *acquisition.Workflow
	updates  chan struct{}
	done     chan struct{}

	snap       acquisition.Snapshot
	input      textinput.Model
	spinner    spinner.Model
	filePicker filepicker.Model
	picking    bool

	status string
}

func NewScanModel(
	products acquisition.ProductLookup,
	reader acquisition.ExpiryReader,
	store acquisition.Store,
	username string,
) ScanModel {
	updates := make(chan struct{}, 1)
	decoder := acquisition.NewPushDecoder()

	wf := acquisition.NewWorkflow(decoder, products, reader, store,
		acquisition.WithUsername(username),
		acquisition.WithNotify(func(acquisition.Snapshot) {
			select {
			case updates <- struct{}{}:
			default:
			}
		}),
	)

	ti := textinput.New()
	ti.Width = 40
	ti.CharLimit = 64

	s := spinner.New()
	s.Spinner = spinner.Dot

	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".jpg", ".jpeg", ".png", ".heic", ".webp"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(12)

	m := ScanModel{
		decoder:    decoder,
		workflow:   wf,
		updates:    updates,
		done:       make(chan struct{}),
		input:      ti,
		spinner:    s,
		filePicker: fp,
	}
	m.snap = wf.Snapshot()
	m.syncInput()

	return m
}

func (m ScanModel) Title() string { return "Scan Item" }

func (m ScanModel) ShortHelp() string {
	switch m.snap.Stage {
	case acquisition.StageAwaitingBarcode:
		return "Enter: scan | ctrl+r: restart | Esc: back"
	case acquisition.StageAwaitingProductLookup:
		return "Enter: continue | r: retry | ctrl+r: restart | Esc: back"
	case acquisition.StageAwaitingExpiryCapture:
		return "Enter: read date | ctrl+o: photo | ctrl+r: restart | Esc: back"
	}

	if m.snap.Committed {
		return "Enter: next item | Esc: back"
	}

	return "Enter: save | ctrl+r: restart | Esc: back"
}

func (m ScanModel) Init() tea.Cmd {
	if err := m.workflow.Start(); err != nil {
		return func() tea.Msg { return snapshotMsg{} }
	}

	return tea.Batch(textinput.Blink, m.spinner.Tick, m.listen())
}

type snapshotMsg struct{}

type commitMsg struct {
	item *item.Item
	err  error
}

type actionMsg struct {
	err error
}

// listen waits for the next workflow notification. Notifications coalesce:
// the model always re-reads the latest snapshot.
func (m ScanModel) listen() tea.Cmd {
	updates, done := m.updates, m.done

	return func() tea.Msg {
		select {
		case <-updates:
			return snapshotMsg{}
		case <-done:
			return nil
		}
	}
}

func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = m.workflow.Snapshot()
		m.syncInput()

		return m, m.listen()

	case commitMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Saved %s", msg.item.Name)

		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		if m.picking {
			return m.updatePicker(msg)
		}

		return m.updateKeys(msg)
	}

	if m.picking {
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m ScanModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.workflow.Close()
		close(m.done)

		return m, Back
	case "ctrl+r":
		m.status = ""
		m.workflow.Restart()

		return m, nil
	}

	stage := m.snap.Stage

	switch {
	case stage == acquisition.StageAwaitingBarcode && msg.Type == tea.KeyEnter:
		code := strings.TrimSpace(m.input.Value())
		m.input.SetValue("")

		if code != "" && m.decoder.Push(code) == 0 {
			m.status = "Not listening for barcodes"
		}

		return m, nil

	case stage == acquisition.StageAwaitingProductLookup && msg.String() == "r":
		return m, m.run(m.workflow.Retry)

	case stage == acquisition.StageAwaitingProductLookup && msg.Type == tea.KeyEnter:
		return m, m.run(m.workflow.Advance)

	case stage == acquisition.StageAwaitingExpiryCapture && msg.Type == tea.KeyEnter:
		text := m.input.Value()

		return m, m.run(func() error { return m.workflow.SubmitExpiryText(text) })

	case stage == acquisition.StageAwaitingExpiryCapture && msg.String() == "ctrl+o":
		m.picking = true
		return m, m.filePicker.Init()

	case stage == acquisition.StageReview && msg.Type == tea.KeyEnter:
		if m.snap.Committed {
			m.status = ""
			m.workflow.Restart()

			return m, nil
		}

		return m, m.commitCmd()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m ScanModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.picking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.picking = false
		return m, m.submitPhotoCmd(path)
	}

	return m, cmd
}

// run executes a workflow command and reports a rejected transition as
// status rather than failing.
func (m ScanModel) run(command func() error) tea.Cmd {
	return func() tea.Msg {
		if err := command(); err != nil {
			return actionMsg{err: describe(err)}
		}

		return nil
	}
}

func (m ScanModel) submitPhotoCmd(path string) tea.Cmd {
	wf := m.workflow

	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return actionMsg{err: err}
		}

		if err := wf.SubmitExpiryImage(data, filepath.Base(path)); err != nil {
			return actionMsg{err: describe(err)}
		}

		return actionMsg{}
	}
}

func (m ScanModel) commitCmd() tea.Cmd {
	wf := m.workflow

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
		defer cancel()

		saved, err := wf.Commit(ctx)

		return commitMsg{item: saved, err: err}
	}
}

func describe(err error) error {
	switch {
	case errors.Is(err, acquisition.ErrBusy):
		return errors.New("still working, try again in a moment")
	case errors.Is(err, acquisition.ErrInvalidTransition):
		return errors.New("not available right now")
	}

	return err
}

// syncInput points the text input at whatever the current stage expects.
func (m *ScanModel) syncInput() {
	switch m.snap.Stage {
	case acquisition.StageAwaitingBarcode:
		m.input.Prompt = "Barcode: "
		m.input.Placeholder = "scan or type digits"
		m.input.Focus()
	case acquisition.StageAwaitingExpiryCapture:
		if m.input.Prompt != "Expiry: " {
			m.input.SetValue("")
		}

		m.input.Prompt = "Expiry: "
		m.input.Placeholder = "e.g. 12/03/2026 or 5 MAR 26"
		m.input.Focus()
	default:
		m.input.Blur()
	}
}

func (m ScanModel) View() string {
	if m.picking {
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Select a photo of the label:\n\n%s\n\n(Esc to cancel)", m.filePicker.View()),
		)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Step: %s\n\n", stageLabel(m.snap.Stage))

	rec := m.snap.Record
	if rec.Barcode != "" {
		fmt.Fprintf(&b, "Barcode: %s\n", rec.Barcode)
	}

	if rec.Product != nil {
		fmt.Fprintf(&b, "Product: %s\n", rec.Product.DisplayName())

		if rec.Product.Brand != "" {
			fmt.Fprintf(&b, "Brand:   %s\n", rec.Product.Brand)
		}

		if rec.Product.Quantity != "" {
			fmt.Fprintf(&b, "Size:    %s\n", rec.Product.Quantity)
		}
	}

	if m.snap.Stage == acquisition.StageReview {
		badge := freshness.BadgeFor(freshness.ClassifyAt(rec.Expiry, time.Now()))
		fmt.Fprintf(&b, "Expiry:  %s  %s\n", FormatExpiry(rec.Expiry), RenderBadge(badge))
	}

	b.WriteString("\n")

	switch {
	case m.snap.Busy:
		fmt.Fprintf(&b, "%s Working...\n", m.spinner.View())
	case m.snap.Stage == acquisition.StageAwaitingBarcode, m.snap.Stage == acquisition.StageAwaitingExpiryCapture:
		b.WriteString(m.input.View() + "\n")
	}

	if m.snap.Err != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(badgeColors[freshness.ColorRed]).Render(m.snap.Err) + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Faint(true).Render(m.status) + "\n")
	}

	b.WriteString("\n" + m.ShortHelp())

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

func stageLabel(s acquisition.Stage) string {
	switch s {
	case acquisition.StageAwaitingBarcode:
		return "Scan barcode"
	case acquisition.StageAwaitingProductLookup:
		return "Product lookup"
	case acquisition.StageAwaitingExpiryCapture:
		return "Capture expiry date"
	case acquisition.StageReview:
		return "Review"
	}

	return s.String()
}
