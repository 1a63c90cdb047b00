// Package tui is the interactive terminal rendition of the invoice pages:
// a form screen for creating invoices with a dynamic list of line items,
// and a read-only preview screen for a stored invoice. All form semantics
// (validation, floor-of-one items, derived totals, submission) live in the
// form controller; this package only collects keystrokes and renders state.
package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"invoicectl/internal/api"
	"invoicectl/internal/form"
	"invoicectl/internal/preview"
	"invoicectl/pkg/models"
)

type viewMode int

const (
	viewForm viewMode = iota
	viewPreview
)

// headerLabels maps field identifiers to their on-screen labels, in form order.
var headerLabels = []struct{ field, label string }{
	{form.FieldTransactionDate, "Date (YYYY-MM-DD)"},
	{form.FieldCustomerName, "Customer"},
	{form.FieldCustomerEmail, "Email"},
	{form.FieldCustomerPhone, "Phone"},
	{form.FieldDiscount, "Discount"},
}

var itemLabels = []struct{ field, label string }{
	{form.FieldProductName, "Product"},
	{form.FieldProductDescription, "Description"},
	{form.FieldQuantity, "Quantity"},
	{form.FieldUnitPrice, "Unit price"},
}

type navRequest struct {
	path   string
	params []string
}

type navMsg navRequest

type submitDoneMsg struct {
	err error
}

type previewReadyMsg struct{}

// chanNavigator forwards navigation requests from the controllers into the
// bubbletea event loop.
type chanNavigator struct {
	ch chan navRequest
}

func (n *chanNavigator) NavigateTo(path string, params ...string) error {
	n.ch <- navRequest{path: path, params: params}
	return nil
}

// filePrinter stands in for the host print facility: it writes the rendered
// invoice next to the working directory.
type filePrinter struct{}

func (filePrinter) Print(inv *models.Invoice) error {
	name := fmt.Sprintf("invoice-%d.txt", inv.InvoiceID)
	return os.WriteFile(name, []byte(preview.Render(inv)), 0644)
}

// Model drives the form and preview screens.
type Model struct {
	formCtrl    *form.Controller
	previewCtrl *preview.Controller
	navCh       chan navRequest

	mode       viewMode
	headerIn   []textinput.Model
	itemIn     [][]textinput.Model
	focus      int
	statusMsg  string
	previewing int64
	quitting   bool
}

// NewModel wires the controllers and builds the initial form inputs.
func NewModel(client *api.Client) Model {
	navCh := make(chan navRequest, 4)
	nav := &chanNavigator{ch: navCh}

	m := Model{
		formCtrl:    form.NewController(client, nav),
		previewCtrl: preview.NewController(client, nav, filePrinter{}),
		navCh:       navCh,
	}
	m.rebuildInputs()
	return m
}

// Run starts the interactive invoice form.
func Run(client *api.Client) error {
	p := tea.NewProgram(NewModel(client), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// rebuildInputs recreates all textinputs from the controller's draft, e.g.
// after the draft was reset on a successful submission.
func (m *Model) rebuildInputs() {
	m.headerIn = make([]textinput.Model, len(headerLabels))
	for i, h := range headerLabels {
		ti := textinput.New()
		ti.SetValue(m.formCtrl.Field(h.field))
		ti.CharLimit = 200
		ti.Width = 40
		m.headerIn[i] = ti
	}

	count := m.formCtrl.ItemCount()
	m.itemIn = make([][]textinput.Model, count)
	for i := 0; i < count; i++ {
		row := make([]textinput.Model, len(itemLabels))
		for j, l := range itemLabels {
			ti := textinput.New()
			ti.SetValue(m.formCtrl.ItemField(i, l.field))
			ti.CharLimit = 500
			ti.Width = 40
			row[j] = ti
		}
		m.itemIn[i] = row
	}

	m.focus = 0
	m.applyFocus()
}

// inputCount is the number of focusable inputs.
func (m Model) inputCount() int {
	return len(m.headerIn) + len(m.itemIn)*len(itemLabels)
}

// inputAt maps a flat focus index onto either a header input or an item input.
func (m *Model) inputAt(idx int) *textinput.Model {
	if idx < len(m.headerIn) {
		return &m.headerIn[idx]
	}
	idx -= len(m.headerIn)
	return &m.itemIn[idx/len(itemLabels)][idx%len(itemLabels)]
}

func (m *Model) applyFocus() {
	for i := 0; i < m.inputCount(); i++ {
		in := m.inputAt(i)
		if i == m.focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// syncFocused copies the focused input's value into the form controller,
// which marks the field touched.
func (m *Model) syncFocused() {
	idx := m.focus
	if idx < len(m.headerIn) {
		m.formCtrl.SetField(headerLabels[idx].field, m.headerIn[idx].Value())
		return
	}
	idx -= len(m.headerIn)
	item, field := idx/len(itemLabels), idx%len(itemLabels)
	m.formCtrl.SetItemField(item, itemLabels[field].field, m.itemIn[item][field].Value())
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForNav())
}

// waitForNav listens for navigation requests from the controllers.
func (m Model) waitForNav() tea.Cmd {
	ch := m.navCh
	return func() tea.Msg {
		return navMsg(<-ch)
	}
}

func (m Model) submit() tea.Cmd {
	ctrl := m.formCtrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		_, err := ctrl.Submit(ctx)
		return submitDoneMsg{err: err}
	}
}

func (m Model) loadPreview(id int64) tea.Cmd {
	ctrl := m.previewCtrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		ctrl.Activate(ctx, id)
		return previewReadyMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case navMsg:
		cmd := m.handleNav(navRequest(msg))
		return m, tea.Batch(cmd, m.waitForNav())

	case submitDoneMsg:
		if msg.err != nil {
			// Validation and API failures both surface through the
			// controller's messages; the draft stays editable.
			m.statusMsg = ""
			return m, nil
		}
		m.statusMsg = m.formCtrl.SubmitMessage()
		return m, nil

	case previewReadyMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleNav(req navRequest) tea.Cmd {
	switch req.path {
	case "/invoice-preview":
		if len(req.params) == 0 {
			return nil
		}
		id, err := strconv.ParseInt(req.params[0], 10, 64)
		if err != nil {
			return nil
		}
		m.mode = viewPreview
		m.previewing = id
		return m.loadPreview(id)
	default:
		// Default route: back to a fresh form.
		m.mode = viewForm
		m.statusMsg = ""
		m.rebuildInputs()
		return nil
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == viewPreview {
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "b":
			m.previewCtrl.GoBack()
			return m, nil
		case "p":
			m.previewCtrl.Print()
			if inv := m.previewCtrl.Invoice(); inv != nil {
				m.statusMsg = fmt.Sprintf("Saved invoice-%d.txt", inv.InvoiceID)
			}
			return m, nil
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab", "down", "enter":
		m.syncFocused()
		m.focus = (m.focus + 1) % m.inputCount()
		m.applyFocus()
		return m, nil

	case "shift+tab", "up":
		m.syncFocused()
		m.focus = (m.focus - 1 + m.inputCount()) % m.inputCount()
		m.applyFocus()
		return m, nil

	case "ctrl+n":
		m.syncFocused()
		m.formCtrl.AddItem()
		last := m.formCtrl.ItemCount() - 1
		row := make([]textinput.Model, len(itemLabels))
		for j, l := range itemLabels {
			ti := textinput.New()
			ti.SetValue(m.formCtrl.ItemField(last, l.field))
			ti.CharLimit = 500
			ti.Width = 40
			row[j] = ti
		}
		m.itemIn = append(m.itemIn, row)
		// Jump to the new item's first field.
		m.focus = len(m.headerIn) + (len(m.itemIn)-1)*len(itemLabels)
		m.applyFocus()
		return m, nil

	case "ctrl+r":
		if m.focus >= len(m.headerIn) {
			item := (m.focus - len(m.headerIn)) / len(itemLabels)
			before := m.formCtrl.ItemCount()
			m.formCtrl.RemoveItem(item)
			// Removal of the last remaining item is silently refused.
			if m.formCtrl.ItemCount() != before {
				m.itemIn = append(m.itemIn[:item], m.itemIn[item+1:]...)
				m.focus = len(m.headerIn)
				m.applyFocus()
			}
		}
		return m, nil

	case "ctrl+s":
		if m.formCtrl.IsSubmitting() {
			return m, nil
		}
		m.syncFocused()
		m.statusMsg = ""
		return m, m.submit()
	}

	in := m.inputAt(m.focus)
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	m.syncFocused()
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.mode == viewPreview {
		return m.previewView()
	}
	return m.formView()
}

func (m Model) formView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" New Invoice ") + "\n\n")

	for i, h := range headerLabels {
		b.WriteString(labelStyle.Render(h.label) + m.headerIn[i].View() + "\n")
		if msg := m.formCtrl.FieldError(h.field); msg != "" {
			b.WriteString(labelStyle.Render("") + errorStyle.Render(msg) + "\n")
		}
	}

	for i := range m.itemIn {
		b.WriteString("\n" + itemHeaderStyle.Render(fmt.Sprintf("Item %d", i+1)))
		b.WriteString(fmt.Sprintf("  (line total %s)\n", m.formCtrl.ItemTotal(i).StringFixed(2)))
		for j, l := range itemLabels {
			b.WriteString(labelStyle.Render(l.label) + m.itemIn[i][j].View() + "\n")
			if msg := m.formCtrl.ItemFieldError(i, l.field); msg != "" {
				b.WriteString(labelStyle.Render("") + errorStyle.Render(msg) + "\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(totalStyle.Render(fmt.Sprintf("Subtotal: %s    Total: %s",
		m.formCtrl.Subtotal().StringFixed(2), m.formCtrl.Total().StringFixed(2))) + "\n")

	if m.formCtrl.IsSubmitting() {
		b.WriteString("\nSubmitting...\n")
	}
	if msg := m.formCtrl.SubmitError(); msg != "" {
		b.WriteString("\n" + errorStyle.Render(msg) + "\n")
	}
	if m.statusMsg != "" {
		b.WriteString("\n" + successStyle.Render(m.statusMsg) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("tab/↑↓ move · ctrl+n add item · ctrl+r remove item · ctrl+s submit · esc quit"))
	return b.String()
}

func (m Model) previewView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf(" Invoice %d ", m.previewing)) + "\n\n")

	switch {
	case m.previewCtrl.Loading():
		b.WriteString("Loading...\n")
	case m.previewCtrl.Invoice() == nil:
		// The error state: loading finished with nothing loaded.
		b.WriteString(errorStyle.Render("Invoice could not be loaded.") + "\n")
	default:
		b.WriteString(boxStyle.Render(preview.Render(m.previewCtrl.Invoice())) + "\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n" + successStyle.Render(m.statusMsg) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("b back · p print to file · q quit"))
	return b.String()
}
