package tui

import (
	"context"
	"fmt"
	"strings"

	"actionitems/internal/actionitem/model"
	"actionitems/internal/actionitem/query"
	"actionitems/pkg/client"
	"actionitems/pkg/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Feed delivers changes made to a notebook by other sessions.
type Feed interface {
	Watch(ctx context.Context, notebookID string) (<-chan client.Change, error)
}

type pane int

const (
	paneList pane = iota
	paneEditor
)

const appHeaderLines = 1

type (
	snapshotMsg     query.Snapshot
	listLoadedMsg   struct{ err error }
	feedReadyMsg    struct{ changes <-chan client.Change }
	feedFailedMsg   struct{ err error }
	changeMsg       client.Change
	feedClosedMsg   struct{}
	refreshedMsg    struct{ err error }
	mutationDoneMsg struct {
		op  string
		err error
		// created is set when a create succeeded but its follow-up update
		// did not.
		created *model.ActionItem
	}

	createRequestedMsg struct{}
	itemSelectedMsg    struct{ item model.ActionItem }
	toggleRequestedMsg struct {
		id    string
		patch model.Patch
	}
	saveRequestedMsg struct {
		text      string
		completed bool
	}
	cancelRequestedMsg struct{}
	deleteRequestedMsg struct{}
)

const (
	opCreate = "create"
	opUpdate = "update"
	opToggle = "toggle"
	opDelete = "delete"
)

// appModel owns navigation between the list and the editor and is the only
// place that calls the data-access layer.
type appModel struct {
	ctx       context.Context
	items     *query.Items
	feed      Feed
	scope     query.Scope
	snapshots <-chan query.Snapshot
	changes   <-chan client.Change

	width  int
	height int

	pane    pane
	sidebar sidebarModel
	editor  editorModel
	editing *model.ActionItem
	saving  bool

	status    string
	statusErr bool
}

func newAppModel(ctx context.Context, items *query.Items, feed Feed, scope query.Scope) appModel {
	snapshots, _ := items.Subscribe()

	m := appModel{
		ctx:       ctx,
		items:     items,
		feed:      feed,
		scope:     scope,
		snapshots: snapshots,
		pane:      paneList,
		sidebar:   newSidebar().SetEnabled(scope.Enabled()),
	}
	m.sidebar = m.wireSidebar(m.sidebar)
	if !scope.Enabled() {
		m.status = "Open a notebook and sign in to see action items."
	}
	return m
}

func (m appModel) wireSidebar(s sidebarModel) sidebarModel {
	s.OnCreateRequested = func() tea.Cmd { return emit(createRequestedMsg{}) }
	s.OnSelect = func(it model.ActionItem) tea.Cmd { return emit(itemSelectedMsg{item: it}) }
	s.OnToggle = func(id string, p model.Patch) tea.Cmd { return emit(toggleRequestedMsg{id: id, patch: p}) }
	return s
}

func (m appModel) wireEditor(e editorModel) editorModel {
	e.OnSave = func(text string, completed bool) tea.Cmd {
		return emit(saveRequestedMsg{text: text, completed: completed})
	}
	e.OnCancel = func() tea.Cmd { return emit(cancelRequestedMsg{}) }
	if e.Item() != nil {
		e.OnDelete = func() tea.Cmd { return emit(deleteRequestedMsg{}) }
	}
	return e
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.sidebar.Init(), m.waitSnapshot()}
	if m.scope.Enabled() {
		cmds = append(cmds, m.loadCmd(), m.watchCmd())
	}
	return tea.Batch(cmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sidebar = m.sidebar.SetSize(msg.Width, msg.Height-appHeaderLines-1)
		m.editor = m.editor.SetSize(msg.Width, msg.Height-appHeaderLines-1)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.pane == paneEditor {
			var cmd tea.Cmd
			m.editor, cmd = m.editor.Update(msg)
			return m, cmd
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if m.pane != paneList {
			return m, nil
		}
		msg.Y -= appHeaderLines
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd

	case snapshotMsg:
		m.sidebar = m.sidebar.SetItems(msg.Items, msg.Loading)
		return m, m.waitSnapshot()

	case listLoadedMsg:
		if msg.err != nil {
			m.setError("Could not load action items", msg.err)
		}
		return m, nil

	case feedReadyMsg:
		m.changes = msg.changes
		return m, waitChange(m.changes)

	case feedFailedMsg:
		logger.Sugar.Warnf("Change feed unavailable: %v", msg.err)
		return m, nil

	case changeMsg:
		if m.changes == nil {
			return m, m.refreshCmd(msg.NotebookID)
		}
		return m, tea.Batch(m.refreshCmd(msg.NotebookID), waitChange(m.changes))

	case feedClosedMsg:
		m.changes = nil
		return m, nil

	case refreshedMsg:
		if msg.err != nil {
			m.setError("Could not refresh action items", msg.err)
		}
		return m, nil

	case createRequestedMsg:
		m.openEditor(nil)
		return m, nil

	case itemSelectedMsg:
		it := msg.item
		m.openEditor(&it)
		return m, nil

	case toggleRequestedMsg:
		return m, m.updateCmd(opToggle, msg.id, msg.patch)

	case saveRequestedMsg:
		m.saving = true
		m.editor = m.editor.SetSaving(true)
		if m.editing == nil {
			return m, m.createCmd(msg.text, msg.completed)
		}
		return m, m.updateCmd(opUpdate, m.editing.ID, model.Patch{
			ActionText:  model.Text(msg.text),
			IsCompleted: model.Completed(msg.completed),
		})

	case cancelRequestedMsg:
		m.closeEditor()
		return m, nil

	case deleteRequestedMsg:
		if m.editing == nil {
			return m, nil
		}
		id := m.editing.ID
		m.closeEditor()
		return m, m.deleteCmd(id)

	case mutationDoneMsg:
		if msg.op == opCreate || msg.op == opUpdate {
			m.saving = false
			m.editor = m.editor.SetSaving(false)
		}
		if msg.created != nil && msg.err != nil {
			// The row exists now; a retry from this editor must update it.
			if m.pane == paneEditor && m.editing == nil {
				m.editing = msg.created
				m.editor = m.editor.Bind(msg.created)
			}
			m.setError("Created action item but could not mark it completed", msg.err)
			return m, nil
		}
		if msg.err != nil {
			m.setError(fmt.Sprintf("Could not %s action item", msg.op), msg.err)
			return m, nil
		}
		m.clearStatus()
		if msg.op == opCreate || msg.op == opUpdate {
			m.closeEditor()
		}
		return m, nil
	}

	if m.pane == paneEditor {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.sidebar, cmd = m.sidebar.Update(msg)
	return m, cmd
}

func (m *appModel) openEditor(item *model.ActionItem) {
	m.editing = item
	m.editor = m.wireEditor(newEditor(item)).SetSize(m.width, m.height-appHeaderLines-1)
	m.pane = paneEditor
}

func (m *appModel) closeEditor() {
	m.editing = nil
	m.saving = false
	m.pane = paneList
}

func (m *appModel) setError(prefix string, err error) {
	m.status = prefix + ": " + err.Error()
	m.statusErr = true
}

func (m *appModel) clearStatus() {
	m.status = ""
	m.statusErr = false
}

func (m appModel) waitSnapshot() tea.Cmd {
	ch := m.snapshots
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(s)
	}
}

func (m appModel) loadCmd() tea.Cmd {
	ctx, items, scope := m.ctx, m.items, m.scope
	return func() tea.Msg {
		_, err := items.SetScope(ctx, scope)
		return listLoadedMsg{err: err}
	}
}

func (m appModel) watchCmd() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	ctx, feed, nb := m.ctx, m.feed, m.scope.NotebookID
	return func() tea.Msg {
		changes, err := feed.Watch(ctx, nb)
		if err != nil {
			return feedFailedMsg{err: err}
		}
		return feedReadyMsg{changes: changes}
	}
}

func waitChange(changes <-chan client.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-changes
		if !ok {
			return feedClosedMsg{}
		}
		return changeMsg(c)
	}
}

func (m appModel) refreshCmd(notebookID string) tea.Cmd {
	ctx, items := m.ctx, m.items
	return func() tea.Msg {
		return refreshedMsg{err: items.Refresh(ctx, notebookID)}
	}
}

func (m appModel) createCmd(text string, completed bool) tea.Cmd {
	ctx, items, scope := m.ctx, m.items, m.scope
	return func() tea.Msg {
		it, err := items.Create(ctx, scope.NotebookID, scope.UserID, text)
		if err != nil {
			return mutationDoneMsg{op: opCreate, err: err}
		}
		if completed {
			if _, err := items.Update(ctx, it.ID, model.Patch{IsCompleted: model.Completed(true)}); err != nil {
				return mutationDoneMsg{op: opCreate, err: err, created: it}
			}
		}
		return mutationDoneMsg{op: opCreate}
	}
}

func (m appModel) updateCmd(op, id string, p model.Patch) tea.Cmd {
	ctx, items := m.ctx, m.items
	return func() tea.Msg {
		_, err := items.Update(ctx, id, p)
		return mutationDoneMsg{op: op, err: err}
	}
}

func (m appModel) deleteCmd(id string) tea.Cmd {
	ctx, items := m.ctx, m.items
	return func() tea.Msg {
		return mutationDoneMsg{op: opDelete, err: items.Delete(ctx, id)}
	}
}

func (m appModel) View() string {
	title := styleHeading().Render("Action Items")
	if m.scope.NotebookID != "" {
		title += styleMuted().Render("  " + m.scope.NotebookID)
	}

	var body string
	if m.pane == paneEditor {
		body = m.editor.View()
	} else {
		body = m.sidebar.View()
	}

	var status string
	switch {
	case m.status != "" && m.statusErr:
		status = styleError().Render(m.status)
	case m.status != "":
		status = styleMuted().Render(m.status)
	case m.pane == paneList:
		status = styleMuted().Render("a: add   enter: edit   space: toggle   q: quit")
	}

	view := lipgloss.JoinVertical(lipgloss.Left, title, body)
	if m.height > 0 {
		lines := strings.Count(view, "\n") + 1
		if pad := m.height - lines - 1; pad > 0 {
			view += strings.Repeat("\n", pad)
		}
	}
	return view + "\n" + status
}
