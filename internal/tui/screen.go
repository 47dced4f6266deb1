package tui

import (
	"context"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/instalike/internal/domain"
)

// Screen is one page of the application: a feed, a profile, a post...
// Screens are pointers mutated in place by Update.
type Screen interface {
	// ID routes async results back to the screen that asked for them
	ID() int
	Title() string

	// Init starts the first load
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
	SetSpinner(frame string)

	IsFiltering() bool
	IsFilterTyping() bool

	// Close cancels in-flight loads; results arriving later are dropped
	Close()
}

var screenSeq atomic.Int64

// screenBase holds what every screen shares
type screenBase struct {
	id     int
	svc    *Services
	ctx    context.Context
	cancel context.CancelFunc
	banner string

	width  int
	height int
}

func newScreenBase(svc *Services) screenBase {
	ctx, cancel := context.WithCancel(context.Background())
	return screenBase{
		id:     int(screenSeq.Add(1)),
		svc:    svc,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (b *screenBase) ID() int { return b.id }

func (b *screenBase) Close() { b.cancel() }

func (b *screenBase) closed() bool { return b.ctx.Err() != nil }

// isMe reports whether user is the logged user
func (b *screenBase) isMe(userID int64) bool {
	if userID == domain.Me {
		return true
	}
	me := b.svc.Session.CurrentUser()
	return me != nil && me.ID == userID
}

// stack renders the header blocks above a list and returns the height
// left for the list
func (b *screenBase) stack(blocks ...string) (string, int) {
	var parts []string
	if b.banner != "" {
		parts = append(parts, renderBanner(b.banner, b.width))
	}
	for _, block := range blocks {
		if block != "" {
			parts = append(parts, block)
		}
	}
	head := strings.Join(parts, "\n")
	if head == "" {
		return "", b.height
	}
	return head, max(b.height-lipgloss.Height(head), 3)
}

func openScreen(screen Screen) tea.Cmd {
	return func() tea.Msg { return OpenScreenMsg{Screen: screen} }
}

func closeScreen(id int) tea.Cmd {
	return func() tea.Msg { return CloseScreenMsg{ScreenID: id} }
}

func broadcast(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
