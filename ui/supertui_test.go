package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lens-forum/app/content"
	"github.com/lens-forum/app/domain"
	"github.com/lens-forum/app/ui/common"
)

type fakeSource struct {
	content.Source
}

func (fakeSource) FetchThreads(ctx context.Context, community string, pageSize int, cursor string) (domain.ThreadsPage, error) {
	return domain.ThreadsPage{Items: []domain.Thread{{Address: "0xt1", Title: "Hello"}}}, nil
}

func (fakeSource) FetchThread(ctx context.Context, address string) (domain.Thread, error) {
	return domain.Thread{Address: address, Title: "Hello"}, nil
}

func newTestModel(acc domain.Account) MainModel {
	env := common.Env{
		Source:    fakeSource{},
		Account:   acc,
		Community: "0xcommunity",
		Timeout:   time.Second,
	}
	return NewModel(env, 120, 40)
}

func update(t *testing.T, m MainModel, msg tea.Msg) (MainModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(MainModel)
	if !ok {
		t.Fatalf("Expected MainModel, got %T", next)
	}
	return mm, cmd
}

// TestMainModelInitialization verifies the main model starts on the community view
func TestMainModelInitialization(t *testing.T) {
	model := newTestModel(domain.Account{Handle: "alice", AccountAddress: "0xa11ce"})

	if model.State() != common.CommunityView {
		t.Errorf("Expected CommunityView, got %d", model.State())
	}
	if model.account.Handle != "alice" {
		t.Errorf("Expected account alice, got %s", model.account.Handle)
	}
	// Width and height are adjusted by common.DefaultWindowWidth/Height
	if model.width != 110 || model.height != 30 {
		t.Errorf("Expected 110x30, got %dx%d", model.width, model.height)
	}
	if cmd := model.Init(); cmd == nil {
		t.Fatal("Expected activation command")
	} else if _, ok := cmd().(common.ActivateViewMsg); !ok {
		t.Error("Init should activate the first view")
	}
}

func TestActivationLoadsCommunity(t *testing.T) {
	model := newTestModel(domain.Account{})

	_, cmd := update(t, model, common.ActivateViewMsg{})

	if cmd == nil {
		t.Error("Expected the community view to start loading")
	}
}

func TestViewSwitching(t *testing.T) {
	model := newTestModel(domain.Account{Handle: "alice", AccountAddress: "0xa11ce"})

	model, _ = update(t, model, common.ViewThreadMsg{Address: "0xt1", Title: "Hello"})
	if model.State() != common.ThreadView {
		t.Fatalf("Expected ThreadView, got %d", model.State())
	}
	if model.threadViewModel.Address != "0xt1" {
		t.Errorf("Thread view should be showing 0xt1, got %q", model.threadViewModel.Address)
	}

	model, _ = update(t, model, common.CommunityView)
	if model.State() != common.CommunityView {
		t.Errorf("Expected CommunityView, got %d", model.State())
	}

	model, _ = update(t, model, common.NewThreadMsg{Community: "0xcommunity"})
	if model.State() != common.NewThreadView {
		t.Errorf("Expected NewThreadView, got %d", model.State())
	}

	model, cmd := update(t, model, common.ThreadCreatedMsg{Thread: domain.Thread{Address: "0xnew"}})
	if model.State() != common.CommunityView {
		t.Errorf("Expected CommunityView after publishing, got %d", model.State())
	}
	if cmd == nil {
		t.Error("Expected the community list to reload")
	}
}

func TestSwitchToSameViewIsNoop(t *testing.T) {
	model := newTestModel(domain.Account{})

	_, cmd := update(t, model, common.CommunityView)

	if cmd != nil {
		t.Error("Expected no command when the view does not change")
	}
}

func TestCtrlCQuits(t *testing.T) {
	model := newTestModel(domain.Account{})

	_, cmd := update(t, model, tea.KeyMsg{Type: tea.KeyCtrlC})

	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

// TestMessageRoutingDoesNotPanic verifies message routing doesn't panic in any view
func TestMessageRoutingDoesNotPanic(t *testing.T) {
	msgs := []tea.Msg{
		common.ActivateViewMsg{},
		common.DeactivateViewMsg{},
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}},
		tea.KeyMsg{Type: tea.KeyEnter},
		tea.KeyMsg{Type: tea.KeyEsc},
		tea.WindowSizeMsg{Width: 100, Height: 30},
		common.StatusMsg{Text: "hi"},
	}
	states := []common.SessionState{common.CommunityView, common.ThreadView, common.NewThreadView}

	for _, state := range states {
		for _, msg := range msgs {
			func() {
				defer func() {
					if r := recover(); r != nil {
						t.Errorf("Update panicked in state %d with %T: %v", state, msg, r)
					}
				}()
				model := newTestModel(domain.Account{})
				model, _ = update(t, model, state)
				model, _ = update(t, model, msg)
				_ = model.View()
			}()
		}
	}
}

func TestViewTooSmall(t *testing.T) {
	model := newTestModel(domain.Account{})
	model, _ = update(t, model, tea.WindowSizeMsg{Width: 60, Height: 20})

	if !strings.Contains(model.View(), "Terminal too small!") {
		t.Error("Expected size warning")
	}
}

func TestViewShowsHeaderAndHelp(t *testing.T) {
	model := newTestModel(domain.Account{})
	model, _ = update(t, model, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := model.View()
	if !strings.Contains(view, "guest (read-only)") {
		t.Error("Expected guest header")
	}
	if !strings.Contains(view, "focused > community") {
		t.Error("Expected focused view in help")
	}
}
