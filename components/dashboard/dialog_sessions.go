package dashboard

import (
	"context"
	"errors"
	"sync"
)

// ErrDialogClosed is returned when a dialog event arrives for a viewer without an open dialog.
var ErrDialogClosed = errors.New("dashboard: alert dialog is not open")

const anonymousViewerKey = "anonymous"

// DialogSessions keeps one alert dialog per viewer. Events for the same viewer
// are applied one at a time; viewers never wait on each other, so a slow
// confirm only holds its own dialog.
type DialogSessions struct {
	mu       sync.Mutex
	sessions map[string]*dialogSession
	action   AlertActionFunc
	onClose  func(viewer ViewerContext)
}

type dialogSession struct {
	mu     sync.Mutex
	dialog *AlertDialog
}

// NewDialogSessions wires the shared action callback. onClose is optional.
func NewDialogSessions(action AlertActionFunc, onClose func(viewer ViewerContext)) *DialogSessions {
	return &DialogSessions{
		sessions: map[string]*dialogSession{},
		action:   action,
		onClose:  onClose,
	}
}

// Open shows the dialog for alert, replacing whatever the viewer had open.
func (s *DialogSessions) Open(viewer ViewerContext, alert Alert) AlertDialogView {
	sess := s.sessionFor(viewer)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.dialog.Open(alert)
	view, _ := sess.dialog.View()
	return view
}

// SetNotes updates the notes of the viewer's open dialog.
func (s *DialogSessions) SetNotes(viewer ViewerContext, notes string) error {
	sess, ok := s.lookup(viewer)
	if !ok {
		return ErrDialogClosed
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.dialog.IsOpen() {
		return ErrDialogClosed
	}
	sess.dialog.SetNotes(notes)
	return nil
}

// Confirm runs the action for the viewer's open dialog and returns the alert id acted on.
func (s *DialogSessions) Confirm(ctx context.Context, viewer ViewerContext) (string, error) {
	sess, ok := s.lookup(viewer)
	if !ok {
		return "", ErrDialogClosed
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.dialog.IsOpen() {
		return "", ErrDialogClosed
	}
	alert, ok := sess.dialog.Alert()
	if !ok {
		return "", ErrNoAlert
	}
	if err := sess.dialog.Confirm(ctx); err != nil {
		return "", err
	}
	return alert.ID, nil
}

// Cancel closes the viewer's dialog. Cancelling a closed dialog is a no-op.
func (s *DialogSessions) Cancel(viewer ViewerContext) {
	sess, ok := s.lookup(viewer)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.dialog.IsOpen() {
		sess.dialog.Cancel()
	}
}

// View returns the render model of the viewer's dialog when open.
func (s *DialogSessions) View(viewer ViewerContext) (AlertDialogView, bool) {
	sess, ok := s.lookup(viewer)
	if !ok {
		return AlertDialogView{}, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.dialog.View()
}

func (s *DialogSessions) lookup(viewer ViewerContext) (*dialogSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionKey(viewer)]
	return sess, ok
}

func (s *DialogSessions) sessionFor(viewer ViewerContext) *dialogSession {
	key := sessionKey(viewer)
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[key]; ok {
		return sess
	}
	var onClose func()
	if s.onClose != nil {
		onClose = func() { s.onClose(viewer) }
	}
	sess := &dialogSession{dialog: NewAlertDialog(s.action, onClose)}
	s.sessions[key] = sess
	return sess
}

func sessionKey(viewer ViewerContext) string {
	if viewer.UserID == "" {
		return anonymousViewerKey
	}
	return viewer.UserID
}
