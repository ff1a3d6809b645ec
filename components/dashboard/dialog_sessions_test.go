package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDialogSessionsIsolateViewers(t *testing.T) {
	recorder := &actionRecorder{}
	sessions := NewDialogSessions(recorder.take, nil)
	alice := ViewerContext{UserID: "alice"}
	bob := ViewerContext{UserID: "bob"}

	sessions.Open(alice, Alert{ID: "A1"})
	sessions.Open(bob, Alert{ID: "A2"})
	if err := sessions.SetNotes(alice, "alice notes"); err != nil {
		t.Fatalf("SetNotes returned error: %v", err)
	}

	view, ok := sessions.View(bob)
	if !ok || view.Notes != "" || view.Alert.ID != "A2" {
		t.Fatalf("expected bob's dialog untouched, got %+v", view)
	}
	id, err := sessions.Confirm(context.Background(), alice)
	if err != nil || id != "A1" {
		t.Fatalf("Confirm = %q, %v", id, err)
	}
	if recorder.calls[0] != (actionCall{alertID: "A1", notes: "alice notes"}) {
		t.Fatalf("unexpected action %+v", recorder.calls[0])
	}
	if _, ok := sessions.View(alice); ok {
		t.Fatalf("expected alice's dialog closed")
	}
	if _, ok := sessions.View(bob); !ok {
		t.Fatalf("expected bob's dialog still open")
	}
}

func TestDialogSessionsRequireOpenDialog(t *testing.T) {
	sessions := NewDialogSessions(nil, nil)
	viewer := ViewerContext{UserID: "u"}
	if err := sessions.SetNotes(viewer, "x"); !errors.Is(err, ErrDialogClosed) {
		t.Fatalf("expected ErrDialogClosed, got %v", err)
	}
	if _, err := sessions.Confirm(context.Background(), viewer); !errors.Is(err, ErrDialogClosed) {
		t.Fatalf("expected ErrDialogClosed, got %v", err)
	}
	sessions.Cancel(viewer)
}

func TestDialogSessionsOpenReplacesAndResets(t *testing.T) {
	var closed []string
	sessions := NewDialogSessions(nil, func(viewer ViewerContext) { closed = append(closed, viewer.UserID) })
	viewer := ViewerContext{}
	sessions.Open(viewer, Alert{ID: "A1"})
	_ = sessions.SetNotes(viewer, "draft")
	view := sessions.Open(viewer, Alert{ID: "A2", Type: AlertWarning})
	if view.Alert.ID != "A2" || view.Notes != "" || view.Icon.Color != "orange" {
		t.Fatalf("unexpected view after reopen %+v", view)
	}
	sessions.Cancel(viewer)
	if len(closed) != 1 || closed[0] != "" {
		t.Fatalf("expected one close callback for the anonymous viewer, got %v", closed)
	}
}

func TestDialogSessionsConcurrentNotes(t *testing.T) {
	sessions := NewDialogSessions(nil, nil)
	viewer := ViewerContext{UserID: "u"}
	sessions.Open(viewer, Alert{ID: "A1"})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sessions.SetNotes(viewer, "n")
			sessions.View(viewer)
		}()
	}
	wg.Wait()
	view, ok := sessions.View(viewer)
	if !ok || view.Notes != "n" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestDialogSessionsSlowConfirmDoesNotBlockOtherViewers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	sessions := NewDialogSessions(func(ctx context.Context, alertID, notes string) error {
		if alertID == "A1" {
			close(started)
			<-release
		}
		return nil
	}, nil)
	alice := ViewerContext{UserID: "alice"}
	bob := ViewerContext{UserID: "bob"}
	sessions.Open(alice, Alert{ID: "A1"})
	sessions.Open(bob, Alert{ID: "A2"})

	confirmed := make(chan error, 1)
	go func() {
		_, err := sessions.Confirm(context.Background(), alice)
		confirmed <- err
	}()
	<-started

	done := make(chan AlertDialogView, 1)
	go func() {
		_ = sessions.SetNotes(bob, "checked shelf")
		sessions.Open(ViewerContext{UserID: "carol"}, Alert{ID: "A3"})
		view, _ := sessions.View(bob)
		done <- view
	}()
	select {
	case view := <-done:
		if view.Alert.ID != "A2" || view.Notes != "checked shelf" {
			t.Fatalf("unexpected view for bob %+v", view)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("other viewers blocked while a confirm was in flight")
	}

	close(release)
	if err := <-confirmed; err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if _, ok := sessions.View(alice); ok {
		t.Fatalf("expected alice's dialog closed")
	}
}
