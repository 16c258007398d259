package notify

import "testing"

func TestNotifyCoalesces(t *testing.T) {
	s := New()
	s.Notify()
	s.Notify()
	s.Notify()

	select {
	case <-s.C():
	default:
		t.Fatal("expected a pending notification")
	}
	select {
	case <-s.C():
		t.Fatal("notifications should coalesce into one")
	default:
	}
	if s.Version() != 3 {
		t.Errorf("Version() = %d, want 3", s.Version())
	}
}

func TestNoNotificationWithoutChange(t *testing.T) {
	s := New()
	select {
	case <-s.C():
		t.Fatal("unexpected notification")
	default:
	}
	if s.Version() != 0 {
		t.Errorf("Version() = %d, want 0", s.Version())
	}
}
