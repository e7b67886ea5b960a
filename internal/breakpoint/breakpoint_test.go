package breakpoint

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		width int
		want  Class
	}{
		{0, ClassMobile},
		{320, ClassMobile},
		{767, ClassMobile},
		{768, ClassTablet},
		{1023, ClassTablet},
		{1024, ClassDesktop},
		{2560, ClassDesktop},
	}

	for _, tt := range tests {
		if got := Classify(tt.width); got != tt.want {
			t.Errorf("Classify(%d): got %q, want %q", tt.width, got, tt.want)
		}
	}
}

func TestDetector_NotifiesOnClassChange(t *testing.T) {
	d := New(1280)
	if d.Current() != ClassDesktop {
		t.Fatalf("initial class: got %q, want desktop", d.Current())
	}

	var got []Class
	d.Subscribe(func(c Class) { got = append(got, c) })

	d.Set(800)  // desktop → tablet
	d.Set(820)  // still tablet — no notification
	d.Set(375)  // tablet → mobile
	d.Set(1440) // mobile → desktop

	want := []Class{ClassTablet, ClassMobile, ClassDesktop}
	if len(got) != len(want) {
		t.Fatalf("notifications: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification %d: got %q, want %q", i, got[i], want[i])
		}
	}
	if d.Width() != 1440 {
		t.Errorf("Width: got %d, want 1440", d.Width())
	}
}

func TestDetector_Unsubscribe(t *testing.T) {
	d := New(1280)

	calls := 0
	unsub := d.Subscribe(func(Class) { calls++ })

	d.Set(400)
	unsub()
	d.Set(1280)
	unsub() // second call is a no-op

	if calls != 1 {
		t.Errorf("calls after unsubscribe: got %d, want 1", calls)
	}
}

func TestDetector_UnsubscribeFromCallback(t *testing.T) {
	d := New(1280)

	var unsub func()
	calls := 0
	unsub = d.Subscribe(func(Class) {
		calls++
		unsub()
	})

	d.Set(400)
	d.Set(1280)

	if calls != 1 {
		t.Errorf("calls: got %d, want 1 (self-unsubscribed after first)", calls)
	}
}

func TestDetector_IndependentInstances(t *testing.T) {
	a := New(375)
	b := New(1440)

	if a.Current() != ClassMobile || b.Current() != ClassDesktop {
		t.Fatalf("instances share state: a=%q b=%q", a.Current(), b.Current())
	}
	a.Set(1200)
	if b.Current() != ClassDesktop {
		t.Errorf("b changed when a was set")
	}
}
