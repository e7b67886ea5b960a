package breakpoint

import "sync"

// Viewport width thresholds in CSS pixels. Widths below WidthTablet are
// mobile; widths at or above WidthDesktop are desktop.
const (
	WidthTablet  = 768
	WidthDesktop = 1024
)

// Class is the device class derived from a viewport width.
type Class string

// Device classes.
const (
	ClassMobile  Class = "mobile"
	ClassTablet  Class = "tablet"
	ClassDesktop Class = "desktop"
)

// Classify maps a viewport width to its device class.
func Classify(width int) Class {
	switch {
	case width < WidthTablet:
		return ClassMobile
	case width < WidthDesktop:
		return ClassTablet
	default:
		return ClassDesktop
	}
}

// Detector tracks the current viewport class for one client and notifies
// subscribers when the class changes. There is no package-level state — each
// owner creates its own Detector and is responsible for its lifetime.
//
// All methods are safe for concurrent use. Subscriber callbacks run
// synchronously on the goroutine that called Set; keep them short.
type Detector struct {
	mu      sync.Mutex
	width   int
	class   Class
	nextID  int
	subs    map[int]func(Class)
}

// New returns a Detector initialised to the given viewport width.
func New(width int) *Detector {
	return &Detector{
		width: width,
		class: Classify(width),
		subs:  make(map[int]func(Class)),
	}
}

// Set records a new viewport width. Subscribers are notified only when the
// width crosses a breakpoint — same-class resizes are silent.
func (d *Detector) Set(width int) {
	d.mu.Lock()
	d.width = width
	next := Classify(width)
	if next == d.class {
		d.mu.Unlock()
		return
	}
	d.class = next

	// Copy callbacks out so a subscriber can unsubscribe from inside its
	// own callback without deadlocking.
	fns := make([]func(Class), 0, len(d.subs))
	for _, fn := range d.subs {
		fns = append(fns, fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

// Current returns the device class for the most recent width.
func (d *Detector) Current() Class {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.class
}

// Width returns the most recent raw viewport width.
func (d *Detector) Width() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width
}

// Subscribe registers fn to be called on every class change and returns the
// function that deregisters it. Unsubscribing twice is harmless.
func (d *Detector) Subscribe(fn func(Class)) (unsubscribe func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.subs[id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}
