package navigation

const ModalOpenClass = "modal-open"

/*
ScrollLock keeps the page body marked as modal while the slideshow is
open so the grid behind it does not scroll.
*/
type ScrollLock struct {
	locked  bool
	release func()
}

func AttachScrollLock(m *Machine) *ScrollLock {
	lock := &ScrollLock{locked: m.IsOpen()}

	lock.release = m.Subscribe(func(from, to State) {
		lock.locked = to.IsOpen()
	})

	return lock
}

func (l *ScrollLock) Locked() bool {
	return l.locked
}

func (l *ScrollLock) BodyClass() string {
	if l.locked {
		return ModalOpenClass
	}

	return ""
}

// Detach stops following the machine and unlocks the page.
func (l *ScrollLock) Detach() {
	if l.release != nil {
		l.release()
		l.release = nil
	}

	l.locked = false
}
