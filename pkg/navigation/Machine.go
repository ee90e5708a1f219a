/*
Package navigation tracks which image of a grid is open in the slideshow.

A Machine is either closed (CurrentIndex is -1) or open at an index in
[0, total). Next and Previous stop at the ends instead of wrapping.
A Machine has one writer; it is not safe for concurrent use.
*/
package navigation

const Closed = -1

type State struct {
	CurrentIndex int
}

func (s State) IsOpen() bool {
	return s.CurrentIndex != Closed
}

type Event interface {
	event()
}

type OpenAt struct {
	Index int
}

type Next struct{}
type Previous struct{}
type Close struct{}

func (OpenAt) event()   {}
func (Next) event()     {}
func (Previous) event() {}
func (Close) event()    {}

/*
Transition returns the state that event leads to from state, for a list
of total items. Anything that is not a valid move returns state as is.
*/
func Transition(state State, event Event, total int) State {
	switch e := event.(type) {
	case OpenAt:
		if state.IsOpen() || e.Index < 0 || e.Index >= total {
			return state
		}

		return State{CurrentIndex: e.Index}

	case Next:
		if !state.IsOpen() || state.CurrentIndex+1 >= total {
			return state
		}

		return State{CurrentIndex: state.CurrentIndex + 1}

	case Previous:
		if !state.IsOpen() || state.CurrentIndex-1 < 0 {
			return state
		}

		return State{CurrentIndex: state.CurrentIndex - 1}

	case Close:
		return State{CurrentIndex: Closed}
	}

	return state
}

type Observer func(from, to State)

type Machine struct {
	state     State
	total     int
	observers map[int]Observer
	nextID    int
}

func NewMachine(total int) *Machine {
	return &Machine{
		state:     State{CurrentIndex: Closed},
		total:     max(total, 0),
		observers: map[int]Observer{},
	}
}

func (m *Machine) State() State {
	return m.state
}

func (m *Machine) CurrentIndex() int {
	return m.state.CurrentIndex
}

func (m *Machine) IsOpen() bool {
	return m.state.IsOpen()
}

func (m *Machine) Total() int {
	return m.total
}

/*
Dispatch applies event and reports whether the state changed. Observers
are only told about real changes.
*/
func (m *Machine) Dispatch(event Event) bool {
	from := m.state
	to := Transition(from, event, m.total)

	if to == from {
		return false
	}

	m.state = to

	for id := 0; id < m.nextID; id++ {
		if observer, ok := m.observers[id]; ok {
			observer(from, to)
		}
	}

	return true
}

/*
HandleKey maps a key to its event. Keys do nothing while the slideshow
is closed.
*/
func (m *Machine) HandleKey(key Key) bool {
	if !m.IsOpen() {
		return false
	}

	event, ok := key.Event()
	if !ok {
		return false
	}

	return m.Dispatch(event)
}

/*
Subscribe registers observer for state changes. Call the returned func
to stop observing; calling it more than once is fine.
*/
func (m *Machine) Subscribe(observer Observer) func() {
	id := m.nextID
	m.nextID++
	m.observers[id] = observer

	return func() {
		delete(m.observers, id)
	}
}
