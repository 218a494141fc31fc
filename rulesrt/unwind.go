package rulesrt

// Guard is one registered rollback action.
type Guard struct {
	fn func()
}

// Cancel disarms the guard.
func (g *Guard) Cancel() {
	g.fn = nil
}

// Unwind is an ordered list of rollback actions. Run fires armed guards
// in reverse registration order; Release disarms all of them once their
// resources belong to the result.
//
//	var unwind rulesrt.Unwind
//	defer unwind.Run()
//	url, err := rulesrt.Sprintf(alloc, ...)
//	if err != nil { return err }
//	unwind.Push(func() { rulesrt.FreeString(alloc, url) })
//	...
//	unwind.Release()
type Unwind struct {
	guards []*Guard
}

// Push registers fn and returns its guard.
func (u *Unwind) Push(fn func()) *Guard {
	g := &Guard{fn: fn}
	u.guards = append(u.guards, g)
	return g
}

// Run fires armed guards, last pushed first, then empties the list.
func (u *Unwind) Run() {
	for i := len(u.guards) - 1; i >= 0; i-- {
		if fn := u.guards[i].fn; fn != nil {
			u.guards[i].fn = nil
			fn()
		}
	}
	u.guards = nil
}

// Release disarms every guard.
func (u *Unwind) Release() {
	for _, g := range u.guards {
		g.Cancel()
	}
	u.guards = nil
}

// Len reports the number of registered guards.
func (u *Unwind) Len() int {
	return len(u.guards)
}
