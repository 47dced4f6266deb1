package tui

// ScreenStack manages the navigation history of screens. The top screen
// is the one displayed and receiving keys; screens below keep their state
// so going back is instant.
type ScreenStack struct {
	screens []Screen
}

// NewScreenStack creates a new empty screen stack
func NewScreenStack() *ScreenStack {
	return &ScreenStack{}
}

// Len returns the number of screens in the stack
func (s *ScreenStack) Len() int {
	return len(s.screens)
}

// Top returns the displayed screen, or nil when the stack is empty
func (s *ScreenStack) Top() Screen {
	if len(s.screens) == 0 {
		return nil
	}
	return s.screens[len(s.screens)-1]
}

// All returns the screens bottom first
func (s *ScreenStack) All() []Screen {
	return s.screens
}

// Push adds a screen on top
func (s *ScreenStack) Push(screen Screen) {
	s.screens = append(s.screens, screen)
}

// Pop closes and removes the top screen. The root screen is never popped;
// false is returned instead.
func (s *ScreenStack) Pop() bool {
	if len(s.screens) <= 1 {
		return false
	}
	top := s.screens[len(s.screens)-1]
	top.Close()
	s.screens[len(s.screens)-1] = nil
	s.screens = s.screens[:len(s.screens)-1]
	return true
}

// Reset closes every screen and starts over from root. A nil root leaves
// the stack empty.
func (s *ScreenStack) Reset(root Screen) {
	s.Clear()
	if root != nil {
		s.screens = append(s.screens, root)
	}
}

// Clear closes and removes every screen
func (s *ScreenStack) Clear() {
	for _, screen := range s.screens {
		screen.Close()
	}
	s.screens = nil
}
