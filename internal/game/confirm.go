package game

import "time"

// DefaultSurrenderWindow is how long an armed surrender waits for the
// confirming second call.
const DefaultSurrenderWindow = 3 * time.Second

// Confirm is a two-step confirmation: Idle → ArmedUntil(t) → Idle.
// The zero value is Idle.
type Confirm struct {
	armed bool
	until time.Time
}

// Press arms the confirmation, or fires it when it is armed and now is
// inside the window. An expired arming counts as Idle and re-arms.
func (c *Confirm) Press(now time.Time, window time.Duration) (fired bool) {
	if c.Armed(now) {
		*c = Confirm{}
		return true
	}
	c.armed = true
	c.until = now.Add(window)
	return false
}

// Armed reports whether a press at now would fire.
func (c *Confirm) Armed(now time.Time) bool {
	return c.armed && now.Before(c.until)
}

// Until is the arming deadline, zero when idle.
func (c *Confirm) Until() time.Time {
	if !c.armed {
		return time.Time{}
	}
	return c.until
}

func (c *Confirm) Reset() { *c = Confirm{} }
