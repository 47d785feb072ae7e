package service

import (
	"cloud.google.com/go/civil"
	"time"
)

// Clock tells the engine what "today" is.
type Clock interface {
	Today() civil.Date
}

type zoneClock struct {
	loc *time.Location
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return zoneClock{loc: loc}
}

func (c zoneClock) Today() civil.Date {
	return civil.DateOf(time.Now().In(c.loc))
}

type FixedClock civil.Date

func (c FixedClock) Today() civil.Date {
	return civil.Date(c)
}
