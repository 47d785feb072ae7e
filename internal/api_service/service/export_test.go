package service

import (
	"context"
	"time"
)

func NewFixedDelayWithSleep(delay time.Duration, free int, sleep func(context.Context, time.Duration) error) *FixedDelay {
	t := NewFixedDelay(delay, free, nil)
	t.sleep = sleep
	return t
}
