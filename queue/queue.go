package queue

import (
	"errors"
)

var workerNum = 5

type Event int

const (
	Processing Event = iota
	Success
	Failed
)

var ErrQueueFull = errors.New("swap queue is full, try again later")
