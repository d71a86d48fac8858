package model

// Frame is a decoded camera image. Implementations may hold native memory,
// so every Frame must be closed once the cycle is done with it.
type Frame interface {
	Width() int
	Height() int
	Close() error
}
