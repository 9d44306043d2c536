package apiclient

import "time"

// Observer is told about every finished request exactly once.
type Observer interface {
	ObserveRequest(method, path string, outcome Kind, status int, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, string, Kind, int, time.Duration) {}
