package metrics

import "time"

type Recorder interface {
	ObserveCacheLookup(result string)
	ObserveProviderCall(op string, err error, elapsed time.Duration)
	ObserveCleanup(searches, flights int64)
}

type fanout []Recorder

// Fanout forwards every observation to each recorder in order.
func Fanout(recorders ...Recorder) Recorder {
	return fanout(recorders)
}

func (f fanout) ObserveCacheLookup(result string) {
	for _, r := range f {
		r.ObserveCacheLookup(result)
	}
}

func (f fanout) ObserveProviderCall(op string, err error, elapsed time.Duration) {
	for _, r := range f {
		r.ObserveProviderCall(op, err, elapsed)
	}
}

func (f fanout) ObserveCleanup(searches, flights int64) {
	for _, r := range f {
		r.ObserveCleanup(searches, flights)
	}
}
