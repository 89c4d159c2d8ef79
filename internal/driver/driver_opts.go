package driver

type LoopOpt func(*Loop)

func WithQueueSize(size int) LoopOpt {
	return func(l *Loop) {
		if size > 0 {
			l.queueSize = size
		}
	}
}
