package yeardata

type LoaderOpt func(*Loader)

// WithSchema sets the property names used to read features
func WithSchema(s Schema) LoaderOpt {
	return func(l *Loader) {
		l.schema = s
	}
}

// WithYearRange sets the inclusive range of years to attempt
func WithYearRange(min, max int) LoaderOpt {
	return func(l *Loader) {
		l.minYear = min
		l.maxYear = max
	}
}

// WithMaxConcurrent bounds the number of in-flight fetches; 0 means unbounded
func WithMaxConcurrent(n int) LoaderOpt {
	return func(l *Loader) {
		l.maxConcurrent = n
	}
}
