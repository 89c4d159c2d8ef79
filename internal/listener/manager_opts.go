package listener

type ManagerOpt func(*ConnectionManager)

// WithWidth sets the column at which console output wraps. Zero disables wrapping.
func WithWidth(width int) ManagerOpt {
	return func(m *ConnectionManager) {
		m.width = width
	}
}
