package logger

// Component-specific logger functions

// Discover returns a logger for result-file discovery operations
func Discover() Logger {
	return WithField("component", "discover")
}

// CSV returns a logger for CSV reading and writing operations
func CSV() Logger {
	return WithField("component", "csv")
}

// Store returns a logger for table store operations
func Store() Logger {
	return WithField("component", "store")
}

// Collector returns a logger for collection pipeline operations
func Collector() Logger {
	return WithField("component", "collector")
}

// CLI returns a logger for CLI operations
func CLI() Logger {
	return WithField("component", "cli")
}
