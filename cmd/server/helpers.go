package main

// sanitizePort returns a sensible default when the configured port is empty.
func sanitizePort(p string) string {
	if p == "" {
		return "8080"
	}
	return p
}
