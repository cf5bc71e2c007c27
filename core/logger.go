package core

// Logger is any service that can report application events and errors.
// expected args fmt: error | map[string]interface{} | a logged-in user object
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
