package logger

import "sync"

// components caches one tagged logger per component name.
var components sync.Map

// Get returns the global logger tagged with component name. Loggers are
// cached per name; Init drops the cache so later calls use the new output.
func Get(name string) *Logger {
	if l, ok := components.Load(name); ok {
		return l.(*Logger)
	}
	l, _ := components.LoadOrStore(name, GetGlobalLogger().WithComponent(name))
	return l.(*Logger)
}
