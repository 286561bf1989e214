package exjson

import "github.com/lefeck/exjson/eval"

// CustomFunction is a user-supplied expression function: see
// eval.CustomFunction.
type CustomFunction = eval.CustomFunction

// RegisterCustomScriptingExtension installs fn under name in the
// process-wide expression registry, consulted ahead of the built-in
// functions. The registry is guarded by a mutex, but a Load/Loads call
// already running may or may not see a function registered while it
// runs; register extensions before any Load/Loads call that uses them.
func RegisterCustomScriptingExtension(name string, fn CustomFunction) {
	eval.RegisterCustomScriptingExtension(name, fn)
}
