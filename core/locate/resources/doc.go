/*
Package resources acquires fonts from various kinds of sources.

A Loader fetches a font given a name and a source string. Sources are
interpreted by their prefix:

   https://…, http://…     download (optionally cached in the user's cache directory)
   file://…, or a path     local font file
   packaged:<family>       fonts bundled with the application (the Go fonts)
   system:<name>           locally installed fonts (fontconfig, if configured, or a file search)
   google:<Family>[?text=…] Google Fonts, optionally as a subset for a given text
   (empty)                 packaged fonts, then system fonts

As resource loading may be a time-consuming task, some functions in this
package will work in an async/await fashion by returning a promise.
Functions named

   Resolve…(…)

will return a resource-specific promise type, which the client will call later
to receive the loaded resource. The call to the promise-function will then block
until loading has completed.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'inkmetrics.resources'.
func tracer() tracing.Trace {
	return tracing.Select("inkmetrics.resources")
}
