/*
Package fontregistry manages a registry for loaded fonts.

A Registry is owned by its creator and lives as long as the client needs it,
typically for a process or session; Clear tears it down. Fonts are registered
by a normalized name. Ensure acquires a font by delegating to a Fetcher at
most once per name: concurrent requests for a name which is currently being
fetched wait for the outcome of the fetch in flight. Fetching runs with a
registry-wide timeout, independent of the context of the caller which
initiated it.

Failed fetches are not remembered, i.e. a later call to Ensure will try
again.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package fontregistry

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'inkmetrics.fonts'
func tracer() tracing.Trace {
	return tracing.Select("inkmetrics.fonts")
}
