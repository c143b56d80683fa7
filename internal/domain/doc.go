// Package domain models seismic events from the USGS earthquake feed and the
// geophysical estimates and alert tiers derived from them.
//
// # Data Source
//
// Events come from the USGS FDSN event web service
// (https://earthquake.usgs.gov/fdsnws/event/1/), queried as GeoJSON within a
// fixed radius of the operator's reference point. Per feature the fields
// consumed are:
//
//	id                        stable external identifier, unique per event
//	properties.mag            moment magnitude
//	properties.time           origin time, milliseconds since epoch UTC
//	properties.title          human-readable headline, e.g. "M 6.1 - 32 km E of Hakuba"
//	geometry.coordinates      [longitude, latitude, depth] with depth in km
//
// Depth occasionally appears as properties.depth instead of the third
// coordinate; the feed adapter accepts either.
//
// # Ground-Motion Estimate
//
// [EstimatedPGA] approximates peak ground acceleration at the reference
// point from magnitude and epicentral distance using a fixed-coefficient
// attenuation relationship over an effective hypocentral range with a 30 km
// pad. It is a triage heuristic for ordering and context in alert text, not
// a calibrated seismic hazard model, and must never be presented as one.
//
// # Alert Tiers
//
// [Classify] maps magnitude and depth to one of four tiers: none, advisory,
// warning, critical. Tier none is never persisted anywhere; such events are
// re-fetched and re-classified on every cycle. The other tiers drive both
// notification urgency and alert log priority. Critical notifications carry
// delivery parameters instructing the push backend to re-alert until the
// operator acknowledges.
//
// # Idempotency
//
// The event ID from the feed is the idempotency key. A ledger record for an
// ID means an alert was dispatched (or claimed by a concurrent cycle); the
// event must never again appear in an outgoing batch. Records are never
// deleted.
package domain
