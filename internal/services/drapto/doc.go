// Package drapto archives finished reels as AV1 files through the Drapto
// encoder, either in-process via the Go library or by shelling out to the
// drapto binary when one is configured.
package drapto
