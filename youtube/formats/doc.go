// Package formats resolves raw player-response format descriptors into
// playable formats and picks the best one for a requested quality.
//
// Resolution covers three concerns: deciphering protected URLs with the
// functions extracted from the player script, deriving metadata (container,
// codecs, live/HLS flags) from the mime type and URL shape, and ranking the
// resulting list with a deterministic multi-key sort.
package formats
