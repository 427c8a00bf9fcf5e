// Package stream delivers the bytes of a resolved format chunk by chunk.
//
// Two session kinds exist: a ranged session pulls a finite resource in
// fixed-size byte ranges, a live session follows an HLS media playlist and
// serves decrypted segments. Both implement Stream and are driven by
// repeated Chunk calls from a single consumer; a nil chunk with a nil error
// means the stream has ended.
package stream
