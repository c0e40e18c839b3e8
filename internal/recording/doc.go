// Package recording exposes the backend's recording archive.
//
// Recordings are read-only from the gateway's point of view except for
// deletion. Only completed recordings are surfaced; in-progress files
// would dangle until the recorder finalises them. The cached list is
// kept in filename order, which sorts chronologically because the
// recorder embeds the timestamp in the name.
package recording
