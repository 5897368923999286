// Package session holds the state of one image editing session.
//
// A Session owns the loaded source image, the mask drawing layer, the active
// task tab, the draw/erase mode, the current processing job and the last
// processed result. All methods are safe for concurrent use; processing runs
// in the background so pointer events keep drawing while a request is in
// flight.
//
// Pointer events follow the browser model: PointerDown starts a stroke and
// paints a dot, PointerMove extends it while the pointer is down, and
// PointerUp or PointerLeave ends it. Pointer events only draw while the
// inpainting tab is active and an image is loaded; otherwise they are
// ignored.
package session
