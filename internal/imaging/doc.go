// Package imaging decodes uploaded images and encodes results for the
// editing server.
//
// Uploads are decoded with EXIF auto-orientation, so the dimensions a
// Source reports are the ones the user sees and draws on. PNG, JPEG and GIF
// are supported through the standard library; BMP, TIFF and WebP through
// golang.org/x/image.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner;
// X increases rightward and Y downward.
//
// # Outpainting Canvas
//
// ExpandCanvas reproduces what the processing service does before it runs
// an outpainting model: the source is pasted onto a larger white canvas and
// a mask marks the new border area in white. The editing server uses it to
// preview an expansion before submitting it.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. A Source is read-only after
// decoding and may be shared.
package imaging
