// Package mask maintains the freehand drawing layer used to build inpainting
// masks.
//
// A Layer keeps three buffers of identical size:
//
//   - the original: an untouched snapshot of the source image
//   - the drawing: a transparent RGBA buffer that receives only user strokes
//   - the composite: original with the drawing layered on top (source-over)
//
// The composite is rebuilt from the other two after every mutation, so
// drawing never alters the source pixels and the visible result is always
// consistent with the drawing buffer.
//
// # Strokes
//
// A stroke is BeginStroke followed by any number of ExtendStroke calls and
// an EndStroke. Each ExtendStroke renders one capsule-shaped segment (width
// 40, round caps and joins) from the previous point to the new one. Coverage
// is decided per pixel centre, without anti-aliasing, so an ERASE stroke
// along the same path removes exactly the pixels an ADD stroke painted.
//
//   - ModeAdd blends the style colour with source-over
//   - ModeErase removes alpha with destination-out at full opacity
//
// Strokes are not stored; their effect is baked into the drawing buffer.
//
// # Mask export
//
// ExportMask thresholds the drawing buffer's alpha channel: a pixel is white
// when its alpha is above AlphaThreshold (10 of 255) and black otherwise.
// The result is a pure function of the drawing buffer and has no gray values.
//
// # Thread Safety
//
// Layer is not safe for concurrent use. It is owned by a single editing
// session which applies input events one at a time and in arrival order.
package mask
