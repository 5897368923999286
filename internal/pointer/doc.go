// Package pointer converts pointer-device positions into image-space pixel
// coordinates.
//
// A displayed image is usually rendered at a different size than its native
// resolution (CSS scaling, window resizes, high-DPI screens). Pointer events
// arrive in client space, so every event must be mapped through the element's
// current rendered box before it can touch the drawing layer:
//
//	scaleX = bufferWidth / box.Width
//	scaleY = bufferHeight / box.Height
//	x = (clientX - box.Left) * scaleX
//	y = (clientY - box.Top) * scaleY
//
// Mouse and touch input share one Input type; touch lists are reduced to
// their first contact with FromTouches.
//
// Results are not clamped. Positions outside the buffer are legal and are
// clipped later by stroke rendering.
package pointer
