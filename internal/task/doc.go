// Package task defines the processing tasks offered by the remote service and
// their parameter schemas.
//
// Three tasks exist: outpainting, inpainting and superresolution. Parameter
// structs serialize to the JSON object sent in the "params" form field of a
// processing request.
//
// Outpainting is expressed by the user as a direction and a percentage of
// the image size; CalculatePixels turns that into per-side pixel counts
// using the source image's native dimensions.
package task
