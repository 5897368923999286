// Package remote is the HTTP client for the image processing service.
//
// The service is a black box that accepts an image, an optional mask, a task
// name and a JSON parameter object as a multipart form, and answers with the
// processed image bytes:
//
//	POST <endpoint>/process
//	  image   image.png   (required)
//	  mask    mask.png    (inpainting only)
//	  task    outpainting | inpainting | superresolution
//	  params  JSON object, schema depends on task
//
// A Client allows one request in flight at a time. There is no automatic
// retry; callers report failures to the user and may submit again.
package remote
