// Package imaging provides the image primitives the scoring pipeline is
// built from.
//
// It covers decoding uploads in any registered format, a path-keyed cache of
// decoded photos, grayscale conversion, Gaussian blur, adaptive mean
// thresholding, cropping and letterboxing onto a canvas, region intensity
// statistics and diagnostic overlays.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Rectangles follow
// image.Rectangle: Min is inclusive, Max is exclusive.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Every other function is
// stateless and never mutates its input; results are fresh images.
//
// # Error Handling
//
// Decode failures wrap ErrUndecodable. Geometry errors (a crop outside the
// image, a non-positive canvas) are returned as plain errors.
package imaging
