// Package detection finds bubble-shaped contours in sheet photos.
//
// # Algorithm Overview
//
// Both detection passes share one binarization recipe:
//
//  1. Grayscale and Gaussian blur to suppress sensor noise
//  2. Adaptive mean threshold, inverted so ink becomes foreground
//  3. External contours: the outer boundary of each connected shape, with
//     enclosed area, arc length and bounding box
//  4. A ShapeFilter admits contours by area, aspect ratio, size and
//     circularity
//
// Standardize runs this on the raw photo with a loose filter to find the
// answer field and crop it onto a canonical canvas. DetectBubbles runs it
// again on the canvas with a strict filter.
//
// # Backends
//
// Contour extraction is pure Go by default. Building with -tags gocv switches
// to OpenCV through gocv, which needs OpenCV 4 installed. Both backends
// report external contours only and Max-exclusive bounding boxes.
//
// # Coordinate System
//
// All coordinates use the standard image convention: origin at top-left, X
// rightward, Y downward.
package detection
