// Package imaging provides the pixel-level operations behind dataset
// preparation: decoding images, turning normalized YOLO boxes into pixel
// boxes, cropping, saving, and rendering label previews.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner.
// A PixelBox's (X1, Y1) is inclusive and (X2, Y2) is exclusive, so a box
// covering a whole W x H image is (0, 0, W, H).
//
// # Box Conversion
//
// A normalized box (cx, cy, w, h) becomes
//
//	x1 = int((cx - w/2) * W)    x2 = int((cx + w/2) * W)
//	y1 = int((cy - h/2) * H)    y2 = int((cy + h/2) * H)
//
// and is then clamped to [0, W] x [0, H]. A box that clamps to zero width or
// height is empty and must not be cropped.
//
// # Supported Formats
//
// Decoding supports JPEG, PNG, GIF, BMP, TIFF, and WebP. Encoding follows the
// output file extension and supports JPEG, PNG, GIF, BMP, and TIFF.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The other functions are stateless
// and never modify their input images.
package imaging
