package source

// Decoders registered with the image package. Probing and region decoding
// both go through image.DecodeConfig / image.Decode, so any format listed
// here can be attached.
import (
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Formats lists the format names accepted by Open.
var Formats = []string{"png", "jpeg", "gif", "bmp", "tiff", "webp"}
