package exportpdf

import _ "embed"

// DefaultFont and DefaultBoldFont are used when a DocumentRenderer has no
// FontPath or FontBytes. Both cover Latin, Arabic and the Persian letters
// and digits.
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	DefaultFont []byte

	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	DefaultBoldFont []byte
)
