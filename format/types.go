package format

type (
	IntensityWidth  uint8
	CompressionType uint8
	FrameType       int16
	SchemaVariant   uint8
)

const (
	WidthInt16   IntensityWidth = 0x1 // WidthInt16 represents 16-bit integer intensities.
	WidthInt32   IntensityWidth = 0x2 // WidthInt32 represents 32-bit integer intensities.
	WidthFloat32 IntensityWidth = 0x3 // WidthFloat32 represents single-precision float intensities.
	WidthFloat64 IntensityWidth = 0x4 // WidthFloat64 represents double-precision float intensities.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionLZ4  CompressionType = 0x2 // CompressionLZ4 represents LZ4 block compression.
	CompressionZstd CompressionType = 0x3 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x4 // CompressionS2 represents S2 compression.
)

// Frame types are persisted by value in frame metadata; new types are
// additive and must never renumber existing ones.
const (
	FrameTypeMS1         FrameType = 1
	FrameTypeMS2         FrameType = 2
	FrameTypeCalibration FrameType = 3
	FrameTypePrescan     FrameType = 4
)

// Schema variants describe how a dataset persists its parameters.
// Detected once at open time, never per call.
const (
	SchemaKeyValue      SchemaVariant = 0x1 // SchemaKeyValue is the key/value parameter schema.
	SchemaLegacyColumns SchemaVariant = 0x2 // SchemaLegacyColumns is the fixed-column legacy schema.
)

// Size returns the number of bytes one intensity value occupies at this width.
func (w IntensityWidth) Size() int {
	switch w {
	case WidthInt16:
		return 2
	case WidthInt32, WidthFloat32:
		return 4
	case WidthFloat64:
		return 8
	default:
		return 0
	}
}

// Valid reports whether w is one of the four supported widths.
func (w IntensityWidth) Valid() bool {
	return w >= WidthInt16 && w <= WidthFloat64
}

func (w IntensityWidth) String() string {
	switch w {
	case WidthInt16:
		return "Int16"
	case WidthInt32:
		return "Int32"
	case WidthFloat32:
		return "Float32"
	case WidthFloat64:
		return "Float64"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionLZ4:
		return "LZ4"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	default:
		return "Unknown"
	}
}

func (t FrameType) String() string {
	switch t {
	case FrameTypeMS1:
		return "MS1"
	case FrameTypeMS2:
		return "MS2"
	case FrameTypeCalibration:
		return "Calibration"
	case FrameTypePrescan:
		return "Prescan"
	default:
		return "Unknown"
	}
}

func (v SchemaVariant) String() string {
	switch v {
	case SchemaKeyValue:
		return "KeyValue"
	case SchemaLegacyColumns:
		return "LegacyColumns"
	default:
		return "Unknown"
	}
}
