package param

// FrameParamKey identifies one frame-scoped parameter. Keys are persisted by
// their numeric value, so existing entries must never be renumbered; new keys
// are appended with the next free value.
type FrameParamKey int

const (
	FrameParamStartTime            FrameParamKey = 1
	FrameParamDuration             FrameParamKey = 2
	FrameParamAccumulations        FrameParamKey = 3
	FrameParamFrameType            FrameParamKey = 4
	FrameParamScans                FrameParamKey = 5
	FrameParamCalibrationSlope     FrameParamKey = 6
	FrameParamCalibrationIntercept FrameParamKey = 7
	FrameParamPressureFront        FrameParamKey = 8
	FrameParamPressureBack         FrameParamKey = 9
	FrameParamTemperature          FrameParamKey = 10
)

// String returns the key's persisted column name in the legacy flat schema,
// doubling as a human-readable label.
func (k FrameParamKey) String() string {
	switch k {
	case FrameParamStartTime:
		return "StartTime"
	case FrameParamDuration:
		return "Duration"
	case FrameParamAccumulations:
		return "Accumulations"
	case FrameParamFrameType:
		return "FrameType"
	case FrameParamScans:
		return "Scans"
	case FrameParamCalibrationSlope:
		return "CalibrationSlope"
	case FrameParamCalibrationIntercept:
		return "CalibrationIntercept"
	case FrameParamPressureFront:
		return "PressureFront"
	case FrameParamPressureBack:
		return "PressureBack"
	case FrameParamTemperature:
		return "Temperature"
	default:
		return "Unknown"
	}
}

// GlobalParamKey identifies one dataset-scoped parameter. The same
// persisted-by-value rule as FrameParamKey applies.
type GlobalParamKey int

const (
	GlobalParamFormatVersion  GlobalParamKey = 1
	GlobalParamInstrumentName GlobalParamKey = 2
	GlobalParamDateStarted    GlobalParamKey = 3
	GlobalParamNumFrames      GlobalParamKey = 4
	GlobalParamTimeOffset     GlobalParamKey = 5
	GlobalParamBinWidth       GlobalParamKey = 6
	GlobalParamBins           GlobalParamKey = 7
	GlobalParamIntensityWidth GlobalParamKey = 8
	GlobalParamCompression    GlobalParamKey = 9
)

func (k GlobalParamKey) String() string {
	switch k {
	case GlobalParamFormatVersion:
		return "FormatVersion"
	case GlobalParamInstrumentName:
		return "InstrumentName"
	case GlobalParamDateStarted:
		return "DateStarted"
	case GlobalParamNumFrames:
		return "NumFrames"
	case GlobalParamTimeOffset:
		return "TimeOffset"
	case GlobalParamBinWidth:
		return "BinWidth"
	case GlobalParamBins:
		return "Bins"
	case GlobalParamIntensityWidth:
		return "IntensityWidth"
	case GlobalParamCompression:
		return "Compression"
	default:
		return "Unknown"
	}
}

// DateLayout is the text form dates are stored in. GetDate also accepts it on
// read; any other stored form falls back to the caller's default.
const DateLayout = "2006-01-02 15:04:05"
