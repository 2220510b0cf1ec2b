package hydrology

// WaterClass is the mutually exclusive water label of a tile. Higher values
// take precedence.
type WaterClass uint8

const (
	WaterNone WaterClass = iota
	WaterMarsh
	WaterPool
	WaterStream
	WaterLake
)

func (w WaterClass) String() string {
	switch w {
	case WaterNone:
		return "none"
	case WaterMarsh:
		return "marsh"
	case WaterPool:
		return "pool"
	case WaterStream:
		return "stream"
	case WaterLake:
		return "lake"
	default:
		return "unknown"
	}
}

// Wet reports whether the class is open water (lake, stream or pool).
func (w WaterClass) Wet() bool {
	return w == WaterLake || w == WaterStream || w == WaterPool
}

// ClassifyWater resolves overlapping signals with the precedence
// lake > stream > pool > marsh > none.
func ClassifyWater(lake, stream, pool, marsh bool) WaterClass {
	switch {
	case lake:
		return WaterLake
	case stream:
		return WaterStream
	case pool:
		return WaterPool
	case marsh:
		return WaterMarsh
	default:
		return WaterNone
	}
}

// IsMarsh applies the inclusive marsh thresholds.
func IsMarsh(moisture, slope, moistureThreshold, slopeThreshold float64) bool {
	return moisture >= moistureThreshold && slope <= slopeThreshold
}
