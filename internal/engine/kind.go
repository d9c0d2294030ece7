package engine

// Kind names a task kind supplied by the engine's registry.
type Kind string

const (
	KindReader    Kind = "reader"
	KindAverager  Kind = "averager"
	KindCorrector Kind = "corrector"
	KindGenerator Kind = "generator"
	KindWriter    Kind = "writer"
	KindEstimator Kind = "estimator"
)

// Kinds lists every known task kind.
var Kinds = []Kind{KindReader, KindAverager, KindCorrector, KindGenerator, KindWriter, KindEstimator}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) String() string { return string(k) }

// CenterEvent is the notification an estimator publishes once per processed
// unit.
const CenterEvent = "center"
