package analyze

import "strings"

// DetectedType is the semantic type assigned to a column with missing values.
type DetectedType string

const (
	TypeNumericNormal                DetectedType = "numeric_normal"
	TypeNumericSkewed                DetectedType = "numeric_skewed"
	TypeCategoricalNumeric           DetectedType = "categorical_numeric"
	TypeID                           DetectedType = "id"
	TypeDatetime                     DetectedType = "datetime"
	TypeTextUnique                   DetectedType = "text_unique"
	TypeCategoricalLowCardinality    DetectedType = "categorical_low_cardinality"
	TypeCategoricalMediumCardinality DetectedType = "categorical_medium_cardinality"
	TypeUnknown                      DetectedType = "unknown"
)

// Method names an imputation method. Constant fills may carry their value
// after a colon, as in "constant:Unknown".
type Method string

const (
	MethodMean             Method = "mean"
	MethodMedian           Method = "median"
	MethodMode             Method = "mode"
	MethodMostFrequent     Method = "most_frequent"
	MethodConstant         Method = "constant"
	MethodForwardFill      Method = "forward_fill"
	MethodBackwardFill     Method = "backward_fill"
	MethodInterpolate      Method = "interpolate"
	MethodDropRows         Method = "drop_rows"
	MethodDropOrFlag       Method = "drop_or_flag"
	MethodKNN              Method = "knn"
	MethodGenerateSequence Method = "generate_sequence"
)

// DefaultConstant fills "constant" columns that carry no explicit value.
const DefaultConstant = "Unknown"

// ConstantOf encodes a constant fill value into a method name.
func ConstantOf(v string) Method { return MethodConstant + ":" + Method(v) }

// Split separates a constant method from its encoded value. For every other
// method the value is empty and hasValue is false.
func (m Method) Split() (base Method, value string, hasValue bool) {
	if rest, ok := strings.CutPrefix(string(m), string(MethodConstant)+":"); ok {
		return MethodConstant, rest, true
	}
	return m, "", false
}

// Known reports whether the executor can act on m.
func (m Method) Known() bool {
	base, _, _ := m.Split()
	switch base {
	case MethodMean, MethodMedian, MethodMode, MethodMostFrequent, MethodConstant,
		MethodForwardFill, MethodBackwardFill, MethodInterpolate,
		MethodDropRows, MethodDropOrFlag, MethodKNN:
		return true
	}
	return false
}

// Strategy is the recommended imputation for one column.
type Strategy struct {
	Method      Method  `json:"method"`
	Reasoning   string  `json:"reasoning"`
	Alternative *Method `json:"alternative"`
}

// Thresholds parameterize classification and recommendation.
type Thresholds struct {
	CategoricalNumericRatio       float64
	CategoricalNumericMaxDistinct int
	IDUniqueRatio                 float64
	SkewLimit                     float64
	TextUniqueRatio               float64
	LowCardinalityRatio           float64
	DropOrFlagPct                 float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		CategoricalNumericRatio:       0.05,
		CategoricalNumericMaxDistinct: 20,
		IDUniqueRatio:                 0.95,
		SkewLimit:                     0.5,
		TextUniqueRatio:               0.9,
		LowCardinalityRatio:           0.1,
		DropOrFlagPct:                 50,
	}
}
