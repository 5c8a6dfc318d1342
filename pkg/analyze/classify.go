package analyze

import (
	"fmt"
	"math"

	j "github.com/wdm0006/gapfill/pkg/janitor"
	"github.com/wdm0006/gapfill/pkg/profile"
)

// Classify assigns a semantic type from a column profile. The checks run in
// a fixed order and the first match wins.
func Classify(p profile.ColumnProfile, t Thresholds) DetectedType {
	if p.Count == 0 {
		return TypeUnknown
	}
	ratio := p.UniqueRatio()
	switch {
	case p.Kind.Numeric():
		if ratio < t.CategoricalNumericRatio && p.Distinct < t.CategoricalNumericMaxDistinct {
			return TypeCategoricalNumeric
		}
		if (p.Num != nil && p.Num.Monotonic) || ratio > t.IDUniqueRatio {
			return TypeID
		}
		// NaN skew fails the comparison and lands in the skewed bucket.
		if p.Num != nil && math.Abs(p.Num.Skew) < t.SkewLimit {
			return TypeNumericNormal
		}
		return TypeNumericSkewed
	case p.Kind == j.KindTime:
		return TypeDatetime
	case p.Kind == j.KindString || p.Kind == j.KindBool:
		switch {
		case ratio > t.TextUniqueRatio:
			return TypeTextUnique
		case ratio < t.LowCardinalityRatio:
			return TypeCategoricalLowCardinality
		default:
			return TypeCategoricalMediumCardinality
		}
	}
	return TypeUnknown
}

// Recommend maps a detected type and missing percentage to a strategy. A
// missing rate above DropOrFlagPct wins over every type rule.
func Recommend(dt DetectedType, missingPct float64, t Thresholds) Strategy {
	if missingPct > t.DropOrFlagPct {
		return Strategy{
			Method:    MethodDropOrFlag,
			Reasoning: fmt.Sprintf("%.1f%% missing - consider dropping column or creating missing indicator", missingPct),
		}
	}
	alt := func(m Method) *Method { return &m }
	switch dt {
	case TypeNumericNormal:
		return Strategy{MethodMean, "Normally distributed numeric data - mean imputation appropriate", alt(MethodMedian)}
	case TypeNumericSkewed:
		return Strategy{MethodMedian, "Skewed numeric data - median more robust than mean", alt(MethodKNN)}
	case TypeCategoricalNumeric:
		return Strategy{MethodMode, "Numeric data with categorical nature - mode imputation", alt(MethodMostFrequent)}
	case TypeCategoricalLowCardinality, TypeCategoricalMediumCardinality:
		return Strategy{MethodMode, "Categorical data - mode (most frequent) imputation", alt(ConstantOf(DefaultConstant))}
	case TypeTextUnique:
		return Strategy{MethodConstant, "High cardinality text - impute with constant value", alt(MethodDropRows)}
	case TypeDatetime:
		return Strategy{MethodForwardFill, "DateTime data - forward fill (carry last observation forward)", alt(MethodInterpolate)}
	case TypeID:
		return Strategy{MethodDropRows, "ID column - cannot impute, drop rows with missing IDs", alt(MethodGenerateSequence)}
	default:
		return Strategy{MethodKNN, "Unknown type - use KNN imputation based on similar rows", alt(MethodDropRows)}
	}
}
