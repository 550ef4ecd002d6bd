package quiz

import "math"

type Grade string

// Grades, best first
const (
	GradeA Grade = "a"
	GradeB Grade = "b"
	GradeC Grade = "c"
	GradeD Grade = "d"
)

// band is the half-open percentage interval [min, max) of a grade; the last band also includes its max.
type band struct {
	min, max float64
	grade    Grade
}

// bands are contiguous over [0, 100], ordered low to high; the first match wins.
var bands = []band{
	{min: 0, max: 35, grade: GradeD},
	{min: 35, max: 70, grade: GradeC},
	{min: 70, max: 90, grade: GradeB},
	{min: 90, max: 100, grade: GradeA},
}

// Percent returns the share of right answers as a percentage; 0 when there are no questions.
func Percent(countQuestions, countRight int) float64 {
	if countQuestions <= 0 || countRight <= 0 {
		return 0
	}
	return float64(countRight) / float64(countQuestions) * 100
}

// GradeFor maps a percentage to its grade. Values outside [0, 100] are clamped.
func GradeFor(percent float64) Grade {
	if percent < 0 || math.IsNaN(percent) {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	last := len(bands) - 1
	for i, b := range bands {
		if percent >= b.min && (percent < b.max || (i == last && percent <= b.max)) {
			return b.grade
		}
	}
	return bands[0].grade
}

// Score grades an attempt of `countRight` right answers out of `countQuestions`.
func Score(countQuestions, countRight int) (float64, Grade) {
	pct := Percent(countQuestions, countRight)
	return pct, GradeFor(pct)
}
