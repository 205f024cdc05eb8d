package naming

// DefaultStrategy is the identity-preserving baseline: names are sanitized and
// cased but no prefixes or suffixes are stripped and navigation properties get
// no fixed leading token.
type DefaultStrategy struct {
	*Pipeline
}

var _ Strategy = (*DefaultStrategy)(nil)

// NewDefaultStrategy creates the baseline strategy.
func NewDefaultStrategy(lang Language, source NameSource) *DefaultStrategy {
	return &DefaultStrategy{
		Pipeline: NewPipeline(lang, source,
			[]Transform{serviceWords},
			[]Transform{fluentHelperSuffix, serviceClassSuffix},
		),
	}
}
