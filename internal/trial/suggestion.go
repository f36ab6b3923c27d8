package trial

// Suggestion is a freshly suggested trial that has no identity yet.
type Suggestion struct {
	parameters *ParameterDict
	metadata   Metadata
}

// NewSuggestion returns a Suggestion. Nil arguments are replaced with empty
// values.
func NewSuggestion(params *ParameterDict, md Metadata) *Suggestion {
	if params == nil {
		params = NewParameterDict()
	}
	if md == nil {
		md = NewMetadata()
	}
	return &Suggestion{parameters: params, metadata: md}
}

// SuggestionOf builds a Suggestion from raw parameter scalars.
func SuggestionOf(values map[string]interface{}) (*Suggestion, error) {
	params, err := ParameterDictOf(values)
	if err != nil {
		return nil, err
	}
	return NewSuggestion(params, nil), nil
}

// Parameters returns the suggested parameters.
func (s *Suggestion) Parameters() *ParameterDict { return s.parameters }

// Metadata returns the suggestion metadata.
func (s *Suggestion) Metadata() Metadata { return s.metadata }

// ToTrial assigns id and returns a PENDING Trial created now. The trial
// shares this suggestion's parameters and metadata; copy them first if the
// suggestion will be reused. opts apply after the suggestion's fields.
func (s *Suggestion) ToTrial(id int64, opts ...Option) (*Trial, error) {
	base := []Option{
		WithID(id),
		WithParameters(s.parameters),
		WithMetadata(s.metadata),
	}
	return New(append(base, opts...)...)
}
