package components

// Choice is one option of a select, checkbox group or radio group.
type Choice struct {
	ID          string
	Label       string
	Value       string
	Description string
	Selected    bool
	Disabled    bool
}

// Control is the view of a single field handed to component templates. All
// values are preformatted strings so templates stay free of logic.
type Control struct {
	ID          string
	Name        string
	Type        string
	InputType   string
	Label       string
	Placeholder string
	Value       string
	Title       string

	Pattern   string
	MinLength string
	MaxLength string
	Min       string
	Max       string
	Accept    string
	MaxSize   string

	Required bool
	Disabled bool
	ReadOnly bool
	Multiple bool
	Invalid  bool
	// Toggle marks a checkbox without options, rendered as a single switch.
	Toggle bool

	Choices      []Choice
	Class        string
	Style        string
	DescribedBy  string
	ImagePreview string
}
