package vanilla

// ChromeClass names a semantic CSS class emitted around rendered controls.
type ChromeClass string

const (
	ClassPage        ChromeClass = "fb-page"
	ClassForm        ChromeClass = "fb-form"
	ClassHeader      ChromeClass = "fb-header"
	ClassField       ChromeClass = "fb-field"
	ClassLabel       ChromeClass = "fb-label"
	ClassControl     ChromeClass = "fb-control"
	ClassDescription ChromeClass = "fb-description"
	ClassHelp        ChromeClass = "fb-help"
	ClassErrors      ChromeClass = "fb-errors"
	ClassActions     ChromeClass = "fb-actions"
	ClassInvalid     ChromeClass = "fb-invalid"
	ClassRequired    ChromeClass = "fb-required"
)
