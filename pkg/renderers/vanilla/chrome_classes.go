package vanilla

// ChromeClass is a semantic CSS class applied to the form chrome.
type ChromeClass string

const (
	ClassForm    ChromeClass = "orderform-form"
	ClassSection ChromeClass = "orderform-section"
	ClassNotice  ChromeClass = "orderform-notice"
	ClassErrors  ChromeClass = "orderform-errors"
	ClassPrice   ChromeClass = "orderform-price"
	ClassActions ChromeClass = "orderform-actions"
)

// ChromeClasses overrides the chrome classes. Empty entries keep defaults.
type ChromeClasses struct {
	Form    string
	Section string
	Notice  string
	Errors  string
	Price   string
	Actions string
}

func (c ChromeClasses) resolve() map[string]string {
	pick := func(override string, fallback ChromeClass) string {
		if override = sanitizeClassList(override); override != "" {
			return override
		}
		return string(fallback)
	}
	return map[string]string{
		"form":    pick(c.Form, ClassForm),
		"section": pick(c.Section, ClassSection),
		"notice":  pick(c.Notice, ClassNotice),
		"errors":  pick(c.Errors, ClassErrors),
		"price":   pick(c.Price, ClassPrice),
		"actions": pick(c.Actions, ClassActions),
	}
}
