package cart

import "fmt"

type Status int

const (
	Invalid Status = iota
	NeedsUpdate
	AlreadyUpdated
)

func (s Status) String() string {
	switch s {
	case NeedsUpdate:
		return "needs update"
	case AlreadyUpdated:
		return "already updated"
	default:
		return "invalid"
	}
}

type Variant int

const (
	VariantA Variant = iota
	VariantB
)

func (v Variant) String() string {
	switch v {
	case VariantA:
		return "Ruby"
	case VariantB:
		return "Sapphire"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// Result is meaningful in Variant only when Status is not Invalid.
type Result struct {
	Status  Status
	Variant Variant
}

func (r Result) String() string {
	if r.Status == Invalid {
		return r.Status.String()
	}
	return fmt.Sprintf("%s (%s)", r.Status, r.Variant)
}

// VersionRecord maps a language code to the first software version that does not need correcting.
type VersionRecord map[byte]byte

var DefaultVersions = VersionRecord{
	'J': 1,
	'E': 2,
	'D': 1,
	'F': 1,
	'I': 1,
	'S': 1,
}

var DefaultTitles = map[Variant][TitleAndCodeLen]byte{
	VariantA: titleAndCode("POKEMON RUBYAXV"),
	VariantB: titleAndCode("POKEMON SAPPAXP"),
}

func titleAndCode(s string) (tc [TitleAndCodeLen]byte) {
	if len(s) != TitleAndCodeLen {
		panic(fmt.Sprintf("cart: title and code %q must be %d bytes", s, TitleAndCodeLen))
	}
	copy(tc[:], s)
	return
}

type Validator struct {
	Versions VersionRecord
	Titles   map[Variant][TitleAndCodeLen]byte
}

var defaultValidator = &Validator{
	Versions: DefaultVersions,
	Titles:   DefaultTitles,
}

func DefaultValidator() *Validator {
	return defaultValidator
}

func Validate(h *Header) Result {
	return defaultValidator.Validate(h)
}

// Validate never mutates the header or its tables, so repeated calls agree.
func (v *Validator) Validate(h *Header) Result {
	if h == nil || h.MakerCode != MakerCode || h.Magic != Magic {
		return Result{Status: Invalid}
	}

	minimum, ok := v.Versions[h.Language()]
	if !ok {
		return Result{Status: Invalid}
	}

	status := NeedsUpdate
	if h.SoftwareVersion >= minimum {
		status = AlreadyUpdated
	}

	tc := h.TitleAndCode()
	// check in a fixed order so a table with duplicate titles is still deterministic:
	for _, variant := range []Variant{VariantA, VariantB} {
		title, ok := v.Titles[variant]
		if ok && title == tc {
			return Result{Status: status, Variant: variant}
		}
	}

	return Result{Status: Invalid}
}
