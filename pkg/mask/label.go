package mask

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownLabel is returned when a tissue name or tissue value has no
// entry in the segmentation label table.
var ErrUnknownLabel = errors.New("unknown tissue label")

// Tissue identifies a tissue class of an FSL FAST style segmentation.
type Tissue int

const (
	BG Tissue = iota
	CSF
	GM
	WM
)

// tissueCodes maps each tissue class to its integer code in a label volume.
var tissueCodes = map[Tissue]int{
	BG:  0,
	CSF: 1,
	GM:  2,
	WM:  3,
}

var tissueNames = map[string]Tissue{
	"bg":  BG,
	"csf": CSF,
	"gm":  GM,
	"wm":  WM,
}

func (t Tissue) String() string {
	for name, tissue := range tissueNames {
		if tissue == t {
			return name
		}
	}
	return fmt.Sprintf("Tissue(%d)", int(t))
}

// Label selects voxels of a categorical mask. It is either a raw integer
// code or a named tissue class resolved through the label table.
type Label struct {
	code   int
	tissue Tissue
	named  bool
}

// Code returns a label matching the given integer value.
func Code(code int) Label {
	return Label{code: code}
}

// Named returns a label for a tissue class.
func Named(t Tissue) Label {
	return Label{tissue: t, named: true}
}

// ParseLabel accepts either a tissue name ("csf", "gm", "wm", "bg", case
// insensitive) or a decimal integer code.
func ParseLabel(s string) (Label, error) {
	s = strings.TrimSpace(s)
	if t, ok := tissueNames[strings.ToLower(s)]; ok {
		return Named(t), nil
	}
	if code, err := strconv.Atoi(s); err == nil {
		return Code(code), nil
	}
	return Label{}, fmt.Errorf("%w: %q", ErrUnknownLabel, s)
}

// Resolve returns the integer code the label selects.
func (l Label) Resolve() (int, error) {
	if !l.named {
		return l.code, nil
	}
	code, ok := tissueCodes[l.tissue]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownLabel, l.tissue)
	}
	return code, nil
}

// IsNamed reports whether the label refers to a tissue class.
func (l Label) IsNamed() bool {
	return l.named
}

func (l Label) String() string {
	if l.named {
		return l.tissue.String()
	}
	return strconv.Itoa(l.code)
}
