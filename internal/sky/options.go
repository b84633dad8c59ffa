package sky

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomz197/nightsky/internal/draw"
)

// ErrUnknownProfile is returned when parsing an unrecognised profile or mode name.
var ErrUnknownProfile = errors.New("sky: unknown profile")

// Profile selects a default option set and the star/meteor generation variant.
type Profile int

const (
	// ProfileClassic draws uniform white stars joined by lines and simple meteors.
	ProfileClassic Profile = iota
	// ProfileRealistic uses magnitude tiers, star colours, glow and speed classes.
	ProfileRealistic
	// ProfileInteractive drifts stars, bounces them off edges and repels them from the pointer.
	ProfileInteractive
)

var profileNames = []string{"classic", "realistic", "interactive"}

func (p Profile) String() string {
	if p >= 0 && int(p) < len(profileNames) {
		return profileNames[p]
	}
	return fmt.Sprintf("Profile(%d)", int(p))
}

// ParseProfile parses a profile name.
func ParseProfile(s string) (Profile, error) {
	for i, name := range profileNames {
		if s == name {
			return Profile(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownProfile, s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Profile) UnmarshalText(text []byte) error {
	v, err := ParseProfile(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Next returns the following profile, wrapping around.
func (p Profile) Next() Profile {
	return Profile((int(p) + 1) % len(profileNames))
}

// EdgeMode is the policy for drifting stars that reach the surface edge.
type EdgeMode int

const (
	EdgeNone   EdgeMode = iota // Stars do not move
	EdgeWrap                   // Reappear on the opposite side
	EdgeBounce                 // Velocity flips on boundary contact
)

var edgeNames = []string{"none", "wrap", "bounce"}

func (m EdgeMode) String() string {
	if m >= 0 && int(m) < len(edgeNames) {
		return edgeNames[m]
	}
	return fmt.Sprintf("EdgeMode(%d)", int(m))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *EdgeMode) UnmarshalText(text []byte) error {
	for i, name := range edgeNames {
		if string(text) == name {
			*m = EdgeMode(i)
			return nil
		}
	}
	return fmt.Errorf("%w: edge mode %q", ErrUnknownProfile, text)
}

// PointerMode is how stars react to the pointer.
type PointerMode int

const (
	PointerRepel PointerMode = iota
	PointerAttract
)

var pointerNames = []string{"repel", "attract"}

func (m PointerMode) String() string {
	if m >= 0 && int(m) < len(pointerNames) {
		return pointerNames[m]
	}
	return fmt.Sprintf("PointerMode(%d)", int(m))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *PointerMode) UnmarshalText(text []byte) error {
	for i, name := range pointerNames {
		if string(text) == name {
			*m = PointerMode(i)
			return nil
		}
	}
	return fmt.Errorf("%w: pointer mode %q", ErrUnknownProfile, text)
}

// RandomMeteorAngle as MeteorAngle draws each meteor's angle from 15°-45°.
const RandomMeteorAngle = -1

// Options is the complete renderer configuration. Every field is always set;
// partial updates go through Patch.
type Options struct {
	Profile          Profile
	StarCount        int           // Star count at the 1920x1080 reference area
	MaxDistance      float64       // Line threshold
	MouseRadius      float64       // Pointer influence radius
	BackgroundColor  string        // Clear colour; translucent leaves afterimages
	StarColor        string        // Classic and interactive stars
	LineColor        string        // RGB and peak alpha of proximity lines
	MeteorInterval   time.Duration // Time between automatic spawns
	MeteorAngle      float64       // Degrees from vertical, or RandomMeteorAngle
	EnableMeteors    bool
	EnableTwinkle    bool
	TwinkleIntensity float64
	ShowLines        bool
	EnablePointer    bool
	PointerMode      PointerMode
	EdgeMode         EdgeMode
}

// DefaultOptions returns the defaults for a profile.
func DefaultOptions(p Profile) Options {
	o := Options{
		Profile:          p,
		StarCount:        200,
		MaxDistance:      120,
		MouseRadius:      180,
		BackgroundColor:  "#000000",
		StarColor:        "#ffffff",
		LineColor:        "rgba(255, 255, 255, 0.15)",
		MeteorInterval:   3000 * time.Millisecond,
		MeteorAngle:      RandomMeteorAngle,
		EnableMeteors:    true,
		EnableTwinkle:    true,
		TwinkleIntensity: 0.3,
		ShowLines:        true,
		EnablePointer:    false,
		PointerMode:      PointerRepel,
		EdgeMode:         EdgeNone,
	}
	switch p {
	case ProfileRealistic:
		o.StarCount = 800
		o.MaxDistance = 150
		o.MeteorInterval = 8000 * time.Millisecond
		o.MeteorAngle = 35
		o.ShowLines = false
	case ProfileInteractive:
		o.StarCount = 150
		o.MaxDistance = 150
		o.MouseRadius = 200
		o.BackgroundColor = "rgba(0, 0, 0, 0.85)"
		o.MeteorInterval = 5000 * time.Millisecond
		o.EnablePointer = true
		o.PointerMode = PointerRepel
		o.EdgeMode = EdgeBounce
	}
	return o
}

// Patch is a partial Options update. Nil fields are left unchanged.
type Patch struct {
	Profile          *Profile
	StarCount        *int
	MaxDistance      *float64
	MouseRadius      *float64
	BackgroundColor  *string
	StarColor        *string
	LineColor        *string
	MeteorInterval   *time.Duration
	MeteorAngle      *float64
	EnableMeteors    *bool
	EnableTwinkle    *bool
	TwinkleIntensity *float64
	ShowLines        *bool
	EnablePointer    *bool
	PointerMode      *PointerMode
	EdgeMode         *EdgeMode
}

// Apply returns o with the non-nil fields of p applied. A profile change
// starts from that profile's defaults before the other fields are applied.
func (o Options) Apply(p Patch) Options {
	if p.Profile != nil && *p.Profile != o.Profile {
		o = DefaultOptions(*p.Profile)
	}
	set(&o.StarCount, p.StarCount)
	set(&o.MaxDistance, p.MaxDistance)
	set(&o.MouseRadius, p.MouseRadius)
	set(&o.BackgroundColor, p.BackgroundColor)
	set(&o.StarColor, p.StarColor)
	set(&o.LineColor, p.LineColor)
	set(&o.MeteorInterval, p.MeteorInterval)
	set(&o.MeteorAngle, p.MeteorAngle)
	set(&o.EnableMeteors, p.EnableMeteors)
	set(&o.EnableTwinkle, p.EnableTwinkle)
	set(&o.TwinkleIntensity, p.TwinkleIntensity)
	set(&o.ShowLines, p.ShowLines)
	set(&o.EnablePointer, p.EnablePointer)
	set(&o.PointerMode, p.PointerMode)
	set(&o.EdgeMode, p.EdgeMode)
	return o
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Ptr returns a pointer to v. Handy for building a Patch.
func Ptr[T any](v T) *T {
	return &v
}

// palette holds the parsed colour options.
type palette struct {
	background draw.Color
	star       draw.Color
	line       draw.Color
}

// resolve validates o, clamps numeric fields and parses colours.
func (o Options) resolve() (Options, palette, error) {
	var pal palette
	var err error
	if o.Profile < ProfileClassic || o.Profile > ProfileInteractive {
		return o, pal, fmt.Errorf("%w %v", ErrUnknownProfile, o.Profile)
	}
	if pal.background, err = draw.ParseColor(o.BackgroundColor); err != nil {
		return o, pal, fmt.Errorf("background color: %w", err)
	}
	if pal.star, err = draw.ParseColor(o.StarColor); err != nil {
		return o, pal, fmt.Errorf("star color: %w", err)
	}
	if pal.line, err = draw.ParseColor(o.LineColor); err != nil {
		return o, pal, fmt.Errorf("line color: %w", err)
	}
	o.StarCount = max(o.StarCount, 0)
	o.MaxDistance = max(o.MaxDistance, 0)
	o.MouseRadius = max(o.MouseRadius, 0)
	o.MeteorInterval = max(o.MeteorInterval, 0)
	o.TwinkleIntensity = max(o.TwinkleIntensity, 0)
	return o, pal, nil
}

// densityChanged reports whether moving from o to n requires a new star field.
func (o Options) densityChanged(n Options) bool {
	return o.StarCount != n.StarCount || o.Profile != n.Profile
}
