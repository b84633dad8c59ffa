package config

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tomz197/nightsky/internal/sky"
)

// File is the TOML option file. Keys left out of the file stay nil and do
// not override anything.
type File struct {
	Profile          *string  `toml:"profile"`
	StarCount        *int     `toml:"star_count"`
	MaxDistance      *float64 `toml:"max_distance"`
	MouseRadius      *float64 `toml:"mouse_radius"`
	BackgroundColor  *string  `toml:"background_color"`
	StarColor        *string  `toml:"star_color"`
	LineColor        *string  `toml:"line_color"`
	MeteorInterval   *int64   `toml:"meteor_interval"` // Milliseconds
	MeteorAngle      *float64 `toml:"meteor_angle"`    // Degrees from vertical
	EnableMeteors    *bool    `toml:"enable_meteors"`
	EnableTwinkle    *bool    `toml:"enable_twinkle"`
	TwinkleIntensity *float64 `toml:"twinkle_intensity"`
	ShowLines        *bool    `toml:"show_lines"`
	EnablePointer    *bool    `toml:"enable_pointer"`
	PointerMode      *string  `toml:"pointer_mode"`
	EdgeMode         *string  `toml:"edge_mode"`
	Seed             *uint64  `toml:"seed"`

	// Undecoded lists keys present in the file but not recognised.
	Undecoded []string `toml:"-"`
}

// LoadFromFile reads an option file. A missing file yields an empty File.
func LoadFromFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, nil
		}
		return File{}, err
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader reads an option file from r.
func LoadFromReader(r io.Reader) (File, error) {
	var file File
	md, err := toml.NewDecoder(r).Decode(&file)
	if err != nil {
		return File{}, fmt.Errorf("parse options: %w", err)
	}
	for _, k := range md.Undecoded() {
		file.Undecoded = append(file.Undecoded, k.String())
	}
	return file, nil
}

// Patch converts the file into a partial option update.
func (f File) Patch() (sky.Patch, error) {
	p := sky.Patch{
		StarCount:        f.StarCount,
		MaxDistance:      f.MaxDistance,
		MouseRadius:      f.MouseRadius,
		BackgroundColor:  f.BackgroundColor,
		StarColor:        f.StarColor,
		LineColor:        f.LineColor,
		MeteorAngle:      f.MeteorAngle,
		EnableMeteors:    f.EnableMeteors,
		EnableTwinkle:    f.EnableTwinkle,
		TwinkleIntensity: f.TwinkleIntensity,
		ShowLines:        f.ShowLines,
		EnablePointer:    f.EnablePointer,
	}
	if f.Profile != nil {
		v, err := sky.ParseProfile(*f.Profile)
		if err != nil {
			return sky.Patch{}, err
		}
		p.Profile = &v
	}
	if f.MeteorInterval != nil {
		p.MeteorInterval = sky.Ptr(time.Duration(*f.MeteorInterval) * time.Millisecond)
	}
	if f.PointerMode != nil {
		var m sky.PointerMode
		if err := m.UnmarshalText([]byte(*f.PointerMode)); err != nil {
			return sky.Patch{}, err
		}
		p.PointerMode = &m
	}
	if f.EdgeMode != nil {
		var m sky.EdgeMode
		if err := m.UnmarshalText([]byte(*f.EdgeMode)); err != nil {
			return sky.Patch{}, err
		}
		p.EdgeMode = &m
	}
	return p, nil
}

// Options returns the defaults of the file's profile (or fallback when the
// file names none) with the file's other keys applied.
func (f File) Options(fallback sky.Profile) (sky.Options, error) {
	p, err := f.Patch()
	if err != nil {
		return sky.Options{}, err
	}
	base := fallback
	if p.Profile != nil {
		base = *p.Profile
	}
	return sky.DefaultOptions(base).Apply(p), nil
}

// Rand returns a random source seeded from the file's seed, or nil when the
// file sets none.
func (f File) Rand() *rand.Rand {
	if f.Seed == nil {
		return nil
	}
	return rand.New(rand.NewPCG(*f.Seed, *f.Seed>>17|1))
}

// LoadOptions reads the option file at path (which may be empty or missing)
// and resolves it into full options. A non-empty profile overrides the
// file's profile; the file's other keys still apply on top.
func LoadOptions(path, profile string) (sky.Options, File, error) {
	var file File
	if path != "" {
		var err error
		if file, err = LoadFromFile(path); err != nil {
			return sky.Options{}, File{}, err
		}
	}
	p, err := file.Patch()
	if err != nil {
		return sky.Options{}, File{}, err
	}
	if profile != "" {
		v, err := sky.ParseProfile(profile)
		if err != nil {
			return sky.Options{}, File{}, err
		}
		p.Profile = &v
	}
	base := sky.ProfileClassic
	if p.Profile != nil {
		base = *p.Profile
	}
	return sky.DefaultOptions(base).Apply(p), file, nil
}
