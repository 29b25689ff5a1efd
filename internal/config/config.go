// Package config holds the settings of the command line tools.
//
// Values come from flags, then NTFILTERS_* environment variables, then the
// defaults below. Positional arguments are always the input and output paths.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "NTFILTERS"

	DefaultDepth         = 1
	DefaultSource        = "<http://www.wikidata.org/entity/Q26>"
	DefaultNamePredicate = "<http://schema.org/name>"
)

// Setting keys, shared by flags and environment variables
const (
	KeyDepth         = "depth"
	KeySource        = "source"
	KeyNamePredicate = "name-predicate"
	KeySpillDir      = "spill-dir"
	KeyLang          = "lang"
	KeyVerbose       = "verbose"
	KeyQuiet         = "quiet"
)

var ErrMissingArguments = errors.New("not enough arguments")

var validate = validator.New(validator.WithRequiredStructEnabled())

// ExtractSettings configures the subset extractor
type ExtractSettings struct {
	Input         string `validate:"required"`
	Output        string `validate:"required"`
	Depth         int    `validate:"max=250"`
	Source        string `validate:"required"`
	NamePredicate string `validate:"required"`
	SpillDir      string
}

// FilterSettings configures the language filter
type FilterSettings struct {
	Input     string   `validate:"required"`
	Output    string   `validate:"required"`
	Languages []string `validate:"dive,required,excludesall=@"`
}

// NewViper returns a viper instance reading NTFILTERS_* environment variables
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyDepth, DefaultDepth)
	v.SetDefault(KeySource, DefaultSource)
	v.SetDefault(KeyNamePredicate, DefaultNamePredicate)
	return v
}

// LoadExtract builds and validates extractor settings
func LoadExtract(v *viper.Viper, args []string) (ExtractSettings, error) {
	input, output, err := paths(args)
	if err != nil {
		return ExtractSettings{}, err
	}

	s := ExtractSettings{
		Input:         input,
		Output:        output,
		Depth:         v.GetInt(KeyDepth),
		Source:        v.GetString(KeySource),
		NamePredicate: v.GetString(KeyNamePredicate),
		SpillDir:      v.GetString(KeySpillDir),
	}
	if err := check(s); err != nil {
		return ExtractSettings{}, err
	}
	return s, nil
}

// LoadFilter builds and validates language filter settings
func LoadFilter(v *viper.Viper, args []string) (FilterSettings, error) {
	input, output, err := paths(args)
	if err != nil {
		return FilterSettings{}, err
	}

	s := FilterSettings{
		Input:     input,
		Output:    output,
		Languages: v.GetStringSlice(KeyLang),
	}
	if err := check(s); err != nil {
		return FilterSettings{}, err
	}
	return s, nil
}

func paths(args []string) (string, string, error) {
	if len(args) < 2 {
		return "", "", ErrMissingArguments
	}
	return args[0], args[1], nil
}

func check(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid settings: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
}
