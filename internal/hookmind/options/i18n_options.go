package options

import (
	"fmt"

	"github.com/spf13/pflag"
	"golang.org/x/text/language"
)

// I18nOptions selects the translation language.
type I18nOptions struct {
	Language string `json:"language" mapstructure:"language"`
}

func NewI18nOptions() *I18nOptions {
	return &I18nOptions{Language: "en"}
}

func (o *I18nOptions) Validate() []error {
	if _, err := language.Parse(o.Language); err != nil {
		return []error{fmt.Errorf("--i18n.language %q: %w", o.Language, err)}
	}
	return nil
}

func (o *I18nOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Language, "i18n.language", o.Language, "Language of translated plugin descriptions and reports (BCP 47).")
}
