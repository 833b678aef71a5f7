package cli

import (
	"fmt"

	"github.com/spf13/pflag"

	"refinery-modeler/internal/declarative"
)

// jobFlags are the job file flags shared by synth and validate.
type jobFlags struct {
	files              []string
	allowUnknownFields bool
}

func (f *jobFlags) register(fs *pflag.FlagSet) {
	fs.StringArrayVarP(&f.files, "file", "f", nil, "Modeling job file (repeatable)")
	fs.BoolVar(&f.allowUnknownFields, "allow-unknown-fields", false, "Ignore unknown keys in job files")
}

func (f *jobFlags) validate() error {
	if len(f.files) == 0 {
		return fmt.Errorf("at least one --file is required")
	}
	return nil
}

func (f *jobFlags) load(path string) (*declarative.ModelingJobDoc, error) {
	return declarative.LoadFileWithOptions(path, declarative.LoadOptions{AllowUnknownFields: f.allowUnknownFields})
}
