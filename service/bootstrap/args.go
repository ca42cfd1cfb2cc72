package bootstrap

import (
	"fmt"
	"strings"

	"github.com/viant/evalrt/model"
)

// ValidateArgs checks that the launcher received exactly one argument: the
// location of the job submission parameters.
func ValidateArgs(args []string) error {
	if len(args) == 1 {
		return nil
	}
	return fmt.Errorf("%w: bootstrap launcher should have one configuration file input,"+
		" specifying the job submission parameters used to create the runtime configuration."+
		" Current args are [ %s ]", model.ErrInvalidArgument, strings.Join(args, " "))
}
