package di

import (
	"fmt"
	"strings"

	"github.com/graftlabs/graft/internal/errors"
)

// WithValidation validates registered bindings on [Container] creation.
//
// This checks that the dependencies of every binding are registered and that
// there are no dependency cycles, and returns an error with details if any
// issues are found. Alias targets are followed through the whole chain, so
// validation runs after all bindings and aliases have been applied.
//
// Validation walks the declared shape of the graph; it does not construct
// any instances.
func WithValidation() ContainerOption {
	return newContainerOption(orderValidation, func(c *Container) error {
		err := c.validateBindings()
		if err != nil {
			return errors.Wrap(err, "WithValidation")
		}

		return nil
	})
}

func (c *Container) validateBindings() error {
	var errs []error
	problems := make(map[binding]string)
	seen := make(map[binding]struct{})

	for _, b := range c.bindings {
		// A binding registered under several types with As appears in
		// the map more than once.
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}

		prob := c.validateBinding(b, problems, make(resolveVisitor))
		if prob != "" {
			errs = append(errs, errors.Errorf("binding %s: %s", b.Key(), prob))
		}
	}

	return errors.Join(errs...)
}

func (c *Container) validateBinding(b binding, problems map[binding]string, visitor resolveVisitor) string {
	if prob, ok := problems[b]; ok {
		return prob
	}

	deps := b.Dependencies()
	if len(deps) == 0 {
		problems[b] = ""
		return ""
	}

	if !visitor.Enter(b) {
		return ErrDependencyCycle.Error()
	}
	defer visitor.Leave(b)

	var probs []string
	for _, depKey := range deps {
		if depKey.Type == typeContext || depKey.Type == typeScope {
			continue
		}

		depBinding := c.lookupBinding(depKey)
		if depBinding == nil {
			probs = append(probs, fmt.Sprintf("dependency %s: binding not registered", depKey))
			continue
		}

		prob := c.validateBinding(depBinding, problems, visitor)
		if prob != "" {
			probs = append(probs, fmt.Sprintf("dependency %s: %s", depKey, prob))
		}
	}

	if len(probs) > 0 {
		joined := strings.Join(probs, "; ")
		problems[b] = joined
		return joined
	}

	problems[b] = ""
	return ""
}
