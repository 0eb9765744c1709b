package ingest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// structValidator reads the same `binding` tags gin uses so CLI and HTTP
// input are held to one set of rules
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")
	})
	return validate
}

// Validate checks an input envelope and returns every problem found. An
// empty result means the input can be scheduled.
func Validate(input models.ScheduleInput) []string {
	var problems []string
	if err := structValidator().Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	if len(input.Sessions) == 0 {
		problems = append(problems, "at least one session is required")
	}
	if len(input.Staff) == 0 {
		problems = append(problems, "at least one staff member is required")
	}

	ids := make(map[string]bool, len(input.Sessions))
	for _, s := range input.Sessions {
		if ids[s.ID] {
			problems = append(problems, "duplicate session ID: "+s.ID)
		}
		ids[s.ID] = true
	}

	names := make(map[string]bool, len(input.Staff))
	for _, st := range input.Staff {
		if names[st.Name] {
			problems = append(problems, "duplicate staff name: "+st.Name)
		}
		names[st.Name] = true
	}
	return problems
}
