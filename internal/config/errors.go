package config

import (
	"fmt"
	"strings"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

// LoadErrors aggregates every missing/invalid key found during Load, so an
// operator sees every problem from one failed run instead of fixing keys
// one at a time.
type LoadErrors struct {
	Problems []string
}

func (e *LoadErrors) add(format string, args ...interface{}) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *LoadErrors) Err() error {
	if e == nil || len(e.Problems) == 0 {
		return nil
	}
	return e
}

func (e *LoadErrors) Error() string {
	return fmt.Sprintf("config: %d problem(s): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// AsAppError converts aggregated load errors into the closed ErrorKind enum
// (spec §7: CONFIG — startup configuration missing/invalid).
func (e *LoadErrors) AsAppError() *model.AppError {
	return model.NewError(model.ErrConfig, e.Error())
}
