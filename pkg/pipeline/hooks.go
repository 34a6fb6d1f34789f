package pipeline

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-pisa/pkg/maps"
)

// Hook transforms the output of a stage before it is handed to the next one
// and returned to the caller.
type Hook func(ctx context.Context, output any) (any, error)

// AeffDownsample is the factor applied to the output of the "aeff" stage.
const AeffDownsample = 10

func defaultHooks() map[string]Hook {
	return map[string]Hook{
		"aeff": Downsample(AeffDownsample),
	}
}

// Downsample merges factor adjacent bins along every dimension of a
// *maps.MapSet or *maps.Map output.
func Downsample(factor int) Hook {
	return func(_ context.Context, output any) (any, error) {
		switch out := output.(type) {
		case *maps.MapSet:
			if out == nil {
				break
			}
			return out.Downsample(factor)
		case *maps.Map:
			if out == nil {
				break
			}
			return out.Downsample(factor)
		}
		return nil, errors.Wrapf(ErrHookOutput, "cannot downsample %T", output)
	}
}
