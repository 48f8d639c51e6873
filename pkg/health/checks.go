package health

import (
	"context"
	"fmt"
)

// PingCheck reports down when ping fails. Use it for Postgres and Redis.
func PingCheck(ping func(ctx context.Context) error) Check {
	return func(ctx context.Context) ComponentHealth {
		if err := ping(ctx); err != nil {
			return ComponentHealth{Status: StatusDown, Message: err.Error()}
		}
		return ComponentHealth{Status: StatusUp}
	}
}

// StateCheck reports up only when state() returns want. While the state is
// one of the transitional values the component is degraded.
func StateCheck[S comparable](state func() S, want S, transitional ...S) Check {
	return func(ctx context.Context) ComponentHealth {
		got := state()
		if got == want {
			return ComponentHealth{Status: StatusUp, Message: fmt.Sprint(got)}
		}
		for _, t := range transitional {
			if got == t {
				return ComponentHealth{Status: StatusDegraded, Message: fmt.Sprint(got)}
			}
		}
		return ComponentHealth{Status: StatusDown, Message: fmt.Sprint(got)}
	}
}
