package workflows_test

import "github.com/stretchr/testify/mock"

// Activity mock matchers: any context, any input struct.
var (
	anyCtx = mock.Anything
	anyArg = mock.Anything
)
