package intent

import errorsmod "cosmossdk.io/errors"

const codespace = "intent"

var (
	ErrNoValidators       = errorsmod.Register(codespace, 2, "no validators selected")
	ErrTooManyValidators  = errorsmod.Register(codespace, 3, "too many validators selected")
	ErrDuplicateValidator = errorsmod.Register(codespace, 4, "validator selected twice")
	ErrWeightsNotHundred  = errorsmod.Register(codespace, 5, "custom weights must sum to 100")
	ErrPercentOutOfRange  = errorsmod.Register(codespace, 6, "weight percent out of range")
	ErrInvalidWeights     = errorsmod.Register(codespace, 7, "invalid weights")
)
