package service

import "errors"

var (
	ErrIllegalStep         = errors.New("illegal payment workflow step")
	ErrWorkflowBusy        = errors.New("payment workflow is busy")
	ErrWorkflowCancelled   = errors.New("payment workflow was cancelled")
	ErrPaymentSettled      = errors.New("payment already completed")
	IllegalTransitionError = errors.New("illegal transition of payment status")
	ErrRowNotFound         = errors.New("no cart row for user")
	ErrItemNotFound        = errors.New("product not in cart")
)
