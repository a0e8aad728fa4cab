// Package errors defines error types used throughout the ammcore engine.
//
// Every failure an operation can return maps to one AmmError with a stable
// code. Codes are grouped by kind so callers can distinguish validation
// failures from arithmetic faults, business-rule rejections, security
// denials, and propagated external-dependency errors.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error code.
type Kind int

const (
	// KindValidation covers resource identity mismatches, wrong account
	// counts, and missing signers. Never retriable.
	KindValidation Kind = iota

	// KindArithmetic covers overflow, division by zero, and square-root
	// domain faults in the calculator.
	KindArithmetic

	// KindBusiness covers slippage, insufficient funds, zero-amount input,
	// and status/permission denial. Expected in normal operation; callers
	// retry with adjusted parameters.
	KindBusiness

	// KindSecurity covers hook whitelist denials and whitelist authority
	// failures. Always fail-closed.
	KindSecurity

	// KindExternal covers failures propagated verbatim from the venue or a
	// hook program invocation.
	KindExternal
)

// Error codes for the ammcore engine.
const (
	CodeAlreadyInUse              = "ALREADY_IN_USE"
	CodeInvalidProgramAddress     = "INVALID_PROGRAM_ADDRESS"
	CodeExpectedMint              = "EXPECTED_MINT"
	CodeExpectedAccount           = "EXPECTED_ACCOUNT"
	CodeInvalidCoinVault          = "INVALID_COIN_VAULT"
	CodeInvalidPCVault            = "INVALID_PC_VAULT"
	CodeInvalidTokenLP            = "INVALID_TOKEN_LP"
	CodeInvalidDestTokenCoin      = "INVALID_DEST_TOKEN_COIN"
	CodeInvalidDestTokenPC        = "INVALID_DEST_TOKEN_PC"
	CodeInvalidPoolMint           = "INVALID_POOL_MINT"
	CodeInvalidOpenOrders         = "INVALID_OPEN_ORDERS"
	CodeInvalidMarket             = "INVALID_MARKET"
	CodeInvalidMarketProgram      = "INVALID_MARKET_PROGRAM"
	CodeInvalidTargetOrders       = "INVALID_TARGET_ORDERS"
	CodeAccountNeedWriteable      = "ACCOUNT_NEED_WRITEABLE"
	CodeAccountNeedReadonly       = "ACCOUNT_NEED_READONLY"
	CodeInvalidCoinMint           = "INVALID_COIN_MINT"
	CodeInvalidPCMint             = "INVALID_PC_MINT"
	CodeInvalidOwner              = "INVALID_OWNER"
	CodeInvalidSupply             = "INVALID_SUPPLY"
	CodeInvalidDelegate           = "INVALID_DELEGATE"
	CodeInvalidSignAccount        = "INVALID_SIGN_ACCOUNT"
	CodeInvalidStatus             = "INVALID_STATUS"
	CodeInvalidInstruction        = "INVALID_INSTRUCTION"
	CodeWrongAccountsNumber       = "WRONG_ACCOUNTS_NUMBER"
	CodeInvalidTargetAccountOwner = "INVALID_TARGET_ACCOUNT_OWNER"
	CodeInvalidTargetOwner        = "INVALID_TARGET_OWNER"
	CodeInvalidAmmAccountOwner    = "INVALID_AMM_ACCOUNT_OWNER"
	CodeInvalidParamsSet          = "INVALID_PARAMS_SET"
	CodeInvalidInput              = "INVALID_INPUT"
	CodeExceededSlippage          = "EXCEEDED_SLIPPAGE"
	CodeCalculationExRateFailure  = "CALCULATION_EX_RATE_FAILURE"
	CodeCheckedSubOverflow        = "CHECKED_SUB_OVERFLOW"
	CodeCheckedAddOverflow        = "CHECKED_ADD_OVERFLOW"
	CodeCheckedMulOverflow        = "CHECKED_MUL_OVERFLOW"
	CodeCheckedDivOverflow        = "CHECKED_DIV_OVERFLOW"
	CodeCheckedEmptyFunds         = "CHECKED_EMPTY_FUNDS"
	CodeCalcPnlError              = "CALC_PNL_ERROR"
	CodeInvalidSplTokenProgram    = "INVALID_SPL_TOKEN_PROGRAM"
	CodeTakePnlError              = "TAKE_PNL_ERROR"
	CodeInsufficientFunds         = "INSUFFICIENT_FUNDS"
	CodeConversionFailure         = "CONVERSION_FAILURE"
	CodeInvalidUserToken          = "INVALID_USER_TOKEN"
	CodeInvalidSrmMint            = "INVALID_SRM_MINT"
	CodeInvalidSrmToken           = "INVALID_SRM_TOKEN"
	CodeNotAllowZeroLP            = "NOT_ALLOW_ZERO_LP"
	CodeInvalidCloseAuthority     = "INVALID_CLOSE_AUTHORITY"
	CodeInvalidFreezeAuthority    = "INVALID_FREEZE_AUTHORITY"
	CodeInvalidReferPCMint        = "INVALID_REFER_PC_MINT"
	CodeInvalidConfigAccount      = "INVALID_CONFIG_ACCOUNT"
	CodeRepeatCreateConfigAccount = "REPEAT_CREATE_CONFIG_ACCOUNT"
	CodeNotMatchIndex             = "NOT_MATCH_INDEX"
	CodeInvalidClaimedAmount      = "INVALID_CLAIMED_AMOUNT"

	CodeTransferHookNotWhitelisted     = "TRANSFER_HOOK_NOT_WHITELISTED"
	CodeInvalidWhitelistAuthority      = "INVALID_WHITELIST_AUTHORITY"
	CodeWhitelistCapacityExceeded      = "WHITELIST_CAPACITY_EXCEEDED"
	CodeWhitelistHookNotFound          = "WHITELIST_HOOK_NOT_FOUND"
	CodeWhitelistNotInitialized        = "WHITELIST_NOT_INITIALIZED"
	CodeHookMetaListAutoInitFailed     = "HOOK_META_LIST_AUTO_INIT_FAILED"
	CodeHookProgramNotSupportedForInit = "HOOK_PROGRAM_NOT_SUPPORTED_FOR_AUTO_INIT"
	CodeHookExtraAccountsUnresolved    = "HOOK_EXTRA_ACCOUNTS_UNRESOLVED"
	CodeOrderBookLoadFailed            = "ORDER_BOOK_LOAD_FAILED"
	CodeOrderCancelFailed              = "ORDER_CANCEL_FAILED"
	CodeSettleFundsFailed              = "SETTLE_FUNDS_FAILED"
	CodeHookInvokeFailed               = "HOOK_INVOKE_FAILED"
	CodeTransferFailed                 = "TRANSFER_FAILED"
	CodeUnknownAmmError                = "UNKNOWN_AMM_ERROR"
)

// AmmError represents an error in the ammcore engine.
type AmmError struct {
	// Code is a unique error code for this error type.
	Code string

	// Kind classifies the code per the error taxonomy.
	Kind Kind

	// Message is a human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error

	// Details contains additional error context.
	Details map[string]any
}

// Error implements the error interface.
func (e *AmmError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AmmError) Unwrap() error {
	return e.Cause
}

// Is reports whether the error matches the target by code.
func (e *AmmError) Is(target error) bool {
	t, ok := target.(*AmmError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error carrying cause. The sentinel itself
// is never mutated so errors.Is comparisons stay valid.
func (e *AmmError) WithCause(cause error) *AmmError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// WithDetails returns a copy of the error carrying details.
func (e *AmmError) WithDetails(details map[string]any) *AmmError {
	clone := *e
	clone.Details = details
	return &clone
}

// NewError creates a new AmmError.
func NewError(code string, kind Kind, message string) *AmmError {
	return &AmmError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Pre-defined errors, one per code.
var (
	ErrAlreadyInUse              = NewError(CodeAlreadyInUse, KindValidation, "pool account already in use")
	ErrInvalidProgramAddress     = NewError(CodeInvalidProgramAddress, KindValidation, "derived authority does not match")
	ErrExpectedMint              = NewError(CodeExpectedMint, KindValidation, "account is not a token mint")
	ErrExpectedAccount           = NewError(CodeExpectedAccount, KindValidation, "account is not a token account")
	ErrInvalidCoinVault          = NewError(CodeInvalidCoinVault, KindValidation, "coin vault does not match pool record")
	ErrInvalidPCVault            = NewError(CodeInvalidPCVault, KindValidation, "pc vault does not match pool record")
	ErrInvalidTokenLP            = NewError(CodeInvalidTokenLP, KindValidation, "lp token account mint mismatch")
	ErrInvalidDestTokenCoin      = NewError(CodeInvalidDestTokenCoin, KindValidation, "destination coin token account invalid")
	ErrInvalidDestTokenPC        = NewError(CodeInvalidDestTokenPC, KindValidation, "destination pc token account invalid")
	ErrInvalidPoolMint           = NewError(CodeInvalidPoolMint, KindValidation, "lp mint does not match pool record")
	ErrInvalidOpenOrders         = NewError(CodeInvalidOpenOrders, KindValidation, "open orders account does not match pool record")
	ErrInvalidMarket             = NewError(CodeInvalidMarket, KindValidation, "market does not match pool record")
	ErrInvalidMarketProgram      = NewError(CodeInvalidMarketProgram, KindValidation, "market program does not match pool record")
	ErrInvalidTargetOrders       = NewError(CodeInvalidTargetOrders, KindValidation, "target orders account does not match pool record")
	ErrAccountNeedWriteable      = NewError(CodeAccountNeedWriteable, KindValidation, "account must be writeable")
	ErrAccountNeedReadonly       = NewError(CodeAccountNeedReadonly, KindValidation, "account must be readonly")
	ErrInvalidCoinMint           = NewError(CodeInvalidCoinMint, KindValidation, "coin mint does not match market")
	ErrInvalidPCMint             = NewError(CodeInvalidPCMint, KindValidation, "pc mint does not match market")
	ErrInvalidOwner              = NewError(CodeInvalidOwner, KindValidation, "account owner mismatch")
	ErrInvalidSupply             = NewError(CodeInvalidSupply, KindValidation, "mint supply mismatch")
	ErrInvalidDelegate           = NewError(CodeInvalidDelegate, KindValidation, "token account must not carry a delegate")
	ErrInvalidSignAccount        = NewError(CodeInvalidSignAccount, KindValidation, "required signer missing")
	ErrInvalidStatus             = NewError(CodeInvalidStatus, KindBusiness, "pool status forbids this operation")
	ErrInvalidInstruction        = NewError(CodeInvalidInstruction, KindValidation, "unknown or malformed instruction")
	ErrWrongAccountsNumber       = NewError(CodeWrongAccountsNumber, KindValidation, "wrong number of accounts supplied")
	ErrInvalidTargetOwner        = NewError(CodeInvalidTargetOwner, KindValidation, "target orders owner mismatch")
	ErrInvalidTargetAccountOwner = NewError(CodeInvalidTargetAccountOwner, KindValidation, "target orders account owner is not this program")
	ErrInvalidAmmAccountOwner    = NewError(CodeInvalidAmmAccountOwner, KindValidation, "pool account owner is not this program")
	ErrInvalidParamsSet          = NewError(CodeInvalidParamsSet, KindValidation, "invalid parameter set")
	ErrInvalidInput              = NewError(CodeInvalidInput, KindBusiness, "zero or invalid amount input")
	ErrExceededSlippage          = NewError(CodeExceededSlippage, KindBusiness, "result outside caller slippage bounds")
	ErrCalculationExRateFailure  = NewError(CodeCalculationExRateFailure, KindArithmetic, "exchange rate calculation failed")
	ErrCheckedSubOverflow        = NewError(CodeCheckedSubOverflow, KindArithmetic, "checked subtraction underflow")
	ErrCheckedAddOverflow        = NewError(CodeCheckedAddOverflow, KindArithmetic, "checked addition overflow")
	ErrCheckedMulOverflow        = NewError(CodeCheckedMulOverflow, KindArithmetic, "checked multiplication overflow")
	ErrCheckedDivOverflow        = NewError(CodeCheckedDivOverflow, KindArithmetic, "checked division by zero")
	ErrCheckedEmptyFunds         = NewError(CodeCheckedEmptyFunds, KindBusiness, "empty funds")
	ErrCalcPnl                   = NewError(CodeCalcPnlError, KindArithmetic, "reserve product below pnl baseline")
	ErrInvalidSplTokenProgram    = NewError(CodeInvalidSplTokenProgram, KindValidation, "token program id mismatch")
	ErrTakePnl                   = NewError(CodeTakePnlError, KindBusiness, "redeemable amount not covered by vault balance")
	ErrInsufficientFunds         = NewError(CodeInsufficientFunds, KindBusiness, "insufficient funds")
	ErrConversionFailure         = NewError(CodeConversionFailure, KindArithmetic, "integer conversion out of range")
	ErrInvalidUserToken          = NewError(CodeInvalidUserToken, KindValidation, "user token account invalid for this pool")
	ErrInvalidSrmMint            = NewError(CodeInvalidSrmMint, KindValidation, "auxiliary vault mint mismatch")
	ErrInvalidSrmToken           = NewError(CodeInvalidSrmToken, KindValidation, "auxiliary token account invalid")
	ErrNotAllowZeroLP            = NewError(CodeNotAllowZeroLP, KindBusiness, "operation would leave zero lp supply")
	ErrInvalidCloseAuthority     = NewError(CodeInvalidCloseAuthority, KindValidation, "token account must not carry a close authority")
	ErrInvalidFreezeAuthority    = NewError(CodeInvalidFreezeAuthority, KindValidation, "mint must not carry a freeze authority")
	ErrInvalidReferPCMint        = NewError(CodeInvalidReferPCMint, KindValidation, "referrer wallet mint mismatch")
	ErrInvalidConfigAccount      = NewError(CodeInvalidConfigAccount, KindValidation, "config account address mismatch")
	ErrRepeatCreateConfigAccount = NewError(CodeRepeatCreateConfigAccount, KindValidation, "config account already created")

	ErrTransferHookNotWhitelisted     = NewError(CodeTransferHookNotWhitelisted, KindSecurity, "transfer hook program not whitelisted")
	ErrInvalidWhitelistAuthority      = NewError(CodeInvalidWhitelistAuthority, KindSecurity, "whitelist authority mismatch")
	ErrWhitelistCapacityExceeded      = NewError(CodeWhitelistCapacityExceeded, KindSecurity, "whitelist capacity exceeded")
	ErrWhitelistHookNotFound          = NewError(CodeWhitelistHookNotFound, KindSecurity, "hook program not present in whitelist")
	ErrWhitelistNotInitialized        = NewError(CodeWhitelistNotInitialized, KindSecurity, "whitelist record not initialized")
	ErrHookMetaListAutoInitFailed     = NewError(CodeHookMetaListAutoInitFailed, KindSecurity, "hook meta list auto-initialization failed")
	ErrHookProgramNotSupportedForInit = NewError(CodeHookProgramNotSupportedForInit, KindSecurity, "hook program not supported for auto-initialization")
	ErrHookExtraAccountsUnresolved    = NewError(CodeHookExtraAccountsUnresolved, KindSecurity, "hook extra accounts could not be resolved")

	ErrOrderBookLoad = NewError(CodeOrderBookLoadFailed, KindExternal, "order book state load failed")
	ErrOrderCancel   = NewError(CodeOrderCancelFailed, KindExternal, "order cancellation failed")
	ErrSettleFunds   = NewError(CodeSettleFundsFailed, KindExternal, "settle funds failed")
	ErrHookInvoke    = NewError(CodeHookInvokeFailed, KindExternal, "hook program invocation failed")
	ErrTransfer      = NewError(CodeTransferFailed, KindExternal, "token transfer failed")
)

// IsKind reports whether err is an AmmError of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *AmmError
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}
