package diagnostics

// Reason is the closed tag set for solver diagnostics. Formatting and LSP
// codes key off it; new reasons are added here and nowhere else.
type Reason string

const (
	ReasonNotFunction        Reason = "not_function"
	ReasonBranchMismatch     Reason = "branch_mismatch"
	ReasonMissingField       Reason = "missing_field"
	ReasonNotRecord          Reason = "not_record"
	ReasonOccursCycle        Reason = "occurs_cycle"
	ReasonTypeMismatch       Reason = "type_mismatch"
	ReasonArityMismatch      Reason = "arity_mismatch"
	ReasonNotNumeric         Reason = "not_numeric"
	ReasonNotBoolean         Reason = "not_boolean"
	ReasonFreeVariable       Reason = "free_variable"
	ReasonUnsupportedExpr    Reason = "unsupported_expr"
	ReasonNonExhaustiveMatch Reason = "non_exhaustive_match"
	ReasonAmbiguousRecord    Reason = "ambiguous_record"

	ReasonTypeExprUnknown  Reason = "type_expr_unknown"
	ReasonTypeExprArity    Reason = "type_expr_arity"
	ReasonTypeDeclDupCtor  Reason = "type_decl_duplicate_ctor"
	ReasonTypeDeclDupType  Reason = "type_decl_duplicate_type"

	ReasonInfectiousCallResultMismatch  Reason = "infectious_call_result_mismatch"
	ReasonInfectiousMatchResultMismatch Reason = "infectious_match_result_mismatch"

	ReasonPatternBindingRequired Reason = "pattern_binding_required"
	ReasonMutableShadowing       Reason = "mutable_shadowing"
	ReasonRequireExactState      Reason = "require_exact_state"
	ReasonRequireAnyState        Reason = "require_any_state"

	ReasonInternalError Reason = "internal_error"

	// ReasonMatchErrorRowPartial is the tolerant-mode flow counterpart of
	// non_exhaustive_match: a coverage warning, not a unification failure.
	ReasonMatchErrorRowPartial Reason = "match_error_row_partial"
)
